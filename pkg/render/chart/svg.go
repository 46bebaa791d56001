package chart

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/kintower/pkg/graph"
)

const defaultPadding = 20.0

const interactionCSS = `
    .person { transition: stroke-width 0.2s ease; }
    .person.highlight { stroke-width: 4; }
    .connector.highlight { stroke-width: 3; }`

const interactionJS = `
    function highlight(id) {
      document.querySelectorAll('.connector').forEach(c => c.classList.toggle('highlight', c.dataset.from === id || c.dataset.to === id));
      document.querySelectorAll('.person').forEach(p => p.classList.toggle('highlight', p.id === 'person-' + id));
    }
    function clearHighlight() {
      document.querySelectorAll('.highlight').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.person').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.id.replace('person-', '')));
      el.addEventListener('mouseleave', clearHighlight);
    });`

type Option func(*renderer)

type renderer struct {
	style       Style
	padding     float64
	details     bool
	interactive bool
}

func WithStyle(s Style) Option     { return func(r *renderer) { r.style = s } }
func WithPadding(p float64) Option { return func(r *renderer) { r.padding = max(0, p) } }
func WithDetails() Option          { return func(r *renderer) { r.details = true } }
func WithInteraction() Option      { return func(r *renderer) { r.interactive = true } }

// RenderSVG draws l at its own coordinates. Connectors are drawn below the
// boxes; hidden people and their connectors are skipped.
func RenderSVG(l graph.Layout, opts ...Option) []byte {
	r := renderer{style: Simple{}, padding: defaultPadding}
	for _, opt := range opts {
		opt(&r)
	}

	boxes, hidden := buildBoxes(l, r.details)
	lines := buildLines(l, hidden)

	w, h := l.Width+2*r.padding, l.Height+2*r.padding
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)

	r.style.RenderDefs(&buf)
	fmt.Fprintf(&buf, `  <g transform="translate(%.1f %.1f)">`+"\n", r.padding, r.padding)
	for _, ln := range lines {
		r.style.RenderLine(&buf, ln)
	}
	for _, b := range boxes {
		r.style.RenderBox(&buf, b)
	}
	for _, b := range boxes {
		r.style.RenderText(&buf, b)
	}
	buf.WriteString("  </g>\n")

	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", interactionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", interactionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func buildBoxes(l graph.Layout, details bool) ([]Box, map[string]bool) {
	var boxes []Box
	hidden := make(map[string]bool)
	for _, n := range l.Nodes() {
		if n.Hidden {
			hidden[n.ID] = true
			continue
		}
		b := Box{
			ID:    n.ID,
			Label: n.Name,
			Class: n.Class,
			X:     n.X, Y: n.Y,
			W: n.Width, H: n.Height,
			Scale:    n.Scale,
			Filtered: n.Filtered,
		}
		b.CX, b.CY = n.Center()
		if details {
			if n.Years != "" {
				b.Detail = append(b.Detail, n.Years)
			}
			if n.Age != "" {
				b.Detail = append(b.Detail, "age "+n.Age)
			}
		}
		boxes = append(boxes, b)
	}
	return boxes, hidden
}

func buildLines(l graph.Layout, hidden map[string]bool) []Line {
	lines := make([]Line, 0, len(l.Connectors))
	for _, c := range l.Connectors {
		if hidden[c.From] || hidden[c.To] {
			continue
		}
		ln := Line{
			FromID: c.From, ToID: c.To,
			Married:  c.Kind == "married",
			Former:   c.Former,
			Filtered: c.Filtered,
			X1:       c.X1, Y1: c.Y1,
			X2: c.X2, Y2: c.Y2,
		}
		switch {
		case c.DivorcedDate != "":
			ln.Title = fmt.Sprintf("married %s, divorced %s", c.MarriedDate, c.DivorcedDate)
		case c.MarriedDate != "":
			ln.Title = "married " + c.MarriedDate
		}
		lines = append(lines, ln)
	}
	return lines
}
