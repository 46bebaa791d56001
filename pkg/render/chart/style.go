package chart

import (
	"bytes"
	"fmt"
)

// Style defines the visual appearance of a chart.
type Style interface {
	// RenderDefs writes SVG <defs> content (markers, filters).
	RenderDefs(buf *bytes.Buffer)
	// RenderBox writes the shape of one person.
	RenderBox(buf *bytes.Buffer, b Box)
	// RenderLine writes one connector.
	RenderLine(buf *bytes.Buffer, l Line)
	// RenderText writes the labels of one person.
	RenderText(buf *bytes.Buffer, b Box)
}

// Box contains all data needed to draw one placed person.
type Box struct {
	ID         string
	Label      string
	Detail     []string // Extra text lines under the label
	Class      string
	X, Y, W, H float64
	CX, CY     float64
	Scale      float64
	Filtered   bool
}

// Line contains the endpoints of one connector.
type Line struct {
	FromID, ToID   string
	Married        bool // Spouse line, as opposed to parent to child
	Former         bool
	Filtered       bool
	Title          string
	X1, Y1, X2, Y2 float64
}

// Simple draws flat rounded boxes with orthogonal child lines.
type Simple struct{}

func (Simple) RenderDefs(buf *bytes.Buffer) {}

func (Simple) RenderBox(buf *bytes.Buffer, b Box) {
	fill, stroke, width := "#ffffff", "#333333", 1.5
	switch {
	case b.Filtered:
		fill, stroke = "#eeeeee", "#aaaaaa"
	case b.Class == "primary":
		width = 3
	}
	dash := ""
	if b.Filtered {
		dash = ` stroke-dasharray="6,4"`
	}
	fmt.Fprintf(buf, `  <rect id="person-%s" class="person %s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="6" ry="6" fill="%s" stroke="%s" stroke-width="%.1f"%s/>`+"\n",
		EscapeXML(b.ID), b.Class, b.X, b.Y, b.W, b.H, fill, stroke, width, dash)
}

func (Simple) RenderLine(buf *bytes.Buffer, l Line) {
	stroke := "#333333"
	if l.Filtered {
		stroke = "#bbbbbb"
	}
	dash := ""
	if l.Former {
		dash = ` stroke-dasharray="8,5"`
	}

	var d string
	if l.Married {
		d = fmt.Sprintf("M %.2f %.2f L %.2f %.2f", l.X1, l.Y1, l.X2, l.Y2)
	} else {
		mid := (l.Y1 + l.Y2) / 2
		d = fmt.Sprintf("M %.2f %.2f V %.2f H %.2f V %.2f", l.X1, l.Y1, mid, l.X2, l.Y2)
	}

	fmt.Fprintf(buf, `  <path class="connector" data-from="%s" data-to="%s" d="%s" fill="none" stroke="%s" stroke-width="1.5"%s>`,
		EscapeXML(l.FromID), EscapeXML(l.ToID), d, stroke, dash)
	if l.Title != "" {
		fmt.Fprintf(buf, "<title>%s</title>", EscapeXML(l.Title))
	}
	buf.WriteString("</path>\n")
}

func (Simple) RenderText(buf *bytes.Buffer, b Box) {
	color := "#000000"
	if b.Filtered {
		color = "#888888"
	}
	size := FontSize(b)
	lines := append([]string{TruncateLabel(b)}, b.Detail...)
	top := b.CY - float64(len(lines)-1)*size*lineSpacing/2

	fmt.Fprintf(buf, `  <text class="person-text" data-person="%s" x="%.2f" y="%.2f" font-family="Helvetica, Arial, sans-serif" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="middle">`,
		EscapeXML(b.ID), b.CX, top, size, color)
	for i, line := range lines {
		if i == 0 {
			fmt.Fprintf(buf, "<tspan>%s</tspan>", EscapeXML(line))
			continue
		}
		fmt.Fprintf(buf, `<tspan x="%.2f" dy="%.1f" font-size="%.1f">%s</tspan>`, b.CX, size*lineSpacing, size*detailRatio, EscapeXML(line))
	}
	buf.WriteString("</text>\n")
}
