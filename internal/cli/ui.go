package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/kintower/pkg/graph"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary person, actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings, spouses
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - relatives
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text, filtered people
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// classStyles colors people by their place in the diagram.
var classStyles = map[string]lipgloss.Style{
	"primary":            lipgloss.NewStyle().Bold(true).Foreground(colorCyan),
	"spouse":             lipgloss.NewStyle().Foreground(colorYellow),
	"related":            lipgloss.NewStyle().Foreground(colorWhite),
	"sibling":            lipgloss.NewStyle().Foreground(colorBlue),
	"half-sibling-left":  lipgloss.NewStyle().Foreground(colorBlue).Italic(true),
	"half-sibling-right": lipgloss.NewStyle().Foreground(colorBlue).Italic(true),
}

func classStyle(class string, filtered bool) lipgloss.Style {
	if filtered {
		return StyleDim
	}
	if s, ok := classStyles[class]; ok {
		return s
	}
	return StyleValue
}

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented dim line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written file.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints layout statistics on a single line.
func printStats(w io.Writer, people, nodes int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d people", people),
		fmt.Sprintf("%d placed", nodes),
	}

	status := styleComputed.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}

	line := "  " + StyleDim.Render(strings.Join(parts, " · "))
	fmt.Fprintln(w, line+StyleDim.Render(" · ")+status)
}

func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Layout Summary
// =============================================================================

// layoutTable renders one line per generation: the people placed in it,
// colored by classification, and how many are filtered at the display year.
func layoutTable(l graph.Layout) string {
	primaryRow := -1
	rows := make([][]string, 0, len(l.Rows))
	for i, r := range l.Rows {
		var names []string
		filtered := 0
		for _, g := range r.Groups {
			var members []string
			for _, n := range g.Nodes {
				if n.ID == l.Primary {
					primaryRow = i
				}
				if n.Filtered {
					filtered++
				}
				members = append(members, classStyle(n.Class, n.Filtered).Render(n.Name))
			}
			names = append(names, strings.Join(members, " "))
		}
		rows = append(rows, []string{"", strconv.Itoa(len(names)), strings.Join(names, StyleDim.Render(" | ")), strconv.Itoa(filtered)})
	}
	for i := range rows {
		rows[i][0] = generationLabel(i - primaryRow)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Gen", "Groups", "People", "Filtered").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

// generationLabel names a row by its distance from the primary person's row.
func generationLabel(d int) string {
	if d > 0 {
		return "+" + strconv.Itoa(d)
	}
	return strconv.Itoa(d)
}
