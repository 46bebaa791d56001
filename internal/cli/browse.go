package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintower/pkg/diagram"
	"github.com/matzehuels/kintower/pkg/errors"
	"github.com/matzehuels/kintower/pkg/family"
	"github.com/matzehuels/kintower/pkg/pipeline"
)

const (
	// commitDelay is how long only the primary person is shown after a
	// re-center before the rest of the diagram is revealed.
	commitDelay = 250 * time.Millisecond

	// yearDelay coalesces bursts of year key presses.
	yearDelay = 300 * time.Millisecond

	browseChrome = 4 // header and footer lines around the viewport
)

var (
	nodeBox       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	nodeBoxCursor = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Padding(0, 1)
)

// commitMsg reveals the diagram after a populate.
type commitMsg struct{ ticket diagram.Populate }

// yearMsg applies a debounced display year.
type yearMsg struct{ year int }

// browseModel is the bubbletea model of the interactive diagram browser.
type browseModel struct {
	ctrl   *diagram.Controller
	graph  *family.Graph
	reload func() (*family.Graph, error)

	// debounced runs f once key presses settle; send delivers a message to
	// the running program.
	debounced func(f func())
	send      func(tea.Msg)

	cursor string
	year   int
	ticket diagram.Populate
	status string

	viewport viewport.Model
	ready    bool
	quitting bool
}

func newBrowseModel(ctrl *diagram.Controller, g *family.Graph, reload func() (*family.Graph, error)) browseModel {
	return browseModel{
		ctrl:      ctrl,
		graph:     g,
		reload:    reload,
		debounced: debounce.New(yearDelay),
		send:      func(tea.Msg) {},
		viewport:  viewport.New(80, 20),
	}
}

// start populates around p. Init schedules the commit.
func (m *browseModel) start(p *family.Person) {
	m.ticket = m.ctrl.BeginPopulate(p)
	m.cursor = p.ID
	if m.year == 0 {
		m.year = m.ctrl.DisplayYear()
	}
	m.refresh()
}

func commitAfter(t diagram.Populate) tea.Cmd {
	return tea.Tick(commitDelay, func(time.Time) tea.Msg { return commitMsg{t} })
}

func (m browseModel) Init() tea.Cmd {
	return commitAfter(m.ticket)
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		h := max(msg.Height-browseChrome, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		m.refresh()

	case commitMsg:
		if m.ctrl.CommitPopulate(msg.ticket) {
			m.refresh()
		}

	case yearMsg:
		changed := m.ctrl.SetDisplayYear(msg.year)
		m.status = fmt.Sprintf("year %d, %d links changed", msg.year, len(changed))
		m.refresh()
	}
	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "left", "h":
		m.moveCursor(0, -1)
	case "right", "l":
		m.moveCursor(0, 1)
	case "up", "k":
		m.moveCursor(-1, 0)
	case "down", "j":
		m.moveCursor(1, 0)
	case "enter":
		return m, m.recenter()
	case "[":
		m.shiftYear(-1)
	case "]":
		m.shiftYear(1)
	case "{":
		m.shiftYear(-10)
	case "}":
		m.shiftYear(10)
	case "r":
		return m, m.reloadFamily()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	m.refresh()
	return m, nil
}

// recenter makes the person under the cursor the primary person.
func (m *browseModel) recenter() tea.Cmd {
	p, ok := m.graph.Person(m.cursor)
	if !ok || p == m.ctrl.Primary() {
		return nil
	}
	m.ctrl.OnPrimaryChanged(p)
	ticket, begun := m.ctrl.Apply()
	if !begun {
		return nil
	}
	m.ticket = ticket
	m.status = "centered on " + p.FullName()
	m.refresh()
	return commitAfter(ticket)
}

func (m *browseModel) shiftYear(delta int) {
	m.year = max(m.year+delta, 1)
	year, send := m.year, m.send
	m.debounced(func() { send(yearMsg{year}) })
}

// reloadFamily rereads the family file. The first person added since the
// last load is reported and gets the cursor when the diagram shows them.
func (m *browseModel) reloadFamily() tea.Cmd {
	if m.reload == nil {
		return nil
	}
	g, err := m.reload()
	if err != nil {
		m.status = "reload failed: " + err.Error()
		m.refresh()
		return nil
	}

	var added *family.Person
	for _, p := range g.People() {
		if _, ok := m.graph.Person(p.ID); !ok {
			added = p
			break
		}
	}
	primary := g.Primary()
	if cur := m.ctrl.Primary(); cur != nil {
		if p, ok := g.Person(cur.ID); ok {
			primary = p
		}
	}
	if primary == nil {
		m.status = "reload failed: primary person is gone"
		m.refresh()
		return nil
	}
	m.graph = g

	// Every person is replaced, so re-center even on the same ID. This also
	// supersedes an uncommitted populate.
	m.ctrl.OnPrimaryChanged(primary)
	ticket, _ := m.ctrl.Apply()
	m.ticket = ticket
	m.cursor = primary.ID
	m.status = fmt.Sprintf("reloaded %d people", g.Len())
	if added != nil {
		m.status += ", added " + added.FullName()
		if m.ctrl.Engine().Node(added) != nil {
			m.cursor = added.ID
		}
	}
	m.refresh()
	return commitAfter(ticket)
}

// visibleRows returns the shown nodes per row, oldest generation first.
func (m *browseModel) visibleRows() [][]*diagram.Node {
	var rows [][]*diagram.Node
	for _, r := range m.ctrl.Rows() {
		var nodes []*diagram.Node
		for _, n := range r.Nodes() {
			if !n.Hidden() {
				nodes = append(nodes, n)
			}
		}
		if len(nodes) > 0 {
			rows = append(rows, nodes)
		}
	}
	return rows
}

// moveCursor moves by dr rows and dc nodes, clamping at the edges.
func (m *browseModel) moveCursor(dr, dc int) {
	rows := m.visibleRows()
	if len(rows) == 0 {
		return
	}
	ri, ci := 0, 0
	for i, row := range rows {
		for j, n := range row {
			if n.Person().ID == m.cursor {
				ri, ci = i, j
			}
		}
	}
	ri = clamp(ri+dr, 0, len(rows)-1)
	ci = clamp(ci+dc, 0, len(rows[ri])-1)
	m.cursor = rows[ri][ci].Person().ID
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func (m *browseModel) refresh() {
	m.viewport.SetContent(m.renderRows())
}

func (m *browseModel) renderRows() string {
	var lines []string
	for _, r := range m.ctrl.Rows() {
		var groups []string
		for _, g := range r.Groups() {
			var boxes []string
			for _, n := range g.Nodes() {
				if !n.Hidden() {
					boxes = append(boxes, m.renderNode(n))
				}
			}
			if len(boxes) == 0 {
				continue
			}
			if len(groups) > 0 {
				groups = append(groups, "   ")
			}
			groups = append(groups, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
		}
		if len(groups) > 0 {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, groups...))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *browseModel) renderNode(n *diagram.Node) string {
	style := classStyle(n.Class().String(), n.Filtered())
	text := style.Render(n.Label())
	if years := n.YearsText(); years != "" {
		text += "\n" + StyleDim.Render(years)
	}
	if age := n.AgeText(m.ctrl.DisplayYear()); age != "" && !n.Filtered() {
		text += StyleDim.Render(" (" + age + ")")
	}

	box := nodeBox
	if n.Person().ID == m.cursor {
		box = nodeBoxCursor
	}
	return box.BorderForeground(style.GetForeground()).Render(text)
}

func (m browseModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	title := "Family"
	if p := m.ctrl.Primary(); p != nil {
		title = p.FullName()
	}
	filtered := 0
	conns := m.ctrl.Connectors()
	for _, c := range conns {
		if c.Filtered() {
			filtered++
		}
	}
	b.WriteString(StyleTitle.Render(title) + "  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("year %d · %d people · %d links (%d filtered) · %s",
		m.year, m.ctrl.NodeCount(), len(conns), filtered, m.ctrl.State())))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(StyleHighlight.Render(m.status) + "  ")
	}
	b.WriteString(StyleDim.Render("←↑↓→ move  ⏎ center  [ ] year  { } decade  r reload  q quit"))
	return b.String()
}

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "browse [file]",
		Short: "Explore a family interactively in the terminal",
		Long: `Explore a family interactively in the terminal.

Move between people with the arrow keys and press enter to center the
diagram on them. [ and ] step the display year, { and } by a decade.
r rereads the file after editing it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd, args[0], c.withConfig(opts))
		},
	}
	layoutFlags(cmd, &opts)
	_ = cmd.RegisterFlagCompletionFunc("primary", completePeople)
	return cmd
}

func (c *CLI) runBrowse(cmd *cobra.Command, input string, opts pipeline.Options) error {
	ctx := cmd.Context()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	load := func() (*family.Graph, error) {
		g, _, err := runner.Load(ctx, input)
		return g, err
	}
	g, err := load()
	if err != nil {
		return fmt.Errorf("load family %s: %w", input, err)
	}
	primary, err := pipeline.ResolvePrimary(g, opts.Primary)
	if err != nil {
		return err
	}
	if primary == nil {
		return errors.New(errors.ErrCodeInvalidInput, "family %s has nobody to browse", input)
	}

	ctrl := diagram.NewController(opts.DiagramOptions(), c.Logger)
	if opts.Year != 0 {
		ctrl.SetDisplayYear(opts.Year)
	}

	var prog *tea.Program
	m := newBrowseModel(ctrl, g, load)
	m.send = func(msg tea.Msg) { prog.Send(msg) }
	m.start(primary)

	prog = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = prog.Run()
	return err
}
