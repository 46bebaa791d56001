package diagram

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintower/pkg/family"
	"github.com/matzehuels/kintower/pkg/observability"
)

// State is the controller's populate state.
type State int

const (
	Idle State = iota
	// Populating means a primary change is waiting for CommitPopulate.
	Populating
)

func (s State) String() string {
	if s == Populating {
		return "populating"
	}
	return "idle"
}

// Populate is the ticket handed out by [Controller.BeginPopulate].
type Populate struct {
	// Token identifies the populate; only the latest token can be committed.
	Token uint64
	// Previous holds the bounds of the old primary person's node before the
	// rebuild, so a host can scroll from there.
	Previous   Rect
	PreviousOK bool
	Primary    *family.Person
}

type change struct {
	primary bool
	person  *family.Person
}

// Controller runs full layout passes and the populate choreography for a
// host. It is not safe for concurrent use.
type Controller struct {
	engine *Engine
	logger *log.Logger

	state   State
	primary *family.Person
	rows    []*Row
	bounds  Rect
	token   uint64

	pending   []change
	newPerson *family.Person

	displayYear int
	yearSet     bool

	updated   []func()
	populated []func(Populate)
}

// NewController returns an idle controller with no primary person. A nil
// logger discards output.
func NewController(opts Options, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{engine: NewEngine(opts), logger: logger}
}

// Engine exposes the lookup of the current pass.
func (c *Controller) Engine() *Engine { return c.engine }

func (c *Controller) State() State { return c.state }

func (c *Controller) Primary() *family.Person { return c.primary }

// Rows returns the current rows, oldest generation first.
func (c *Controller) Rows() []*Row { return slices.Clone(c.rows) }

func (c *Controller) Connectors() []*Connector { return c.engine.Connectors() }

// Bounds returns the size of the arranged diagram.
func (c *Controller) Bounds() Rect { return c.bounds }

func (c *Controller) NodeCount() int { return c.engine.Len() }

func (c *Controller) MinimumYear() int { return c.engine.MinimumYear() }

func (c *Controller) DisplayYear() int { return c.engine.DisplayYear() }

// OnLayoutUpdated registers fn to run after every rebuild or reveal.
func (c *Controller) OnLayoutUpdated(fn func()) {
	if fn != nil {
		c.updated = append(c.updated, fn)
	}
}

// OnLayoutPopulated registers fn to run when a populate begins.
func (c *Controller) OnLayoutPopulated(fn func(Populate)) {
	if fn != nil {
		c.populated = append(c.populated, fn)
	}
}

// OnPrimaryChanged queues a primary change for the next [Controller.Apply].
func (c *Controller) OnPrimaryChanged(p *family.Person) {
	c.pending = append(c.pending, change{primary: true, person: p})
}

// OnContentChanged queues a content change for the next [Controller.Apply].
// newPerson is optional and is handed out once by [Controller.TakeNewPerson].
func (c *Controller) OnContentChanged(newPerson *family.Person) {
	c.pending = append(c.pending, change{person: newPerson})
}

// Pending reports whether changes are queued.
func (c *Controller) Pending() bool { return len(c.pending) > 0 }

// Apply performs the queued changes in order. It returns the ticket of the
// last populate started, if any.
func (c *Controller) Apply() (Populate, bool) {
	var (
		ticket Populate
		begun  bool
	)
	pending := c.pending
	c.pending = nil
	for _, ch := range pending {
		if ch.primary {
			ticket, begun = c.BeginPopulate(ch.person), true
			continue
		}
		c.ContentChanged(ch.person)
	}
	return ticket, begun
}

// BeginPopulate rebuilds the layout around p and hides every node except p.
// The returned ticket must be passed to [Controller.CommitPopulate] to reveal
// the rest; any older ticket becomes stale.
func (c *Controller) BeginPopulate(p *family.Person) Populate {
	prev, ok := c.engine.NodeBounds(c.primary)

	c.primary = p
	c.rebuild()
	for _, pl := range c.engine.Placements() {
		pl.Node.setHidden(pl.Node.person != p)
	}

	c.state = Populating
	c.token++
	ticket := Populate{Token: c.token, Previous: prev, PreviousOK: ok, Primary: p}

	observability.Diagram().OnPopulateBegin(personID(p))
	c.logger.Debug("populate begin", "primary", personID(p), "token", ticket.Token)

	c.notifyUpdated()
	for _, fn := range c.populated {
		fn(ticket)
	}
	return ticket
}

// CommitPopulate reveals every node and returns to Idle. It returns false
// and changes nothing when the ticket is stale or no populate is pending.
func (c *Controller) CommitPopulate(t Populate) bool {
	if c.state != Populating || t.Token != c.token {
		observability.Diagram().OnPopulateCommit(personID(t.Primary), false)
		c.logger.Debug("stale populate ignored", "token", t.Token, "current", c.token)
		return false
	}

	for _, pl := range c.engine.Placements() {
		pl.Node.setHidden(false)
	}
	c.state = Idle
	observability.Diagram().OnPopulateCommit(personID(t.Primary), true)
	c.notifyUpdated()
	return true
}

// ContentChanged rebuilds immediately when idle and remembers newPerson.
// While populating the change is dropped and false is returned.
func (c *Controller) ContentChanged(newPerson *family.Person) bool {
	if c.state == Populating {
		observability.Diagram().OnContentIgnored()
		c.logger.Debug("content change ignored while populating")
		return false
	}
	c.rebuild()
	c.newPerson = newPerson
	c.notifyUpdated()
	return true
}

// TakeNewPerson returns the person from the last applied content change
// and forgets it.
func (c *Controller) TakeNewPerson() *family.Person {
	p := c.newPerson
	c.newPerson = nil
	return p
}

// SetDisplayYear updates filtering without a rebuild and returns the
// connectors whose filtered state changed. The year is kept for later
// passes.
func (c *Controller) SetDisplayYear(y int) []*Connector {
	c.displayYear, c.yearSet = y, true
	c.engine.SetDisplayYear(y)

	var changed []*Connector
	for _, conn := range c.engine.connectors {
		if _, ok := conn.FilterChanged(); ok {
			changed = append(changed, conn)
		}
	}
	return changed
}

// rebuild runs a full pass around the current primary person.
func (c *Controller) rebuild() {
	start := time.Now()
	e := c.engine
	opts := e.opts

	e.Clear()
	if c.yearSet {
		e.SetDisplayYear(c.displayYear)
	}
	c.rows, c.bounds = nil, Rect{}
	if c.primary == nil {
		c.logger.Debug("layout cleared", "primary", "")
		return
	}

	primaryRow := e.CreatePrimaryRow(c.primary, 1, opts.RelatedMultiplier)
	if primaryRow == nil {
		return
	}
	rows := []*Row{primaryRow}

	childRow, parentRow := primaryRow, primaryRow
	parentScale := 1.0
	for e.Len() < opts.MaxNodes && (childRow != nil || parentRow != nil) {
		if childRow != nil {
			childRow = e.CreateChildrenRow(e.Children(childRow), opts.ChildMultiplier, opts.ChildMultiplier*opts.RelatedMultiplier)
			if childRow != nil {
				rows = append(rows, childRow)
			}
		}
		if parentRow != nil {
			parentScale *= opts.GenerationMultiplier
			parentRow = e.CreateParentRow(e.Parents(parentRow), parentScale, parentScale*opts.RelatedMultiplier)
			if parentRow != nil {
				rows = slices.Insert(rows, 0, parentRow)
			}
		}
	}

	c.rows = rows
	c.bounds = e.Arrange(rows)

	d := time.Since(start)
	observability.Diagram().OnLayout(personID(c.primary), len(rows), e.Len(), len(e.connectors), d)
	c.logger.Debug("layout",
		"primary", personID(c.primary),
		"rows", len(rows),
		"nodes", e.Len(),
		"connectors", len(e.connectors),
		"duration", d,
	)
}

func (c *Controller) notifyUpdated() {
	for _, fn := range c.updated {
		fn()
	}
}

func personID(p *family.Person) string {
	if p == nil {
		return ""
	}
	return p.ID
}
