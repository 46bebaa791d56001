package diagram

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/kintower/pkg/family"
	"github.com/matzehuels/kintower/pkg/observability"
)

func rowIDs(rows []*Row) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = nodeIDs(r.Nodes())
	}
	return out
}

func TestControllerIsolatedPrimary(t *testing.T) {
	tr := newTree(t)
	p := tr.person("P", 1980)

	c := NewController(testOptions(), nil)
	c.BeginPopulate(p)

	rows := c.Rows()
	if len(rows) != 1 || rows[0].Len() != 1 || rows[0].NodeCount() != 1 {
		t.Fatalf("rows = %v, want one row with one group and one node", rowIDs(rows))
	}
	if len(c.Connectors()) != 0 {
		t.Errorf("connectors = %d, want 0", len(c.Connectors()))
	}
}

func TestControllerTwoSpousesOneChild(t *testing.T) {
	tr := newTree(t)
	x := tr.person("X", 1950)
	s1 := tr.person("s1", 1952)
	s2 := tr.person("s2", 1955)
	kid := tr.person("kid", 1975)
	tr.marry(x, s1, family.Marriage{})
	tr.marry(x, s2, family.Marriage{})
	tr.parents(kid, x, s1)

	c := NewController(testOptions(), nil)
	c.BeginPopulate(x)

	rows := c.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if diff := cmp.Diff([][]string{{"s2", "s1"}, {"X"}}, groupIDs(rows[0])); diff != "" {
		t.Errorf("primary row mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"kid"}}, groupIDs(rows[1])); diff != "" {
		t.Errorf("child row mismatch (-want +got):\n%s", diff)
	}

	want := []edge{
		{Married, "X", "s1", true},
		{Married, "X", "s2", true},
		{Child, "X", "kid", false},
		{Child, "s1", "kid", false},
	}
	if diff := cmp.Diff(want, edges(c.Connectors())); diff != "" {
		t.Errorf("connectors mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerNilPrimary(t *testing.T) {
	tr := newTree(t)
	p := tr.person("P", 1980)

	c := NewController(testOptions(), nil)
	c.BeginPopulate(p)
	c.BeginPopulate(nil)

	if len(c.Rows()) != 0 || c.NodeCount() != 0 || len(c.Connectors()) != 0 {
		t.Errorf("nil primary should clear the layout, got %v", rowIDs(c.Rows()))
	}
	if c.Bounds() != (Rect{}) {
		t.Errorf("Bounds = %+v, want empty", c.Bounds())
	}
	if c.MinimumYear() != testNow.Year() {
		t.Errorf("MinimumYear = %d, want %d", c.MinimumYear(), testNow.Year())
	}
}

func TestControllerRowOrder(t *testing.T) {
	tr := newTree(t)
	gg := tr.person("gg", 1890)
	g := tr.person("g", 1920)
	p := tr.person("p", 1950)
	me := tr.person("me", 1980)
	c := tr.person("c", 2005)
	cc := tr.person("cc", 2030)
	tr.parents(g, gg)
	tr.parents(p, g)
	tr.parents(me, p)
	tr.parents(c, me)
	tr.parents(cc, c)

	ctl := NewController(testOptions(), nil)
	ctl.BeginPopulate(me)

	want := [][]string{{"gg"}, {"g"}, {"p"}, {"me"}, {"c"}, {"cc"}}
	if diff := cmp.Diff(want, rowIDs(ctl.Rows())); diff != "" {
		t.Errorf("row order mismatch (-want +got):\n%s", diff)
	}

	e := ctl.Engine()
	scales := []float64{e.Node(gg).Scale(), e.Node(g).Scale(), e.Node(p).Scale(), e.Node(me).Scale()}
	for i := 1; i < len(scales); i++ {
		if scales[i-1] >= scales[i] {
			t.Errorf("ancestor scales should shrink with distance: %v", scales)
		}
	}
	if e.Node(cc).Scale() != DefaultChildMultiplier {
		t.Errorf("child scale = %v, want %v", e.Node(cc).Scale(), DefaultChildMultiplier)
	}

	bounds := ctl.Bounds()
	var prevBottom float64
	for i, r := range ctl.Rows() {
		b := r.Bounds()
		if i > 0 && b.Top() < prevBottom {
			t.Errorf("row %d overlaps the row above", i)
		}
		prevBottom = b.Bottom()
	}
	if bounds.Height != prevBottom {
		t.Errorf("bounds height = %v, want %v", bounds.Height, prevBottom)
	}
}

func TestControllerBudget(t *testing.T) {
	t.Run("chain stops at budget", func(t *testing.T) {
		tr := newTree(t)
		prev := tr.person("d0", 1900)
		root := prev
		for i := 1; i < 200; i++ {
			next := tr.person(fmt.Sprintf("d%d", i), 1900+i)
			tr.parents(next, prev)
			prev = next
		}

		c := NewController(testOptions(), nil)
		c.BeginPopulate(root)
		if c.NodeCount() != DefaultMaxNodes {
			t.Errorf("NodeCount = %d, want %d", c.NodeCount(), DefaultMaxNodes)
		}
	})

	t.Run("last generation may overshoot", func(t *testing.T) {
		tr := newTree(t)
		root := tr.person("root", 1900)
		for i := range 60 {
			kid := tr.person(fmt.Sprintf("k%d", i), 1930)
			tr.parents(kid, root)
		}

		c := NewController(testOptions(), nil)
		c.BeginPopulate(root)
		if c.NodeCount() != 61 {
			t.Errorf("NodeCount = %d, want 61", c.NodeCount())
		}
		if len(c.Rows()) != 2 {
			t.Errorf("rows = %d, want 2", len(c.Rows()))
		}
	})

	t.Run("custom budget", func(t *testing.T) {
		tr := newTree(t)
		prev := tr.person("d0", 1900)
		root := prev
		for i := 1; i < 20; i++ {
			next := tr.person(fmt.Sprintf("d%d", i), 1900+i)
			tr.parents(next, prev)
			prev = next
		}

		opts := testOptions()
		opts.MaxNodes = 5
		c := NewController(opts, nil)
		c.BeginPopulate(root)
		if c.NodeCount() != 5 {
			t.Errorf("NodeCount = %d, want 5", c.NodeCount())
		}
	})
}

func TestControllerCyclesTerminate(t *testing.T) {
	tr := newTree(t)
	a := tr.person("a", 1900)
	b := tr.person("b", 1920)
	c := tr.person("c", 1940)
	d := tr.person("d", 1941)
	// a -> b -> c -> a, plus c married to a and a sibling loop
	tr.parents(b, a)
	tr.parents(c, b)
	tr.parents(a, c)
	tr.marry(c, a, family.Marriage{})
	tr.sibling(c, d)
	tr.parents(d, b)

	ctl := NewController(testOptions(), nil)
	ctl.BeginPopulate(b)

	seen := map[*family.Person]int{}
	for _, r := range ctl.Rows() {
		for _, n := range r.Nodes() {
			seen[n.Person()]++
		}
	}
	for p, n := range seen {
		if n != 1 {
			t.Errorf("%s placed %d times", p.ID, n)
		}
	}
	if len(seen) != ctl.NodeCount() || ctl.NodeCount() > tr.g.Len() {
		t.Errorf("placed %d distinct people, lookup has %d, graph has %d", len(seen), ctl.NodeCount(), tr.g.Len())
	}

	e := ctl.Engine()
	for _, conn := range ctl.Connectors() {
		if e.Placement(conn.Start().Node.Person()) != conn.Start() || e.Placement(conn.End().Node.Person()) != conn.End() {
			t.Error("connector endpoint is not the placed node")
		}
	}
}

func TestControllerPopulate(t *testing.T) {
	tr := newTree(t)
	a := tr.person("a", 1950)
	b := tr.person("b", 1975)
	s := tr.person("s", 1952)
	tr.parents(b, a)
	tr.marry(a, s, family.Marriage{})

	c := NewController(testOptions(), nil)

	var populated []Populate
	updates := 0
	c.OnLayoutPopulated(func(p Populate) { populated = append(populated, p) })
	c.OnLayoutUpdated(func() { updates++ })

	first := c.BeginPopulate(a)
	if first.PreviousOK {
		t.Error("first populate has no previous primary")
	}
	if c.State() != Populating {
		t.Fatalf("State = %v, want populating", c.State())
	}
	for _, pl := range c.Engine().Placements() {
		if hidden := pl.Node.Hidden(); hidden == (pl.Node.Person() == a) {
			t.Errorf("%s hidden = %v", pl.Node.Person().ID, hidden)
		}
	}
	prevBounds, _ := c.Engine().NodeBounds(a)

	second := c.BeginPopulate(b)
	if !second.PreviousOK || second.Previous != prevBounds {
		t.Errorf("Previous = (%+v, %v), want (%+v, true)", second.Previous, second.PreviousOK, prevBounds)
	}
	if second.Token == first.Token {
		t.Fatal("tokens must differ")
	}

	if c.CommitPopulate(first) {
		t.Error("stale ticket must be ignored")
	}
	if c.State() != Populating {
		t.Error("stale commit must not change state")
	}
	if !c.CommitPopulate(second) {
		t.Error("current ticket should commit")
	}
	if c.State() != Idle {
		t.Errorf("State = %v, want idle", c.State())
	}
	for _, pl := range c.Engine().Placements() {
		if pl.Node.Hidden() {
			t.Errorf("%s still hidden after commit", pl.Node.Person().ID)
		}
	}
	if c.CommitPopulate(second) {
		t.Error("committing twice should fail")
	}

	if len(populated) != 2 || populated[1].Primary != b {
		t.Errorf("populated notifications = %d", len(populated))
	}
	if updates != 3 {
		t.Errorf("layout updated %d times, want 3", updates)
	}
}

func TestControllerContentChanged(t *testing.T) {
	tr := newTree(t)
	a := tr.person("a", 1950)

	c := NewController(testOptions(), nil)
	ticket := c.BeginPopulate(a)

	kid := tr.person("kid", 1980)
	tr.parents(kid, a)
	if c.ContentChanged(kid) {
		t.Error("content change while populating must be ignored")
	}
	if c.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1 (no rebuild)", c.NodeCount())
	}
	if c.TakeNewPerson() != nil {
		t.Error("ignored change must not record a new person")
	}

	c.CommitPopulate(ticket)
	if !c.ContentChanged(kid) {
		t.Fatal("content change while idle should rebuild")
	}
	if c.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", c.NodeCount())
	}
	if c.State() != Idle {
		t.Error("content change must not start a populate")
	}
	for _, pl := range c.Engine().Placements() {
		if pl.Node.Hidden() {
			t.Error("content rebuild must not hide nodes")
		}
	}
	if c.TakeNewPerson() != kid {
		t.Error("TakeNewPerson should return the added person")
	}
	if c.TakeNewPerson() != nil {
		t.Error("TakeNewPerson should clear after the first call")
	}
}

func TestControllerApply(t *testing.T) {
	tr := newTree(t)
	a := tr.person("a", 1950)
	b := tr.person("b", 1960)

	c := NewController(testOptions(), nil)
	if _, ok := c.Apply(); ok {
		t.Error("Apply with nothing pending should not populate")
	}

	c.OnPrimaryChanged(a)
	c.OnPrimaryChanged(b)
	if !c.Pending() {
		t.Fatal("changes should be pending")
	}
	if c.NodeCount() != 0 {
		t.Error("changes must not run before Apply")
	}

	ticket, ok := c.Apply()
	if !ok || ticket.Primary != b || c.Primary() != b {
		t.Fatalf("Apply = (%+v, %v), want populate of b", ticket, ok)
	}
	if c.Pending() {
		t.Error("Apply should drain pending changes")
	}

	c.OnContentChanged(a)
	c.Apply()
	if c.TakeNewPerson() != nil {
		t.Error("content change during populate should be dropped")
	}

	c.CommitPopulate(ticket)
	c.OnContentChanged(a)
	if _, ok := c.Apply(); ok {
		t.Error("content change should not populate")
	}
	if c.TakeNewPerson() != a {
		t.Error("content change while idle should record the new person")
	}
}

func TestControllerSetDisplayYear(t *testing.T) {
	tr := newTree(t)
	a := tr.person("a", 1950)
	b := tr.person("b", 1952)
	k := tr.person("k", 1980)
	tr.marry(a, b, family.Marriage{Married: family.Year(1975)})
	tr.parents(k, a, b)

	c := NewController(testOptions(), nil)
	c.CommitPopulate(c.BeginPopulate(a))

	changed := c.SetDisplayYear(1974)
	if len(changed) != 3 {
		t.Errorf("changed = %v, want 3 connectors", edges(changed))
	}
	if again := c.SetDisplayYear(1974); len(again) != 0 {
		t.Errorf("repeating the year changed %d connectors", len(again))
	}
	if !c.Engine().Node(k).Filtered() {
		t.Error("k should be filtered at 1974")
	}

	// the year survives a rebuild
	c.ContentChanged(nil)
	if c.DisplayYear() != 1974 || !c.Engine().Node(k).Filtered() {
		t.Errorf("DisplayYear = %d after rebuild, want 1974", c.DisplayYear())
	}
	if c.MinimumYear() != 1950 {
		t.Errorf("MinimumYear = %d, want 1950", c.MinimumYear())
	}
}

type recordingHooks struct {
	observability.NoopDiagramHooks
	mu      sync.Mutex
	layouts int
	begins  int
	commits []bool
	ignored int
}

func (h *recordingHooks) OnLayout(string, int, int, int, time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.layouts++
}

func (h *recordingHooks) OnPopulateBegin(string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.begins++
}

func (h *recordingHooks) OnPopulateCommit(_ string, applied bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commits = append(h.commits, applied)
}

func (h *recordingHooks) OnContentIgnored() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ignored++
}

func TestControllerHooksAndLogging(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetDiagramHooks(hooks)
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	tr := newTree(t)
	a := tr.person("a", 1950)
	c := NewController(testOptions(), logger)

	old := c.BeginPopulate(a)
	cur := c.BeginPopulate(a)
	c.ContentChanged(nil)
	c.CommitPopulate(old)
	c.CommitPopulate(cur)

	if hooks.layouts != 2 || hooks.begins != 2 || hooks.ignored != 1 {
		t.Errorf("hooks = layouts %d, begins %d, ignored %d", hooks.layouts, hooks.begins, hooks.ignored)
	}
	if diff := cmp.Diff([]bool{false, true}, hooks.commits); diff != "" {
		t.Errorf("commits mismatch (-want +got):\n%s", diff)
	}

	out := buf.String()
	for _, want := range []string{"layout", "primary=a", "populate begin", "stale populate ignored"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
