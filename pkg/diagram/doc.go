// Package diagram lays out a family graph around a primary person.
//
// # Overview
//
// The [Engine] walks a [family.Person]'s relationships outward and builds a
// stack of [Row] values, one per generation. Each row holds [Group] values
// and each group holds [Node] values: a relative together with the spouses,
// siblings and half-siblings that hang off them. [Connector] values record
// the parent-child and marriage lines between placed nodes.
//
// Rows are ordered by generation, oldest first. Parent rows are prepended
// as the diagram grows upward and child rows are appended as it grows
// downward, so index order never depends on construction order.
//
// # Expansion
//
// A full pass places the primary row, then alternates one child generation
// and one parent generation until the number of placed people reaches
// [Options.MaxNodes] or neither direction yields anyone new. Every person is
// placed at most once per pass, which also guarantees termination on cyclic
// or malformed data. The budget is checked between generations, so the last
// generation added may take the count past the limit.
//
// Parent rows shrink by [Options.GenerationMultiplier] per generation;
// spouses and siblings are drawn at [Options.RelatedMultiplier] of their
// row's scale.
//
// # Filtering
//
// Nodes and connectors carry a display year. A node is filtered when the
// person was born after it; a marriage connector is also filtered when the
// marriage (or, for a former spouse, the divorce) happened after it.
// Changing the year never rebuilds the layout.
//
// # Controller
//
// [Controller] drives full passes for a host such as a terminal UI or an
// HTTP handler. Hosts report changes with [Controller.OnPrimaryChanged] and
// [Controller.OnContentChanged] and call [Controller.Apply] from their own
// loop. A primary change produces a [Populate] ticket: every node except the
// new primary starts hidden, and the host reveals them by passing the ticket
// to [Controller.CommitPopulate] once its own pause is over. Tickets from an
// earlier populate are ignored.
//
// Nothing in this package starts goroutines or is safe for concurrent use.
package diagram
