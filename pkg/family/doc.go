// Package family provides the in-memory person graph that kintower lays out.
//
// # Overview
//
// A [Graph] holds [Person] values and the typed relationships between them:
// parents, children, siblings and spouses. Spouse relationships carry a
// modifier ([Current] or [Former]) and the marriage and divorce dates used by
// the diagram's year filter.
//
// Relationship edits on a [Graph] always write both directions, so if A has
// child B then B has parent A:
//
//	g := family.New()
//	ada := &family.Person{ID: "ada", FirstName: "Ada"}
//	byron := &family.Person{ID: "byron", FirstName: "George"}
//	_ = g.AddPerson(ada)
//	_ = g.AddPerson(byron)
//	_ = g.AddParent(ada, byron)
//
// Readers such as the diagram engine only depend on the accessor methods
// ([Person.Parents], [Person.Children], [Person.Siblings],
// [Person.HalfSiblings], [Person.Spouses], [Person.PreviousSpouses]) and
// tolerate one-sided edges created with [Person.AddRelationship].
//
// # Dates
//
// Birth, death, marriage and divorce dates are partial: a [Date] with a zero
// Year is unknown, and Month or Day may be zero when only the year or month
// is recorded. [ParseDate] accepts "YYYY", "YYYY-MM" and "YYYY-MM-DD".
//
// # Concurrency
//
// Graphs are not safe for concurrent use. The diagram engine assumes a single
// writer that does not edit the graph while a layout pass is running.
package family
