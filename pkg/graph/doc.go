// Package graph provides the serialization formats for family graphs and
// diagram layouts.
//
// This package sits at the boundary between the in-memory model and files,
// the HTTP API and the cache:
//
//   - [File]: interchange format for a family.Graph, read from JSON or TOML
//   - [Layout]: one layout pass of a diagram.Controller, as JSON
//
// # Family Files
//
// A family file lists people and the relationships between them:
//
//	{
//	  "primary": "ada",
//	  "people": [
//	    {"id": "ada", "first_name": "Ada", "birth": "1815-12-10", "death": "1852"},
//	    {"id": "william", "first_name": "William", "birth": "1805"}
//	  ],
//	  "relationships": [
//	    {"type": "spouse", "from": "ada", "to": "william", "married": "1835"}
//	  ]
//	}
//
// Relationship types are "parent" (from is the parent, to the child),
// "spouse" (with optional "former", "married" and "divorced") and "sibling".
// The same keys are used in TOML with [[people]] and [[relationships]]
// tables.
//
//	g, _ := graph.ReadFamilyFile("family.toml")  // File → family.Graph
//	graph.WriteFamilyFile(g, "family.json")      // family.Graph → File
//
// # Layouts
//
//	layout := graph.FromController(c)
//	data, _ := graph.MarshalLayout(layout)
//	back, _ := graph.UnmarshalLayout(data)
//
// # Concurrency
//
// All functions are safe for concurrent use on distinct values.
package graph
