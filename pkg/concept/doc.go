// Package concept defines the concept-map graph types and their wire format.
//
// A concept map is produced by a language model as JSON:
//
//	{
//	  "topic": "Cálculo Diferencial",
//	  "nodes": [
//	    {"id": "c1", "label": "Cálculo Diferencial"},
//	    {"id": "c2", "label": "Derivada", "description": "Razón de cambio"}
//	  ],
//	  "edges": [
//	    {"from": "c1", "to": "c2", "relation": "estudia"}
//	  ]
//	}
//
// Generated content is frequently imperfect. The codec in this package is
// lenient: missing optional fields are fine, levels may arrive as floats, and
// edges may point at ids that do not exist. Validation of structure is left
// to the layout engine, which tolerates all of the above.
//
// # Documents
//
// The unit that gets persisted is a [Document]: the graph plus the depth it
// was generated for. [DecodeDocument] also accepts a bare graph, which is the
// legacy storage form.
//
// # Concurrency
//
// All functions are safe for concurrent use. Graph values are plain data and
// are never mutated by this package.
package concept
