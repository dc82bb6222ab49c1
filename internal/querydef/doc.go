// Package querydef defines the passive data model for a single SQL statement.
//
// A Definition describes the shape of one statement (select, insert, update,
// upsert or delete) as plain data: a source, an alias, column mappings,
// predicates, grouping, ordering, pagination, pre-rendered joins and an OUTPUT
// list. It carries no behavior beyond copying and introspection.
//
// LIFECYCLE:
//
// Definitions are never mutated after they are handed out. Builders derive a
// new Definition from an old one with Clone and apply exactly one change:
//
//	next := prev.Clone()
//	next.Where = append(next.Where, "U.active = 1")
//
// Clone copies every slice and pointer so that sibling definitions derived
// from the same parent never observe each other.
//
// FIELD PRESENCE:
//
// Which fields are legal depends on Kind, but that is checked only when a
// Definition is compiled (see package querysql). Populated reports the fields
// that carry a value, in declaration order:
//
//	from, as, select, where, distinct, top, groupBy, join, limit, orderBy,
//	update, insert, upsert, output
//
// COLUMN ORDER:
//
// Column mappings are ordered slices, not maps. INSERT column lists and VALUES
// lists must line up positionally, and rendered text is compared literally,
// so iteration order is part of the data.
package querydef
