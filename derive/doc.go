// Package derive is the traversal engine shared by every artifact family.
//
// An Engine classifies a type descriptor into a shape (see Classify), derives
// the artifacts of its components recursively and hands them to the family's
// Combinators to assemble. Generic definitions are entered with an explicit,
// immutable Bindings scope. Results are memoized per (type, bindings) Key.
//
// Self-referential definitions are handled with placeholder cells: a Cell is
// installed in the memo table before a type's components are derived, every
// recursive reference embeds the cell through Combinators.Deferred, and the
// cell is filled with the finished artifact once it exists. No artifact
// returned by Derive can reach an unfilled cell.
package derive
