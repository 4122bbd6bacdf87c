// Package emitter lowers a linked symbol table into the compiled world
// document. Emission is deterministic: it walks the table's namespaces in
// insertion order and produces fixed-shape records, so recompiling
// identical sources yields byte-identical output.
//
// The emitter assumes a table that survived validation with zero errors;
// the gate lives in the compiler, not here. An unresolved reference
// reaching this package is a compiler defect: the construct is skipped and
// a diagnostic recorded, never a panic.
package emitter
