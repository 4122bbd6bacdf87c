// Package document defines the compiled world document: the flat,
// reference-closed output shape consumed by execution engines.
//
// Every collection is a slice in emission order, never a map, so encoding
// the same document twice yields byte-identical output. Conditions appear
// as canonical strings; the structural AND/OR distinction survives in
// ConditionSet's JSON shape.
package document
