// Package compiler wires the compilation pipeline: dependency graph,
// linker, fact extraction, validation and emission. It is the only package
// consumers import; the phases underneath stay internal wiring details.
//
// Compilation never fails with an error for problems in the sources;
// those are diagnostics on the Result. The error-severity gate is
// all-or-nothing: any error anywhere means no document, while warnings
// never block.
package compiler
