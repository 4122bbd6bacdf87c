// Package depgraph builds the import graph of a compilation unit and fixes
// the deterministic topological file order every later stage depends on.
//
// Imports are explicit relative paths and non-transitive: a file sees only
// what it directly imports. Cycles are reported with their complete path,
// never silently broken. File stems are namespace keys downstream, so a stem
// collision anywhere in the unit is an error.
package depgraph
