// Package symtab merges every file of a compilation unit into one global
// symbol table and resolves all cross-references against it.
//
// Linking is two unit-wide passes, not per file. The collection pass
// registers every declaration across all files; because the table is
// complete before resolution starts, forward references succeed. The
// resolution pass then annotates every reference in the syntax trees with
// resolved-or-nil plus a diagnostic, and never aborts early: an unresolved
// reference costs one diagnostic and everything else still resolves.
//
// A Table is built once per compilation, is immutable after Link returns,
// and is never shared between compilations.
package symtab
