// Package validator checks a linked world: the type and constraint system,
// the structural mutual exclusions, and a battery of independent
// static-analysis checks.
//
// The validator runs only after linking and reads nothing but the symbol
// table and the FactSet; no check re-walks source text. Each structural
// check is a separate function with no dependency on any other, so every
// one is independently testable. Error-severity findings gate document
// emission; warnings are informational.
package validator
