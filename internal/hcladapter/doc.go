// Package hcladapter is the surface front end: it turns one .fable.hcl
// source file into an ast.File. It is the only package that touches HCL or
// the condition string micro-grammar; everything downstream consumes the
// syntax tree and never re-parses text.
//
// The adapter decodes with the low-level hcl.Body API rather than gohcl so
// that every declaration, nested choice and attribute keeps a precise source
// span for diagnostics.
package hcladapter
