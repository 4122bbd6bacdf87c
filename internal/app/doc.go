// Package app contains the application lifecycle around the compiler: it
// configures logging, runs a compilation, renders diagnostics and writes
// the output artifacts. It is decoupled from any specific entrypoint like
// the CLI.
package app
