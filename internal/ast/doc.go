// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package ast is the per-file syntax tree handed to the compiler by the
// surface front end. It is the contract between parsing and everything
// downstream: the dependency graph walks Imports, the linker registers and
// resolves the declaration lists, the validator and emitter read the rest.
//
// Trees are produced once per file and are read-only afterwards, with one
// deliberate exception: reference resolution annotates Ref and JumpRef nodes
// in place with a Resolved record ("resolved-or-nil plus a diagnostic").
// Later phases switch on those annotations and never re-derive meaning from
// raw source text.
package ast
