// Package sema implements Ace's semantic analyzer: scope
// and name resolution, structural/nominal type checking, generic
// instantiation, constant folding, directive handling, and the
// for-loop-to-call_action lowering the emitter depends on.
package sema

import (
	"github.com/ajmd17/ace-lang-sub002/internal/ast"
	"github.com/ajmd17/ace-lang-sub002/internal/diagnostics"
	"github.com/ajmd17/ace-lang-sub002/internal/types"
)

// CompilationUnit is the analyzer's output: a resolved scope tree, the
// type registry built up while analyzing, and the set of diagnostics
// produced along the way.
type CompilationUnit struct {
	Program  *ast.Program
	Registry *types.Registry
	Root     *Scope

	// Imports lists the resolved module/file imports, deduplicated by
	// canonical path: importing the same module twice is a no-op.
	Imports []string

	// Directives records every `use name […]` directive seen at any
	// scope, in source order, for the emitter/runtime to act on
	// (library search paths, strict mode, …).
	Directives []*ast.DirectiveStatement

	Strict bool

	// Lowered maps a statement the analyzer rewrote (currently only
	// *ast.ForStatement, call_action desugaring) to its
	// replacement expression. The emitter checks this map before
	// walking a node's own children.
	Lowered map[ast.Statement]ast.Expression

	Errors diagnostics.List
}

func NewCompilationUnit(program *ast.Program) *CompilationUnit {
	return &CompilationUnit{
		Program:  program,
		Registry: types.NewRegistry(),
		Lowered:  make(map[ast.Statement]ast.Expression),
	}
}

func (u *CompilationUnit) recordLowering(stmt ast.Statement, expr ast.Expression) {
	u.Lowered[stmt] = expr
}
