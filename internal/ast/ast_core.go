// Package ast defines the Ace abstract syntax tree.
//
// Per "Design Notes — Polymorphic AST", the canonical
// implementation would use a sealed tagged union; Go's nearest
// equivalent is an interface with an unexported marker method plus a
// type switch in each visitor, which is what this package does. Shared
// fields (source location via the defining token, access mode) are
// embedded rather than duplicated per node.
package ast

import (
	"github.com/ajmd17/ace-lang-sub002/internal/token"
	"github.com/ajmd17/ace-lang-sub002/internal/types"
)

// TokenProvider is implemented by every node for diagnostic
// attribution.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for every AST node.
type Node interface {
	TokenProvider
	TokenLiteral() string
	Accept(v Visitor)
}

// Statement is a Node that appears in statement position.
type Statement interface {
	Node
	statementNode()
}

// AccessMode distinguishes an lvalue use (store) from an rvalue use
// (load) of an expression; every node carries an access-mode flag.
type AccessMode int

const (
	AccessLoad AccessMode = iota
	AccessStore
)

// TriState is the three-valued compile-time truth value of an
// expression: true, false, or indeterminate.
type TriState int

const (
	TriIndeterminate TriState = iota
	TriTrue
	TriFalse
)

// Expression is a Node that appears in expression position. Beyond the
// Node contract it carries the compile-time analysis results
// describes: three-valued truthiness, a side-effect flag, its resolved
// type, an access mode, and an optional constant-folding target.
type Expression interface {
	Node
	expressionNode()

	// IsTrue returns the expression's compile-time truth value. Valid
	// only after semantic analysis; before that it is TriIndeterminate.
	IsTrue() TriState
	SetIsTrue(TriState)

	// MayHaveSideEffects reports whether evaluating this expression can
	// observably affect program state (used by the emitter's
	// register-allocation strategy).
	MayHaveSideEffects() bool
	SetMayHaveSideEffects(bool)

	// ExprType is the expression's resolved type descriptor, set by the
	// analyzer.
	ExprType() types.Type
	SetExprType(types.Type)

	// ValueOf returns an equivalent compile-time constant expression if
	// one exists (constant folding), or nil.
	ValueOf() Expression
	SetValueOf(Expression)

	// Access reports whether this expression is being read (load) or
	// assigned to (store).
	Access() AccessMode
	SetAccess(AccessMode)
}

// exprBase is embedded by every concrete expression node to supply the
// Expression contract's analysis-result storage uniformly.
type exprBase struct {
	isTrue     TriState
	sideEffect bool
	typ        types.Type
	valueOf    Expression
	access     AccessMode
}

func (e *exprBase) expressionNode()                {}
func (e *exprBase) IsTrue() TriState                { return e.isTrue }
func (e *exprBase) SetIsTrue(t TriState)            { e.isTrue = t }
func (e *exprBase) MayHaveSideEffects() bool        { return e.sideEffect }
func (e *exprBase) SetMayHaveSideEffects(b bool)    { e.sideEffect = b }
func (e *exprBase) ExprType() types.Type            { return e.typ }
func (e *exprBase) SetExprType(t types.Type)        { e.typ = t }
func (e *exprBase) ValueOf() Expression             { return e.valueOf }
func (e *exprBase) SetValueOf(v Expression)         { e.valueOf = v }
func (e *exprBase) Access() AccessMode              { return e.access }
func (e *exprBase) SetAccess(m AccessMode)           { e.access = m }

// Program is the root node produced by the parser for one source file.
type Program struct {
	File       string
	Module     *ModuleDeclaration // nil if this file extends the global module
	Imports    []*ImportStatement
	Statements []Statement
}

func (p *Program) Accept(v Visitor) { v.VisitProgram(p) }
func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}
func (p *Program) GetToken() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].GetToken()
	}
	return token.Token{File: p.File}
}
