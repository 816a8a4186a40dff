package ast

import "github.com/ajmd17/ace-lang-sub002/internal/token"

// ModuleDeclaration is the optional `module Name` header of a file
//.
type ModuleDeclaration struct {
	Token token.Token
	Name  string
}

func (n *ModuleDeclaration) Accept(v Visitor)      { v.VisitModuleDeclaration(n) }
func (n *ModuleDeclaration) statementNode()        {}
func (n *ModuleDeclaration) TokenLiteral() string  { return n.Token.Lexeme }
func (n *ModuleDeclaration) GetToken() token.Token { return n.Token }

// ImportStatement is `import "path"` or `import Module.Sub`.
type ImportStatement struct {
	Token      token.Token
	Path       string // relative file path form
	ModulePath []string // dotted module-reference form
}

func (n *ImportStatement) Accept(v Visitor)      { v.VisitImportStatement(n) }
func (n *ImportStatement) statementNode()        {}
func (n *ImportStatement) TokenLiteral() string  { return n.Token.Lexeme }
func (n *ImportStatement) GetToken() token.Token { return n.Token }

// DirectiveStatement is `use directive_name [ arg, … ]`.
type DirectiveStatement struct {
	Token token.Token
	Name  string
	Args  []Expression
}

func (n *DirectiveStatement) Accept(v Visitor)      { v.VisitDirectiveStatement(n) }
func (n *DirectiveStatement) statementNode()        {}
func (n *DirectiveStatement) TokenLiteral() string  { return n.Token.Lexeme }
func (n *DirectiveStatement) GetToken() token.Token { return n.Token }

// DeclKind distinguishes the four variable-declaration keywords.
type DeclKind int

const (
	DeclLet DeclKind = iota
	DeclConst
	DeclRef
	DeclVal
)

// VariableDeclaration covers `let`, `const`, `ref`, `val`.
type VariableDeclaration struct {
	Token      token.Token
	Kind       DeclKind
	Name       string
	Prototype  Expression // optional type-valued expression before `=`
	Value      Expression
}

func (n *VariableDeclaration) Accept(v Visitor)      { v.VisitVariableDeclaration(n) }
func (n *VariableDeclaration) statementNode()        {}
func (n *VariableDeclaration) TokenLiteral() string  { return n.Token.Lexeme }
func (n *VariableDeclaration) GetToken() token.Token { return n.Token }

// AliasDeclaration is `alias Name = aliasee`: it registers an
// identifier that shares the aliasee's storage index and flags.
type AliasDeclaration struct {
	Token   token.Token
	Name    string
	Aliasee Expression
}

func (n *AliasDeclaration) Accept(v Visitor)      { v.VisitAliasDeclaration(n) }
func (n *AliasDeclaration) statementNode()        {}
func (n *AliasDeclaration) TokenLiteral() string  { return n.Token.Lexeme }
func (n *AliasDeclaration) GetToken() token.Token { return n.Token }

// TypeMemberNode is a single member declaration inside `type Name { … }`.
type TypeMemberNode struct {
	Token   token.Token
	Name    string
	Default Expression // optional
}

// TypeDeclaration is `type Name { members… }`. Note that the surface
// syntax is shared with TypeExpression, since a type expression is
// itself an expression — TypeDeclaration is the statement-level sugar
// `type Name { … }` that the parser desugars to `let Name = type { …
// }`-equivalent handling in the analyzer.
type TypeDeclaration struct {
	Token   token.Token
	Name    string
	Base    Expression // optional base-type expression
	Members []*TypeMemberNode
}

func (n *TypeDeclaration) Accept(v Visitor)      { v.VisitTypeDeclaration(n) }
func (n *TypeDeclaration) statementNode()        {}
func (n *TypeDeclaration) TokenLiteral() string  { return n.Token.Lexeme }
func (n *TypeDeclaration) GetToken() token.Token { return n.Token }

// FunctionDeclaration is `func name(params) { body }` at statement
// level; it wraps the underlying FunctionExpression so the parser can
// treat a declared and an anonymous function uniformly at emit time.
type FunctionDeclaration struct {
	Token token.Token
	Name  string
	Fn    *FunctionExpression
}

func (n *FunctionDeclaration) Accept(v Visitor)      { v.VisitFunctionDeclaration(n) }
func (n *FunctionDeclaration) statementNode()        {}
func (n *FunctionDeclaration) TokenLiteral() string  { return n.Token.Lexeme }
func (n *FunctionDeclaration) GetToken() token.Token { return n.Token }

// BlockStatement is a brace-delimited statement list.
type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

func (n *BlockStatement) Accept(v Visitor)      { v.VisitBlockStatement(n) }
func (n *BlockStatement) statementNode()        {}
func (n *BlockStatement) TokenLiteral() string  { return n.Token.Lexeme }
func (n *BlockStatement) GetToken() token.Token { return n.Token }

// IfStatement is `if cond { … } else { … }`.
type IfStatement struct {
	Token     token.Token
	Condition Expression
	Then      *BlockStatement
	Else      Statement // *BlockStatement or *IfStatement, nil if absent
}

func (n *IfStatement) Accept(v Visitor)      { v.VisitIfStatement(n) }
func (n *IfStatement) statementNode()        {}
func (n *IfStatement) TokenLiteral() string  { return n.Token.Lexeme }
func (n *IfStatement) GetToken() token.Token { return n.Token }

// WhileStatement is `while cond { … }`.
type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStatement
}

func (n *WhileStatement) Accept(v Visitor)      { v.VisitWhileStatement(n) }
func (n *WhileStatement) statementNode()        {}
func (n *WhileStatement) TokenLiteral() string  { return n.Token.Lexeme }
func (n *WhileStatement) GetToken() token.Token { return n.Token }

// ForStatement takes a parameter list, an iteree expression, and a
// block; the parser does not distinguish for-each from numeric-for —
// both lower in the analyzer to a call to `events::call_action` with a
// synthesized closure.
type ForStatement struct {
	Token   token.Token
	Params  []string
	Iteree  Expression
	Body    *BlockStatement
}

func (n *ForStatement) Accept(v Visitor)      { v.VisitForStatement(n) }
func (n *ForStatement) statementNode()        {}
func (n *ForStatement) TokenLiteral() string  { return n.Token.Lexeme }
func (n *ForStatement) GetToken() token.Token { return n.Token }

// ReturnStatement is `return [value]`.
type ReturnStatement struct {
	Token token.Token
	Value Expression // nil for a bare `return`
}

func (n *ReturnStatement) Accept(v Visitor)      { v.VisitReturnStatement(n) }
func (n *ReturnStatement) statementNode()        {}
func (n *ReturnStatement) TokenLiteral() string  { return n.Token.Lexeme }
func (n *ReturnStatement) GetToken() token.Token { return n.Token }

// YieldStatement is `yield [value]`, valid only inside a generator
// context.
type YieldStatement struct {
	Token token.Token
	Value Expression
}

func (n *YieldStatement) Accept(v Visitor)      { v.VisitYieldStatement(n) }
func (n *YieldStatement) statementNode()        {}
func (n *YieldStatement) TokenLiteral() string  { return n.Token.Lexeme }
func (n *YieldStatement) GetToken() token.Token { return n.Token }

// ThrowStatement is `throw value`.
type ThrowStatement struct {
	Token token.Token
	Value Expression
}

func (n *ThrowStatement) Accept(v Visitor)      { v.VisitThrowStatement(n) }
func (n *ThrowStatement) statementNode()        {}
func (n *ThrowStatement) TokenLiteral() string  { return n.Token.Lexeme }
func (n *ThrowStatement) GetToken() token.Token { return n.Token }

// TryCatchStatement is `try { A } catch { B }`.
type TryCatchStatement struct {
	Token   token.Token
	Try     *BlockStatement
	CatchID string // optional bound exception identifier
	Catch   *BlockStatement
}

func (n *TryCatchStatement) Accept(v Visitor)      { v.VisitTryCatchStatement(n) }
func (n *TryCatchStatement) statementNode()        {}
func (n *TryCatchStatement) TokenLiteral() string  { return n.Token.Lexeme }
func (n *TryCatchStatement) GetToken() token.Token { return n.Token }

// PrintStatement is `print expr`.
type PrintStatement struct {
	Token token.Token
	Value Expression
}

func (n *PrintStatement) Accept(v Visitor)      { v.VisitPrintStatement(n) }
func (n *PrintStatement) statementNode()        {}
func (n *PrintStatement) TokenLiteral() string  { return n.Token.Lexeme }
func (n *PrintStatement) GetToken() token.Token { return n.Token }

// BreakStatement is `break`.
type BreakStatement struct{ Token token.Token }

func (n *BreakStatement) Accept(v Visitor)      { v.VisitBreakStatement(n) }
func (n *BreakStatement) statementNode()        {}
func (n *BreakStatement) TokenLiteral() string  { return n.Token.Lexeme }
func (n *BreakStatement) GetToken() token.Token { return n.Token }

// ContinueStatement is `continue`.
type ContinueStatement struct{ Token token.Token }

func (n *ContinueStatement) Accept(v Visitor)      { v.VisitContinueStatement(n) }
func (n *ContinueStatement) statementNode()        {}
func (n *ContinueStatement) TokenLiteral() string  { return n.Token.Lexeme }
func (n *ContinueStatement) GetToken() token.Token { return n.Token }

// ExpressionStatement wraps an expression used for its side effects.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (n *ExpressionStatement) Accept(v Visitor)      { v.VisitExpressionStatement(n) }
func (n *ExpressionStatement) statementNode()        {}
func (n *ExpressionStatement) TokenLiteral() string  { return n.Token.Lexeme }
func (n *ExpressionStatement) GetToken() token.Token { return n.Token }
