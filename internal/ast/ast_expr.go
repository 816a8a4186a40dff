package ast

import (
	"math/big"

	"github.com/ajmd17/ace-lang-sub002/internal/token"
)

// Identifier is a name reference. The fields beyond Name are filled in
// by the analyzer's name resolution.
type Identifier struct {
	exprBase
	Token token.Token
	Name  string

	// Resolution results, set by sema.
	ScopeIndex        int
	StackLocation     int
	UseCount          int
	IsConst           bool
	IsAlias           bool
	DeclaredInFunction bool
	IsGenericPlaceholder bool
}

func (n *Identifier) Accept(v Visitor)      { v.VisitIdentifier(n) }
func (n *Identifier) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Identifier) GetToken() token.Token { return n.Token }

// IntegerLiteral is a decimal or `0x…` hex integer constant.
type IntegerLiteral struct {
	exprBase
	Token token.Token
	Value *big.Int
}

func (n *IntegerLiteral) Accept(v Visitor)      { v.VisitIntegerLiteral(n) }
func (n *IntegerLiteral) TokenLiteral() string  { return n.Token.Lexeme }
func (n *IntegerLiteral) GetToken() token.Token { return n.Token }

// FloatLiteral is a float constant.
type FloatLiteral struct {
	exprBase
	Token token.Token
	Value float64
}

func (n *FloatLiteral) Accept(v Visitor)      { v.VisitFloatLiteral(n) }
func (n *FloatLiteral) TokenLiteral() string  { return n.Token.Lexeme }
func (n *FloatLiteral) GetToken() token.Token { return n.Token }

// StringLiteral is a double-quoted string with escapes already
// decoded by the lexer.
type StringLiteral struct {
	exprBase
	Token token.Token
	Value string
}

func (n *StringLiteral) Accept(v Visitor)      { v.VisitStringLiteral(n) }
func (n *StringLiteral) TokenLiteral() string  { return n.Token.Lexeme }
func (n *StringLiteral) GetToken() token.Token { return n.Token }

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	exprBase
	Token token.Token
	Value bool
}

func (n *BoolLiteral) Accept(v Visitor)      { v.VisitBoolLiteral(n) }
func (n *BoolLiteral) TokenLiteral() string  { return n.Token.Lexeme }
func (n *BoolLiteral) GetToken() token.Token { return n.Token }

// NilLiteral is `nil`/`null`.
type NilLiteral struct {
	exprBase
	Token token.Token
}

func (n *NilLiteral) Accept(v Visitor)      { v.VisitNilLiteral(n) }
func (n *NilLiteral) TokenLiteral() string  { return n.Token.Lexeme }
func (n *NilLiteral) GetToken() token.Token { return n.Token }

// ArrayExpression is `[e1, e2, …]`.
type ArrayExpression struct {
	exprBase
	Token    token.Token
	Elements []Expression
}

func (n *ArrayExpression) Accept(v Visitor)      { v.VisitArrayExpression(n) }
func (n *ArrayExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *ArrayExpression) GetToken() token.Token { return n.Token }

// ArrayAccess is `target[index]`.
type ArrayAccess struct {
	exprBase
	Token  token.Token
	Target Expression
	Index  Expression
}

func (n *ArrayAccess) Accept(v Visitor)      { v.VisitArrayAccess(n) }
func (n *ArrayAccess) TokenLiteral() string  { return n.Token.Lexeme }
func (n *ArrayAccess) GetToken() token.Token { return n.Token }

// MemberAccess is `target.member`.
type MemberAccess struct {
	exprBase
	Token  token.Token
	Target Expression
	Member string
}

func (n *MemberAccess) Accept(v Visitor)      { v.VisitMemberAccess(n) }
func (n *MemberAccess) TokenLiteral() string  { return n.Token.Lexeme }
func (n *MemberAccess) GetToken() token.Token { return n.Token }

// BinaryExpression is any binary operator application.
type BinaryExpression struct {
	exprBase
	Token    token.Token
	Operator token.Type
	Left     Expression
	Right    Expression
}

func (n *BinaryExpression) Accept(v Visitor)      { v.VisitBinaryExpression(n) }
func (n *BinaryExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *BinaryExpression) GetToken() token.Token { return n.Token }

// UnaryExpression is a prefix `! - + ~ ++ --` application.
type UnaryExpression struct {
	exprBase
	Token    token.Token
	Operator token.Type
	Operand  Expression
}

func (n *UnaryExpression) Accept(v Visitor)      { v.VisitUnaryExpression(n) }
func (n *UnaryExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *UnaryExpression) GetToken() token.Token { return n.Token }

// AssignmentExpression is `target op= value` for any of the nine
// assignment operators.
type AssignmentExpression struct {
	exprBase
	Token    token.Token
	Operator token.Type
	Target   Expression
	Value    Expression
}

func (n *AssignmentExpression) Accept(v Visitor)      { v.VisitAssignmentExpression(n) }
func (n *AssignmentExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *AssignmentExpression) GetToken() token.Token { return n.Token }

// CallExpression is `callee(args…)`.
type CallExpression struct {
	exprBase
	Token  token.Token
	Callee Expression
	Args   []Expression
}

func (n *CallExpression) Accept(v Visitor)      { v.VisitCallExpression(n) }
func (n *CallExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *CallExpression) GetToken() token.Token { return n.Token }

// Parameter is a single function parameter: name, optional type
// annotation, optional default value, and a variadic marker for a
// trailing `…name` parameter.
type Parameter struct {
	Token      token.Token
	Name       string
	TypeExpr   Expression
	Default    Expression
	IsVariadic bool
}

// FunctionExpression is `func(params) -> RetType { body }` (or with
// inferred return type). Closures captured from the analyzer's name
// resolution are recorded here for the emitter.
type FunctionExpression struct {
	exprBase
	Token         token.Token
	GenericParams []string // formal names from a `<T, U>` list before the parameter list, if any
	Params        []*Parameter
	ReturnType    Expression // optional explicit return-type expression
	Body          *BlockStatement
	IsAsync       bool
	IsPure        bool

	// Captures lists the names of outer identifiers this function
	// references across its own scope boundary, filled in by sema.
	Captures []string
}

func (n *FunctionExpression) Accept(v Visitor)      { v.VisitFunctionExpression(n) }
func (n *FunctionExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *FunctionExpression) GetToken() token.Token { return n.Token }

// BlockExpression is a block in expression position; its value is the
// value of its last expression statement, reified through a
// synthesized zero-argument closure.
type BlockExpression struct {
	exprBase
	Token token.Token
	Block *BlockStatement
}

func (n *BlockExpression) Accept(v Visitor)      { v.VisitBlockExpression(n) }
func (n *BlockExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *BlockExpression) GetToken() token.Token { return n.Token }

// NewExpression is `new TypeExpr(args…)`.
type NewExpression struct {
	exprBase
	Token    token.Token
	TypeExpr Expression
	Args     []Expression
}

func (n *NewExpression) Accept(v Visitor)      { v.VisitNewExpression(n) }
func (n *NewExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *NewExpression) GetToken() token.Token { return n.Token }

// TypeExpression has the same surface syntax as an object literal
// (`type Name { fields… }`) and is itself an expression that evaluates
// at compile time to a TypeObject.
type TypeExpression struct {
	exprBase
	Token   token.Token
	Name    string // may be empty for an anonymous type literal
	Base    Expression
	Members []*TypeMemberNode
}

func (n *TypeExpression) Accept(v Visitor)      { v.VisitTypeExpression(n) }
func (n *TypeExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *TypeExpression) GetToken() token.Token { return n.Token }

// TemplateExpression introduces formal generic parameters over an
// inner expression: `<T, U> expr`.
type TemplateExpression struct {
	exprBase
	Token      token.Token
	FormalArgs []string
	Inner      Expression
}

func (n *TemplateExpression) Accept(v Visitor)      { v.VisitTemplateExpression(n) }
func (n *TemplateExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *TemplateExpression) GetToken() token.Token { return n.Token }

// TemplateInstantiation is `expr<Args…>`, disambiguated from
// less-than by the parser's bounded look-ahead.
type TemplateInstantiation struct {
	exprBase
	Token    token.Token
	Template Expression
	Args     []Expression // type-valued expressions
}

func (n *TemplateInstantiation) Accept(v Visitor)      { v.VisitTemplateInstantiation(n) }
func (n *TemplateInstantiation) TokenLiteral() string  { return n.Token.Lexeme }
func (n *TemplateInstantiation) GetToken() token.Token { return n.Token }

// HasExpression is `target has "member"`.
type HasExpression struct {
	exprBase
	Token  token.Token
	Target Expression
	Member string
}

func (n *HasExpression) Accept(v Visitor)      { v.VisitHasExpression(n) }
func (n *HasExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *HasExpression) GetToken() token.Token { return n.Token }

// SelfExpression is the `self` receiver reference inside a method
// body.
type SelfExpression struct {
	exprBase
	Token token.Token
}

func (n *SelfExpression) Accept(v Visitor)      { v.VisitSelfExpression(n) }
func (n *SelfExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *SelfExpression) GetToken() token.Token { return n.Token }

// TypeOfExpression is `typeof expr`, evaluating at compile time to a
// TypeObject describing expr's static type.
type TypeOfExpression struct {
	exprBase
	Token  token.Token
	Target Expression
}

func (n *TypeOfExpression) Accept(v Visitor)      { v.VisitTypeOfExpression(n) }
func (n *TypeOfExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *TypeOfExpression) GetToken() token.Token { return n.Token }

// ValueOfExpression is `valueof expr`, forcing constant-folding
// evaluation at the point of use.
type ValueOfExpression struct {
	exprBase
	Token  token.Token
	Target Expression
}

func (n *ValueOfExpression) Accept(v Visitor)      { v.VisitValueOfExpression(n) }
func (n *ValueOfExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *ValueOfExpression) GetToken() token.Token { return n.Token }

// ActionExpression is the synthesized call to `events::call_action`
// that both numeric-for and for-each lower to: the parser does not
// distinguish for-each from numeric-for, so both lower in the
// analyzer to this call with a synthesized closure. It is produced by
// sema, never by the parser directly.
type ActionExpression struct {
	exprBase
	Token    token.Token
	Iteree   Expression
	Callback *FunctionExpression
}

func (n *ActionExpression) Accept(v Visitor)      { v.VisitActionExpression(n) }
func (n *ActionExpression) TokenLiteral() string  { return n.Token.Lexeme }
func (n *ActionExpression) GetToken() token.Token { return n.Token }
