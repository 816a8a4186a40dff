// Package parser implements Ace's recursive-descent, Pratt-style
// parser. It builds AST shape only — it does not construct
// or consult the type system; that is the semantic analyzer's job.
package parser

import (
	"github.com/ajmd17/ace-lang-sub002/internal/ast"
	"github.com/ajmd17/ace-lang-sub002/internal/diagnostics"
	"github.com/ajmd17/ace-lang-sub002/internal/token"
)

// precedence levels, higher binds tighter.
const (
	_ int = iota
	precAssign      // 1, right-associative
	precOr          // 2
	precAnd         // 3
	precBitOr       // 4
	precBitXor      // 5
	precBitAnd      // 6
	precEquality    // 7
	precRelational  // 8
	precShift       // 9
	precAdditive    // 10
	precMultiplicative // 11
	precUnary       // binds tightest; kept highest here
	precPostfix
)

var binaryPrecedence = map[token.Type]int{
	token.ASSIGN: precAssign, token.PLUS_ASSIGN: precAssign, token.MINUS_ASSIGN: precAssign,
	token.STAR_ASSIGN: precAssign, token.SLASH_ASSIGN: precAssign, token.PCT_ASSIGN: precAssign,
	token.XOR_ASSIGN: precAssign, token.AND_ASSIGN: precAssign, token.OR_ASSIGN: precAssign,

	token.OR_OR: precOr,
	token.AND_AND: precAnd,
	token.PIPE: precBitOr,
	token.CARET: precBitXor,
	token.AMP: precBitAnd,
	token.EQ: precEquality, token.NOT_EQ: precEquality,
	token.LT: precRelational, token.GT: precRelational, token.LE: precRelational, token.GE: precRelational,
	token.SHL: precShift, token.SHR: precShift,
	token.PLUS: precAdditive, token.MINUS: precAdditive,
	token.STAR: precMultiplicative, token.SLASH: precMultiplicative, token.PERCENT: precMultiplicative,
}

var assignOps = map[token.Type]bool{
	token.ASSIGN: true, token.PLUS_ASSIGN: true, token.MINUS_ASSIGN: true, token.STAR_ASSIGN: true,
	token.SLASH_ASSIGN: true, token.PCT_ASSIGN: true, token.XOR_ASSIGN: true, token.AND_ASSIGN: true,
	token.OR_ASSIGN: true,
}

// Parser consumes a flat token slice (produced by the lexer, including
// NEWLINE tokens) and produces an *ast.Program.
type Parser struct {
	tokens []token.Token
	pos    int

	Errors diagnostics.List

	// parenDepth > 0 means the parser is inside parentheses or
	// brackets: NEWLINE tokens are skipped rather than treated as
	// statement terminators while it is set.
	parenDepth int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

// advance consumes the current token and returns it, skipping any
// NEWLINE that immediately follows a continuation token or while
// inside parentheses/brackets.
func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	p.skipSuppressedNewlines(t.Type)
	return t
}

func (p *Parser) skipSuppressedNewlines(prev token.Type) {
	for p.parenDepth > 0 && p.cur().Type == token.NEWLINE {
		p.pos++
	}
	if token.IsContinuation(prev) {
		for p.cur().Type == token.NEWLINE {
			p.pos++
		}
	}
}

func (p *Parser) check(t token.Type) bool {
	return p.cur().Type == t
}

func (p *Parser) match(t token.Type) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t token.Type) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorf(diagnostics.ParseExpectedToken, p.cur(), "expected %s, found %s %q", t, p.cur().Type, p.cur().Lexeme)
	return p.cur()
}

func (p *Parser) errorf(code string, tok token.Token, format string, args ...interface{}) {
	p.Errors = append(p.Errors, diagnostics.NewError(code, tok, format, args...))
}

// recover skips tokens until the next statement terminator or a
// matching closing brace, parse-error recovery rule.
func (p *Parser) recover() {
	depth := 0
	for {
		switch p.cur().Type {
		case token.EOF:
			return
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth == 0 {
				p.advance()
				return
			}
			depth--
		case token.SEMI, token.NEWLINE:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// skipTerminators consumes any run of NEWLINE/`;` tokens
// between statements.
func (p *Parser) skipTerminators() {
	for p.check(token.NEWLINE) || p.check(token.SEMI) {
		p.advance()
	}
}

// ParseProgram parses an entire file into an *ast.Program.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	p.skipTerminators()
	if p.check(token.MODULE) {
		prog.Module = p.parseModuleDeclaration()
		p.skipTerminators()
	}
	for !p.check(token.EOF) {
		if p.check(token.IMPORT) {
			prog.Imports = append(prog.Imports, p.parseImportStatement())
			p.skipTerminators()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.skipTerminators()
	}
	return prog
}

func (p *Parser) parseModuleDeclaration() *ast.ModuleDeclaration {
	tok := p.advance() // 'module'
	name := p.expect(token.IDENT)
	return &ast.ModuleDeclaration{Token: tok, Name: name.Lexeme}
}

func (p *Parser) parseImportStatement() *ast.ImportStatement {
	tok := p.advance() // 'import'
	if p.check(token.STRING) {
		pathTok := p.advance()
		return &ast.ImportStatement{Token: tok, Path: pathTok.Literal}
	}
	var parts []string
	parts = append(parts, p.expect(token.IDENT).Lexeme)
	for p.match(token.DOT) {
		parts = append(parts, p.expect(token.IDENT).Lexeme)
	}
	return &ast.ImportStatement{Token: tok, ModulePath: parts}
}
