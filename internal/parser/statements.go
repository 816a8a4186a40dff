package parser

import (
	"github.com/ajmd17/ace-lang-sub002/internal/ast"
	"github.com/ajmd17/ace-lang-sub002/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.LET, token.CONST, token.REF, token.VAL:
		return p.parseVariableDeclaration()
	case token.ALIAS:
		return p.parseAliasDeclaration()
	case token.TYPE:
		return p.parseTypeDeclaration()
	case token.FUNC:
		return p.parseFunctionDeclaration()
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.YIELD:
		return p.parseYieldStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.TRY:
		return p.parseTryCatchStatement()
	case token.PRINT:
		return p.parsePrintStatement()
	case token.BREAK:
		t := p.advance()
		return &ast.BreakStatement{Token: t}
	case token.CONTINUE:
		t := p.advance()
		return &ast.ContinueStatement{Token: t}
	case token.USE:
		return p.parseDirectiveStatement()
	case token.NEWLINE, token.SEMI:
		p.advance()
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func declKindFor(t token.Type) ast.DeclKind {
	switch t {
	case token.CONST:
		return ast.DeclConst
	case token.REF:
		return ast.DeclRef
	case token.VAL:
		return ast.DeclVal
	default:
		return ast.DeclLet
	}
}

func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	tok := p.advance()
	name := p.expect(token.IDENT)
	decl := &ast.VariableDeclaration{Token: tok, Kind: declKindFor(tok.Type), Name: name.Lexeme}
	if p.match(token.COLON) {
		decl.Prototype = p.parseExpression(precAssign + 1)
	}
	if p.match(token.ASSIGN) {
		decl.Value = p.parseExpression(precAssign + 1)
	}
	return decl
}

func (p *Parser) parseAliasDeclaration() *ast.AliasDeclaration {
	tok := p.advance()
	name := p.expect(token.IDENT)
	p.expect(token.ASSIGN)
	value := p.parseExpression(precAssign + 1)
	return &ast.AliasDeclaration{Token: tok, Name: name.Lexeme, Aliasee: value}
}

// parseTypeMembers parses the shared `{ fields… }` body used by both
// `type Name { … }` declarations and `type { … }` expression literals,
// which share the same surface syntax as an object literal.
func (p *Parser) parseTypeMembers() []*ast.TypeMemberNode {
	p.expect(token.LBRACE)
	var members []*ast.TypeMemberNode
	p.skipTerminators()
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		nameTok := p.expect(token.IDENT)
		m := &ast.TypeMemberNode{Token: nameTok, Name: nameTok.Lexeme}
		if p.match(token.COLON) {
			// Optional type annotation on a member; it is parsed and
			// discarded, since TypeMemberNode keeps no annotation.
			p.parseExpression(precAssign + 1)
		}
		if p.match(token.ASSIGN) {
			m.Default = p.parseExpression(precAssign + 1)
		}
		members = append(members, m)
		if !p.match(token.COMMA) {
			p.skipTerminators()
		}
	}
	p.expect(token.RBRACE)
	return members
}

func (p *Parser) parseTypeDeclaration() *ast.TypeDeclaration {
	tok := p.advance() // 'type'
	name := p.expect(token.IDENT)
	decl := &ast.TypeDeclaration{Token: tok, Name: name.Lexeme}
	if p.match(token.COLON) {
		decl.Base = p.parseExpression(precAssign + 1)
	}
	decl.Members = p.parseTypeMembers()
	return decl
}

func (p *Parser) parseParameterList() ([]*ast.Parameter, bool) {
	p.expect(token.LPAREN)
	p.parenDepth++
	var params []*ast.Parameter
	variadic := false
	for !p.check(token.RPAREN) && !p.check(token.EOF) {
		isVariadic := p.match(token.ELLIPSIS)
		nameTok := p.expect(token.IDENT)
		param := &ast.Parameter{Token: nameTok, Name: nameTok.Lexeme, IsVariadic: isVariadic}
		if p.match(token.COLON) {
			param.TypeExpr = p.parseExpression(precAssign + 1)
		}
		if p.match(token.ASSIGN) {
			param.Default = p.parseExpression(precAssign + 1)
		}
		if isVariadic {
			variadic = true
		}
		params = append(params, param)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.parenDepth--
	p.expect(token.RPAREN)
	return params, variadic
}

// parseGenericParamList parses an optional `<T, U>` formal-parameter
// list immediately following a function name. It only commits once it
// sees LT directly after the name; anything else leaves the parser
// untouched so callers with no generic parameters are unaffected.
func (p *Parser) parseGenericParamList() []string {
	if !p.check(token.LT) {
		return nil
	}
	p.advance()
	p.parenDepth++
	var names []string
	for !p.check(token.GT) && !p.check(token.EOF) {
		names = append(names, p.expect(token.IDENT).Lexeme)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.parenDepth--
	p.expect(token.GT)
	return names
}

func (p *Parser) parseFunctionExpressionBody(tok token.Token) *ast.FunctionExpression {
	generics := p.parseGenericParamList()
	params, _ := p.parseParameterList()
	fn := &ast.FunctionExpression{Token: tok, GenericParams: generics, Params: params}
	if p.match(token.ARROW) {
		fn.ReturnType = p.parseExpression(precAssign + 1)
	}
	fn.Body = p.parseBlockStatement()
	return fn
}

func (p *Parser) parseFunctionDeclaration() *ast.FunctionDeclaration {
	tok := p.advance() // 'func'
	name := p.expect(token.IDENT)
	fn := p.parseFunctionExpressionBody(tok)
	return &ast.FunctionDeclaration{Token: tok, Name: name.Lexeme, Fn: fn}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	tok := p.expect(token.LBRACE)
	block := &ast.BlockStatement{Token: tok}
	p.skipTerminators()
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.skipTerminators()
	}
	p.expect(token.RBRACE)
	return block
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	tok := p.advance() // 'if'
	cond := p.parseExpression(precAssign + 1)
	then := p.parseBlockStatement()
	stmt := &ast.IfStatement{Token: tok, Condition: cond, Then: then}
	p.skipTerminators()
	if p.match(token.ELSE) {
		if p.check(token.IF) {
			stmt.Else = p.parseIfStatement()
		} else {
			stmt.Else = p.parseBlockStatement()
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	tok := p.advance()
	cond := p.parseExpression(precAssign + 1)
	body := p.parseBlockStatement()
	return &ast.WhileStatement{Token: tok, Condition: cond, Body: body}
}

// parseForStatement implements: "takes a parameter list, an
// iteree expression, and a block; the parser does not distinguish
// for-each from numeric-for".
func (p *Parser) parseForStatement() *ast.ForStatement {
	tok := p.advance() // 'for'
	p.match(token.EACH)
	var params []string
	params = append(params, p.expect(token.IDENT).Lexeme)
	for p.match(token.COMMA) {
		params = append(params, p.expect(token.IDENT).Lexeme)
	}
	p.expect(token.IDENT) // consumes "in" written as a plain identifier
	iteree := p.parseExpression(precAssign + 1)
	body := p.parseBlockStatement()
	return &ast.ForStatement{Token: tok, Params: params, Iteree: iteree, Body: body}
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	tok := p.advance()
	stmt := &ast.ReturnStatement{Token: tok}
	if !p.atStatementEnd() {
		stmt.Value = p.parseExpression(precAssign + 1)
	}
	return stmt
}

func (p *Parser) parseYieldStatement() *ast.YieldStatement {
	tok := p.advance()
	stmt := &ast.YieldStatement{Token: tok}
	if !p.atStatementEnd() {
		stmt.Value = p.parseExpression(precAssign + 1)
	}
	return stmt
}

func (p *Parser) parseThrowStatement() *ast.ThrowStatement {
	tok := p.advance()
	value := p.parseExpression(precAssign + 1)
	return &ast.ThrowStatement{Token: tok, Value: value}
}

func (p *Parser) parseTryCatchStatement() *ast.TryCatchStatement {
	tok := p.advance() // 'try'
	tryBlock := p.parseBlockStatement()
	stmt := &ast.TryCatchStatement{Token: tok, Try: tryBlock}
	p.skipTerminators()
	p.expect(token.CATCH)
	if p.check(token.LPAREN) {
		p.advance()
		stmt.CatchID = p.expect(token.IDENT).Lexeme
		p.expect(token.RPAREN)
	}
	stmt.Catch = p.parseBlockStatement()
	return stmt
}

func (p *Parser) parsePrintStatement() *ast.PrintStatement {
	tok := p.advance()
	value := p.parseExpression(precAssign + 1)
	return &ast.PrintStatement{Token: tok, Value: value}
}

// parseDirectiveStatement implements `use directive_name [ arg, … ]`
// and the meta-block form `use { … }`.
func (p *Parser) parseDirectiveStatement() ast.Statement {
	tok := p.advance() // 'use'
	if p.check(token.LBRACE) {
		block := p.parseBlockStatement()
		// Kept as one block expression statement; the directive
		// statements inside are collected when the block is analyzed.
		return &ast.ExpressionStatement{Token: tok, Expression: &ast.BlockExpression{Token: tok, Block: block}}
	}
	name := p.expect(token.IDENT)
	stmt := &ast.DirectiveStatement{Token: tok, Name: name.Lexeme}
	if p.match(token.LBRACKET) {
		p.parenDepth++
		for !p.check(token.RBRACKET) && !p.check(token.EOF) {
			stmt.Args = append(stmt.Args, p.parseExpression(precAssign+1))
			if !p.match(token.COMMA) {
				break
			}
		}
		p.parenDepth--
		p.expect(token.RBRACKET)
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.cur()
	expr := p.parseExpression(precAssign)
	return &ast.ExpressionStatement{Token: tok, Expression: expr}
}

func (p *Parser) atStatementEnd() bool {
	switch p.cur().Type {
	case token.NEWLINE, token.SEMI, token.RBRACE, token.EOF:
		return true
	default:
		return false
	}
}
