package parser

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ajmd17/ace-lang-sub002/internal/ast"
	"github.com/ajmd17/ace-lang-sub002/internal/diagnostics"
	"github.com/ajmd17/ace-lang-sub002/internal/token"
)

// parseExpression is the Pratt climber. minPrec is the lowest
// precedence level the caller is willing to keep consuming at; binary
// operators with a lower binding power stop the loop and hand control
// back to the caller.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parseUnary()

	for {
		opTok := p.cur()
		prec, ok := binaryPrecedence[opTok.Type]
		if !ok || prec < minPrec {
			break
		}

		if assignOps[opTok.Type] {
			p.advance()
			// right-associative: same precedence recurses
			value := p.parseExpression(prec)
			left = &ast.AssignmentExpression{Token: opTok, Operator: opTok.Type, Target: left, Value: value}
			continue
		}

		p.advance()
		right := p.parseExpression(prec + 1)
		left = &ast.BinaryExpression{Token: opTok, Operator: opTok.Type, Left: left, Right: right}
	}

	return left
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.cur().Type {
	case token.BANG, token.MINUS, token.PLUS, token.TILDE, token.INC, token.DEC:
		tok := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpression{Token: tok, Operator: tok.Type, Operand: operand}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch p.cur().Type {
		case token.DOT:
			tok := p.advance()
			name := p.expect(token.IDENT)
			expr = &ast.MemberAccess{Token: tok, Target: expr, Member: name.Lexeme}
		case token.LBRACKET:
			tok := p.advance()
			p.parenDepth++
			idx := p.parseExpression(precAssign + 1)
			p.parenDepth--
			p.expect(token.RBRACKET)
			expr = &ast.ArrayAccess{Token: tok, Target: expr, Index: idx}
		case token.LPAREN:
			tok := p.advance()
			p.parenDepth++
			var args []ast.Expression
			for !p.check(token.RPAREN) && !p.check(token.EOF) {
				args = append(args, p.parseExpression(precAssign+1))
				if !p.match(token.COMMA) {
					break
				}
			}
			p.parenDepth--
			p.expect(token.RPAREN)
			expr = &ast.CallExpression{Token: tok, Callee: expr, Args: args}
		case token.LT:
			ltTok := p.cur()
			if args, ok := p.tryParseGenericArgs(); ok {
				expr = &ast.TemplateInstantiation{Token: ltTok, Template: expr, Args: args}
				continue
			}
			return expr
		case token.INC, token.DEC:
			tok := p.advance()
			expr = &ast.UnaryExpression{Token: tok, Operator: tok.Type, Operand: expr}
		case token.HAS:
			tok := p.advance()
			member := p.expect(token.STRING)
			expr = &ast.HasExpression{Token: tok, Target: expr, Member: member.Literal}
		default:
			return expr
		}
	}
}

// tryParseGenericArgs implements bounded look-ahead rule
// for disambiguating `expr<Args…>` template instantiation from a
// less-than comparison: the matching `>` must be followed by one of
// `( { , ) ; <newline> <EOF>`. On failure it rewinds and returns false
// so the caller treats `<` as an ordinary binary operator instead.
func (p *Parser) tryParseGenericArgs() ([]ast.Expression, bool) {
	save := p.pos
	saveErrs := len(p.Errors)
	fail := func() ([]ast.Expression, bool) {
		p.pos = save
		p.Errors = p.Errors[:saveErrs]
		return nil, false
	}

	p.advance() // consume '<'

	var args []ast.Expression
	depth := 1
	for depth > 0 {
		if p.check(token.EOF) || p.check(token.SEMI) {
			return fail()
		}
		arg := p.parseGenericArgExpr()
		if arg == nil || len(p.Errors) > saveErrs {
			return fail()
		}
		args = append(args, arg)
		if p.check(token.COMMA) {
			p.advance()
			continue
		}
		if p.closeOneAngle() {
			depth--
			break
		}
		return fail()
	}

	switch p.cur().Type {
	case token.LPAREN, token.LBRACE, token.COMMA, token.RPAREN, token.SEMI, token.NEWLINE, token.EOF:
		return args, true
	default:
		return fail()
	}
}

// closeOneAngle consumes a single closing `>` for a generic-argument
// list, splitting a `>>` shift token in place when nested generics
// (e.g. `Array<Array<Int>>`) leave two closing angles fused into one
// token by the lexer.
func (p *Parser) closeOneAngle() bool {
	switch p.cur().Type {
	case token.GT:
		p.advance()
		return true
	case token.SHR:
		t := p.tokens[p.pos]
		t.Type = token.GT
		t.Lexeme = ">"
		p.tokens[p.pos] = t
		return true
	default:
		return false
	}
}

// parseGenericArgExpr parses one comma-separated slot inside `<…>`
// without crossing a bare `>` (which terminates the arg list rather
// than being parsed as a shift/relational operator).
func (p *Parser) parseGenericArgExpr() ast.Expression {
	return p.parseExpressionNoAngle(precOr)
}

// parseExpressionNoAngle behaves like parseExpression but treats `>`
// and `>>` as list terminators instead of operators, since both would
// otherwise be ambiguous with the closing angle bracket.
func (p *Parser) parseExpressionNoAngle(minPrec int) ast.Expression {
	left := p.parseUnary()
	for {
		opTok := p.cur()
		if opTok.Type == token.GT || opTok.Type == token.SHR || opTok.Type == token.COMMA {
			break
		}
		prec, ok := binaryPrecedence[opTok.Type]
		if !ok || prec < minPrec {
			break
		}
		if assignOps[opTok.Type] {
			break
		}
		p.advance()
		right := p.parseExpressionNoAngle(prec + 1)
		left = &ast.BinaryExpression{Token: opTok, Operator: opTok.Type, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.INT:
		p.advance()
		val := new(big.Int)
		lexeme := strings.Replace(tok.Lexeme, "_", "", -1)
		if strings.HasPrefix(lexeme, "0x") || strings.HasPrefix(lexeme, "0X") {
			val.SetString(lexeme[2:], 16)
		} else {
			val.SetString(lexeme, 10)
		}
		return &ast.IntegerLiteral{Token: tok, Value: val}
	case token.FLOAT:
		p.advance()
		f, _ := strconv.ParseFloat(strings.Replace(tok.Lexeme, "_", "", -1), 64)
		return &ast.FloatLiteral{Token: tok, Value: f}
	case token.STRING:
		p.advance()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}
	case token.TRUE:
		p.advance()
		return &ast.BoolLiteral{Token: tok, Value: true}
	case token.FALSE:
		p.advance()
		return &ast.BoolLiteral{Token: tok, Value: false}
	case token.NIL, token.NULLTOK:
		p.advance()
		return &ast.NilLiteral{Token: tok}
	case token.SELF:
		p.advance()
		return &ast.SelfExpression{Token: tok}
	case token.IDENT:
		p.advance()
		return &ast.Identifier{Token: tok, Name: tok.Lexeme}
	case token.LPAREN:
		p.advance()
		p.parenDepth++
		expr := p.parseExpression(precAssign + 1)
		p.parenDepth--
		p.expect(token.RPAREN)
		return expr
	case token.LBRACKET:
		return p.parseArrayExpression()
	case token.FUNC:
		return p.parseFunctionExpressionLiteral(false, false)
	case token.ASYNC:
		p.advance()
		return p.parseFunctionExpressionLiteral(true, false)
	case token.PURE:
		p.advance()
		return p.parseFunctionExpressionLiteral(false, true)
	case token.NEW:
		return p.parseNewExpression()
	case token.TYPE:
		return p.parseTypeExpressionLiteral()
	case token.TYPEOF:
		p.advance()
		target := p.parseExpression(precUnary)
		return &ast.TypeOfExpression{Token: tok, Target: target}
	case token.VALUEOF:
		p.advance()
		target := p.parseExpression(precUnary)
		return &ast.ValueOfExpression{Token: tok, Target: target}
	case token.LT:
		return p.parseTemplateExpression()
	case token.LBRACE:
		block := p.parseBlockStatement()
		return &ast.BlockExpression{Token: tok, Block: block}
	default:
		p.errorf(diagnostics.ParseUnexpectedToken, tok, "unexpected token %s %q in expression", tok.Type, tok.Lexeme)
		p.advance()
		return &ast.NilLiteral{Token: tok}
	}
}

func (p *Parser) parseArrayExpression() *ast.ArrayExpression {
	tok := p.advance() // '['
	p.parenDepth++
	arr := &ast.ArrayExpression{Token: tok}
	for !p.check(token.RBRACKET) && !p.check(token.EOF) {
		arr.Elements = append(arr.Elements, p.parseExpression(precAssign+1))
		if !p.match(token.COMMA) {
			break
		}
	}
	p.parenDepth--
	p.expect(token.RBRACKET)
	return arr
}

func (p *Parser) parseFunctionExpressionLiteral(isAsync, isPure bool) *ast.FunctionExpression {
	tok := p.expect(token.FUNC)
	fn := p.parseFunctionExpressionBody(tok)
	fn.IsAsync = isAsync
	fn.IsPure = isPure
	return fn
}

func (p *Parser) parseNewExpression() *ast.NewExpression {
	tok := p.advance() // 'new'
	typeExpr := p.parseExpression(precPostfix)
	n := &ast.NewExpression{Token: tok, TypeExpr: typeExpr}
	if p.match(token.LPAREN) {
		p.parenDepth++
		for !p.check(token.RPAREN) && !p.check(token.EOF) {
			n.Args = append(n.Args, p.parseExpression(precAssign+1))
			if !p.match(token.COMMA) {
				break
			}
		}
		p.parenDepth--
		p.expect(token.RPAREN)
	}
	return n
}

// parseTypeExpressionLiteral parses `type [Name] { members… }` in
// expression position — a type expression has the same surface syntax
// as an object literal.
func (p *Parser) parseTypeExpressionLiteral() *ast.TypeExpression {
	tok := p.advance() // 'type'
	te := &ast.TypeExpression{Token: tok}
	if p.check(token.IDENT) {
		te.Name = p.advance().Lexeme
	}
	if p.match(token.COLON) {
		te.Base = p.parseExpression(precAssign + 1)
	}
	te.Members = p.parseTypeMembers()
	return te
}

// parseTemplateExpression parses `<T, U> expr`, the generic/template
// introduction form.
func (p *Parser) parseTemplateExpression() *ast.TemplateExpression {
	tok := p.advance() // '<'
	p.parenDepth++
	te := &ast.TemplateExpression{Token: tok}
	for !p.check(token.GT) && !p.check(token.EOF) {
		te.FormalArgs = append(te.FormalArgs, p.expect(token.IDENT).Lexeme)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.parenDepth--
	p.expect(token.GT)
	te.Inner = p.parseExpression(precAssign + 1)
	return te
}
