package sema

import (
	"math/big"

	"github.com/ajmd17/ace-lang-sub002/internal/ast"
	"github.com/ajmd17/ace-lang-sub002/internal/token"
	"github.com/ajmd17/ace-lang-sub002/internal/types"
)

// foldConstant implements constant folding: every Expression's
// ValueOf is either itself (already a literal) or a freshly
// synthesized literal equivalent to evaluating it, computed
// bottom-up as the resolver walks back out of each subexpression. It
// also assigns the literal builtin ExprType and, for boolean-valued
// expressions, the three-valued IsTrue flag the emitter's branch
// lowering consults to skip dead branches.
func foldConstant(reg *types.Registry, expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		e.SetExprType(*reg.Builtin(types.Int))
		e.SetValueOf(e)
	case *ast.FloatLiteral:
		e.SetExprType(*reg.Builtin(types.Float))
		e.SetValueOf(e)
	case *ast.StringLiteral:
		e.SetExprType(*reg.Builtin(types.String))
		e.SetValueOf(e)
	case *ast.BoolLiteral:
		e.SetExprType(*reg.Builtin(types.Boolean))
		e.SetValueOf(e)
		if e.Value {
			e.SetIsTrue(ast.TriTrue)
		} else {
			e.SetIsTrue(ast.TriFalse)
		}
	case *ast.NilLiteral:
		e.SetExprType(*reg.Builtin(types.Any))
		e.SetValueOf(e)
		e.SetIsTrue(ast.TriFalse)
	case *ast.UnaryExpression:
		foldUnary(reg, e)
	case *ast.BinaryExpression:
		foldBinary(reg, e)
	}
}

func litInt(tok token.Token, v *big.Int) *ast.IntegerLiteral {
	n := &ast.IntegerLiteral{Token: tok, Value: v}
	n.SetValueOf(n)
	return n
}

func litFloat(tok token.Token, v float64) *ast.FloatLiteral {
	n := &ast.FloatLiteral{Token: tok, Value: v}
	n.SetValueOf(n)
	return n
}

func litBool(tok token.Token, v bool) *ast.BoolLiteral {
	n := &ast.BoolLiteral{Token: tok, Value: v}
	n.SetValueOf(n)
	if v {
		n.SetIsTrue(ast.TriTrue)
	} else {
		n.SetIsTrue(ast.TriFalse)
	}
	return n
}

func litString(tok token.Token, v string) *ast.StringLiteral {
	n := &ast.StringLiteral{Token: tok, Value: v}
	n.SetValueOf(n)
	return n
}

func asFloat(e ast.Expression) (float64, bool) {
	switch v := e.(type) {
	case *ast.FloatLiteral:
		return v.Value, true
	case *ast.IntegerLiteral:
		f := new(big.Float).SetInt(v.Value)
		out, _ := f.Float64()
		return out, true
	}
	return 0, false
}

func foldUnary(reg *types.Registry, e *ast.UnaryExpression) {
	operand := e.Operand.ValueOf()
	if operand == nil {
		return
	}
	switch e.Operator {
	case token.MINUS:
		switch v := operand.(type) {
		case *ast.IntegerLiteral:
			r := litInt(e.Token, new(big.Int).Neg(v.Value))
			e.SetValueOf(r)
			e.SetExprType(*reg.Builtin(types.Int))
			return
		case *ast.FloatLiteral:
			r := litFloat(e.Token, -v.Value)
			e.SetValueOf(r)
			e.SetExprType(*reg.Builtin(types.Float))
			return
		}
	case token.BANG:
		if v, ok := operand.(*ast.BoolLiteral); ok {
			r := litBool(e.Token, !v.Value)
			e.SetValueOf(r)
			e.SetExprType(*reg.Builtin(types.Boolean))
			e.SetIsTrue(r.IsTrue())
			return
		}
	case token.TILDE:
		if v, ok := operand.(*ast.IntegerLiteral); ok {
			r := litInt(e.Token, new(big.Int).Not(v.Value))
			e.SetValueOf(r)
			e.SetExprType(*reg.Builtin(types.Int))
			return
		}
	}
	e.SetExprType(e.Operand.ExprType())
}

func foldBinary(reg *types.Registry, e *ast.BinaryExpression) {
	e.SetExprType(*reg.Builtin(types.Any))

	left := e.Left.ValueOf()
	right := e.Right.ValueOf()
	if left == nil || right == nil {
		return
	}

	li, lInt := left.(*ast.IntegerLiteral)
	ri, rInt := right.(*ast.IntegerLiteral)
	lb, lBool := left.(*ast.BoolLiteral)
	rb, rBool := right.(*ast.BoolLiteral)
	ls, lStr := left.(*ast.StringLiteral)
	rs, rStr := right.(*ast.StringLiteral)

	switch e.Operator {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		if lStr && rStr && e.Operator == token.PLUS {
			r := litString(e.Token, ls.Value+rs.Value)
			e.SetValueOf(r)
			e.SetExprType(*reg.Builtin(types.String))
			return
		}
		if lInt && rInt {
			foldIntArith(reg, e, li.Value, ri.Value)
			return
		}
		if lf, lok := asFloat(left); lok {
			if rf, rok := asFloat(right); rok {
				foldFloatArith(reg, e, lf, rf)
				return
			}
		}
	case token.AND_AND:
		if lBool {
			if !lb.Value {
				r := litBool(e.Token, false)
				e.SetValueOf(r)
				e.SetExprType(*reg.Builtin(types.Boolean))
				e.SetIsTrue(r.IsTrue())
				return
			}
			if rBool {
				r := litBool(e.Token, rb.Value)
				e.SetValueOf(r)
				e.SetExprType(*reg.Builtin(types.Boolean))
				e.SetIsTrue(r.IsTrue())
				return
			}
		}
	case token.OR_OR:
		if lBool {
			if lb.Value {
				r := litBool(e.Token, true)
				e.SetValueOf(r)
				e.SetExprType(*reg.Builtin(types.Boolean))
				e.SetIsTrue(r.IsTrue())
				return
			}
			if rBool {
				r := litBool(e.Token, rb.Value)
				e.SetValueOf(r)
				e.SetExprType(*reg.Builtin(types.Boolean))
				e.SetIsTrue(r.IsTrue())
				return
			}
		}
	case token.EQ, token.NOT_EQ:
		if lInt && rInt {
			eq := li.Value.Cmp(ri.Value) == 0
			if e.Operator == token.NOT_EQ {
				eq = !eq
			}
			r := litBool(e.Token, eq)
			e.SetValueOf(r)
			e.SetExprType(*reg.Builtin(types.Boolean))
			e.SetIsTrue(r.IsTrue())
			return
		}
		if lStr && rStr {
			eq := ls.Value == rs.Value
			if e.Operator == token.NOT_EQ {
				eq = !eq
			}
			r := litBool(e.Token, eq)
			e.SetValueOf(r)
			e.SetExprType(*reg.Builtin(types.Boolean))
			e.SetIsTrue(r.IsTrue())
			return
		}
	case token.LT, token.GT, token.LE, token.GE:
		if lInt && rInt {
			c := li.Value.Cmp(ri.Value)
			r := litBool(e.Token, compareOp(e.Operator, c))
			e.SetValueOf(r)
			e.SetExprType(*reg.Builtin(types.Boolean))
			e.SetIsTrue(r.IsTrue())
			return
		}
	}
}

func compareOp(op token.Type, c int) bool {
	switch op {
	case token.LT:
		return c < 0
	case token.GT:
		return c > 0
	case token.LE:
		return c <= 0
	case token.GE:
		return c >= 0
	}
	return false
}

// foldIntArith implements the integer half of arithmetic
// semantics. A zero divisor for `/` or `%` is not folded and produces
// no compile-time diagnostic: the division stays in the program and
// the VM raises division by zero when it runs.
func foldIntArith(reg *types.Registry, e *ast.BinaryExpression, a, b *big.Int) {
	r := new(big.Int)
	switch e.Operator {
	case token.PLUS:
		r.Add(a, b)
	case token.MINUS:
		r.Sub(a, b)
	case token.STAR:
		r.Mul(a, b)
	case token.SLASH, token.PERCENT:
		if b.Sign() == 0 {
			return // left for the VM to raise at runtime; not foldable
		}
		if e.Operator == token.SLASH {
			r.Quo(a, b)
		} else {
			r.Rem(a, b)
		}
	}
	lit := litInt(e.Token, r)
	e.SetValueOf(lit)
	e.SetExprType(*reg.Builtin(types.Int))
}

func foldFloatArith(reg *types.Registry, e *ast.BinaryExpression, a, b float64) {
	var r float64
	switch e.Operator {
	case token.PLUS:
		r = a + b
	case token.MINUS:
		r = a - b
	case token.STAR:
		r = a * b
	case token.SLASH:
		r = a / b
	case token.PERCENT:
		r = float64(int64(a) % int64(b))
	}
	lit := litFloat(e.Token, r)
	e.SetValueOf(lit)
	e.SetExprType(*reg.Builtin(types.Float))
}
