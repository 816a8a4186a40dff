package sema

import (
	"github.com/ajmd17/ace-lang-sub002/internal/ast"
	"github.com/ajmd17/ace-lang-sub002/internal/diagnostics"
)

func (a *Analyzer) resolveExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Identifier:
		sym, declScope := a.current.Resolve(e.Name)
		if sym == nil {
			a.errorf(diagnostics.NameUnresolved, e, "undefined identifier %q", e.Name)
			return
		}
		sym.UseCount++
		e.StackLocation = sym.StackLocation
		e.IsConst = sym.IsConst
		e.IsAlias = sym.IsAlias
		e.DeclaredInFunction = sym.DeclaringFn != nil
		if declScope != nil {
			e.ScopeIndex = declScope.Index
		}
	case *ast.IntegerLiteral, *ast.FloatLiteral, *ast.StringLiteral, *ast.BoolLiteral, *ast.NilLiteral:
		// leaves; constant folding (fold.go) assigns ValueOf at the end
		// of this same walk
	case *ast.ArrayExpression:
		for _, el := range e.Elements {
			a.resolveExpression(el)
		}
	case *ast.ArrayAccess:
		a.resolveExpression(e.Target)
		a.resolveExpression(e.Index)
	case *ast.MemberAccess:
		a.resolveExpression(e.Target)
	case *ast.BinaryExpression:
		a.resolveExpression(e.Left)
		a.resolveExpression(e.Right)
		e.SetMayHaveSideEffects(e.Left.MayHaveSideEffects() || e.Right.MayHaveSideEffects())
	case *ast.UnaryExpression:
		a.resolveExpression(e.Operand)
		e.SetMayHaveSideEffects(e.Operand.MayHaveSideEffects())
	case *ast.AssignmentExpression:
		a.resolveExpression(e.Target)
		a.resolveExpression(e.Value)
		e.SetMayHaveSideEffects(true)
		if id, ok := e.Target.(*ast.Identifier); ok {
			if sym, _ := a.current.Resolve(id.Name); sym != nil && sym.IsConst {
				a.errorf(diagnostics.NameRedeclared, e, "cannot assign to const %q", id.Name)
			}
		}
	case *ast.CallExpression:
		a.resolveExpression(e.Callee)
		for _, arg := range e.Args {
			a.resolveExpression(arg)
		}
		e.SetMayHaveSideEffects(true)
	case *ast.FunctionExpression:
		a.resolveFunctionExpression(e, true)
	case *ast.BlockExpression:
		a.resolveStatement(e.Block)
	case *ast.NewExpression:
		a.resolveExpression(e.TypeExpr)
		for _, arg := range e.Args {
			a.resolveExpression(arg)
		}
		e.SetMayHaveSideEffects(true)
	case *ast.TypeExpression:
		if e.Base != nil {
			a.resolveExpression(e.Base)
		}
		a.withScope(ScopeTypeDefinition, func() {
			for _, m := range e.Members {
				if m.Default != nil {
					a.resolveExpression(m.Default)
				}
			}
		})
	case *ast.TemplateExpression:
		a.withScope(ScopeNormal, func() {
			for _, p := range e.FormalArgs {
				a.current.Declare(&Symbol{Name: p, Kind: SymGenericParam})
			}
			a.resolveExpression(e.Inner)
		})
	case *ast.TemplateInstantiation:
		a.resolveExpression(e.Template)
		for _, arg := range e.Args {
			a.resolveExpression(arg)
		}
		a.unifyTemplateInstantiation(e)
	case *ast.HasExpression:
		a.resolveExpression(e.Target)
	case *ast.SelfExpression:
		// resolved structurally at emit time against the enclosing type
	case *ast.TypeOfExpression:
		a.resolveExpression(e.Target)
	case *ast.ValueOfExpression:
		a.resolveExpression(e.Target)
	case *ast.ActionExpression:
		a.resolveExpression(e.Iteree)
		a.resolveFunctionExpression(e.Callback, true)
	}

	foldConstant(a.Unit.Registry, expr)
}

// unifyTemplateInstantiation checks an instantiation's actual argument
// count against its template's formal generic-parameter count and, on
// success, records what the instantiation evaluates to. The runtime is
// dynamically typed, so a specialization never changes the code a
// generic body lowers to for different type arguments — there is
// nothing for a clone to specialize — so instantiating a template
// forwards straight to the template's own definition rather than
// synthesizing a distinct copy per argument list.
func (a *Analyzer) unifyTemplateInstantiation(e *ast.TemplateInstantiation) {
	switch tmpl := e.Template.(type) {
	case *ast.TemplateExpression:
		if len(tmpl.FormalArgs) != len(e.Args) {
			a.errorf(diagnostics.TypeGenericConflict, e,
				"generic instantiation expects %d argument(s), got %d", len(tmpl.FormalArgs), len(e.Args))
			return
		}
		e.SetValueOf(tmpl.Inner)
	case *ast.Identifier:
		sym, _ := a.current.Resolve(tmpl.Name)
		if sym == nil || sym.Kind != SymFunction || sym.GenericArity == 0 {
			return
		}
		if sym.GenericArity != len(e.Args) {
			a.errorf(diagnostics.TypeGenericConflict, e,
				"generic instantiation of %q expects %d argument(s), got %d", tmpl.Name, sym.GenericArity, len(e.Args))
			return
		}
		e.SetValueOf(tmpl)
	}
}
