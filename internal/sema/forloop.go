package sema

import "github.com/ajmd17/ace-lang-sub002/internal/ast"

// resolveForStatement implements for-loop lowering: the parser does
// not distinguish for-each from numeric-for — both lower in the
// analyzer to a synthesized ActionExpression over the iteree with a
// closure as its callback. The loop body becomes the callback's body
// and the loop parameters become the callback's parameters. The
// ForStatement itself stays in the tree; its lowered form is recorded
// in the unit's Lowered map, and the emitter expands it inline into an
// index loop that calls the callback once per element. No
// events::call_action function is involved.
func (a *Analyzer) resolveForStatement(s *ast.ForStatement) {
	callback := &ast.FunctionExpression{Token: s.Token, Body: s.Body}
	for _, name := range s.Params {
		callback.Params = append(callback.Params, &ast.Parameter{Token: s.Token, Name: name})
	}
	action := &ast.ActionExpression{Token: s.Token, Iteree: s.Iteree, Callback: callback}

	a.resolveExpression(s.Iteree)
	a.withScope(ScopeLoop, func() {
		for _, name := range s.Params {
			a.current.Declare(&Symbol{Name: name, Kind: SymVariable})
		}
		a.collectDirectives(s.Body.Statements)
		a.hoistDeclarations(s.Body.Statements)
		for _, stmt := range s.Body.Statements {
			a.resolveStatement(stmt)
		}
	})
	a.captureFreeVariables(callback)

	// Record the lowered form on the statement's own iteree slot isn't
	// possible without mutating the node's type, so sema exposes it via
	// the per-node Lowered map the emitter consults in place of
	// re-walking the original ForStatement.
	a.Unit.recordLowering(s, action)
}
