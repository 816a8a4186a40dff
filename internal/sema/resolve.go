package sema

import (
	"github.com/ajmd17/ace-lang-sub002/internal/ast"
	"github.com/ajmd17/ace-lang-sub002/internal/diagnostics"
	"github.com/ajmd17/ace-lang-sub002/internal/types"
)

// Analyzer drives the resolve/fold/lower passes over a parsed program,
// using a multi-pass shape (naming, headers,
// bodies) collapsed into fewer passes since Ace programs are
// single-module by default.
type Analyzer struct {
	Unit    *CompilationUnit
	current *Scope
}

func New(unit *CompilationUnit) *Analyzer {
	return &Analyzer{Unit: unit}
}

// Analyze runs every pass over the unit's program.
func (a *Analyzer) Analyze() {
	a.Unit.Root = NewScope(nil, ScopeNormal)
	a.current = a.Unit.Root
	a.declareBuiltinTypes()

	a.collectImports()
	a.collectDirectives(a.Unit.Program.Statements)

	// Hoist top-level function and type declarations so forward
	// references resolve: declarations are visible throughout their
	// enclosing scope, not merely after their point of definition.
	a.hoistDeclarations(a.Unit.Program.Statements)

	for _, stmt := range a.Unit.Program.Statements {
		a.resolveStatement(stmt)
	}
}

func (a *Analyzer) collectImports() {
	seen := make(map[string]bool)
	for _, imp := range a.Unit.Program.Imports {
		key := imp.Path
		if key == "" {
			key = joinDotted(imp.ModulePath)
		}
		if seen[key] {
			continue // import idempotence
		}
		seen[key] = true
		a.Unit.Imports = append(a.Unit.Imports, key)
	}
}

func joinDotted(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

// collectDirectives records every `use` directive at this statement
// list's level, handling the `strict` directive immediately since it
// affects analysis behavior.
func (a *Analyzer) collectDirectives(stmts []ast.Statement) {
	for _, stmt := range stmts {
		if d, ok := stmt.(*ast.DirectiveStatement); ok {
			a.Unit.Directives = append(a.Unit.Directives, d)
			if d.Name == "strict" {
				a.Unit.Strict = true
			}
		}
	}
}

// declareBuiltinTypes seeds the root scope with a SymType symbol named
// after each builtin primitive (spec.md's "exactly one descriptor
// instance per builtin, globally"), so a type annotation like `x: Int`
// or a generic actual argument like `id<Int>` resolves the same way a
// user-declared type name would rather than tripping the ordinary
// undefined-identifier diagnostic.
func (a *Analyzer) declareBuiltinTypes() {
	for b := types.Any; b <= types.GenericPlaceholder; b++ {
		t := a.Unit.Registry.Builtin(b)
		a.current.Declare(&Symbol{Name: t.Name, Kind: SymType, Type: t})
	}
}

func (a *Analyzer) hoistDeclarations(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.FunctionDeclaration:
			a.current.Declare(&Symbol{Name: s.Name, Kind: SymFunction, GenericArity: len(s.Fn.GenericParams)})
		case *ast.TypeDeclaration:
			a.current.Declare(&Symbol{Name: s.Name, Kind: SymType})
		}
	}
}

func (a *Analyzer) errorf(code string, n ast.Node, format string, args ...interface{}) {
	a.Unit.Errors = append(a.Unit.Errors, diagnostics.NewError(code, n.GetToken(), format, args...))
}

func (a *Analyzer) withScope(kind ScopeKind, body func()) {
	parent := a.current
	a.current = NewScope(parent, kind)
	body()
	a.current = parent
}

func (a *Analyzer) resolveStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		if s.Prototype != nil {
			a.resolveExpression(s.Prototype)
		}
		if s.Value != nil {
			a.resolveExpression(s.Value)
		}
		a.current.Declare(&Symbol{
			Name:    s.Name,
			Kind:    SymVariable,
			IsConst: s.Kind == ast.DeclConst || s.Kind == ast.DeclVal,
		})
	case *ast.AliasDeclaration:
		a.resolveExpression(s.Aliasee)
		var aliasOf *Symbol
		if id, ok := s.Aliasee.(*ast.Identifier); ok {
			aliasOf, _ = a.current.Resolve(id.Name)
		}
		a.current.Declare(&Symbol{Name: s.Name, Kind: SymVariable, IsAlias: true, AliasOf: aliasOf})
	case *ast.TypeDeclaration:
		if s.Base != nil {
			a.resolveExpression(s.Base)
		}
		a.withScope(ScopeTypeDefinition, func() {
			for _, m := range s.Members {
				if m.Default != nil {
					a.resolveExpression(m.Default)
				}
			}
		})
		if _, exists := a.current.Symbols[s.Name]; !exists {
			a.current.Declare(&Symbol{Name: s.Name, Kind: SymType})
		}
	case *ast.FunctionDeclaration:
		if sym, exists := a.current.Symbols[s.Name]; !exists {
			a.current.Declare(&Symbol{Name: s.Name, Kind: SymFunction, GenericArity: len(s.Fn.GenericParams)})
		} else {
			sym.GenericArity = len(s.Fn.GenericParams)
		}
		a.resolveFunctionExpression(s.Fn, false)
	case *ast.BlockStatement:
		a.withScope(ScopeNormal, func() {
			a.collectDirectives(s.Statements)
			a.hoistDeclarations(s.Statements)
			for _, inner := range s.Statements {
				a.resolveStatement(inner)
			}
		})
	case *ast.IfStatement:
		a.resolveExpression(s.Condition)
		a.resolveStatement(s.Then)
		if s.Else != nil {
			a.resolveStatement(s.Else)
		}
	case *ast.WhileStatement:
		a.resolveExpression(s.Condition)
		a.withScope(ScopeLoop, func() {
			for _, inner := range s.Body.Statements {
				a.resolveStatement(inner)
			}
		})
	case *ast.ForStatement:
		a.resolveForStatement(s)
	case *ast.ReturnStatement:
		if s.Value != nil {
			a.resolveExpression(s.Value)
		}
	case *ast.YieldStatement:
		if a.current.EnclosingFunction() == nil {
			a.errorf(diagnostics.TypeYieldContext, s, "yield used outside a generator context")
		}
		if s.Value != nil {
			a.resolveExpression(s.Value)
		}
	case *ast.ThrowStatement:
		a.resolveExpression(s.Value)
	case *ast.TryCatchStatement:
		a.resolveStatement(s.Try)
		a.withScope(ScopeNormal, func() {
			if s.CatchID != "" {
				a.current.Declare(&Symbol{Name: s.CatchID, Kind: SymVariable})
			}
			for _, inner := range s.Catch.Statements {
				a.resolveStatement(inner)
			}
		})
	case *ast.PrintStatement:
		a.resolveExpression(s.Value)
	case *ast.BreakStatement:
		if a.current.EnclosingLoop() == nil {
			a.errorf(diagnostics.ParseUnexpectedToken, s, "break used outside a loop")
		}
	case *ast.ContinueStatement:
		if a.current.EnclosingLoop() == nil {
			a.errorf(diagnostics.ParseUnexpectedToken, s, "continue used outside a loop")
		}
	case *ast.ExpressionStatement:
		a.resolveExpression(s.Expression)
	case *ast.DirectiveStatement:
		for _, arg := range s.Args {
			a.resolveExpression(arg)
		}
	case *ast.ModuleDeclaration, *ast.ImportStatement:
		// handled up front by collectImports / the module header
	}
}

func (a *Analyzer) resolveFunctionExpression(fn *ast.FunctionExpression, isExpr bool) {
	kind := ScopeFunction
	if fn.IsPure {
		kind = ScopePureFunction
	}
	a.withScope(kind, func() {
		for _, name := range fn.GenericParams {
			a.current.Declare(&Symbol{Name: name, Kind: SymGenericParam})
		}
		for _, param := range fn.Params {
			if param.TypeExpr != nil {
				a.resolveExpression(param.TypeExpr)
			}
			if param.Default != nil {
				a.resolveExpression(param.Default)
			}
			a.current.Declare(&Symbol{Name: param.Name, Kind: SymVariable})
		}
		a.collectDirectives(fn.Body.Statements)
		a.hoistDeclarations(fn.Body.Statements)
		for _, stmt := range fn.Body.Statements {
			a.resolveStatement(stmt)
		}
	})
	a.captureFreeVariables(fn)
}

// captureFreeVariables records, for the emitter's closure lowering
//, every identifier this function body references that
// resolves outside its own scope.
func (a *Analyzer) captureFreeVariables(fn *ast.FunctionExpression) {
	seen := make(map[string]bool)
	ast.Walk(fn.Body, func(n ast.Node) {
		id, ok := n.(*ast.Identifier)
		if !ok || seen[id.Name] {
			return
		}
		// fn's own scope has already been popped, so any name that
		// still resolves from here was declared outside fn's body. A
		// non-nil DeclaringFn means it is a local of some enclosing
		// function (not a top-level global), i.e. a genuine capture
		//.
		if sym, _ := a.current.Resolve(id.Name); sym != nil && sym.DeclaringFn != nil {
			seen[id.Name] = true
			fn.Captures = append(fn.Captures, id.Name)
		}
	})
}
