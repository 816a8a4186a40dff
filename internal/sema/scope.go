package sema

import "github.com/ajmd17/ace-lang-sub002/internal/types"

// ScopeKind distinguishes the contexts in which identifiers resolve
// differently: a plain block, a function body (closure-capture
// boundary), a pure-function body (no captures permitted), a loop body
// (break/continue target), and a type-definition body (member scope).
type ScopeKind int

const (
	ScopeNormal ScopeKind = iota
	ScopeFunction
	ScopePureFunction
	ScopeLoop
	ScopeTypeDefinition
)

// Symbol is a single bound name: a variable, alias, function, type, or
// generic parameter.
type Symbol struct {
	Name          string
	Kind          SymbolKind
	Type          *types.Type
	IsConst       bool
	IsAlias       bool
	AliasOf       *Symbol
	StackLocation int
	DeclaringFn   *Scope // nearest enclosing function scope at declaration time
	UseCount      int

	// GenericArity is the number of formal generic parameters a
	// SymFunction symbol was declared with (0 for a non-generic
	// function), used to unify against a TemplateInstantiation's
	// actual argument count.
	GenericArity int
}

type SymbolKind int

const (
	SymVariable SymbolKind = iota
	SymFunction
	SymType
	SymGenericParam
)

// Scope is one lexical nesting level. The resolver builds a tree of
// these rooted at the compilation unit's top-level scope.
type Scope struct {
	Parent   *Scope
	Kind     ScopeKind
	Index    int // position among siblings, used for Identifier.ScopeIndex
	Symbols  map[string]*Symbol
	Children []*Scope
	nextSlot int
}

func NewScope(parent *Scope, kind ScopeKind) *Scope {
	s := &Scope{Parent: parent, Kind: kind, Symbols: make(map[string]*Symbol)}
	if parent != nil {
		s.Index = len(parent.Children)
		parent.Children = append(parent.Children, s)
	}
	return s
}

// EnclosingFunction returns the nearest ancestor scope (including
// itself) whose kind is ScopeFunction or ScopePureFunction, or nil at
// top level.
func (s *Scope) EnclosingFunction() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == ScopeFunction || cur.Kind == ScopePureFunction {
			return cur
		}
	}
	return nil
}

// EnclosingLoop returns the nearest ancestor loop scope, used to
// validate break/continue placement.
func (s *Scope) EnclosingLoop() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == ScopeLoop {
			return cur
		}
		if cur.Kind == ScopeFunction || cur.Kind == ScopePureFunction {
			return nil // a loop does not reach through a function boundary
		}
	}
	return nil
}

// Declare registers a new symbol in this scope, assigning it the next
// stack slot.
func (s *Scope) Declare(sym *Symbol) {
	sym.StackLocation = s.nextSlot
	s.nextSlot++
	sym.DeclaringFn = s.EnclosingFunction()
	s.Symbols[sym.Name] = sym
}

// Resolve searches this scope and its ancestors outward, returning the
// symbol and the scope that declared it: name resolution searches
// outward through enclosing scopes.
func (s *Scope) Resolve(name string) (*Symbol, *Scope) {
	for cur := s; cur != nil; cur = cur.Parent {
		if sym, ok := cur.Symbols[name]; ok {
			return sym, cur
		}
	}
	return nil, nil
}
