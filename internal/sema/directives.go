package sema

import "github.com/ajmd17/ace-lang-sub002/internal/ast"

// LibraryPaths returns the arguments of every `use library […]`
// directive seen in the unit, in source order, for the native loader
// (the loader itself resolves paths at link time; this only surfaces
// the declared paths).
func (u *CompilationUnit) LibraryPaths() []string {
	var paths []string
	for _, d := range u.Directives {
		if d.Name != "library" {
			continue
		}
		for _, arg := range d.Args {
			if s, ok := arg.ValueOf().(*ast.StringLiteral); ok {
				paths = append(paths, s.Value)
			}
		}
	}
	return paths
}
