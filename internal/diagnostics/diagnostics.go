// Package diagnostics implements the compiler's error/warning list: a
// stable message id, a severity level, a source location, and
// optional formatted arguments, sorted by location before being
// surfaced to a caller.
package diagnostics

import (
	"fmt"
	"sort"

	"github.com/ajmd17/ace-lang-sub002/internal/token"
)

// Severity distinguishes errors (which block a successful compile) from
// warnings (which do not).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Code identifiers. One family per pipeline stage, matching the
// teacher's convention of short stage-prefixed codes.
const (
	LexUnterminatedToken = "L001"
	LexInvalidEscape     = "L002"

	ParseUnexpectedToken = "P001"
	ParseExpectedToken   = "P002"

	TypeMismatch        = "T001"
	TypeDivisionByZero  = "T002"
	TypeUnknownMember   = "T003"
	TypeGenericConflict = "T004"
	TypeYieldContext    = "T-YIELD-CTX"

	NameUnresolved = "N001"
	NameRedeclared = "N002"

	DirectiveUnknown = "D001"

	EmitInvariant = "E001"
)

// Diagnostic is a single compiler-reported condition.
type Diagnostic struct {
	Severity Severity
	Code     string
	Token    token.Token
	Message  string
}

func New(severity Severity, code string, tok token.Token, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Severity: severity,
		Code:     code,
		Token:    tok,
		Message:  fmt.Sprintf(format, args...),
	}
}

func NewError(code string, tok token.Token, format string, args ...interface{}) *Diagnostic {
	return New(SeverityError, code, tok, format, args...)
}

func NewWarning(code string, tok token.Token, format string, args ...interface{}) *Diagnostic {
	return New(SeverityWarning, code, tok, format, args...)
}

func (d *Diagnostic) Error() string {
	loc := fmt.Sprintf("%d:%d", d.Token.Line, d.Token.Column)
	if d.Token.File != "" {
		loc = d.Token.File + ":" + loc
	}
	return fmt.Sprintf("%s: %s [%s] %s", loc, d.Severity, d.Code, d.Message)
}

// List is a collection of diagnostics with sort/query helpers.
type List []*Diagnostic

// Sort orders diagnostics by file, then line, then column —'s
// "the error list is sorted by location before being surfaced".
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Token, l[j].Token
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// HasErrors reports whether any diagnostic in the list has error
// severity. Compilation succeeds only if this is false.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (l List) Errors() List {
	out := make(List, 0, len(l))
	for _, d := range l {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}
