package ace_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ajmd17/ace-lang-sub002/internal/ace"
)

// compileAndRun writes source to a scratch .ace file, compiles it
// through the full pipeline, and runs the resulting container,
// returning everything printed to stdout.
func compileAndRun(t *testing.T, source string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ace")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	encoded, err := ace.Compile(path, ace.Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var out bytes.Buffer
	code, err := ace.Run(encoded, ace.RunOptions{Stdout: &out})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	return out.String()
}

func TestArithmeticAndLocals(t *testing.T) {
	got := compileAndRun(t, `let x = 3; let y = 4; print x * x + y * y`)
	if got != "25" {
		t.Fatalf("output = %q, want %q", got, "25")
	}
}

func TestClosureCapturingLocal(t *testing.T) {
	got := compileAndRun(t, `func make(n){ func inner(){ return n + 1 } return inner } print make(41)()`)
	if got != "42" {
		t.Fatalf("output = %q, want %q", got, "42")
	}
}

func TestTryCatchThrownString(t *testing.T) {
	got := compileAndRun(t, `try { throw "oops" } catch { print "caught" }`)
	if got != "caught" {
		t.Fatalf("output = %q, want %q", got, "caught")
	}
}

func TestArrayForEachLowering(t *testing.T) {
	got := compileAndRun(t, `let a = [1,2,3,4]; let s = 0; for x in a { s = s + x } print s`)
	if got != "10" {
		t.Fatalf("output = %q, want %q", got, "10")
	}
}

func TestGenericFunctionInstantiation(t *testing.T) {
	got := compileAndRun(t, `func id<T>(x: T) -> T { return x } print id<Int>(7) + id<Int>(5)`)
	if got != "12" {
		t.Fatalf("output = %q, want %q", got, "12")
	}
}

func TestRuntimeDivisionByZeroIsCatchable(t *testing.T) {
	got := compileAndRun(t, `let z = 0; try { print 10 / z } catch { print "div0" }`)
	if got != "div0" {
		t.Fatalf("output = %q, want %q", got, "div0")
	}
}

func TestCompileErrorSurfacesDiagnostics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.ace")
	if err := os.WriteFile(path, []byte(`let x = ;`), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	_, err := ace.Compile(path, ace.Options{})
	if err == nil {
		t.Fatal("expected a compile error for invalid syntax")
	}
	compileErr, ok := err.(*ace.CompileError)
	if !ok {
		t.Fatalf("error type = %T, want *ace.CompileError", err)
	}
	if len(compileErr.Diagnostics) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
}
