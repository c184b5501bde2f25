package sema

import (
	"strings"
	"testing"

	"minicc/internal/lexer"
	"minicc/internal/parser"
)

func analyzeSource(t *testing.T, src string) error {
	t.Helper()
	prog, err := parser.New(lexer.Tokenize(src)).Parse()
	if err != nil {
		t.Fatalf("parse %q: unexpected error: %v", src, err)
	}
	_, err = Analyze(prog)
	return err
}

func TestAnalyzeAcceptsWellTypedProgram(t *testing.T) {
	if err := analyzeSource(t, "int main(){ int a = 2 + 3 * 4; return a; }"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Scenario 4: type-error rejection.
func TestAnalyzeRejectsBoolFromIntExpr(t *testing.T) {
	err := analyzeSource(t, "int main(){ bool b = 1 + 2; return 0; }")
	if err == nil {
		t.Fatal("expected a semantic error")
	}
	if !strings.Contains(err.Error(), "b") {
		t.Errorf("expected error to mention 'b', got: %v", err)
	}
}

// Scenario 5: undeclared use.
func TestAnalyzeRejectsUndeclaredVariable(t *testing.T) {
	err := analyzeSource(t, "int main(){ x = 3; return 0; }")
	if err == nil {
		t.Fatal("expected a semantic error")
	}
	if !strings.Contains(err.Error(), "x") {
		t.Errorf("expected error to mention 'x', got: %v", err)
	}
}

func TestAnalyzeRejectsMissingMain(t *testing.T) {
	err := analyzeSource(t, "int helper(){ return 0; }")
	if err == nil {
		t.Fatal("expected an error for a program with no main")
	}
}

func TestAnalyzeRejectsDuplicateFunction(t *testing.T) {
	err := analyzeSource(t, "int f(){ return 0; } int f(){ return 1; } int main(){ return 0; }")
	if err == nil {
		t.Fatal("expected an error for a duplicate function definition")
	}
}

func TestAnalyzeAllowsFloatFromIntWidening(t *testing.T) {
	if err := analyzeSource(t, "int main(){ float f = 2; return 0; }"); err != nil {
		t.Fatalf("int->float widening should be allowed: %v", err)
	}
}
