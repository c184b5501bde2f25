package parser

import (
	"testing"

	"minicc/internal/ast"
	"minicc/internal/lexer"
)

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := New(lexer.Tokenize(src)).Parse()
	if err != nil {
		t.Fatalf("parse %q: unexpected error: %v", src, err)
	}
	return prog
}

func TestParseFunctionHeader(t *testing.T) {
	prog := parseSource(t, "int main() { return 0; }")
	if len(prog.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "main" || fn.RetType != ast.TVoid && fn.RetType != ast.TInt {
		t.Errorf("unexpected function shape: %+v", fn)
	}
	if fn.RetType != ast.TInt {
		t.Errorf("got RetType %s, want int", fn.RetType)
	}
}

func TestParseParams(t *testing.T) {
	prog := parseSource(t, "int add(int a, int b) { return a + b; }")
	fn := prog.Functions[0]
	if len(fn.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(fn.Params))
	}
	if fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Errorf("unexpected param names: %+v", fn.Params)
	}
}

// precedence: || binds tighter than && (spec's documented quirk — not a
// bug to fix), so "a && b || c" parses as "a && (b || c)".
func TestOrBindsTighterThanAnd(t *testing.T) {
	prog := parseSource(t, "int main() { bool x = true && false || true; return 0; }")
	decl := prog.Functions[0].Body.Statements[0].(*ast.VarDecl)
	top, ok := decl.Init.(*ast.Binary)
	if !ok {
		t.Fatalf("expected top-level Binary, got %T", decl.Init)
	}
	if top.Op != "&&" {
		t.Fatalf("expected top-level op &&, got %s", top.Op)
	}
	right, ok := top.Right.(*ast.Binary)
	if !ok || right.Op != "||" {
		t.Fatalf("expected right operand to be a || expression, got %+v", top.Right)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := parseSource(t, `int main(){ int x = 5; if (x > 3) { print(1); } else { print(0); } return 0; }`)
	ifStmt, ok := prog.Functions[0].Body.Statements[1].(*ast.If)
	if !ok {
		t.Fatalf("expected If statement, got %T", prog.Functions[0].Body.Statements[1])
	}
	if ifStmt.Else == nil {
		t.Fatal("expected an else branch")
	}
}

func TestParseErrorOnMalformedHeader(t *testing.T) {
	_, err := New(lexer.Tokenize("int main( { return 0; }")).Parse()
	if err == nil {
		t.Fatal("expected a parse error for a missing parameter-list close paren")
	}
}
