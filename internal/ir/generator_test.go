package ir

import (
	"strings"
	"testing"

	"minicc/internal/lexer"
	"minicc/internal/parser"
	"minicc/internal/sema"
)

func generate(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := parser.New(lexer.Tokenize(src)).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := sema.Analyze(prog); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return Generate(prog)
}

// Temps are t1, t2, ... in strict emission order (spec §8 invariant).
func TestGenerateTempNumbering(t *testing.T) {
	p := generate(t, "int main(){ int a = 1 + 2 * 3; return a; }")
	fn := p.Functions[0]

	// Every temp, in strict emission order: one per literal (1, 2, 3 each
	// get their own `assign t = literal-text` per spec.md's lowering
	// contract) followed by one per binop (2*3, then 1+(2*3)).
	var temps []string
	for _, instr := range fn.Code {
		if instr.Op == OpAssign || instr.Op == OpBinop || instr.Op == OpUnop {
			if strings.HasPrefix(instr.Dest, "t") {
				temps = append(temps, instr.Dest)
			}
		}
	}
	want := []string{"t1", "t2", "t3", "t4", "t5"}
	if len(temps) != len(want) {
		t.Fatalf("got temps %v, want %v", temps, want)
	}
	for i := range want {
		if temps[i] != want[i] {
			t.Errorf("temp %d: got %s, want %s", i, temps[i], want[i])
		}
	}
}

// Scenario 2: if/else lowering shape — one each of cjump/jump, two labels.
func TestGenerateIfElseShape(t *testing.T) {
	p := generate(t, `int main(){ int x = 5; if (x > 3) { print(1); } else { print(0); } return 0; }`)
	fn := p.Functions[0]

	var cjumps, jumps, labels int
	for _, instr := range fn.Code {
		switch instr.Op {
		case OpCjump:
			cjumps++
		case OpJump:
			jumps++
		case OpLabel:
			labels++
		}
	}
	// labels includes the function-entry label plus the if/else's two.
	if cjumps != 1 {
		t.Errorf("got %d cjump instructions, want 1", cjumps)
	}
	if jumps != 1 {
		t.Errorf("got %d jump instructions, want 1", jumps)
	}
	if labels != 3 {
		t.Errorf("got %d label instructions, want 3 (entry + else + end)", labels)
	}
}

func TestGeneratePrintCallHasNoDestTemp(t *testing.T) {
	p := generate(t, `int main(){ print(1); return 0; }`)
	fn := p.Functions[0]
	for _, instr := range fn.Code {
		if instr.Op == OpCall && instr.Src2 == "print" {
			if instr.Dest != "" {
				t.Errorf("print call got a dest temp %q, want none", instr.Dest)
			}
			return
		}
	}
	t.Fatal("no call to print found")
}

func TestGenerateUnopFieldLayout(t *testing.T) {
	p := generate(t, `int main(){ int a = 1; int b = -a; return b; }`)
	fn := p.Functions[0]
	for _, instr := range fn.Code {
		if instr.Op == OpUnop {
			if instr.Src1 != "-" {
				t.Fatalf("unop Src1 should hold the operator, got %q", instr.Src1)
			}
			if instr.Src2 != "a" {
				t.Fatalf("unop Src2 should hold the operand, got %q", instr.Src2)
			}
			return
		}
	}
	t.Fatal("no unop instruction found")
}

func TestGenerateCjumpConditionLivesInDest(t *testing.T) {
	p := generate(t, `int main(){ int x = 1; if (x > 0) { print(1); } return 0; }`)
	fn := p.Functions[0]
	for _, instr := range fn.Code {
		if instr.Op == OpCjump {
			if instr.Dest == "" {
				t.Fatal("cjump's Dest should hold the condition operand")
			}
			if instr.Src1 != "" {
				t.Errorf("cjump's Src1 should be unused, got %q", instr.Src1)
			}
			return
		}
	}
	t.Fatal("no cjump instruction found")
}
