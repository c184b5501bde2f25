package codegen

import (
	"strings"
	"testing"

	"minicc/internal/ir"
)

func TestGenerateBinopSequence(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{Name: "main", Code: []ir.Instruction{
		{Op: ir.OpBinop, Dest: "t1", Src1: "a", Src2: "+ b"},
	}}}}
	out := Generate(prog)
	want := "LOAD a\nLOAD b\nADD\nSTORE t1\n"
	if out != want {
		t.Errorf("got:\n%q\nwant:\n%q", out, want)
	}
}

// cjump lowers to JFALSE, not the spec table's literal JTRUE text — the
// resolved polarity fix (spec §9 Open Question 1).
func TestCjumpLowersToJFALSE(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{Name: "main", Code: []ir.Instruction{
		{Op: ir.OpCjump, Dest: "a", Label: "L1"},
	}}}}
	out := Generate(prog)
	if !strings.Contains(out, "JFALSE L1") {
		t.Errorf("expected JFALSE L1 in output, got: %q", out)
	}
	if strings.Contains(out, "JTRUE") {
		t.Errorf("did not expect JTRUE in output, got: %q", out)
	}
}

func TestCallLowersArgsAndResult(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{Name: "main", Code: []ir.Instruction{
		{Op: ir.OpCall, Dest: "t1", Src1: "a,b", Src2: "add"},
	}}}}
	out := Generate(prog)
	want := "PUSH a\nPUSH b\nCALL add\nSTORE t1\n"
	if out != want {
		t.Errorf("got:\n%q\nwant:\n%q", out, want)
	}
}

func TestVoidCallEmitsNoStore(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{Name: "main", Code: []ir.Instruction{
		{Op: ir.OpCall, Src1: "1", Src2: "print"},
	}}}}
	out := Generate(prog)
	if strings.Contains(out, "STORE") {
		t.Errorf("void call should emit no STORE, got: %q", out)
	}
}

func TestUnopLowering(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{Name: "main", Code: []ir.Instruction{
		{Op: ir.OpUnop, Dest: "t1", Src1: "-", Src2: "a"},
	}}}}
	out := Generate(prog)
	want := "LOAD a\nNEG\nSTORE t1\n"
	if out != want {
		t.Errorf("got:\n%q\nwant:\n%q", out, want)
	}
}
