package reporting

import (
	"strings"
	"testing"
)

func TestReportStringIncludesCounts(t *testing.T) {
	r := New("run-1")
	r.TokensLexed = 42
	r.ASTFunctions = 2
	r.InstructionsBefore = 20
	r.InstructionsAfter = 12
	r.AssemblyBytes = 256

	out := r.String()
	for _, want := range []string{"run-1", "42", "2", "20", "12", "removed by optimizer"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}

func TestReportTotalSumsDurations(t *testing.T) {
	r := New("run-2")
	Timed(&r.LexDuration, func() {})
	Timed(&r.ParseDuration, func() {})
	if r.Total() < 0 {
		t.Fatal("total duration should never be negative")
	}
	if got, want := r.Total(), r.LexDuration+r.ParseDuration; got != want {
		t.Fatalf("Total() = %s, want lex+parse = %s", got, want)
	}
}

func TestReportSkipsReductionLineWithNoInstructions(t *testing.T) {
	r := New("run-3")
	out := r.String()
	if strings.Contains(out, "removed by optimizer") {
		t.Error("should not print a reduction percentage with zero instructions")
	}
}
