// Package reporting accumulates per-stage compiler pipeline statistics and
// renders them for the driver's --stats output, using
// github.com/dustin/go-humanize for byte/count/relative-time formatting the
// way a reader would expect from a CLI summary rather than raw numbers;
// stage durations print in time.Duration's own form.
package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Report accumulates counts and timings across one compile run.
type Report struct {
	RunID string

	TokensLexed        int
	ASTFunctions        int
	InstructionsBefore  int
	InstructionsAfter   int
	AssemblyBytes       int

	LexDuration    time.Duration
	ParseDuration  time.Duration
	SemaDuration   time.Duration
	IRDuration     time.Duration
	OptimDuration  time.Duration
	CodegenDuration time.Duration

	StartedAt time.Time
}

// New starts a Report, stamping StartedAt for the eventual humanize.Time
// "ago" rendering.
func New(runID string) *Report {
	return &Report{RunID: runID, StartedAt: time.Now()}
}

// Total sums every recorded stage duration.
func (r *Report) Total() time.Duration {
	return r.LexDuration + r.ParseDuration + r.SemaDuration + r.IRDuration + r.OptimDuration + r.CodegenDuration
}

// String renders a human-readable multi-line summary.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s, started %s\n", r.RunID, humanize.Time(r.StartedAt))
	fmt.Fprintf(&b, "  tokens lexed:          %s\n", humanize.Comma(int64(r.TokensLexed)))
	fmt.Fprintf(&b, "  functions parsed:      %s\n", humanize.Comma(int64(r.ASTFunctions)))
	fmt.Fprintf(&b, "  instructions (raw):    %s\n", humanize.Comma(int64(r.InstructionsBefore)))
	fmt.Fprintf(&b, "  instructions (opt):    %s\n", humanize.Comma(int64(r.InstructionsAfter)))
	if r.InstructionsBefore > 0 {
		reduced := r.InstructionsBefore - r.InstructionsAfter
		pct := 100 * float64(reduced) / float64(r.InstructionsBefore)
		fmt.Fprintf(&b, "  removed by optimizer:  %s (%.1f%%)\n", humanize.Comma(int64(reduced)), pct)
	}
	fmt.Fprintf(&b, "  assembly size:         %s\n", humanize.Bytes(uint64(r.AssemblyBytes)))
	fmt.Fprintf(&b, "  lex:      %s\n", r.LexDuration)
	fmt.Fprintf(&b, "  parse:    %s\n", r.ParseDuration)
	fmt.Fprintf(&b, "  sema:     %s\n", r.SemaDuration)
	fmt.Fprintf(&b, "  ir gen:   %s\n", r.IRDuration)
	fmt.Fprintf(&b, "  optimize: %s\n", r.OptimDuration)
	fmt.Fprintf(&b, "  codegen:  %s\n", r.CodegenDuration)
	fmt.Fprintf(&b, "  total:    %s\n", r.Total())
	return b.String()
}

// Timed runs fn, recording its elapsed duration into *slot.
func Timed(slot *time.Duration, fn func()) {
	start := time.Now()
	fn()
	*slot = time.Since(start)
}
