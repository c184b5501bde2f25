// Package errors defines the diagnostic types shared across the MiniC
// pipeline: lexical, parser, and semantic errors, each carrying a source
// location so the driver can print a caret-annotated line.
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind distinguishes the three fatal diagnostic categories from spec §7.
type Kind string

const (
	Lexical  Kind = "LexicalError"
	Syntax   Kind = "ParserError"
	Semantic Kind = "SemanticError"
)

// Location is a 1-based line:column position in the source text.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// CompileError is the single error type raised by the lexer, parser, and
// semantic analyzer. The first one raised terminates the pipeline (§7: no
// recovery, no error aggregation).
type CompileError struct {
	Kind     Kind
	Message  string
	Location Location
	Source   string // the offending source line, if known
}

func (e *CompileError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s at %s", e.Kind, e.Message, e.Location)
	if e.Source != "" {
		pad := strings.Repeat(" ", len(fmt.Sprintf("%d | ", e.Location.Line))+max(e.Location.Column-1, 0))
		fmt.Fprintf(&sb, "\n  %d | %s\n  %s^", e.Location.Line, e.Source, pad)
	}
	return sb.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// WithSource attaches the offending source line for display.
func (e *CompileError) WithSource(line string) *CompileError {
	e.Source = line
	return e
}

// NewParserError builds a ParserError in the "expected X, found Y" shape
// required by spec §4.2/§7.
func NewParserError(line, col int, expected, foundType, foundValue string) *CompileError {
	msg := fmt.Sprintf("expected %s, found %s ('%s')", expected, foundType, foundValue)
	return &CompileError{Kind: Syntax, Message: msg, Location: Location{Line: line, Column: col}}
}

// NewSemanticError builds a SemanticError at the given location.
func NewSemanticError(line, col int, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: Semantic, Message: fmt.Sprintf(format, args...), Location: Location{Line: line, Column: col}}
}

// PipelineError wraps a stage name around an underlying error — used by the
// driver (including around internal/cache failures) and by
// internal/rpcserver to report which stage
// of the pipeline a failure came from without discarding the original error.
// Err is produced via pkg/errors.Wrap so Cause(err) still recovers the
// original CompileError underneath the stage annotation.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Cause returns the root error beneath any PipelineError/pkg-errors
// wrapping, mirroring pkg/errors.Cause.
func Cause(err error) error {
	for {
		err = pkgerrors.Cause(err)
		pe, ok := err.(*PipelineError)
		if !ok {
			return err
		}
		err = pe.Err
	}
}

// Wrap annotates err with the pipeline stage that produced it.
func Wrap(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &PipelineError{Stage: stage, Err: pkgerrors.Wrap(err, stage)}
}
