package compiler

import "fmt"

// LexError reports a character matching no token rule. It aborts tokenisation.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error: line %d col %d: %s", e.Line, e.Col, e.Msg)
}

// ParseError reports a grammar violation after all backtrack alternatives
// have been exhausted. It carries the offending token's location and the
// trimmed source line for context.
type ParseError struct {
	Line    int
	Col     int
	Msg     string
	Snippet string
}

func (e *ParseError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("parse error: line %d col %d: %s", e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("parse error: line %d col %d: %s\n  |> %s", e.Line, e.Col, e.Msg, e.Snippet)
}

// AnalysisError is the one fatal analysis class: an argument passed to a
// declared function does not match the declared parameter type. Extern
// signatures are the contract crossing the FFI boundary, so violating them
// aborts analysis instead of accumulating as a warning.
type AnalysisError struct {
	Source   string // source unit the call appears in
	Function string
	Param    string
	Expected string
	Actual   string
	Line     int
	Col      int
}

func (e *AnalysisError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s:%d: call to %s: parameter %q expects %s, got %s",
			e.Source, e.Line, e.Function, e.Param, e.Expected, e.Actual)
	}
	return fmt.Sprintf("line %d: call to %s: parameter %q expects %s, got %s",
		e.Line, e.Function, e.Param, e.Expected, e.Actual)
}

// CodegenError reports a construct with no defined lowering.
type CodegenError struct {
	Msg string
}

func (e *CodegenError) Error() string {
	return "codegen error: " + e.Msg
}

// Severity classifies a Diagnostic. Only advisory severities exist here;
// fatal conditions are returned as errors, never as diagnostics, so callers
// cannot mistake one for the other.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityHint:
		return "hint"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Diagnostic is a single advisory finding produced by the Analyzer.
type Diagnostic struct {
	Message  string
	Severity Severity
	Source   string // source unit the finding was produced for
	Line     int
	Col      int
}

func (d Diagnostic) String() string {
	if d.Source != "" {
		return fmt.Sprintf("%s: %s:%d: %s", d.Severity, d.Source, d.Line, d.Message)
	}
	return fmt.Sprintf("%s: line %d: %s", d.Severity, d.Line, d.Message)
}
