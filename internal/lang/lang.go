// Package lang implements the frontend for the L language: lexer, parser,
// binder/checker, and formatter. Compile is the single entry point; it
// produces an Analysis, the immutable per-document snapshot the server
// layer queries (symbols, references, spans, struct layouts, diagnostics).
package lang

// Span is a half-open [Start, End) byte range over the source text.
type Span struct {
	Start int
	End   int
}

// Covers reports whether the offset lies inside the span.
func (s Span) Covers(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Empty reports whether the span is degenerate.
func (s Span) Empty() bool {
	return s.Start >= s.End
}

// Phase identifies the compile stage that produced a diagnostic.
type Phase int

const (
	PhaseSyntax Phase = iota // lexer and parser
	PhaseTypes               // binder and checker
)

// Diagnostic is one problem found during compilation.
type Diagnostic struct {
	Span    Span
	Message string
	Phase   Phase
}
