// Package diag defines the classified, positioned errors shared by the
// compiler stages and the TAC virtual machine.
package diag

import (
	"fmt"
	"strings"
)

// Kind classifies an error by the pipeline stage that produced it.
type Kind int

const (
	Lexical Kind = iota
	Syntax
	Semantic
	Runtime
)

var kindNames = [...]string{
	Lexical:  "lexical",
	Syntax:   "syntax",
	Semantic: "semantic",
	Runtime:  "runtime",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a classified error with an optional source position and the
// offending source line. Line and Col are 1-based; Line 0 means the error
// has no position (runtime faults, for example).
type Error struct {
	Kind       Kind
	Message    string
	Line       int
	Col        int
	SourceLine string
}

// Newf builds an Error of the given kind at a source position.
func Newf(kind Kind, line, col int, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Col:     col,
	}
}

// WithSource attaches the source line the error points into, for the
// "|>" snippet in the rendered message.
func (e *Error) WithSource(line string) *Error {
	e.SourceLine = line
	return e
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&sb, "%s error at line %d, col %d: %s", e.Kind, e.Line, e.Col, e.Message)
	} else {
		fmt.Fprintf(&sb, "%s error: %s", e.Kind, e.Message)
	}
	if src := strings.TrimSpace(e.SourceLine); src != "" {
		fmt.Fprintf(&sb, "\n  |> %s", src)
	}
	return sb.String()
}
