// Package errors carries the middle end's diagnostics: every resolver,
// type-checker, and layout-planner error is a *CoreError so callers can
// collect, sort, and render them uniformly.
package errors

import (
	"fmt"
	"strings"
)

// Kind names a broad error category so callers can group or filter
// diagnostics without string-matching messages.
type Kind string

const (
	Lexical       Kind = "LexicalError" // parser surface, propagated transparently
	Syntax        Kind = "SyntaxError"
	NameErr       Kind = "NameError"     // unknown/ambiguous name, cyclic base, duplicate member, ...
	TypeErr       Kind = "TypeError"     // arity, assignability, mutability, cold-lambda, forbidden field type, ...
	InternalError Kind = "InternalError" // assertion failures that should never surface to a user
)

// Location pinpoints a diagnostic in source text.
type Location struct {
	File   string
	Line   int32
	Column int32
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// StackFrame annotates a diagnostic with the call context it was raised in.
type StackFrame struct {
	Function string
	Location Location
}

// CoreError is the single error type every middle-end pass raises.
type CoreError struct {
	Kind      Kind
	Message   string
	Location  Location
	Source    string // optional source line for caret rendering
	CallStack []StackFrame
}

func New(kind Kind, loc Location, format string, args ...interface{}) *CoreError {
	return &CoreError{Kind: kind, Location: loc, Message: fmt.Sprintf(format, args...)}
}

func (e *CoreError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", e.Kind, e.Message)
	if e.Location.File != "" {
		fmt.Fprintf(&sb, "  at %s\n", e.Location)
		if e.Source != "" {
			prefix := fmt.Sprintf("  %d | ", e.Location.Line)
			fmt.Fprintf(&sb, "\n%s%s\n", prefix, e.Source)
			sb.WriteString(strings.Repeat(" ", len(prefix)))
			if e.Location.Column > 0 {
				sb.WriteString(strings.Repeat(" ", int(e.Location.Column)-1))
			}
			sb.WriteString("^\n")
		}
	}
	for _, f := range e.CallStack {
		if f.Function != "" {
			fmt.Fprintf(&sb, "  at %s (%s)\n", f.Function, f.Location)
		} else {
			fmt.Fprintf(&sb, "  at %s\n", f.Location)
		}
	}
	return sb.String()
}

func (e *CoreError) WithSource(src string) *CoreError {
	e.Source = src
	return e
}

func (e *CoreError) AddFrame(function string, loc Location) *CoreError {
	e.CallStack = append(e.CallStack, StackFrame{Function: function, Location: loc})
	return e
}

// Bag collects every error a pass encounters so a single run can report
// all of them at once instead of stopping at the first failure.
type Bag struct {
	errs []*CoreError
}

func (b *Bag) Add(e *CoreError) { b.errs = append(b.errs, e) }

func (b *Bag) Addf(kind Kind, loc Location, format string, args ...interface{}) {
	b.Add(New(kind, loc, format, args...))
}

func (b *Bag) Empty() bool { return len(b.errs) == 0 }

func (b *Bag) Errors() []*CoreError { return b.errs }

func (b *Bag) Error() string {
	parts := make([]string, len(b.errs))
	for i, e := range b.errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}

// ExitCode maps the bag to a process exit status: 0 on success, 1 once any
// error was recorded.
func (b *Bag) ExitCode() int {
	if b.Empty() {
		return 0
	}
	return 1
}
