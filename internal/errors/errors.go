// Package errors implements the diagnostic sink shared by every compiler
// stage: lexical, parse, and semantic problems all flow through the same
// ErrorHandler so the driver can report them uniformly and decide, based on
// the configured WarningMode, whether a warning is dropped, kept, or
// promoted to an error.
package errors

import (
	"fmt"
	"strings"

	"github.com/mwscript-go/mwsc/internal/lexer"
)

// WarningMode controls how warnings are treated once emitted.
type WarningMode int

const (
	// WarningNormal keeps warnings as warnings.
	WarningNormal WarningMode = iota
	// WarningIgnore drops warnings silently.
	WarningIgnore
	// WarningStrict promotes every warning to an error.
	WarningStrict
)

// Severity distinguishes the diagnostic classes a CompilerError may carry.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// CompilerError is a single positioned diagnostic.
type CompilerError struct {
	Message  string
	Pos      lexer.Position
	Severity Severity
}

func (e *CompilerError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Severity, e.Message)
}

// Format renders the diagnostic with the offending source line and a caret,
// matching the single-line presentation used by tools that shell out to the
// compiler and show the user exactly where things went wrong.
func (e *CompilerError) Format(source string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s: %s\n", e.Pos, e.Severity, e.Message)

	line := sourceLine(source, e.Pos.Line)
	if line != "" {
		sb.WriteString(line)
		sb.WriteString("\n")
		col := e.Pos.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", col-1))
		sb.WriteString("^")
	}
	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	if source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// Handler accumulates diagnostics for a single compilation unit and applies
// the configured WarningMode at the moment each warning is emitted. It is
// the concrete implementation of the ErrorHandler collaborator described in
// the pipeline's external interfaces.
type Handler struct {
	mode   WarningMode
	errs   []*CompilerError
	warns  []*CompilerError
	source string
}

// NewHandler creates a Handler using the given warning mode.
func NewHandler(mode WarningMode) *Handler {
	return &Handler{mode: mode}
}

// SetSource attaches the original source text so Format can print context
// lines; it has no effect on diagnostic classification.
func (h *Handler) SetSource(source string) {
	h.source = source
}

// Error records a fatal diagnostic. Errors are never affected by WarningMode.
func (h *Handler) Error(message string, pos lexer.Position) {
	h.errs = append(h.errs, &CompilerError{Message: message, Pos: pos, Severity: SeverityError})
}

// Warning records a non-fatal diagnostic, subject to WarningMode:
// WarningIgnore drops it, WarningStrict files it as an error instead,
// WarningNormal keeps it as a warning.
func (h *Handler) Warning(message string, pos lexer.Position) {
	switch h.mode {
	case WarningIgnore:
		return
	case WarningStrict:
		h.errs = append(h.errs, &CompilerError{Message: message, Pos: pos, Severity: SeverityError})
	default:
		h.warns = append(h.warns, &CompilerError{Message: message, Pos: pos, Severity: SeverityWarning})
	}
}

// Reset clears all accumulated diagnostics, readying the Handler for reuse
// across a batch of compiles by the same driver instance.
func (h *Handler) Reset() {
	h.errs = nil
	h.warns = nil
}

// IsGood reports whether no errors have been recorded. Warnings never affect
// this (even under WarningStrict, where they have already become errors).
func (h *Handler) IsGood() bool {
	return len(h.errs) == 0
}

// Errors returns the accumulated error-severity diagnostics, in emission order.
func (h *Handler) Errors() []*CompilerError {
	return h.errs
}

// Warnings returns the accumulated warning-severity diagnostics (empty under
// WarningIgnore and WarningStrict, since both modes remove warnings from this list).
func (h *Handler) Warnings() []*CompilerError {
	return h.warns
}

// All returns errors followed by warnings, in their respective emission order.
func (h *Handler) All() []*CompilerError {
	out := make([]*CompilerError, 0, len(h.errs)+len(h.warns))
	out = append(out, h.errs...)
	out = append(out, h.warns...)
	return out
}

// FormatAll renders every diagnostic, one per line-block, using Format.
func (h *Handler) FormatAll() string {
	all := h.All()
	if len(all) == 0 {
		return ""
	}
	parts := make([]string, 0, len(all))
	for _, e := range all {
		parts = append(parts, e.Format(h.source))
	}
	return strings.Join(parts, "\n\n")
}
