// Package mwscript is the compiler pipeline's public façade: the thin
// driver that builds a fresh parser for each call, wires the Context and Extensions
// collaborators through the scanner/parser/local-scan/semantic/codegen
// stages, and exposes the three entry points a host engine needs —
// Compile, GetLocals, and CompileAll — without requiring the caller to
// know about any internal package.
package mwscript

import (
	"strings"

	"github.com/mwscript-go/mwsc/internal/ast"
	"github.com/mwscript-go/mwsc/internal/bytecode"
	"github.com/mwscript-go/mwsc/internal/context"
	"github.com/mwscript-go/mwsc/internal/errors"
	"github.com/mwscript-go/mwsc/internal/extensions"
	"github.com/mwscript-go/mwsc/internal/lexer"
	"github.com/mwscript-go/mwsc/internal/locals"
	"github.com/mwscript-go/mwsc/internal/parser"
	"github.com/mwscript-go/mwsc/internal/semantic"
)

// Output aggregates a successful compile's artifacts: the emitted chunk
// (code stream plus literal pools) and the local table it was built
// against, matching the pipeline's output value described for callers that
// serialize or feed the result to the external VM.
type Output struct {
	Chunk  *bytecode.Chunk
	Locals *locals.Table
}

// Driver is a reusable compiler pipeline bound to one Context, one
// Extensions registry, and one warning mode. A Driver is not safe for
// concurrent use: each call resets its own deferred-diagnostic and error
// state. Callers compiling in parallel should construct one Driver per
// goroutine, sharing only the read-only Context and Extensions.
type Driver struct {
	ctx         context.Context
	ext         *extensions.Registry
	warningMode errors.WarningMode
	consoleMode bool
}

// NewDriver returns a Driver over ctx and ext. warningMode controls how the
// error handler treats emitted warnings; consoleMode controls whether an
// unconsumed function-call statement auto-reports its result or is
// silently discarded, matching the code generator's two output shapes.
func NewDriver(ctx context.Context, ext *extensions.Registry, warningMode errors.WarningMode, consoleMode bool) *Driver {
	return &Driver{ctx: ctx, ext: ext, warningMode: warningMode, consoleMode: consoleMode}
}

// Compile runs the full pipeline over source, named name for diagnostics.
// It returns the emitted Output, whether the compile succeeded, and the
// error handler carrying every diagnostic recorded along the way
// (including warnings, even on success). On parse failure or any
// analyzer-reported error, Compile returns early with ok=false and no
// Output; codegen never runs when the error handler is not good.
func (d *Driver) Compile(source, name string) (out *Output, ok bool, h *errors.Handler) {
	mod, tbl, h, ok := d.frontEnd(source, name)
	if !ok {
		return nil, false, h
	}

	compiler := bytecode.NewCompiler(name, d.ext, d.consoleMode)
	chunk, err := compiler.Compile(mod, tbl.Len())
	if err != nil {
		h.Error(err.Error(), lexer.Position{SourceName: name})
		return nil, false, h
	}

	return &Output{Chunk: chunk, Locals: tbl}, true, h
}

// GetLocals runs only the scanner, parser, and local-scan pass, exposing a
// script's declared locals without running the semantic analyzer or code
// generator. This is the fast path callers use to answer "what locals does
// this script declare" without paying for a full compile.
func (d *Driver) GetLocals(source, name string) (tbl *locals.Table, ok bool, h *errors.Handler) {
	h = errors.NewHandler(d.warningMode)
	h.SetSource(source)

	l := lexer.New(source, name)
	p := parser.New(l, h)
	mod := p.ParseModule(name)
	p.FlushDeferred()
	for _, le := range l.Errors() {
		h.Error(le.Message, le.Pos)
	}
	if !h.IsGood() {
		return nil, false, h
	}

	tbl = semantic.ScanLocals(mod, h)
	return tbl, h.IsGood(), h
}

// frontEnd runs the scanner through the semantic analyzer, returning the
// analyzed module and its local table. ok is false if any stage failed;
// callers must not proceed to codegen when ok is false.
func (d *Driver) frontEnd(source, name string) (mod *ast.Module, tbl *locals.Table, h *errors.Handler, ok bool) {
	h = errors.NewHandler(d.warningMode)
	h.SetSource(source)

	l := lexer.New(source, name)
	p := parser.New(l, h)
	mod = p.ParseModule(name)
	p.FlushDeferred()
	for _, le := range l.Errors() {
		h.Error(le.Message, le.Pos)
	}
	if !h.IsGood() {
		return nil, nil, h, false
	}

	tbl = semantic.ScanLocals(mod, h)
	if !h.IsGood() {
		return nil, nil, h, false
	}

	semantic.New(d.ctx, d.ext, tbl, h).Analyze(mod)
	if !h.IsGood() {
		return nil, nil, h, false
	}

	return mod, tbl, h, true
}

// Script is one named source unit for a CompileAll batch.
type Script struct {
	Name   string
	Source string
}

// BatchResult carries one script's outcome from a CompileAll run.
type BatchResult struct {
	Name string
	Out  *Output
	OK   bool
	H    *errors.Handler
}

// CompileAll serially compiles every script, skipping any whose name
// matches blacklist (case-insensitively). It never aborts on a single
// script's failure; each outcome is recorded and the batch continues.
// total counts every script seen including blacklisted ones; succeeded
// counts only the scripts that compiled without error.
func (d *Driver) CompileAll(scripts []Script, blacklist []string) (total, succeeded int, results []BatchResult) {
	skip := make(map[string]bool, len(blacklist))
	for _, b := range blacklist {
		skip[strings.ToLower(b)] = true
	}

	for _, s := range scripts {
		total++
		if skip[strings.ToLower(s.Name)] {
			continue
		}
		out, ok, h := d.Compile(s.Source, s.Name)
		if ok {
			succeeded++
		}
		results = append(results, BatchResult{Name: s.Name, Out: out, OK: ok, H: h})
	}
	return total, succeeded, results
}
