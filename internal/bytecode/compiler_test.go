package bytecode

import (
	"testing"

	"github.com/mwscript-go/mwsc/internal/context"
	"github.com/mwscript-go/mwsc/internal/errors"
	"github.com/mwscript-go/mwsc/internal/extensions"
	"github.com/mwscript-go/mwsc/internal/lexer"
	"github.com/mwscript-go/mwsc/internal/parser"
	"github.com/mwscript-go/mwsc/internal/semantic"
)

func compileSource(t *testing.T, src string, consoleMode bool, setup func(*context.MapContext)) (*Chunk, *errors.Handler) {
	t.Helper()
	h := errors.NewHandler(errors.WarningNormal)
	l := lexer.New(src, "test")
	p := parser.New(l, h)
	mod := p.ParseModule("test")
	p.FlushDeferred()

	tbl := semantic.ScanLocals(mod, h)
	ctx := context.NewMapContext()
	if setup != nil {
		setup(ctx)
	}
	ext := extensions.NewDefaultRegistry()
	semantic.New(ctx, ext, tbl, h).Analyze(mod)
	if !h.IsGood() {
		t.Fatalf("analysis failed: %v", h.Errors())
	}

	chunk, err := NewCompiler("test", ext, consoleMode).Compile(mod, tbl.Len())
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return chunk, h
}

// every forward jump must have a non-negative operand landing inside the
// code (or just past its end), and every backward jump must land at or
// before its own index.
func assertWellFormedJumps(t *testing.T, chunk *Chunk) {
	t.Helper()
	for i, inst := range chunk.Code {
		switch inst.Op {
		case OpJump, OpJumpIfFalse:
			target := i + 1 + int(inst.Operand)
			if target < 0 || target > len(chunk.Code) {
				t.Fatalf("instruction %d (%s) jumps out of range to %d", i, inst.Op, target)
			}
			if inst.Operand < 0 {
				t.Fatalf("instruction %d (%s) is a forward jump with negative operand", i, inst.Op)
			}
		case OpLoop:
			target := i + 1 + int(inst.Operand)
			if target < 0 || target > i {
				t.Fatalf("instruction %d (%s) loop target %d is not strictly backward", i, inst.Op, target)
			}
		}
	}
}

func TestIfStatementJumpsAreWellFormed(t *testing.T) {
	chunk, _ := compileSource(t, "short x\nif ( x == 1 )\nset x to 2\nelseif ( x == 3 )\nset x to 4\nelse\nset x to 5\nendif\n", false, nil)
	assertWellFormedJumps(t, chunk)

	var jumpIfFalseCount, jumpCount int
	for _, inst := range chunk.Code {
		switch inst.Op {
		case OpJumpIfFalse:
			jumpIfFalseCount++
		case OpJump:
			jumpCount++
		}
	}
	if jumpIfFalseCount != 2 {
		t.Fatalf("expected 2 JUMP_IF_FALSE (one per condition), got %d", jumpIfFalseCount)
	}
	if jumpCount != 2 {
		t.Fatalf("expected 2 JUMP (one per non-final branch skipping to end), got %d", jumpCount)
	}
}

func TestWhileStatementLoopsBackward(t *testing.T) {
	chunk, _ := compileSource(t, "short x\nwhile ( x < 10 )\nset x to 1\nendwhile\n", false, nil)
	assertWellFormedJumps(t, chunk)

	found := false
	for _, inst := range chunk.Code {
		if inst.Op == OpLoop {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a LOOP instruction, got none: %#v", chunk.Code)
	}
}

// A builtin call pushes its arguments in reverse (rightmost first) — the
// reverse-argument-push law.
func TestCallPushesArgumentsInReverse(t *testing.T) {
	chunk, _ := compileSource(t, "additem \"gold_001\", 50\n", false, nil)

	var pushes []string
	for _, inst := range chunk.Code {
		if inst.Op == OpPushString {
			pushes = append(pushes, chunk.Strings[inst.Operand])
		}
		if inst.Op == OpPushLong {
			pushes = append(pushes, "#")
		}
	}
	if len(pushes) < 2 {
		t.Fatalf("expected at least 2 pushed arguments, got %v", pushes)
	}
	if pushes[0] != "#" {
		t.Fatalf("expected the numeric count (rightmost arg) pushed first, got %v", pushes)
	}
	if pushes[1] != "gold_001" {
		t.Fatalf("expected the item id (leftmost arg) pushed second, got %v", pushes)
	}
}

func TestSetIgnoredStatementEmitsNoStore(t *testing.T) {
	// compileSource fails the test on any analysis error, so this case runs
	// the pipeline itself and compiles the Ignored set despite the error.
	h := errors.NewHandler(errors.WarningNormal)
	p := parser.New(lexer.New("set y to 5\n", "test"), h)
	mod := p.ParseModule("test")
	p.FlushDeferred()
	tbl := semantic.ScanLocals(mod, h)
	ext := extensions.NewDefaultRegistry()
	semantic.New(context.NewMapContext(), ext, tbl, h).Analyze(mod)
	chunk, err := NewCompiler("test", ext, false).Compile(mod, tbl.Len())
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if h.IsGood() {
		t.Fatalf("expected the undeclared-target error")
	}
	for _, inst := range chunk.Code {
		if inst.Op == OpStoreLocal || inst.Op == OpStoreGlobal || inst.Op == OpStoreMember {
			t.Fatalf("expected no store instruction for an Ignored set, got %s", inst.Op)
		}
	}
}

func TestConsoleModeAutoReportsFunctionResult(t *testing.T) {
	chunk, _ := compileSource(t, "getsquareroot 4.0\n", true, nil)
	var found bool
	for _, inst := range chunk.Code {
		if inst.Op == OpReport {
			found = true
			if chunk.Strings[inst.Operand] != "%f" {
				t.Fatalf("expected FLOAT return to report with %%f, got %q", chunk.Strings[inst.Operand])
			}
		}
	}
	if !found {
		t.Fatalf("expected a console-mode auto-report instruction")
	}
}

func TestBatchModePopsUnconsumedFunctionResult(t *testing.T) {
	chunk, _ := compileSource(t, "getsquareroot 4.0\n", false, nil)
	var found bool
	for _, inst := range chunk.Code {
		if inst.Op == OpPop {
			found = true
		}
		if inst.Op == OpReport {
			t.Fatalf("did not expect an auto-report instruction outside console mode")
		}
	}
	if !found {
		t.Fatalf("expected the unconsumed function result to be popped")
	}
}

func TestShortLongCastFusionEmitsNoInstruction(t *testing.T) {
	chunk, _ := compileSource(t, "short x\nlong y\nset y to x\n", false, nil)
	for _, inst := range chunk.Code {
		if inst.Op == OpCastToFloat || inst.Op == OpCastToLong {
			t.Fatalf("expected no cast instruction for SHORT/LONG fusion, got %s", inst.Op)
		}
	}
}
