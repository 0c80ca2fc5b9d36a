package semantic

import (
	"testing"

	"github.com/mwscript-go/mwsc/internal/ast"
	"github.com/mwscript-go/mwsc/internal/context"
	"github.com/mwscript-go/mwsc/internal/errors"
	"github.com/mwscript-go/mwsc/internal/extensions"
	"github.com/mwscript-go/mwsc/internal/lexer"
	"github.com/mwscript-go/mwsc/internal/locals"
	"github.com/mwscript-go/mwsc/internal/parser"
)

func analyze(t *testing.T, src string, setup func(*context.MapContext)) (*ast.Module, *errors.Handler, *locals.Table) {
	t.Helper()
	h := errors.NewHandler(errors.WarningNormal)
	l := lexer.New(src, "test")
	p := parser.New(l, h)
	mod := p.ParseModule("test")
	p.FlushDeferred()

	tbl := ScanLocals(mod, h)

	ctx := context.NewMapContext()
	if setup != nil {
		setup(ctx)
	}
	ext := extensions.NewDefaultRegistry()

	New(ctx, ext, tbl, h).Analyze(mod)
	return mod, h, tbl
}

func TestShortDeclAndSet(t *testing.T) {
	mod, h, tbl := analyze(t, "short x\nset x to 5\n", nil)
	if !h.IsGood() {
		t.Fatalf("unexpected errors: %v", h.Errors())
	}
	if idx, typ, ok := tbl.Lookup("x"); !ok || idx != 0 || typ != 's' {
		t.Fatalf("expected local x at 0 of type s, got (%d,%q,%v)", idx, typ, ok)
	}
	set := mod.Statements[1].(*ast.SetStatement)
	if _, ok := set.Target.(*ast.LocalVar); !ok {
		t.Fatalf("expected LocalVar target, got %#v", set.Target)
	}
	cast, ok := set.Value.(*ast.CastExpr)
	if !ok || cast.From != ast.LONG || cast.To != ast.SHORT {
		t.Fatalf("expected the literal's default LONG type cast down to SHORT, got %#v", set.Value)
	}
	if _, ok := cast.Operand.(*ast.LongLit); !ok {
		t.Fatalf("expected the cast to wrap the long literal, got %#v", cast.Operand)
	}
}

func TestSetWithoutDeclarationIsError(t *testing.T) {
	_, h, _ := analyze(t, "set x to 1.5\n", nil)
	if h.IsGood() {
		t.Fatalf("expected an error for undeclared set target")
	}
	found := false
	for _, e := range h.Errors() {
		if e.Message == "Invalid set target" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'Invalid set target' error, got %v", h.Errors())
	}
}

func TestIfMessageBoxCondition(t *testing.T) {
	mod, h, _ := analyze(t, "short x\nif ( x == 1 )\nmessagebox \"hi\"\nendif\n", nil)
	if !h.IsGood() {
		t.Fatalf("unexpected errors: %v", h.Errors())
	}
	ifStmt := mod.Statements[1].(*ast.IfStatement)
	logic, ok := ifStmt.Cond.(*ast.LogicExpr)
	if !ok || primitiveOf(logic.Sig()) != ast.BOOL {
		t.Fatalf("expected BOOL LogicExpr condition, got %#v", ifStmt.Cond)
	}
	callStmt := ifStmt.Then[0].(*ast.StatementExpr)
	call, ok := callStmt.Expr.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %#v", callStmt.Expr)
	}
	instrSig, ok := call.Sig().(ast.InstructionSig)
	if !ok || !instrSig.IsMessageBox {
		t.Fatalf("expected InstructionSig{IsMessageBox}, got %#v", call.Sig())
	}
}

func TestMessageBoxFormatSynthesis(t *testing.T) {
	mod, h, _ := analyze(t, "MessageBox \"score %g\", 42\n", nil)
	if !h.IsGood() {
		t.Fatalf("unexpected errors: %v", h.Errors())
	}
	call := mod.Statements[0].(*ast.StatementExpr).Expr.(*ast.CallExpr)
	sig := call.Sig().(ast.InstructionSig)
	if sig.Args[:3] != "Sl/" {
		t.Fatalf("expected synthesized arg string to begin with Sl/, got %q", sig.Args[:3])
	}
	if sig.Optionals != 0 {
		t.Fatalf("expected 0 optionals beyond the required two, got %d", sig.Optionals)
	}
	if len(call.Args.Args) != 2 {
		t.Fatalf("expected 2 matched arguments, got %d", len(call.Args.Args))
	}
}

func TestArrowRefRetainsRequiredExplicitBase(t *testing.T) {
	mod, h, _ := analyze(t, "Player->GetDistance Rat\n", func(c *context.MapContext) {
		c.AddID("Player")
	})
	if !h.IsGood() {
		t.Fatalf("unexpected errors: %v", h.Errors())
	}
	call := mod.Statements[0].(*ast.StatementExpr).Expr.(*ast.CallExpr)
	ref, ok := call.Callee.(*ast.RefExpr)
	if !ok || !ref.HasBase || ref.Base != "Player" {
		t.Fatalf("expected RefExpr with retained base Player, got %#v", call.Callee)
	}
	fnSig, ok := call.Sig().(ast.FunctionSig)
	if !ok || fnSig.Return != ast.FLOAT {
		t.Fatalf("expected FunctionSig returning FLOAT, got %#v", call.Sig())
	}
}

func TestWideningCastNoWarning(t *testing.T) {
	mod, h, _ := analyze(t, "short x\n3.14 + x\n", nil)
	if len(h.Warnings()) != 0 {
		t.Fatalf("expected no precision-loss warning for widening cast, got %v", h.Warnings())
	}
	math := mod.Statements[1].(*ast.StatementExpr).Expr.(*ast.MathExpr)
	if primitiveOf(math.Sig()) != ast.FLOAT {
		t.Fatalf("expected MathExpr type FLOAT, got %s", primitiveOf(math.Sig()))
	}
	cast, ok := math.Right.(*ast.CastExpr)
	if !ok || cast.From != ast.SHORT || cast.To != ast.FLOAT {
		t.Fatalf("expected inserted Cast(SHORT->FLOAT) on x, got %#v", math.Right)
	}
}

func TestNarrowingCastWarns(t *testing.T) {
	_, h, _ := analyze(t, "short x\nset x to 1.5\n", nil)
	found := false
	for _, w := range h.Warnings() {
		if w.Message != "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a precision-loss warning, got none (errors=%v)", h.Errors())
	}
}

func TestDottedMemberResolvesViaContext(t *testing.T) {
	mod, h, _ := analyze(t, "set x to Player.Health\n", func(c *context.MapContext) {
		c.AddMember("Player", "Health", 'f', false)
	})
	set := mod.Statements[0].(*ast.SetStatement)
	// target "x" is undeclared -> Invalid set target error, but the RHS ref
	// must still resolve to a MemberVar independent of that failure.
	if h.IsGood() {
		t.Fatalf("expected target error")
	}
	if _, ok := set.Value.(*ast.MemberVar); !ok {
		t.Fatalf("expected MemberVar for Player.Health, got %#v", set.Value)
	}
}

func TestDottedAllDigitsFusesToFloatLiteral(t *testing.T) {
	h := errors.NewHandler(errors.WarningNormal)
	tbl := locals.NewTable()
	a := New(context.NewMapContext(), extensions.NewDefaultRegistry(), tbl, h)

	ref := &ast.RefExpr{HasBase: true, Base: "3", Op: ast.OpDot, Offset: "14"}
	resolved := a.resolveExpr(ref, exprCtx{})

	if !h.IsGood() {
		t.Fatalf("unexpected errors: %v", h.Errors())
	}
	fl, ok := resolved.(*ast.FloatLit)
	if !ok {
		t.Fatalf("expected digit.digit to fuse into a FloatLit, got %#v", resolved)
	}
	if fl.Value != 3.14 {
		t.Fatalf("expected 3.14, got %v", fl.Value)
	}
}
