package ast

import "testing"

func TestPrimitiveTag(t *testing.T) {
	cases := map[Primitive]byte{FLOAT: 'f', LONG: 'l', SHORT: 's'}
	for p, want := range cases {
		if got := p.Tag(); got != want {
			t.Fatalf("%s: expected tag %q, got %q", p, want, got)
		}
	}
}

func TestPrimitiveTagPanicsForNonLocalTypes(t *testing.T) {
	for _, p := range []Primitive{STRING, BOOL, UNDEFINED} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("%s: expected panic", p)
				}
			}()
			p.Tag()
		}()
	}
}

func TestBinOpIsComparison(t *testing.T) {
	for _, op := range []BinOp{OpGT, OpGTE, OpLT, OpLTE, OpEQ, OpNEQ} {
		if !op.IsComparison() {
			t.Fatalf("%s: expected comparison", op)
		}
	}
	for _, op := range []BinOp{OpPlus, OpMinus, OpMult, OpDivide, OpDot, OpArrow} {
		if op.IsComparison() {
			t.Fatalf("%s: expected not comparison", op)
		}
	}
}

func TestCallableRecognizesAllCallableSigs(t *testing.T) {
	sigs := []TypeSig{
		ArgsSig{ArgString: "l"},
		FunctionSig{Args: "l", Return: LONG},
		InstructionSig{Args: "l"},
	}
	for _, s := range sigs {
		if _, ok := Callable(s); !ok {
			t.Fatalf("%#v: expected callable", s)
		}
	}
	if _, ok := Callable(PrimitiveSig{Prim: LONG}); ok {
		t.Fatalf("PrimitiveSig must not be callable")
	}
}

func TestExprBaseSigRoundTrip(t *testing.T) {
	var lit LongLit
	lit.SetSig(PrimitiveSig{Prim: LONG})
	sig, ok := lit.Sig().(PrimitiveSig)
	if !ok || sig.Prim != LONG {
		t.Fatalf("expected PrimitiveSig{LONG}, got %#v", lit.Sig())
	}
}
