package bytecode

import "testing"

func TestAddStringDedupes(t *testing.T) {
	c := NewChunk("test")
	a := c.AddString("hello")
	b := c.AddString("hello")
	if a != b {
		t.Fatalf("expected the same index for equal strings, got %d and %d", a, b)
	}
	if len(c.Strings) != 1 {
		t.Fatalf("expected one interned string, got %d", len(c.Strings))
	}
}

func TestEmitJumpThenPatch(t *testing.T) {
	c := NewChunk("test")
	c.EmitAt(OpPushLong, 0)
	j := c.EmitJump(OpJumpIfFalse)
	c.EmitAt(OpPushLong, 0)
	c.EmitAt(OpPushLong, 0)
	if err := c.PatchJump(j); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	target := j + 1 + int(c.Code[j].Operand)
	if target != len(c.Code) {
		t.Fatalf("expected patched jump to land at %d, got %d", len(c.Code), target)
	}
}

func TestEmitLoopTargetsLoopStart(t *testing.T) {
	c := NewChunk("test")
	loopStart := len(c.Code)
	c.EmitAt(OpPushLong, 0)
	c.EmitAt(OpPushLong, 0)
	c.EmitLoop(loopStart)
	last := len(c.Code) - 1
	target := last + 1 + int(c.Code[last].Operand)
	if target != loopStart {
		t.Fatalf("expected loop to target %d, got %d", loopStart, target)
	}
}
