package bytecode

import (
	"strings"
	"testing"
)

func TestDisassembleListsLiteralsAndCode(t *testing.T) {
	c := NewChunk("demo")
	idx := c.AddFloat(3.5)
	c.EmitAt(OpPushFloat, int32(idx))
	c.EmitAt(OpCastToLong, 0)

	var sb strings.Builder
	NewDisassembler(c, &sb).Disassemble()
	out := sb.String()

	if !strings.Contains(out, "== demo ==") {
		t.Fatalf("expected a header with the chunk name, got %q", out)
	}
	if !strings.Contains(out, "3.5") {
		t.Fatalf("expected the float pool entry rendered, got %q", out)
	}
	if !strings.Contains(out, "PUSH_FLOAT") {
		t.Fatalf("expected the opcode name rendered, got %q", out)
	}
}
