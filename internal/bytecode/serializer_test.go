package bytecode

import "testing"

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	c := NewChunk("demo")
	c.LocalSlot = 2
	fIdx := c.AddFloat(3.5)
	sIdx := c.AddString("hello")
	iIdx := c.AddInt(42)
	c.EmitAt(OpPushFloat, int32(fIdx))
	c.EmitAt(OpPushString, int32(sIdx))
	c.EmitAt(OpPushLong, int32(iIdx))
	j := c.EmitJump(OpJump)
	if err := c.PatchJump(j); err != nil {
		t.Fatalf("unexpected error patching jump: %v", err)
	}

	s := NewSerializer()
	data, err := s.SerializeChunk(c)
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}

	got, err := s.DeserializeChunk(data)
	if err != nil {
		t.Fatalf("deserialize failed: %v", err)
	}

	if got.Name != c.Name || got.LocalSlot != c.LocalSlot {
		t.Fatalf("expected name=%q localSlot=%d, got name=%q localSlot=%d", c.Name, c.LocalSlot, got.Name, got.LocalSlot)
	}
	if len(got.Code) != len(c.Code) {
		t.Fatalf("expected %d instructions, got %d", len(c.Code), len(got.Code))
	}
	for i := range c.Code {
		if got.Code[i] != c.Code[i] {
			t.Fatalf("instruction %d mismatch: expected %#v, got %#v", i, c.Code[i], got.Code[i])
		}
	}
	if len(got.Strings) != 1 || got.Strings[0] != "hello" {
		t.Fatalf("expected string pool [hello], got %v", got.Strings)
	}
	if len(got.Ints) != 1 || got.Ints[0] != 42 {
		t.Fatalf("expected int pool [42], got %v", got.Ints)
	}
	if len(got.Floats) != 1 || got.Floats[0] != 3.5 {
		t.Fatalf("expected float pool [3.5], got %v", got.Floats)
	}
}

func TestDeserializeRejectsBadMagic(t *testing.T) {
	s := NewSerializer()
	if _, err := s.DeserializeChunk([]byte("not a chunk at all")); err == nil {
		t.Fatalf("expected an error for malformed input")
	}
}
