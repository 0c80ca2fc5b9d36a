package bytecode

import "fmt"

// Instruction is one code-stream entry: an opcode paired with a single
// operand. Unlike the host engine's packed 32-bit word, nothing here needs
// to be decoded at machine speed, so the two fields are kept apart for
// readability in the disassembler and tests.
type Instruction struct {
	Op      OpCode
	Operand int32
}

// Chunk is one compiled script's output: its instruction stream, literal
// pool, and the local-slot count the compiler allocated. It implements
// extensions.CodeWriter and extensions.LiteralPool so a Registry's
// generator closures can emit into it without this package's compiler
// importing extensions for anything but the call it is generating.
type Chunk struct {
	Name      string
	Code      []Instruction
	Strings   []string
	Ints      []int32
	Floats    []float32
	LocalSlot int
}

// NewChunk returns an empty Chunk for the named script.
func NewChunk(name string) *Chunk {
	return &Chunk{Name: name}
}

// Emit appends one instruction and returns nothing; it is the
// extensions.CodeWriter entry point used by registry generators.
func (c *Chunk) Emit(opcode int32, operand int32) {
	c.Code = append(c.Code, Instruction{Op: OpCode(opcode), Operand: operand})
}

// EmitAt is Emit but also returns the index written, the form the compiler
// needs for anything it will patch (jumps).
func (c *Chunk) EmitAt(op OpCode, operand int32) int {
	idx := len(c.Code)
	c.Code = append(c.Code, Instruction{Op: op, Operand: operand})
	return idx
}

// EmitJump emits a forward jump with a placeholder operand, returning its
// index for a later PatchJump once the target is known.
func (c *Chunk) EmitJump(op OpCode) int {
	return c.EmitAt(op, -1)
}

// PatchJump rewrites the jump instruction at idx so its operand is the
// number of instructions between it and the current end of the stream.
func (c *Chunk) PatchJump(idx int) error {
	offset := len(c.Code) - idx - 1
	if offset < 0 {
		return fmt.Errorf("bytecode: negative jump offset patching instruction %d", idx)
	}
	c.Code[idx].Operand = int32(offset)
	return nil
}

// EmitLoop emits a backward jump to loopStart, already resolved since the
// target is known at emission time (unlike a forward jump).
func (c *Chunk) EmitLoop(loopStart int) {
	offset := len(c.Code) - loopStart + 1
	c.Code = append(c.Code, Instruction{Op: OpLoop, Operand: -int32(offset)})
}

// AddString interns s, returning its pool index; equal strings share an
// index.
func (c *Chunk) AddString(s string) int {
	for i, existing := range c.Strings {
		if existing == s {
			return i
		}
	}
	c.Strings = append(c.Strings, s)
	return len(c.Strings) - 1
}

// AddInt interns i, returning its pool index.
func (c *Chunk) AddInt(i int32) int {
	for idx, existing := range c.Ints {
		if existing == i {
			return idx
		}
	}
	c.Ints = append(c.Ints, i)
	return len(c.Ints) - 1
}

// AddFloat interns f, returning its pool index.
func (c *Chunk) AddFloat(f float32) int {
	for idx, existing := range c.Floats {
		if existing == f {
			return idx
		}
	}
	c.Floats = append(c.Floats, f)
	return len(c.Floats) - 1
}
