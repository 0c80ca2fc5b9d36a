package bytecode

import (
	"fmt"
	"io"
)

// Disassembler renders a Chunk's instruction stream and literal pools as
// human-readable text, for the CLI's `compile --disassemble` and for tests that
// want to assert on emitted shape without decoding Instruction by hand.
type Disassembler struct {
	w     io.Writer
	chunk *Chunk
}

// NewDisassembler returns a Disassembler that writes chunk's listing to w.
func NewDisassembler(chunk *Chunk, w io.Writer) *Disassembler {
	return &Disassembler{w: w, chunk: chunk}
}

// Disassemble prints the full listing: header, literal pools, then the
// instruction stream one line per entry.
func (d *Disassembler) Disassemble() {
	fmt.Fprintf(d.w, "== %s ==\n", d.chunk.Name)
	fmt.Fprintf(d.w, "instructions=%d locals=%d\n", len(d.chunk.Code), d.chunk.LocalSlot)

	if len(d.chunk.Strings) > 0 {
		fmt.Fprintln(d.w, "strings:")
		for i, s := range d.chunk.Strings {
			fmt.Fprintf(d.w, "  [%d] %q\n", i, s)
		}
	}
	if len(d.chunk.Ints) > 0 {
		fmt.Fprintln(d.w, "ints:")
		for i, v := range d.chunk.Ints {
			fmt.Fprintf(d.w, "  [%d] %d\n", i, v)
		}
	}
	if len(d.chunk.Floats) > 0 {
		fmt.Fprintln(d.w, "floats:")
		for i, v := range d.chunk.Floats {
			fmt.Fprintf(d.w, "  [%d] %g\n", i, v)
		}
	}

	fmt.Fprintln(d.w, "code:")
	for i := range d.chunk.Code {
		d.DisassembleInstruction(i)
	}
}

// DisassembleInstruction prints the instruction at offset, resolving its
// operand against the relevant literal pool where the opcode names one.
func (d *Disassembler) DisassembleInstruction(offset int) {
	inst := d.chunk.Code[offset]
	switch inst.Op {
	case OpPushFloat:
		fmt.Fprintf(d.w, "%04d %-16s %d (%g)\n", offset, inst.Op, inst.Operand, d.floatAt(inst.Operand))
	case OpPushLong:
		fmt.Fprintf(d.w, "%04d %-16s %d (%d)\n", offset, inst.Op, inst.Operand, d.intAt(inst.Operand))
	case OpPushString, OpLoadGlobal, OpStoreGlobal, OpLoadMember, OpStoreMember, OpLoadJournal, OpReport:
		fmt.Fprintf(d.w, "%04d %-16s %d (%q)\n", offset, inst.Op, inst.Operand, d.stringAt(inst.Operand))
	case OpJump, OpJumpIfFalse:
		fmt.Fprintf(d.w, "%04d %-16s -> %d\n", offset, inst.Op, offset+1+int(inst.Operand))
	case OpLoop:
		fmt.Fprintf(d.w, "%04d %-16s -> %d\n", offset, inst.Op, offset+1+int(inst.Operand))
	default:
		if inst.Operand == 0 {
			fmt.Fprintf(d.w, "%04d %s\n", offset, inst.Op)
		} else {
			fmt.Fprintf(d.w, "%04d %-16s %d\n", offset, inst.Op, inst.Operand)
		}
	}
}

func (d *Disassembler) stringAt(idx int32) string {
	if idx < 0 || int(idx) >= len(d.chunk.Strings) {
		return ""
	}
	return d.chunk.Strings[idx]
}

func (d *Disassembler) intAt(idx int32) int32 {
	if idx < 0 || int(idx) >= len(d.chunk.Ints) {
		return 0
	}
	return d.chunk.Ints[idx]
}

func (d *Disassembler) floatAt(idx int32) float32 {
	if idx < 0 || int(idx) >= len(d.chunk.Floats) {
		return 0
	}
	return d.chunk.Floats[idx]
}
