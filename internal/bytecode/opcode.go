// Package bytecode implements the code generator's output format: a flat
// instruction stream plus literal pool, emitted by the compiler and
// rendered by the disassembler. Execution of this stream is out of scope;
// nothing in this package runs a VM loop.
package bytecode

// OpCode identifies one instruction. Values below opUserBase are emitted
// directly by the compiler for the small set of builtins it knows how to
// generate by name; values at or above opUserBase are the opaque,
// per-compilation numbers handed out by extensions.Registry's generator
// closures for everything else (see Chunk.Emit, which accepts either).
type OpCode int32

const (
	OpNop OpCode = iota

	// Literal pool pushes.
	OpPushFloat  // operand: float pool index
	OpPushLong   // operand: int pool index (also used for SHORT, fused at this level)
	OpPushString // operand: string pool index

	// Variable access.
	OpLoadLocal   // operand: local slot index
	OpStoreLocal  // operand: local slot index
	OpLoadGlobal  // operand: name pool index
	OpStoreGlobal // operand: name pool index
	OpLoadMember  // operand: member-name pool index; pops owner name pushed by OpPushString
	OpStoreMember // operand: member-name pool index; pops owner name, then value
	OpLoadJournal // operand: journal-name pool index

	// Arithmetic and comparison; operate on the two values on top of stack.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpCmpGT
	OpCmpGTE
	OpCmpLT
	OpCmpLTE
	OpCmpEQ
	OpCmpNEQ

	// Numeric conversion, inserted by the analyzer's Cast nodes; SHORT/LONG
	// fusion means a Cast between those two primitives reaches codegen but
	// emits no instruction (see Compiler.compileCast).
	OpCastToFloat
	OpCastToLong

	// Control flow.
	OpJump        // operand: placeholder, patched forward
	OpJumpIfFalse // operand: placeholder, patched forward
	OpLoop        // operand: negative offset back to loop start
	OpPop         // discards an unused call result (StatementExpr not auto-reported)

	// The 12 builtins the compiler emits directly rather than delegating to
	// the registry's generator, mirroring extensions.NewDefaultRegistry's
	// direct-emit set.
	OpMenuMode
	OpRandom
	OpStartScript
	OpStopScript
	OpScriptRunning
	OpGetDistance
	OpGetSecondsPassed
	OpGetDisabled
	OpEnable
	OpDisable
	OpGetSquareRoot
	OpMessageBox

	// OpReport is synthesized for a console-mode StatementExpr whose callee
	// is a value-returning function: it routes the already-pushed return
	// value through a synthesized MessageBox report. operand: format
	// string pool index ("%g" for LONG/SHORT, "%f" for FLOAT).
	OpReport

	// opUserBase is the first opaque opcode number extensions.Registry's
	// NewDefaultRegistry generator closures allocate from; values below are
	// never reused by that registry, so the two numberings cannot collide.
	opUserBase = 1000
)

var opCodeNames = map[OpCode]string{
	OpNop:              "NOP",
	OpPushFloat:        "PUSH_FLOAT",
	OpPushLong:         "PUSH_LONG",
	OpPushString:       "PUSH_STRING",
	OpLoadLocal:        "LOAD_LOCAL",
	OpStoreLocal:       "STORE_LOCAL",
	OpLoadGlobal:       "LOAD_GLOBAL",
	OpStoreGlobal:      "STORE_GLOBAL",
	OpLoadMember:       "LOAD_MEMBER",
	OpStoreMember:      "STORE_MEMBER",
	OpLoadJournal:      "LOAD_JOURNAL",
	OpAdd:              "ADD",
	OpSub:              "SUB",
	OpMul:              "MUL",
	OpDiv:              "DIV",
	OpNeg:              "NEG",
	OpCmpGT:            "CMP_GT",
	OpCmpGTE:           "CMP_GTE",
	OpCmpLT:            "CMP_LT",
	OpCmpLTE:           "CMP_LTE",
	OpCmpEQ:            "CMP_EQ",
	OpCmpNEQ:           "CMP_NEQ",
	OpCastToFloat:      "CAST_FLOAT",
	OpCastToLong:       "CAST_LONG",
	OpJump:             "JUMP",
	OpJumpIfFalse:      "JUMP_IF_FALSE",
	OpLoop:             "LOOP",
	OpPop:              "POP",
	OpMenuMode:         "MENU_MODE",
	OpRandom:           "RANDOM",
	OpStartScript:      "START_SCRIPT",
	OpStopScript:       "STOP_SCRIPT",
	OpScriptRunning:    "SCRIPT_RUNNING",
	OpGetDistance:      "GET_DISTANCE",
	OpGetSecondsPassed: "GET_SECONDS_PASSED",
	OpGetDisabled:      "GET_DISABLED",
	OpEnable:           "ENABLE",
	OpDisable:          "DISABLE",
	OpGetSquareRoot:    "GET_SQUARE_ROOT",
	OpMessageBox:       "MESSAGE_BOX",
	OpReport:           "REPORT",
}

func (op OpCode) String() string {
	if name, ok := opCodeNames[op]; ok {
		return name
	}
	if int32(op) >= opUserBase {
		return "EXT_CALL"
	}
	return "UNKNOWN"
}

// directEmitters maps a builtin's lowercased keyword name to the opcode the
// compiler emits for it directly, bypassing the registry's generator.
var directEmitters = map[string]OpCode{
	"menumode":         OpMenuMode,
	"random":           OpRandom,
	"startscript":      OpStartScript,
	"stopscript":       OpStopScript,
	"scriptrunning":    OpScriptRunning,
	"getdistance":      OpGetDistance,
	"getsecondspassed": OpGetSecondsPassed,
	"getdisabled":      OpGetDisabled,
	"enable":           OpEnable,
	"disable":          OpDisable,
	"getsquareroot":    OpGetSquareRoot,
	"messagebox":       OpMessageBox,
}
