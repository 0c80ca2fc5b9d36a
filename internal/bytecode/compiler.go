package bytecode

import (
	"fmt"
	"strings"

	"github.com/mwscript-go/mwsc/internal/ast"
	"github.com/mwscript-go/mwsc/internal/extensions"
)

// Compiler walks an analyzed Module and emits its Chunk. It assumes the
// semantic pass has already run: every expression carries a TypeSig, call
// shapes are CallExpr nodes, and casts are explicit CastExpr nodes.
type Compiler struct {
	chunk       *Chunk
	ext         *extensions.Registry
	consoleMode bool
}

// NewCompiler returns a Compiler that will emit into a fresh Chunk named
// name, using ext to resolve builtin call targets to opcodes. consoleMode
// controls whether an unconsumed function-call statement auto-reports its
// result (the interactive console's behavior) or is silently discarded (the
// scripted/batch behavior).
func NewCompiler(name string, ext *extensions.Registry, consoleMode bool) *Compiler {
	return &Compiler{chunk: NewChunk(name), ext: ext, consoleMode: consoleMode}
}

// Compile emits mod's statements into the Compiler's Chunk and returns it.
// localSlots is the local count from the Locals table ScanLocals built
// (Chunk.LocalSlot records it for the disassembler and any future runtime).
func (c *Compiler) Compile(mod *ast.Module, localSlots int) (*Chunk, error) {
	c.chunk.LocalSlot = localSlots
	if err := c.compileBlock(mod.Statements); err != nil {
		return nil, err
	}
	return c.chunk, nil
}

func (c *Compiler) compileBlock(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.TypeDecl, *ast.NoOp, *ast.ReturnStatement:
		return nil
	case *ast.SetStatement:
		return c.compileSet(s)
	case *ast.IfStatement:
		return c.compileIf(s)
	case *ast.WhileStatement:
		return c.compileWhile(s)
	case *ast.StatementExpr:
		return c.compileStatementExpr(s)
	default:
		return fmt.Errorf("bytecode: unhandled statement %T", stmt)
	}
}

func (c *Compiler) compileSet(s *ast.SetStatement) error {
	if s.Ignored {
		return nil
	}
	if err := c.compileExpr(s.Value); err != nil {
		return err
	}
	switch t := s.Target.(type) {
	case *ast.LocalVar:
		c.chunk.EmitAt(OpStoreLocal, int32(t.Index))
	case *ast.GlobalVar:
		idx := c.chunk.AddString(t.Name)
		c.chunk.EmitAt(OpStoreGlobal, int32(idx))
	case *ast.MemberVar:
		ownerIdx := c.chunk.AddString(t.Owner)
		c.chunk.EmitAt(OpPushString, int32(ownerIdx))
		memberIdx := c.chunk.AddString(t.Member)
		c.chunk.EmitAt(OpStoreMember, int32(memberIdx))
	default:
		return fmt.Errorf("bytecode: unassignable set target %T", s.Target)
	}
	return nil
}

// compileIf emits the cond/jump-if-false/body pattern once per branch
// (then, each elseif, else), threading every branch's exit jump to a
// single patch point past the whole statement.
func (c *Compiler) compileIf(s *ast.IfStatement) error {
	var endJumps []int

	if err := c.compileExpr(s.Cond); err != nil {
		return err
	}
	jumpFalse := c.chunk.EmitJump(OpJumpIfFalse)
	if err := c.compileBlock(s.Then); err != nil {
		return err
	}
	endJumps = append(endJumps, c.chunk.EmitJump(OpJump))
	if err := c.chunk.PatchJump(jumpFalse); err != nil {
		return err
	}

	for _, ei := range s.ElseIfs {
		if err := c.compileExpr(ei.Cond); err != nil {
			return err
		}
		jf := c.chunk.EmitJump(OpJumpIfFalse)
		if err := c.compileBlock(ei.Body); err != nil {
			return err
		}
		endJumps = append(endJumps, c.chunk.EmitJump(OpJump))
		if err := c.chunk.PatchJump(jf); err != nil {
			return err
		}
	}

	if err := c.compileBlock(s.Else); err != nil {
		return err
	}

	for _, j := range endJumps {
		if err := c.chunk.PatchJump(j); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileWhile(s *ast.WhileStatement) error {
	loopStart := len(c.chunk.Code)
	if err := c.compileExpr(s.Cond); err != nil {
		return err
	}
	exitJump := c.chunk.EmitJump(OpJumpIfFalse)
	if err := c.compileBlock(s.Body); err != nil {
		return err
	}
	c.chunk.EmitLoop(loopStart)
	return c.chunk.PatchJump(exitJump)
}

func (c *Compiler) compileStatementExpr(s *ast.StatementExpr) error {
	call, ok := s.Expr.(*ast.CallExpr)
	if !ok {
		return c.compileExpr(s.Expr)
	}
	if err := c.compileCall(call); err != nil {
		return err
	}
	if fnSig, ok := call.Sig().(ast.FunctionSig); ok {
		if c.consoleMode {
			c.emitAutoReport(fnSig.Return)
		} else {
			c.chunk.EmitAt(OpPop, 0)
		}
	}
	return nil
}

// emitAutoReport synthesizes the console's auto-print of a bare function
// call's otherwise-unconsumed result: "%g" for the integral primitives,
// "%f" for FLOAT, matching MessageBox's own format-specifier mapping.
func (c *Compiler) emitAutoReport(ret ast.Primitive) {
	format := "%g"
	if ret == ast.FLOAT {
		format = "%f"
	}
	idx := c.chunk.AddString(format)
	c.chunk.EmitAt(OpReport, int32(idx))
}

// compileCall emits a call's arguments in reverse (last argument pushed
// first), then the instruction for the callee itself: a dedicated opcode
// for the compiler's direct-emit builtins, or a delegate through the
// registry's own generator for everything else.
func (c *Compiler) compileCall(call *ast.CallExpr) error {
	name, ok := calleeName(call.Callee)
	if !ok {
		return fmt.Errorf("bytecode: call callee %T has no keyword name", call.Callee)
	}
	lower := strings.ToLower(name)

	for i := len(call.Args.Args) - 1; i >= 0; i-- {
		if err := c.compileExpr(call.Args.Args[i]); err != nil {
			return err
		}
	}

	optionals := 0
	switch sig := call.Sig().(type) {
	case ast.FunctionSig:
		optionals = sig.Optionals
	case ast.InstructionSig:
		optionals = sig.Optionals
	}

	if op, ok := directEmitters[lower]; ok {
		c.chunk.EmitAt(op, int32(optionals))
		return nil
	}

	explicitRef := ""
	if ref, ok := call.Callee.(*ast.RefExpr); ok && ref.HasBase {
		explicitRef = ref.Base
	}
	kw := c.ext.SearchKeyword(lower)
	c.ext.GenerateCode(kw, c.chunk, c.chunk, explicitRef, optionals)
	return nil
}

func calleeName(e ast.Expression) (string, bool) {
	switch n := e.(type) {
	case *ast.StringLit:
		return n.Value, true
	case *ast.RefExpr:
		return n.Offset, true
	}
	return "", false
}

// compileExpr pushes e's value onto the (notional) runtime stack.
func (c *Compiler) compileExpr(e ast.Expression) error {
	switch n := e.(type) {
	case *ast.FloatLit:
		idx := c.chunk.AddFloat(n.Value)
		c.chunk.EmitAt(OpPushFloat, int32(idx))
	case *ast.LongLit:
		idx := c.chunk.AddInt(n.Value)
		c.chunk.EmitAt(OpPushLong, int32(idx))
	case *ast.StringLit:
		idx := c.chunk.AddString(n.Value)
		c.chunk.EmitAt(OpPushString, int32(idx))
	case *ast.LocalVar:
		c.chunk.EmitAt(OpLoadLocal, int32(n.Index))
	case *ast.GlobalVar:
		idx := c.chunk.AddString(n.Name)
		c.chunk.EmitAt(OpLoadGlobal, int32(idx))
	case *ast.MemberVar:
		ownerIdx := c.chunk.AddString(n.Owner)
		c.chunk.EmitAt(OpPushString, int32(ownerIdx))
		memberIdx := c.chunk.AddString(n.Member)
		c.chunk.EmitAt(OpLoadMember, int32(memberIdx))
	case *ast.Journal:
		idx := c.chunk.AddString(n.Name)
		c.chunk.EmitAt(OpLoadJournal, int32(idx))
	case *ast.MathExpr:
		return c.compileMath(n)
	case *ast.LogicExpr:
		return c.compileLogic(n)
	case *ast.NegateExpr:
		if err := c.compileExpr(n.Operand); err != nil {
			return err
		}
		c.chunk.EmitAt(OpNeg, 0)
	case *ast.CastExpr:
		return c.compileCast(n)
	case *ast.CallExpr:
		return c.compileCall(n)
	default:
		return fmt.Errorf("bytecode: unhandled expression %T", e)
	}
	return nil
}

var mathOps = map[ast.BinOp]OpCode{
	ast.OpPlus:   OpAdd,
	ast.OpMinus:  OpSub,
	ast.OpMult:   OpMul,
	ast.OpDivide: OpDiv,
}

func (c *Compiler) compileMath(n *ast.MathExpr) error {
	if err := c.compileExpr(n.Left); err != nil {
		return err
	}
	if err := c.compileExpr(n.Right); err != nil {
		return err
	}
	op, ok := mathOps[n.Op]
	if !ok {
		return fmt.Errorf("bytecode: unhandled math operator %s", n.Op)
	}
	c.chunk.EmitAt(op, 0)
	return nil
}

var logicOps = map[ast.BinOp]OpCode{
	ast.OpGT:  OpCmpGT,
	ast.OpGTE: OpCmpGTE,
	ast.OpLT:  OpCmpLT,
	ast.OpLTE: OpCmpLTE,
	ast.OpEQ:  OpCmpEQ,
	ast.OpNEQ: OpCmpNEQ,
}

func (c *Compiler) compileLogic(n *ast.LogicExpr) error {
	if err := c.compileExpr(n.Left); err != nil {
		return err
	}
	if err := c.compileExpr(n.Right); err != nil {
		return err
	}
	op, ok := logicOps[n.Op]
	if !ok {
		return fmt.Errorf("bytecode: unhandled comparison operator %s", n.Op)
	}
	c.chunk.EmitAt(op, 0)
	return nil
}

// compileCast emits a numeric conversion after its operand: CAST_FLOAT into
// FLOAT, CAST_LONG out of FLOAT. SHORT and LONG
// are the same runtime representation (the fusion the analyzer documents),
// so a cast between them emits nothing.
func (c *Compiler) compileCast(n *ast.CastExpr) error {
	if err := c.compileExpr(n.Operand); err != nil {
		return err
	}
	switch {
	case n.To == ast.FLOAT && n.From != ast.FLOAT:
		c.chunk.EmitAt(OpCastToFloat, 0)
	case n.To != ast.FLOAT && n.From == ast.FLOAT:
		c.chunk.EmitAt(OpCastToLong, 0)
	}
	return nil
}
