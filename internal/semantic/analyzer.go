// Package semantic implements the local-scan pass (see scanlocals.go) and
// the semantic analyzer: the pass that classifies bare identifiers,
// recovers call shapes out of parenthesis-free juxtaposition, inserts
// casts, and assigns a TypeSig to every expression.
package semantic

import (
	"strconv"
	"strings"

	"github.com/mwscript-go/mwsc/internal/ast"
	"github.com/mwscript-go/mwsc/internal/context"
	"github.com/mwscript-go/mwsc/internal/errors"
	"github.com/mwscript-go/mwsc/internal/extensions"
	"github.com/mwscript-go/mwsc/internal/locals"
)

// Analyzer runs the semantic pass over a parsed Module, using Context and
// Extensions as borrowed read-only collaborators and a Locals table already
// populated by ScanLocals.
type Analyzer struct {
	ctx    context.Context
	ext    *extensions.Registry
	locals *locals.Table
	errs   *errors.Handler
}

// New creates an Analyzer. locals must already be populated by ScanLocals.
func New(ctx context.Context, ext *extensions.Registry, locals *locals.Table, errs *errors.Handler) *Analyzer {
	return &Analyzer{ctx: ctx, ext: ext, locals: locals, errs: errs}
}

// Analyze walks every statement of mod, mutating its expression trees in
// place (by slot replacement) and recording diagnostics on the Analyzer's
// ErrorHandler.
func (a *Analyzer) Analyze(mod *ast.Module) {
	for i, stmt := range mod.Statements {
		mod.Statements[i] = a.analyzeStatement(stmt)
	}
}

func (a *Analyzer) analyzeStatement(stmt ast.Statement) ast.Statement {
	switch s := stmt.(type) {
	case *ast.TypeDecl, *ast.ReturnStatement, *ast.NoOp:
		return stmt
	case *ast.SetStatement:
		a.analyzeSet(s)
		return s
	case *ast.IfStatement:
		a.analyzeIf(s)
		return s
	case *ast.WhileStatement:
		a.analyzeWhile(s)
		return s
	case *ast.StatementExpr:
		s.Expr = a.resolveTop(s.Expr)
		return s
	default:
		return stmt
	}
}

func (a *Analyzer) analyzeIf(s *ast.IfStatement) {
	s.Cond = a.resolveTop(s.Cond)
	a.checkBoolCondition(s.Cond)
	for i, body := range s.Then {
		s.Then[i] = a.analyzeStatement(body)
	}
	for ei := range s.ElseIfs {
		s.ElseIfs[ei].Cond = a.resolveTop(s.ElseIfs[ei].Cond)
		a.checkBoolCondition(s.ElseIfs[ei].Cond)
		for i, body := range s.ElseIfs[ei].Body {
			s.ElseIfs[ei].Body[i] = a.analyzeStatement(body)
		}
	}
	for i, body := range s.Else {
		s.Else[i] = a.analyzeStatement(body)
	}
}

func (a *Analyzer) analyzeWhile(s *ast.WhileStatement) {
	s.Cond = a.resolveTop(s.Cond)
	a.checkBoolCondition(s.Cond)
	for i, body := range s.Body {
		s.Body[i] = a.analyzeStatement(body)
	}
}

func (a *Analyzer) checkBoolCondition(cond ast.Expression) {
	if primitiveOf(cond.Sig()) != ast.BOOL {
		a.errs.Warning("condition is not boolean", cond.NodeLoc().Pos)
	}
}

func (a *Analyzer) analyzeSet(s *ast.SetStatement) {
	s.Target = a.resolveExpr(s.Target, exprCtx{ignoreCalls: true})
	s.Value = a.resolveTop(s.Value)

	targetPrim := primitiveOf(s.Target.Sig())
	switch targetPrim {
	case ast.FLOAT, ast.LONG, ast.SHORT:
		valPrim := primitiveOf(s.Value.Sig())
		if valPrim == ast.FLOAT || valPrim == ast.LONG || valPrim == ast.SHORT {
			if valPrim != targetPrim {
				s.Value = a.coerceNumeric(s.Value, targetPrim)
			}
		} else {
			a.errs.Error("string type in arithmetic", s.Loc.Pos)
		}
	case ast.STRING:
		// The target never resolved to a local/global/member: it is an
		// undeclared name. The concrete compile scenarios treat this as a
		// hard failure rather than the softer "unknown target" warning a
		// literal reading of the dotted-reference text might suggest; see
		// the set-statement note in the design ledger.
		a.errs.Error("Invalid set target", s.Loc.Pos)
		s.Ignored = true
	default:
		a.errs.Error("non-primitive in set target", s.Loc.Pos)
		s.Ignored = true
	}
}

// exprCtx carries the two sub-mode flags the analyzer's single visitor
// function needs instead of separate visitor subclasses: ignoreCalls (an
// assignment target is never itself a call) and immutable (classify
// without committing the replacement, used for call-shape lookahead).
type exprCtx struct {
	ignoreCalls bool
	immutable   bool
	nested      bool
}

// resolveTop resolves e as the top-level expression of a statement slot
// (condition, assignment value, or a bare expression statement), enabling
// ExprItems' operator-continuation recovery.
func (a *Analyzer) resolveTop(e ast.Expression) ast.Expression {
	return a.resolveExpr(e, exprCtx{})
}

func (a *Analyzer) resolveExpr(e ast.Expression, c exprCtx) ast.Expression {
	switch n := e.(type) {
	case *ast.StringLit:
		return a.classifyAtom(n, c)
	case *ast.LongLit:
		n.SetSig(ast.PrimitiveSig{Prim: ast.LONG})
		return n
	case *ast.FloatLit:
		n.SetSig(ast.PrimitiveSig{Prim: ast.FLOAT})
		return n
	case *ast.GlobalVar, *ast.LocalVar, *ast.MemberVar, *ast.Journal:
		return n // already resolved (re-entrant resolution of a committed node)
	case *ast.RefExpr:
		if n.Sig() != nil {
			return n // already resolved; avoids re-emitting its diagnostics
		}
		return a.resolveRef(n)
	case *ast.MathExpr:
		if n.Sig() != nil {
			return n
		}
		return a.resolveMath(n)
	case *ast.LogicExpr:
		if n.Sig() != nil {
			return n
		}
		return a.resolveLogic(n)
	case *ast.NegateExpr:
		if n.Sig() != nil {
			return n
		}
		return a.resolveNegate(n)
	case *ast.CastExpr:
		n.Operand = a.resolveExpr(n.Operand, exprCtx{})
		return n
	case *ast.ExprItems:
		cur := &itemCursor{items: n.Items}
		return a.processFn(cur, !c.nested)
	case *ast.CallExpr:
		return n // already resolved
	default:
		return e
	}
}

func (a *Analyzer) classifyAtom(n *ast.StringLit, c exprCtx) ast.Expression {
	if n.Quoted {
		n.SetSig(ast.PrimitiveSig{Prim: ast.STRING})
		return n
	}
	name := n.Value
	lower := strings.ToLower(name)

	if !c.ignoreCalls {
		if id := a.ext.SearchKeyword(lower); id != 0 {
			if fn, ok := a.ext.IsFunction(id); ok {
				n.SetSig(ast.ArgsSig{ArgString: fn.Args, IsMessageBox: fn.IsMessageBox, IsFunction: true, Return: tagToPrimitive(fn.Return)})
				return n
			}
			if instr, ok := a.ext.IsInstruction(id); ok {
				n.SetSig(ast.ArgsSig{ArgString: instr.Args, IsMessageBox: instr.IsMessageBox, IsFunction: false})
				return n
			}
		}
	}

	if idx, typ, ok := a.locals.Lookup(name); ok {
		lv := &ast.LocalVar{ExprBase: ast.ExprBase{Loc: n.Loc}, Name: name, Index: idx}
		lv.SetSig(ast.PrimitiveSig{Prim: tagToPrimitive(typ)})
		return lv
	}

	if t := a.ctx.GlobalType(name); t != ' ' {
		gv := &ast.GlobalVar{ExprBase: ast.ExprBase{Loc: n.Loc}, Name: name}
		gv.SetSig(ast.PrimitiveSig{Prim: tagToPrimitive(t)})
		return gv
	}

	if allDigits(name) {
		v, _ := strconv.ParseInt(name, 10, 32)
		ll := &ast.LongLit{ExprBase: ast.ExprBase{Loc: n.Loc}, Value: int32(v)}
		ll.SetSig(ast.PrimitiveSig{Prim: ast.LONG})
		return ll
	}

	if a.ctx.IsJournalID(name) {
		j := &ast.Journal{ExprBase: ast.ExprBase{Loc: n.Loc}, Name: name}
		j.SetSig(ast.PrimitiveSig{Prim: ast.SHORT})
		return j
	}

	n.SetSig(ast.PrimitiveSig{Prim: ast.STRING})
	return n
}

func (a *Analyzer) resolveRef(n *ast.RefExpr) ast.Expression {
	if n.Op == ast.OpDot {
		if typ, isGlobal := a.ctx.MemberType(n.Offset, n.Base); typ != ' ' {
			mv := &ast.MemberVar{ExprBase: ast.ExprBase{Loc: n.Loc}, Owner: n.Base, Member: n.Offset, IsGlobal: isGlobal}
			mv.SetSig(ast.PrimitiveSig{Prim: tagToPrimitive(typ), IsMember: true})
			return mv
		}
		if allDigits(n.Base) && allDigits(n.Offset) {
			v, _ := strconv.ParseFloat(n.Base+"."+n.Offset, 32)
			fl := &ast.FloatLit{ExprBase: ast.ExprBase{Loc: n.Loc}, Value: float32(v)}
			fl.SetSig(ast.PrimitiveSig{Prim: ast.FLOAT})
			return fl
		}
		a.errs.Error("invalid member reference", n.Loc.Pos)
		n.SetSig(ast.PrimitiveSig{Prim: ast.UNDEFINED})
		return n
	}

	// ast.OpArrow
	id := a.ext.SearchKeyword(strings.ToLower(n.Offset))
	if id == 0 {
		a.errs.Error("unknown arrow target", n.Loc.Pos)
		n.SetSig(ast.PrimitiveSig{Prim: ast.UNDEFINED})
		return n
	}
	if !a.ctx.IsID(n.Base) {
		a.errs.Error("unknown arrow target", n.Loc.Pos)
		n.SetSig(ast.PrimitiveSig{Prim: ast.UNDEFINED})
		return n
	}
	if fn, ok := a.ext.IsFunction(id); ok {
		if !fn.NeedsExplicitRef {
			a.errs.Warning("unneeded explicit reference", n.Loc.Pos)
			n.HasBase = false
		}
		n.SetSig(ast.ArgsSig{ArgString: fn.Args, IsMessageBox: fn.IsMessageBox, IsFunction: true, Return: tagToPrimitive(fn.Return)})
		return n
	}
	if instr, ok := a.ext.IsInstruction(id); ok {
		if !instr.NeedsExplicitRef {
			a.errs.Warning("unneeded explicit reference", n.Loc.Pos)
			n.HasBase = false
		}
		n.SetSig(ast.ArgsSig{ArgString: instr.Args, IsMessageBox: instr.IsMessageBox, IsFunction: false})
		return n
	}
	a.errs.Error("unknown arrow target", n.Loc.Pos)
	n.SetSig(ast.PrimitiveSig{Prim: ast.UNDEFINED})
	return n
}

func (a *Analyzer) resolveMath(n *ast.MathExpr) ast.Expression {
	n.Left = a.resolveExpr(n.Left, exprCtx{})
	n.Right = a.resolveExpr(n.Right, exprCtx{})
	lt, rt := primitiveOf(n.Left.Sig()), primitiveOf(n.Right.Sig())
	if !isNumeric(lt) || !isNumeric(rt) {
		a.errs.Error("string type in arithmetic", n.Loc.Pos)
		n.SetSig(ast.PrimitiveSig{Prim: ast.UNDEFINED})
		return n
	}
	coerced := binCoerce(lt, rt)
	n.Left = a.coerceNumeric(n.Left, coerced)
	n.Right = a.coerceNumeric(n.Right, coerced)
	n.SetSig(ast.PrimitiveSig{Prim: coerced})
	return n
}

func (a *Analyzer) resolveLogic(n *ast.LogicExpr) ast.Expression {
	n.Left = a.resolveExpr(n.Left, exprCtx{})
	n.Right = a.resolveExpr(n.Right, exprCtx{})
	lt, rt := primitiveOf(n.Left.Sig()), primitiveOf(n.Right.Sig())
	if !isNumeric(lt) || !isNumeric(rt) {
		a.errs.Error("string type in arithmetic", n.Loc.Pos)
	}
	n.SetSig(ast.PrimitiveSig{Prim: ast.BOOL})
	return n
}

func (a *Analyzer) resolveNegate(n *ast.NegateExpr) ast.Expression {
	n.Operand = a.resolveExpr(n.Operand, exprCtx{})
	p := primitiveOf(n.Operand.Sig())
	if !isNumeric(p) {
		a.errs.Error("string type in arithmetic", n.Loc.Pos)
		n.SetSig(ast.PrimitiveSig{Prim: ast.UNDEFINED})
		return n
	}
	n.SetSig(ast.PrimitiveSig{Prim: p})
	return n
}

// coerceNumeric wraps expr in a CastExpr if its primitive differs from
// want, warning on the three precision-losing narrowing combinations.
func (a *Analyzer) coerceNumeric(expr ast.Expression, want ast.Primitive) ast.Expression {
	have := primitiveOf(expr.Sig())
	if have == want {
		return expr
	}
	if isNarrowing(have, want) {
		a.errs.Warning("precision loss casting "+have.String()+" to "+want.String(), expr.NodeLoc().Pos)
	}
	cast := &ast.CastExpr{ExprBase: ast.ExprBase{Loc: expr.NodeLoc()}, From: have, To: want, Operand: expr}
	cast.SetSig(ast.PrimitiveSig{Prim: want})
	return cast
}

func isNarrowing(from, to ast.Primitive) bool {
	switch {
	case from == ast.FLOAT && to == ast.SHORT:
		return true
	case from == ast.LONG && to == ast.SHORT:
		return true
	case from == ast.FLOAT && to == ast.LONG:
		return true
	}
	return false
}

func isNumeric(p ast.Primitive) bool {
	return p == ast.FLOAT || p == ast.LONG || p == ast.SHORT
}

// binCoerce is the total numeric-widening function: FLOAT dominates LONG
// dominates SHORT.
func binCoerce(a, b ast.Primitive) ast.Primitive {
	if a == ast.FLOAT || b == ast.FLOAT {
		return ast.FLOAT
	}
	if a == ast.LONG || b == ast.LONG {
		return ast.LONG
	}
	return ast.SHORT
}

func primitiveOf(sig ast.TypeSig) ast.Primitive {
	if ps, ok := sig.(ast.PrimitiveSig); ok {
		return ps.Prim
	}
	return ast.UNDEFINED
}

func tagToPrimitive(tag byte) ast.Primitive {
	switch tag {
	case 'f':
		return ast.FLOAT
	case 'l':
		return ast.LONG
	case 's':
		return ast.SHORT
	}
	return ast.UNDEFINED
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
