package semantic

import (
	"strings"

	"github.com/mwscript-go/mwsc/internal/ast"
)

// itemCursor walks an ExprItems list front-to-back, allowing a nested call
// recovered mid-list to push its own head back before re-consuming it.
type itemCursor struct {
	items []ast.Expression
	pos   int
}

func (c *itemCursor) next() (ast.Expression, bool) {
	if c.pos >= len(c.items) {
		return nil, false
	}
	item := c.items[c.pos]
	c.pos++
	return item, true
}

func (c *itemCursor) peek() (ast.Expression, bool) {
	if c.pos >= len(c.items) {
		return nil, false
	}
	return c.items[c.pos], true
}

func (c *itemCursor) pushFront(item ast.Expression) {
	c.pos--
	c.items[c.pos] = item
}

func (c *itemCursor) remaining() int {
	return len(c.items) - c.pos
}

// processFn recovers the call shape of items starting at cur's current
// position: it classifies the head in immutable mode to learn whether it
// names a callable builtin, then either matches a call (process_args) or
// returns the head alone. topLevel controls whether leftover items after a
// successful call are reinterpreted as an operator continuation (true) or
// left for an enclosing process_args to keep consuming (false, the nested
// call case).
func (a *Analyzer) processFn(cur *itemCursor, topLevel bool) ast.Expression {
	head, ok := cur.next()
	if !ok {
		// Nothing to classify; should not happen since ExprItems is never
		// constructed empty by the parser.
		return &ast.StringLit{}
	}

	lookahead := a.resolveExpr(head, exprCtx{immutable: true})
	argString, callable := ast.Callable(lookahead.Sig())
	if !callable {
		committed := a.resolveExpr(head, exprCtx{})
		if topLevel {
			a.reportExtras(cur)
		}
		return committed
	}

	if sig, ok := lookahead.Sig().(ast.ArgsSig); ok && sig.IsMessageBox {
		if next, ok := cur.peek(); ok {
			if format, ok := atomText(next); ok {
				argString = formatMsgBox(format)
			}
		}
	}

	args, optionals := a.processArgs(cur, argString, head.NodeLoc())
	committedHead := a.resolveExpr(head, exprCtx{})

	call := &ast.CallExpr{
		ExprBase: ast.ExprBase{Loc: head.NodeLoc()},
		Callee:   committedHead,
		Args:     &ast.CallArgs{Args: args},
	}
	headSig := committedHead.Sig()
	if s, ok := headSig.(ast.ArgsSig); ok {
		s.ArgString = argString
		headSig = s
	}
	call.SetSig(finalizeSig(headSig, optionals))

	if cur.remaining() == 0 {
		return call
	}
	if !topLevel {
		return call
	}

	if next, ok := cur.peek(); ok {
		if neg, ok := next.(*ast.NegateExpr); ok {
			cur.next()
			rhs := a.resolveExpr(neg.Operand, exprCtx{})
			lt, rt := primitiveOf(call.Sig()), primitiveOf(rhs.Sig())
			coerced := binCoerce(lt, rt)
			math := &ast.MathExpr{ExprBase: ast.ExprBase{Loc: call.Loc}, Op: ast.OpMinus, Left: call, Right: rhs}
			math.SetSig(ast.PrimitiveSig{Prim: coerced})
			a.reportExtras(cur)
			return math
		}
	}

	a.reportExtras(cur)
	return call
}

// finalizeSig converts a head's provisional ArgsSig into the final
// FunctionSig/InstructionSig once its call has matched, recording how many
// optional slots were actually filled.
func finalizeSig(sig ast.TypeSig, optionals int) ast.TypeSig {
	s, ok := sig.(ast.ArgsSig)
	if !ok {
		return sig
	}
	if s.IsFunction {
		return ast.FunctionSig{Args: s.ArgString, Return: s.Return, Optionals: optionals}
	}
	return ast.InstructionSig{Args: s.ArgString, IsMessageBox: s.IsMessageBox, Optionals: optionals}
}

// reportExtras drains any items left in cur, each as an "extra argument
// ignored" warning.
func (a *Analyzer) reportExtras(cur *itemCursor) {
	for {
		item, ok := cur.next()
		if !ok {
			return
		}
		a.errs.Warning("extra argument ignored", item.NodeLoc().Pos)
	}
}

// processArgs matches items against sigArgs, one character at a time, per
// the argument-signature alphabet: f/l/s are numeric (recursing into a
// nested process_fn when the item is itself callable), c/S are strings
// (consumed without recursive analysis), x/X/z are ignored filler, '/'
// marks the start of optional arguments, and j (journal id) is never
// matched against an item — its semantics are otherwise undefined upstream
// and this implementation freezes it as a no-op, consistent with treating
// it as a signature marker rather than a consumed slot.
func (a *Analyzer) processArgs(cur *itemCursor, sigArgs string, callLoc ast.Loc) ([]ast.Expression, int) {
	var args []ast.Expression
	optional := false
	optionals := 0

	for i := 0; i < len(sigArgs); i++ {
		switch sigArgs[i] {
		case '/':
			optional = true
		case 'c', 'S':
			item, ok := cur.next()
			if !ok {
				if !optional {
					a.errs.Error("missing required argument", callLoc.Pos)
				}
				return args, optionals
			}
			text, _ := atomText(item)
			if sigArgs[i] == 'c' {
				text = strings.ToLower(text)
			}
			lit := &ast.StringLit{ExprBase: ast.ExprBase{Loc: item.NodeLoc()}, Value: text, Quoted: true}
			lit.SetSig(ast.PrimitiveSig{Prim: ast.STRING})
			args = append(args, lit)
			if optional {
				optionals++
			}
		case 'f', 'l', 's':
			item, ok := cur.next()
			if !ok {
				if !optional {
					a.errs.Error("missing required argument", callLoc.Pos)
				}
				return args, optionals
			}
			lookahead := a.resolveExpr(item, exprCtx{immutable: true})
			var resolved ast.Expression
			if _, callable := ast.Callable(lookahead.Sig()); callable {
				cur.pushFront(item)
				resolved = a.processFn(cur, false)
			} else {
				resolved = a.resolveExpr(item, exprCtx{})
			}
			want := sigCharToPrimitive(sigArgs[i])
			args = append(args, a.coerceNumeric(resolved, want))
			if optional {
				optionals++
			}
		case 'x', 'X', 'z':
			if _, ok := cur.next(); ok && optional {
				optionals++
			}
		case 'j':
			// Never consumes an item; see the function doc comment.
		}
	}
	return args, optionals
}

func sigCharToPrimitive(ch byte) ast.Primitive {
	switch ch {
	case 'f':
		return ast.FLOAT
	case 'l':
		return ast.LONG
	case 's':
		return ast.SHORT
	}
	return ast.UNDEFINED
}

// atomText extracts the literal text of an item for 'c'/'S' signature
// consumption, which takes the item as-is without recursive analysis.
func atomText(e ast.Expression) (string, bool) {
	switch n := e.(type) {
	case *ast.StringLit:
		return n.Value, true
	case *ast.LongLit:
		return strings.TrimSpace(n.NodeLoc().Literal), true
	case *ast.FloatLit:
		return strings.TrimSpace(n.NodeLoc().Literal), true
	}
	return "", false
}

// formatMsgBox synthesizes a MessageBox call's argument-signature string
// from its printf-like format text: a leading "S" for the format itself,
// one code per recognized specifier (%f -> float, %g -> long, %s/%S ->
// raw string), then "/" followed by 256 optional raw-string slots so a
// MessageBox call may pass extra trailing arguments the format does not
// consume.
func formatMsgBox(format string) string {
	var b strings.Builder
	b.WriteByte('S')
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			continue
		}
		switch format[i+1] {
		case 'f':
			b.WriteByte('f')
			i++
		case 'g':
			b.WriteByte('l')
			i++
		case 's', 'S':
			b.WriteByte('S')
			i++
		}
	}
	b.WriteByte('/')
	b.WriteString(strings.Repeat("S", 256))
	return b.String()
}
