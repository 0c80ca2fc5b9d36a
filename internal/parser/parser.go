// Package parser builds a Module from a token stream. It is deliberately
// permissive: anywhere the grammar does not demand a specific statement or
// operator shape, adjacent atoms are collected into an ast.ExprItems list
// for the semantic analyzer to disambiguate into a call or a single value.
//
// The parser never decides whether an identifier names a call, a variable,
// or a literal; that classification, along with cast insertion and type
// assignment, is entirely the analyzer's job.
package parser

import (
	"strconv"
	"strings"

	"github.com/mwscript-go/mwsc/internal/ast"
	"github.com/mwscript-go/mwsc/internal/errors"
	"github.com/mwscript-go/mwsc/internal/lexer"
)

// deferred is the parser's single pending grammar-hazard diagnostic: a
// keyword used in identifier position is recorded as a warning and only
// promoted to an error if the enclosing control block later fails to find
// its terminator, suggesting the keyword was in fact needed for the grammar
// and its absence broke the block.
type deferred struct {
	message string
	loc     ast.Loc
}

// Parser consumes tokens from a Lexer and produces a Module.
type Parser struct {
	l    *lexer.Lexer
	errs *errors.Handler

	cur, peek lexer.Token

	pending *deferred
}

// New creates a Parser reading from l and reporting diagnostics to errs.
func New(l *lexer.Lexer, errs *errors.Handler) *Parser {
	p := &Parser{l: l, errs: errs}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(tt lexer.TokenType) bool  { return p.cur.Type == tt }
func (p *Parser) peekIs(tt lexer.TokenType) bool { return p.peek.Type == tt }

func (p *Parser) loc() ast.Loc { return ast.LocOf(p.cur) }

// setDeferred overwrites the single pending hazard slot.
func (p *Parser) setDeferred(message string, loc ast.Loc) {
	p.pending = &deferred{message: message, loc: loc}
}

// promotePending turns the pending hazard into an error, if one is set.
func (p *Parser) promotePending() {
	if p.pending == nil {
		return
	}
	p.errs.Error(p.pending.message, p.pending.loc.Pos)
	p.pending = nil
}

// FlushDeferred reports any still-pending hazard as a warning. The driver
// calls this once at end of file.
func (p *Parser) FlushDeferred() {
	if p.pending == nil {
		return
	}
	p.errs.Warning(p.pending.message, p.pending.loc.Pos)
	p.pending = nil
}

// ParseModule parses the entire token stream into a Module.
func (p *Parser) ParseModule(name string) *ast.Module {
	mod := &ast.Module{Name: name}
	for !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			mod.Statements = append(mod.Statements, stmt)
		}
	}
	return mod
}

var blockEnders = map[lexer.TokenType]bool{
	lexer.ENDIF:    true,
	lexer.ENDWHILE: true,
	lexer.ELSE:     true,
	lexer.ELSEIF:   true,
	lexer.EOF:      true,
}

// parseBlock parses statements until the current token is a block
// terminator (endif, endwhile, else, elseif; left unconsumed) or EOF.
func (p *Parser) parseBlock() []ast.Statement {
	var stmts []ast.Statement
	for !blockEnders[p.cur.Type] {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.NEWLINE:
		loc := p.loc()
		p.advance()
		return &ast.NoOp{StmtBase: ast.StmtBase{Loc: loc}}
	case lexer.SHORT, lexer.LONG, lexer.FLOATKW:
		return p.parseTypeDecl()
	case lexer.SET:
		return p.parseSetStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.ENDIF, lexer.ENDWHILE, lexer.ELSE, lexer.ELSEIF:
		// A stray terminator at a position with no matching opener.
		loc := p.loc()
		p.errs.Error("unexpected "+p.cur.Type.String()+" with no matching block", p.loc().Pos)
		p.advance()
		return &ast.NoOp{StmtBase: ast.StmtBase{Loc: loc}}
	default:
		return p.parseStatementExpr()
	}
}

// expectTerminator consumes a trailing NEWLINE (or accepts EOF / an
// already-pending block terminator without consuming it).
func (p *Parser) expectTerminator() {
	if p.curIs(lexer.NEWLINE) {
		p.advance()
		return
	}
	if p.curIs(lexer.EOF) || blockEnders[p.cur.Type] {
		return
	}
	p.errs.Error("expected end of line, got "+p.cur.Type.String(), p.loc().Pos)
	// Recover by skipping to the next newline so later lines still parse.
	for !p.curIs(lexer.NEWLINE) && !p.curIs(lexer.EOF) {
		p.advance()
	}
	if p.curIs(lexer.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) parseTypeDecl() ast.Statement {
	loc := p.loc()
	var typ ast.Primitive
	switch p.cur.Type {
	case lexer.SHORT:
		typ = ast.SHORT
	case lexer.LONG:
		typ = ast.LONG
	case lexer.FLOATKW:
		typ = ast.FLOAT
	}
	p.advance()

	name := p.identLiteral()
	stmt := &ast.TypeDecl{StmtBase: ast.StmtBase{Loc: loc}, Type: typ, Name: name}
	p.expectTerminator()
	return stmt
}

func (p *Parser) parseSetStatement() ast.Statement {
	loc := p.loc()
	p.advance() // consume 'set'

	target := p.parseExpr()
	if p.curIs(lexer.TO) {
		p.advance()
	} else {
		p.errs.Error("expected 'to' in set statement", p.loc().Pos)
	}
	value := p.parseExpr()

	stmt := &ast.SetStatement{StmtBase: ast.StmtBase{Loc: loc}, Target: target, Value: value}
	p.expectTerminator()
	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	loc := p.loc()
	p.advance() // consume 'if'

	cond := p.parseParenOrBareExpr()
	p.expectTerminator()

	blockStart := p.pending
	then := p.parseBlock()

	stmt := &ast.IfStatement{StmtBase: ast.StmtBase{Loc: loc}, Cond: cond, Then: then}

	for p.curIs(lexer.ELSEIF) {
		eiLoc := p.loc()
		p.advance()
		eiCond := p.parseParenOrBareExpr()
		p.expectTerminator()
		_ = eiLoc
		body := p.parseBlock()
		stmt.ElseIfs = append(stmt.ElseIfs, ast.ElseIfClause{Cond: eiCond, Body: body})
	}

	if p.curIs(lexer.ELSE) {
		p.advance()
		p.expectTerminator()
		stmt.Else = p.parseBlock()
	}

	if p.curIs(lexer.ENDIF) {
		p.advance()
		p.expectTerminator()
	} else {
		// Block never found its terminator: any grammar hazard recorded
		// since the block opened was probably load-bearing after all.
		if p.pending == blockStart {
			// nothing new was deferred inside the block
		} else {
			p.promotePending()
		}
		p.errs.Error("expected 'endif' to close 'if'", p.loc().Pos)
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	loc := p.loc()
	p.advance() // consume 'while'

	cond := p.parseParenOrBareExpr()
	p.expectTerminator()

	blockStart := p.pending
	body := p.parseBlock()

	if p.curIs(lexer.ENDWHILE) {
		p.advance()
		p.expectTerminator()
	} else {
		if p.pending != blockStart {
			p.promotePending()
		}
		p.errs.Error("expected 'endwhile' to close 'while'", p.loc().Pos)
	}
	return &ast.WhileStatement{StmtBase: ast.StmtBase{Loc: loc}, Cond: cond, Body: body}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	loc := p.loc()
	p.advance()
	stmt := &ast.ReturnStatement{StmtBase: ast.StmtBase{Loc: loc}}
	p.expectTerminator()
	return stmt
}

func (p *Parser) parseStatementExpr() ast.Statement {
	loc := p.loc()
	expr := p.parseExpr()
	stmt := &ast.StatementExpr{StmtBase: ast.StmtBase{Loc: loc}, Expr: expr}
	p.expectTerminator()
	return stmt
}

// parseParenOrBareExpr accepts `( expr )` or a bare expr, matching the
// grammar's tolerance for both spellings of an if/while condition.
func (p *Parser) parseParenOrBareExpr() ast.Expression {
	if p.curIs(lexer.LPAREN) {
		p.advance()
		expr := p.parseExpr()
		if p.curIs(lexer.RPAREN) {
			p.advance()
		} else {
			p.errs.Error("expected ')'", p.loc().Pos)
		}
		return expr
	}
	return p.parseExpr()
}

// --- expression grammar: comparison > additive > multiplicative > unary > items ---

func (p *Parser) parseExpr() ast.Expression {
	return p.parseComparison()
}

var comparisonOps = map[lexer.TokenType]ast.BinOp{
	lexer.GT:  ast.OpGT,
	lexer.GTE: ast.OpGTE,
	lexer.LT:  ast.OpLT,
	lexer.LTE: ast.OpLTE,
	lexer.EQ:  ast.OpEQ,
	lexer.NEQ: ast.OpNEQ,
}

func (p *Parser) parseComparison() ast.Expression {
	left := p.parseAdditive()
	for {
		op, ok := comparisonOps[p.cur.Type]
		if !ok {
			return left
		}
		loc := p.loc()
		p.advance()
		right := p.parseAdditive()
		left = &ast.LogicExpr{ExprBase: ast.ExprBase{Loc: loc}, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for p.curIs(lexer.PLUS) || p.curIs(lexer.MINUS) {
		loc := p.loc()
		op := ast.OpPlus
		if p.curIs(lexer.MINUS) {
			op = ast.OpMinus
		}
		p.advance()
		right := p.parseMultiplicative()
		left = &ast.MathExpr{ExprBase: ast.ExprBase{Loc: loc}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parseUnary()
	for p.curIs(lexer.ASTERISK) || p.curIs(lexer.SLASH) {
		loc := p.loc()
		op := ast.OpMult
		if p.curIs(lexer.SLASH) {
			op = ast.OpDivide
		}
		p.advance()
		right := p.parseUnary()
		left = &ast.MathExpr{ExprBase: ast.ExprBase{Loc: loc}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	if p.curIs(lexer.MINUS) {
		loc := p.loc()
		p.advance()
		operand := p.parseUnary()
		return &ast.NegateExpr{ExprBase: ast.ExprBase{Loc: loc}, Operand: operand}
	}
	return p.parseItemsRun()
}

var itemStopSet = map[lexer.TokenType]bool{
	lexer.NEWLINE: true, lexer.EOF: true,
	lexer.PLUS: true, lexer.MINUS: true, lexer.ASTERISK: true, lexer.SLASH: true,
	lexer.GT: true, lexer.GTE: true, lexer.LT: true, lexer.LTE: true, lexer.EQ: true, lexer.NEQ: true,
	lexer.RPAREN: true, lexer.TO: true,
	lexer.ENDIF: true, lexer.ENDWHILE: true, lexer.ELSE: true, lexer.ELSEIF: true,
}

// parseItemsRun collects a run of adjacent primary atoms (the parser does
// not know yet whether this is a call, a call with trailing operator
// continuation, or a single value) into an ast.ExprItems, or returns the
// lone item directly when only one was found.
func (p *Parser) parseItemsRun() ast.Expression {
	loc := p.loc()
	var items []ast.Expression
	for {
		if itemStopSet[p.cur.Type] {
			break
		}
		items = append(items, p.parsePrimary())
		if p.curIs(lexer.COMMA) {
			p.advance()
			continue
		}
		if itemStopSet[p.cur.Type] {
			break
		}
		// Juxtaposition: another atom follows directly with no separator.
	}
	if len(items) == 0 {
		p.errs.Error("expected an expression, got "+p.cur.Type.String(), p.loc().Pos)
		return &ast.StringLit{ExprBase: ast.ExprBase{Loc: loc}, Value: ""}
	}
	if len(items) == 1 {
		return items[0]
	}
	return &ast.ExprItems{ExprBase: ast.ExprBase{Loc: loc}, Items: items}
}

func (p *Parser) parsePrimary() ast.Expression {
	loc := p.loc()
	switch p.cur.Type {
	case lexer.LPAREN:
		p.advance()
		inner := p.parseExpr()
		if p.curIs(lexer.RPAREN) {
			p.advance()
		} else {
			p.errs.Error("expected ')'", p.loc().Pos)
		}
		return inner
	case lexer.INT:
		lit := p.cur.Literal
		p.advance()
		v, _ := strconv.ParseInt(lit, 10, 32)
		return &ast.LongLit{ExprBase: ast.ExprBase{Loc: loc}, Value: int32(v)}
	case lexer.FLOAT:
		lit := p.cur.Literal
		p.advance()
		v, _ := strconv.ParseFloat(lit, 32)
		return &ast.FloatLit{ExprBase: ast.ExprBase{Loc: loc}, Value: float32(v)}
	case lexer.STRING:
		lit := p.cur.Literal
		p.advance()
		return &ast.StringLit{ExprBase: ast.ExprBase{Loc: loc}, Value: lit, Quoted: true}
	case lexer.IDENT:
		return p.parseIdentOrRef(loc)
	case lexer.SHORT, lexer.LONG, lexer.FLOATKW, lexer.SET, lexer.TO, lexer.IF, lexer.ELSEIF,
		lexer.ELSE, lexer.ENDIF, lexer.WHILE, lexer.ENDWHILE, lexer.RETURN, lexer.BEGIN, lexer.END:
		// A keyword used where only an identifier is grammatically valid.
		p.setDeferred("keyword '"+p.cur.Literal+"' used as identifier", loc)
		lit := p.cur.Literal
		p.advance()
		return &ast.StringLit{ExprBase: ast.ExprBase{Loc: loc}, Value: lit}
	default:
		p.errs.Error("unexpected token "+p.cur.Type.String(), loc.Pos)
		lit := p.cur.Literal
		p.advance()
		return &ast.StringLit{ExprBase: ast.ExprBase{Loc: loc}, Value: lit}
	}
}

// parseIdentOrRef parses a bare identifier, and if immediately followed by
// `.` or `->`, folds it into an ast.RefExpr(base, op, offset).
func (p *Parser) parseIdentOrRef(loc ast.Loc) ast.Expression {
	base := p.cur.Literal
	p.advance()

	if p.curIs(lexer.DOT) || p.curIs(lexer.ARROW) {
		op := ast.OpDot
		if p.curIs(lexer.ARROW) {
			op = ast.OpArrow
		}
		p.advance()
		offset := p.identLiteral()
		return &ast.RefExpr{ExprBase: ast.ExprBase{Loc: loc}, HasBase: true, Base: base, Op: op, Offset: offset}
	}
	return &ast.StringLit{ExprBase: ast.ExprBase{Loc: loc}, Value: base}
}

// identLiteral consumes one token and returns its literal text, accepting
// either an identifier or an all-digit numeral (the offset side of a.b may
// be numeric, per the float-fusion case the analyzer later recognizes).
func (p *Parser) identLiteral() string {
	switch p.cur.Type {
	case lexer.IDENT, lexer.INT:
		lit := p.cur.Literal
		p.advance()
		return lit
	case lexer.FLOAT:
		// `a.5.2`-shaped input never legitimately occurs; treat the float's
		// text as a single offset atom rather than erroring.
		lit := p.cur.Literal
		p.advance()
		return lit
	default:
		if strings.TrimSpace(p.cur.Literal) == "" {
			p.errs.Error("expected a name", p.loc().Pos)
			return ""
		}
		lit := p.cur.Literal
		p.advance()
		return lit
	}
}
