// Package ast defines the compiler's tree: a Module of Statements built
// from Expressions, plus the TypeSig variants the semantic analyzer
// attaches to every expression it resolves.
//
// Nodes are plain structs grouped by a small set of marker interfaces
// rather than a class hierarchy; a parent replaces a child by assigning a
// new value into its own slot, never by mutating the child in place. This
// keeps ownership single-parent-downward with no back-pointers.
package ast

import "github.com/mwscript-go/mwsc/internal/lexer"

// Loc is the source position attached to every token, node, and
// diagnostic: a line/column/source-name triple plus the original
// lexeme spelling.
type Loc struct {
	Pos     lexer.Position
	Literal string
}

// LocOf builds a Loc from a scanned token.
func LocOf(tok lexer.Token) Loc {
	return Loc{Pos: tok.Pos, Literal: tok.Literal}
}

// Primitive is one of the language's scalar types.
type Primitive int

const (
	UNDEFINED Primitive = iota
	FLOAT
	LONG
	SHORT
	STRING
	BOOL
)

func (p Primitive) String() string {
	switch p {
	case FLOAT:
		return "float"
	case LONG:
		return "long"
	case SHORT:
		return "short"
	case STRING:
		return "string"
	case BOOL:
		return "bool"
	default:
		return "undefined"
	}
}

// Tag returns the single-character type tag used by the locals table and
// the literal pool ('f', 'l', 's'); it panics for non-local-representable
// primitives (STRING, BOOL, UNDEFINED), which never appear as a local's type.
func (p Primitive) Tag() byte {
	switch p {
	case FLOAT:
		return 'f'
	case LONG:
		return 'l'
	case SHORT:
		return 's'
	}
	panic("ast: primitive " + p.String() + " has no local type tag")
}

// BinOp enumerates the binary (and unary-marker) operators the parser
// recognizes.
type BinOp int

const (
	OpNone BinOp = iota
	OpGT
	OpGTE
	OpLT
	OpLTE
	OpEQ
	OpNEQ
	OpPlus
	OpMinus
	OpMult
	OpDivide
	OpDot
	OpArrow
)

func (op BinOp) String() string {
	switch op {
	case OpGT:
		return ">"
	case OpGTE:
		return ">="
	case OpLT:
		return "<"
	case OpLTE:
		return "<="
	case OpEQ:
		return "=="
	case OpNEQ:
		return "!="
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpMult:
		return "*"
	case OpDivide:
		return "/"
	case OpDot:
		return "."
	case OpArrow:
		return "->"
	default:
		return "<none>"
	}
}

// IsComparison reports whether op produces a BOOL result.
func (op BinOp) IsComparison() bool {
	switch op {
	case OpGT, OpGTE, OpLT, OpLTE, OpEQ, OpNEQ:
		return true
	}
	return false
}

// TypeSig is the immutable type signature the analyzer attaches to an
// expression once resolved. Every concrete expression's TypeSig is one of
// PrimitiveSig, ArgsSig, FunctionSig, or InstructionSig.
type TypeSig interface {
	isTypeSig()
}

// PrimitiveSig is the signature of an ordinary value-typed expression.
type PrimitiveSig struct {
	Prim     Primitive
	IsMember bool
}

func (PrimitiveSig) isTypeSig() {}

// ArgsSig is the signature of an atom that names a callable builtin but has
// not yet been matched against a call's arguments. Once call-shape recovery
// runs, the CallExpr built around the atom carries a FunctionSig or
// InstructionSig with Optionals filled in; the atom itself keeps its ArgsSig.
type ArgsSig struct {
	ArgString    string
	IsMessageBox bool
	Optionals    int
	// IsFunction and Return distinguish a value-returning builtin from an
	// instruction while the atom still only names a callable, before call
	// shape recovery commits it to a FunctionSig or InstructionSig.
	IsFunction bool
	Return     Primitive
}

func (ArgsSig) isTypeSig() {}

// FunctionSig is the signature of a resolved value-returning builtin call.
type FunctionSig struct {
	Args      string
	Return    Primitive
	Optionals int
}

func (FunctionSig) isTypeSig() {}

// InstructionSig is the signature of a resolved non-returning builtin call.
type InstructionSig struct {
	Args         string
	IsMessageBox bool
	Optionals    int
}

func (InstructionSig) isTypeSig() {}

// Callable reports whether sig names something that can be called, and if
// so returns its argument-signature string.
func Callable(sig TypeSig) (argString string, ok bool) {
	switch s := sig.(type) {
	case ArgsSig:
		return s.ArgString, true
	case FunctionSig:
		return s.Args, true
	case InstructionSig:
		return s.Args, true
	}
	return "", false
}

// Expression is implemented by every expression node. exprNode is
// unexported so only this package can grow the set of variants.
type Expression interface {
	exprNode()
	NodeLoc() Loc
	Sig() TypeSig
	SetSig(TypeSig)
}

// ExprBase is embedded by every Expression variant to carry its location
// and (once analyzed) its type signature.
type ExprBase struct {
	Loc     Loc
	TypeSig TypeSig
}

func (e *ExprBase) exprNode()        {}
func (e *ExprBase) NodeLoc() Loc     { return e.Loc }
func (e *ExprBase) Sig() TypeSig     { return e.TypeSig }
func (e *ExprBase) SetSig(s TypeSig) { e.TypeSig = s }

// FloatLit is a floating-point literal.
type FloatLit struct {
	ExprBase
	Value float32
}

// LongLit is an integer literal (also used for SHORT-typed literals before
// any narrowing is applied; the distinction is carried in TypeSig, not here).
type LongLit struct {
	ExprBase
	Value int32
}

// StringLit is a bare string atom: either a genuine quoted string value or
// an unresolved identifier-shaped atom the analyzer has not yet classified.
// Quoted distinguishes the two: a quoted StringLit is never reclassified by
// identifier classification (§4.4.1 only applies to bare atoms).
type StringLit struct {
	ExprBase
	Value  string
	Quoted bool
}

// GlobalVar references a global variable known to the Context.
type GlobalVar struct {
	ExprBase
	Name string
}

// LocalVar references a declared local; Index is its stable slot in the
// Locals table.
type LocalVar struct {
	ExprBase
	Name  string
	Index int
}

// MemberVar references a member slot on an owning object.
type MemberVar struct {
	ExprBase
	Owner    string
	Member   string
	IsGlobal bool
}

// Journal references a quest-log id, always typed SHORT.
type Journal struct {
	ExprBase
	Name string
}

// MathExpr is an arithmetic binary expression; its TypeSig's primitive is
// the numeric coercion of its operands.
type MathExpr struct {
	ExprBase
	Op          BinOp
	Left, Right Expression
}

// LogicExpr is a comparison binary expression; its TypeSig is always BOOL.
type LogicExpr struct {
	ExprBase
	Op          BinOp
	Left, Right Expression
}

// NegateExpr is a unary minus; it preserves its operand's numeric type.
type NegateExpr struct {
	ExprBase
	Operand Expression
}

// CastExpr is an explicit numeric conversion inserted by the analyzer.
type CastExpr struct {
	ExprBase
	From, To Primitive
	Operand  Expression
}

// RefExpr models `base.offset` or `base->offset`; Base is empty and
// HasBase is false for the implicit (no-base) form.
type RefExpr struct {
	ExprBase
	HasBase bool
	Base    string
	Op      BinOp
	Offset  string
}

// ExprItems is the parser's flat list of adjacent atoms awaiting call-shape
// recovery by the analyzer.
type ExprItems struct {
	ExprBase
	Items []Expression
}

// CallArgs holds a CallExpr's already-matched argument expressions.
type CallArgs struct {
	ExprBase
	Args []Expression
}

// CallExpr is a resolved call: Callee names the function/instruction (via
// its TypeSig) and Args is the matched argument list.
type CallExpr struct {
	ExprBase
	Callee Expression
	Args   *CallArgs
}

// Statement is implemented by every statement node.
type Statement interface {
	stmtNode()
	NodeLoc() Loc
}

// StmtBase is embedded by every Statement variant.
type StmtBase struct {
	Loc Loc
}

func (s *StmtBase) stmtNode()    {}
func (s *StmtBase) NodeLoc() Loc { return s.Loc }

// TypeDecl declares a local: `short x`, `long y`, `float z`.
type TypeDecl struct {
	StmtBase
	Type Primitive
	Name string
}

// SetStatement is `set <target> to <value>`.
type SetStatement struct {
	StmtBase
	Target Expression
	Value  Expression
	// Ignored marks a SetStatement whose target resolved to something that
	// cannot be assigned to (e.g. STRING); the statement is kept in the
	// tree but contributes no code.
	Ignored bool
}

// ElseIfClause is one `elseif <cond> ... ` arm of an IfStatement.
type ElseIfClause struct {
	Cond Expression
	Body []Statement
}

// IfStatement is `if (<cond>) ... [elseif ...] [else ...] endif`.
type IfStatement struct {
	StmtBase
	Cond    Expression
	Then    []Statement
	ElseIfs []ElseIfClause
	Else    []Statement
}

// WhileStatement is `while (<cond>) ... endwhile`.
type WhileStatement struct {
	StmtBase
	Cond Expression
	Body []Statement
}

// ReturnStatement is a bare `return`.
type ReturnStatement struct {
	StmtBase
}

// StatementExpr is an expression used as a statement (e.g. a bare call on
// its own line).
type StatementExpr struct {
	StmtBase
	Expr Expression
}

// NoOp is an empty statement: a stray terminator or blank line.
type NoOp struct {
	StmtBase
}

// Module is the parsed unit: a name and its ordered top-level statements.
type Module struct {
	Name       string
	Statements []Statement
}
