// Package extensions models the host engine's instruction/function
// registry: the read-only keyword table that tells the semantic analyzer
// each builtin's argument signature and tells the code generator how to
// emit the opaque instruction for a call once it type-checks.
//
// Like Context, a production Extensions is owned by the host engine and
// merely borrowed here; Registry is the in-memory stand-in used by the
// driver, the CLI, and tests.
package extensions

// KeywordID identifies an entry in the registry. Zero means "not a keyword".
type KeywordID int

// CodeWriter is the subset of the code generator's output the registry
// needs to emit a builtin's opcode sequence. It is implemented by
// bytecode.Chunk so this package never imports bytecode (which in turn
// imports this package for call signatures), avoiding an import cycle.
type CodeWriter interface {
	// Emit appends one 32-bit instruction word: an opcode paired with a
	// signed operand (commonly a literal-pool index or argument count).
	Emit(opcode int32, operand int32)
}

// LiteralPool is the subset of the literal pool the registry needs to
// intern constants referenced by the opcodes it emits.
type LiteralPool interface {
	AddString(s string) int
	AddInt(i int32) int
	AddFloat(f float32) int
}

// Signature describes one builtin's calling convention.
type Signature struct {
	// Args is the argument-signature string over the alphabet flsScXxzj/
	// (see the argument-signature-string design note in the analyzer).
	Args string
	// IsFunction is true for value-returning builtins; false for instructions.
	IsFunction bool
	// Return is the primitive return type tag ('f','l','s') when IsFunction.
	Return byte
	// NeedsExplicitRef is true when an explicit `base->` is required rather
	// than merely tolerated.
	NeedsExplicitRef bool
	// IsMessageBox marks the one builtin whose signature is synthesized at
	// analysis time from its format-string argument.
	IsMessageBox bool
}

// opaqueOpcode is the numeric space owned by this registry for builtins that
// are not given a direct emitter in codegen. The VM that ultimately executes
// these is an external collaborator; the numbers only need to be stable
// within one compilation.
type opaqueOpcode int32

// Registry is the in-memory Extensions implementation: a case-insensitive
// keyword table plus a generator function per keyword.
type Registry struct {
	byName map[string]KeywordID
	sigs   map[KeywordID]Signature
	gen    map[KeywordID]func(code CodeWriter, lits LiteralPool, explicitRef string, optionals int)
	next   KeywordID
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]KeywordID),
		sigs:   make(map[KeywordID]Signature),
		gen:    make(map[KeywordID]func(CodeWriter, LiteralPool, string, int)),
		next:   1,
	}
}

// Register adds a builtin keyword (name must already be lowercased) with its
// signature and code generator. Registering the same name twice overwrites
// the earlier entry, matching a registry that is populated once at startup.
func (r *Registry) Register(name string, sig Signature, gen func(code CodeWriter, lits LiteralPool, explicitRef string, optionals int)) KeywordID {
	id, ok := r.byName[name]
	if !ok {
		id = r.next
		r.next++
		r.byName[name] = id
	}
	r.sigs[id] = sig
	r.gen[id] = gen
	return id
}

// SearchKeyword returns the KeywordID for a lowercased name, or 0 if unknown.
func (r *Registry) SearchKeyword(lowered string) KeywordID {
	return r.byName[lowered]
}

// IsFunction reports whether kw is a value-returning builtin and, if so,
// returns its signature.
func (r *Registry) IsFunction(kw KeywordID) (Signature, bool) {
	sig, ok := r.sigs[kw]
	if !ok || !sig.IsFunction {
		return Signature{}, false
	}
	return sig, true
}

// IsInstruction reports whether kw is a non-returning builtin and, if so,
// returns its signature.
func (r *Registry) IsInstruction(kw KeywordID) (Signature, bool) {
	sig, ok := r.sigs[kw]
	if !ok || sig.IsFunction {
		return Signature{}, false
	}
	return sig, true
}

// GenerateCode emits kw's opcode sequence for a call whose explicit
// reference (possibly empty) and filled-optional count have already been
// determined by the analyzer.
func (r *Registry) GenerateCode(kw KeywordID, code CodeWriter, lits LiteralPool, explicitRef string, optionals int) {
	if gen, ok := r.gen[kw]; ok && gen != nil {
		gen(code, lits, explicitRef, optionals)
	}
}

// directEmit is the numeric base for the small set of keywords codegen
// emits directly (see compiler.go); the registry still carries their
// signatures so the analyzer can treat them uniformly, but their generator
// here is never invoked.
const directEmit = opaqueOpcode(-1)

// NewDefaultRegistry returns a Registry populated with the builtin
// instructions and functions named by the code generator's direct-emit list
// plus a representative spread of ordinary (registry-generated) builtins,
// enough to exercise every path of call-shape recovery without hand-rolling
// a full parity table with the host engine.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	instr := func(name, args string, needsExplicit bool) {
		r.Register(name, Signature{Args: args, IsFunction: false, NeedsExplicitRef: needsExplicit}, nil)
	}
	fn := func(name, args string, ret byte, needsExplicit bool) {
		r.Register(name, Signature{Args: args, IsFunction: true, Return: ret, NeedsExplicitRef: needsExplicit}, nil)
	}
	instr("menumode", "", false)
	fn("random", "l", 'l', false)
	instr("startscript", "S", false)
	instr("stopscript", "", false)
	fn("scriptrunning", "", 's', false)
	fn("getdistance", "c", 'f', true)
	fn("getsecondspassed", "", 'f', false)
	fn("getdisabled", "", 's', false)
	instr("enable", "", false)
	instr("disable", "", false)
	fn("getsquareroot", "f", 'f', false)
	r.Register("messagebox", Signature{Args: "S/" + repeatS(256), IsFunction: false, IsMessageBox: true}, nil)

	var opcodeSeq int32 = 1000
	nextOpaque := func() int32 {
		opcodeSeq++
		return opcodeSeq
	}

	r.Register("getjournalindex", Signature{Args: "S", IsFunction: true, Return: 's'},
		func(code CodeWriter, lits LiteralPool, explicitRef string, optionals int) {
			code.Emit(nextOpaque(), int32(optionals))
		})
	r.Register("getdisposition", Signature{Args: "", IsFunction: true, Return: 'l', NeedsExplicitRef: true},
		func(code CodeWriter, lits LiteralPool, explicitRef string, optionals int) {
			idx := int32(lits.AddString(explicitRef))
			code.Emit(nextOpaque(), idx)
		})
	r.Register("additem", Signature{Args: "cl/", IsFunction: false},
		func(code CodeWriter, lits LiteralPool, explicitRef string, optionals int) {
			code.Emit(nextOpaque(), int32(optionals))
		})
	r.Register("settoken", Signature{Args: "Sl", IsFunction: false, NeedsExplicitRef: true},
		func(code CodeWriter, lits LiteralPool, explicitRef string, optionals int) {
			idx := int32(lits.AddString(explicitRef))
			code.Emit(nextOpaque(), idx)
		})
	r.Register("getsecondsfall", Signature{Args: "", IsFunction: true, Return: 'f'},
		func(code CodeWriter, lits LiteralPool, explicitRef string, optionals int) {
			code.Emit(nextOpaque(), 0)
		})
	r.Register("placeitem", Signature{Args: "cfff", IsFunction: false, NeedsExplicitRef: false},
		func(code CodeWriter, lits LiteralPool, explicitRef string, optionals int) {
			code.Emit(nextOpaque(), 0)
		})

	return r
}

func repeatS(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'S'
	}
	return string(b)
}
