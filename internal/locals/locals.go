// Package locals implements the compilation unit's local-variable table:
// the ordered list of short/long/float declarations built by the
// local-scan pass and consulted (never re-ordered) by the semantic
// analyzer and code generator.
package locals

import "strings"

// Local is one declared local variable.
type Local struct {
	Name string
	// Type is the single-character type tag: 'f', 'l', or 's'.
	Type byte
}

// Table is the ordered, lowercased-name-indexed local variable table for
// one unit. Declaration order is preserved because the code generator
// addresses locals by their stable index, not by name.
type Table struct {
	order []Local
	index map[string]int
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Declare records a declaration of name with the given type tag. If name
// was already declared (case-insensitively), Declare reports false and
// leaves the table unchanged: the first declaration's type wins and the
// caller (the local-scan pass) is expected to turn the redeclaration into
// a warning rather than an error.
func (t *Table) Declare(name string, typ byte) bool {
	key := strings.ToLower(name)
	if _, exists := t.index[key]; exists {
		return false
	}
	t.index[key] = len(t.order)
	t.order = append(t.order, Local{Name: name, Type: typ})
	return true
}

// Lookup returns the index and type tag of a declared local, case
// insensitively, or ok=false if name was never declared.
func (t *Table) Lookup(name string) (idx int, typ byte, ok bool) {
	i, exists := t.index[strings.ToLower(name)]
	if !exists {
		return 0, 0, false
	}
	return i, t.order[i].Type, true
}

// Len returns the number of declared locals.
func (t *Table) Len() int {
	return len(t.order)
}

// At returns the local at the given stable index. It panics if idx is out
// of range, matching slice semantics since callers only ever index with
// values Lookup or Len already validated.
func (t *Table) At(idx int) Local {
	return t.order[idx]
}

// All returns the locals in declaration order. The returned slice must not
// be mutated by the caller.
func (t *Table) All() []Local {
	return t.order
}
