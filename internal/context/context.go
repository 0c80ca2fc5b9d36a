// Package context models the host engine's global symbol oracle: the
// world-data store of globals, per-object members, journal ids, and general
// id existence that the semantic analyzer consults but never mutates.
//
// The real host (object store, editor, world data) lives outside this
// module; Context is a borrowed read-only handle into it. Initialization of
// a production-backed Context is out of scope here — tests and the CLI use
// the in-memory MapContext below.
package context

// Context is the read-only oracle the semantic analyzer queries when
// classifying a bare identifier or resolving a dotted reference. All methods
// must be safe for concurrent use by independent compiler pipelines sharing
// one Context, since each pipeline may run on its own goroutine.
type Context interface {
	// GlobalType returns the single-character type tag ('f', 'l', 's') of a
	// global variable, or ' ' if name is not a known global.
	GlobalType(name string) byte

	// MemberType returns the type tag of member belonging to owner (an
	// object/script id), and whether that member is itself a global
	// variable slot (as opposed to object-local storage).
	MemberType(member, owner string) (typ byte, isGlobal bool)

	// IsJournalID reports whether name is a known journal (quest log) id.
	IsJournalID(name string) bool

	// IsID reports whether name is any kind of known id in the world
	// (object, script, or otherwise) — used to validate the base of an
	// explicit `base->offset` reference.
	IsID(name string) bool
}

// MapContext is a simple in-memory Context backed by plain maps. It is the
// Context used by tests, the CLI's standalone compile commands, and any
// caller that wants to drive the pipeline without wiring a real world-data
// store.
type MapContext struct {
	Globals map[string]byte
	// Members maps owner -> member -> (type, isGlobal).
	Members  map[string]map[string]MemberInfo
	Journals map[string]bool
	IDs      map[string]bool
}

// MemberInfo describes one member slot of an owning object.
type MemberInfo struct {
	Type     byte
	IsGlobal bool
}

// NewMapContext returns an empty MapContext ready for population.
func NewMapContext() *MapContext {
	return &MapContext{
		Globals:  make(map[string]byte),
		Members:  make(map[string]map[string]MemberInfo),
		Journals: make(map[string]bool),
		IDs:      make(map[string]bool),
	}
}

// AddGlobal registers a global variable with its type tag.
func (c *MapContext) AddGlobal(name string, typ byte) {
	c.Globals[name] = typ
}

// AddMember registers a member slot on owner.
func (c *MapContext) AddMember(owner, member string, typ byte, isGlobal bool) {
	if c.Members[owner] == nil {
		c.Members[owner] = make(map[string]MemberInfo)
	}
	c.Members[owner][member] = MemberInfo{Type: typ, IsGlobal: isGlobal}
	c.IDs[owner] = true
}

// AddJournal registers a journal id.
func (c *MapContext) AddJournal(name string) {
	c.Journals[name] = true
	c.IDs[name] = true
}

// AddID registers a bare id (an object or script reference with no members
// of interest to the caller).
func (c *MapContext) AddID(name string) {
	c.IDs[name] = true
}

func (c *MapContext) GlobalType(name string) byte {
	if t, ok := c.Globals[name]; ok {
		return t
	}
	return ' '
}

func (c *MapContext) MemberType(member, owner string) (byte, bool) {
	if members, ok := c.Members[owner]; ok {
		if info, ok := members[member]; ok {
			return info.Type, info.IsGlobal
		}
	}
	return ' ', false
}

func (c *MapContext) IsJournalID(name string) bool {
	return c.Journals[name]
}

func (c *MapContext) IsID(name string) bool {
	return c.IDs[name]
}
