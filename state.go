package xcompose

import (
	"github.com/gocompose/xcompose/internal/keysym"
)

// Keysym re-exports the keysym namespace type, so callers never need to
// import internal/keysym directly.
type Keysym = keysym.Keysym

// NoSymbol is the sentinel "no symbol" keysym value.
const NoSymbol = keysym.NoSymbol

// Status reports a State's position relative to the Compose trie after
// the most recent Feed.
type Status int

const (
	// Nothing means the fed keysym did not continue, complete, or cancel
	// any compose sequence.
	Nothing Status = iota
	// Composing means the fed keysym continued a still-ambiguous compose
	// sequence; more keysyms may complete or cancel it.
	Composing
	// Composed means the fed keysym completed a compose sequence; UTF8
	// and OneSym now report its result.
	Composed
	// Cancelled means the fed keysym broke off a sequence that had been
	// composing, without completing it.
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Nothing:
		return "nothing"
	case Composing:
		return "composing"
	case Composed:
		return "composed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// StateFlags modifies a State's behaviour. It exists so the construction
// API has somewhere to grow; no flags are currently defined.
type StateFlags int

// NewState creates a State tracking its position in table's trie. Many
// States may share one Table concurrently: a State only ever reads from
// its Table, and holds no lock over it, since a Table never mutates once
// compiled.
func NewState(table *Table, flags StateFlags) *State {
	return &State{table: table}
}

// State is one independent cursor into a shared Table's compose trie. It
// is not safe for concurrent use by multiple goroutines; callers that
// want two concurrent input streams should create two States over the
// same Table (SPEC_FULL.md's concurrency property, exercised by the
// multi-State leak test).
type State struct {
	table *Table

	prevContext uint32
	context     uint32

	// IgnoreModifiers, when true, feeds modifier/lock keysyms through the
	// trie instead of silently discarding them. The historical default
	// (false) reproduces the "FIXME: dubious" behaviour of the original
	// engine, kept because Compose files in the wild are written assuming
	// it.
	IgnoreModifiers bool
}

// Table returns the Table this State was created over.
func (st *State) Table() *Table { return st.table }

// Reset returns the State to its initial, non-composing position.
func (st *State) Reset() {
	st.prevContext = 0
	st.context = 0
}

// Feed advances the State by one keysym, per spec.md §4.6's state
// transition: the fed keysym is is_modifier-filtered, then matched among
// the current context's children (falling back to the trie root so
// sequences may restart mid-stream), and the context is updated to the
// (possibly absent) match.
func (st *State) Feed(ks Keysym) {
	if !st.IgnoreModifiers && keysym.IsModifier(ks) {
		return
	}

	tree := st.table.tree.Nodes

	node := &tree[st.context]
	context := node.Successor
	node = &tree[context]

	for node.Keysym != ks && node.Next != 0 {
		context = node.Next
		node = &tree[context]
	}

	if node.Keysym != ks {
		context = 0
	}

	st.prevContext = st.context
	st.context = context
}

// Status reports the State's position after the most recent Feed, per
// spec.md §4.6's (prev_context, context) classification.
func (st *State) Status() Status {
	tree := st.table.tree.Nodes
	prevNode := &tree[st.prevContext]
	node := &tree[st.context]

	if st.context == 0 && prevNode.Successor != 0 {
		return Cancelled
	}
	if st.context == 0 {
		return Nothing
	}
	if node.Successor != 0 {
		return Composing
	}
	return Composed
}

// UTF8 returns the composed string for the State's current position, or
// "" if the position carries no string payload. When a leaf has only a
// replacement keysym, its Unicode conversion is returned instead, exactly
// as xkb_compose_state_get_utf8 falls back to xkb_keysym_to_utf8.
func (st *State) UTF8() string {
	node := &st.table.tree.Nodes[st.context]
	if node.UTF8 == 0 && node.KS != NoSymbol {
		if s, ok := keysym.ToUTF8(node.KS); ok {
			return s
		}
		return ""
	}
	blob := st.table.tree.UTF8
	end := node.UTF8
	for end < uint32(len(blob)) && blob[end] != 0 {
		end++
	}
	return string(blob[node.UTF8:end])
}

// OneSym returns the replacement keysym for the State's current position,
// or NoSymbol if none was set.
func (st *State) OneSym() Keysym {
	return st.table.tree.Nodes[st.context].KS
}
