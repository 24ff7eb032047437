// Package trie is the flat-array Compose trie: Components D and F of the
// design (spec.md §4.4/§4.5). It owns the node array and the interned
// UTF-8 blob that together form a read-only, lookup-by-keysym-sequence
// table once built.
//
// The representation deliberately avoids pointers (spec.md §9): every
// cross-reference is an index into Nodes, so growth by append can freely
// relocate the backing array without invalidating anything but a stale
// Go slice reference, which callers must re-fetch after any insertion
// exactly as the teacher's dat/dat_backend.go re-fetches build nodes after
// ensureDATIndex growth.
package trie

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/gocompose/xcompose/internal/keysym"
)

func tracer() tracing.Trace {
	return tracing.Select("xcompose/trie")
}

// Node is one cell of the Compose trie (spec.md §3). All five fields are
// indices or keysyms, never pointers.
type Node struct {
	Keysym    keysym.Keysym // the key this node matches, or NoSymbol for the root
	Next      uint32        // sibling searched if Keysym doesn't match; 0 = none
	Successor uint32        // first child, consuming the next keysym; 0 = leaf
	UTF8      uint32        // offset into the UTF-8 blob; 0 = no string
	KS        keysym.Keysym // replacement keysym for a leaf, or NoSymbol
}

// IsLeaf reports whether n terminates a sequence (has no children).
func (n Node) IsLeaf() bool { return n.Successor == 0 }

// HasPayload reports whether n carries a string and/or replacement keysym.
func (n Node) HasPayload() bool { return n.UTF8 != 0 || n.KS != keysym.NoSymbol }

// Table is the finished (or in-progress) Compose trie: the node array plus
// the interned UTF-8 blob (spec.md §3/§4.5). The zero value is not valid;
// use New.
type Table struct {
	Nodes []Node
	UTF8  []byte
}

// New returns a Table containing exactly one node (the root) and a
// one-byte UTF-8 blob holding the NUL sentinel, matching the "newly
// constructed table" invariant of spec.md §4.7.
func New() *Table {
	return &Table{
		Nodes: []Node{{Keysym: keysym.NoSymbol}},
		UTF8:  []byte{0},
	}
}

// addNode appends a fresh node for ks and returns its index.
func (t *Table) addNode(ks keysym.Keysym) uint32 {
	t.Nodes = append(t.Nodes, Node{Keysym: ks, KS: keysym.NoSymbol})
	return uint32(len(t.Nodes) - 1)
}

// AddProduction inserts one production (spec.md §4.4). lhs must have
// between 1 and 10 entries (the caller, the parser, enforces the bound).
// hasString/hasKeysym indicate which of str/ks are present on the RHS.
// Any conflict warnings are returned as strings instead of being logged
// directly, so the parser — which owns the scanner position the warnings
// should be attributed to — can route them through its own tracer with
// the right line/column context.
func (t *Table) AddProduction(lhs []keysym.Keysym, str string, hasString bool, ks keysym.Keysym, hasKeysym bool) []string {
	var warnings []string

	curr := uint32(0)
	node := &t.Nodes[curr]

	for pos := 0; pos < len(lhs); pos++ {
		// When node is the root (root.Keysym is NoSymbol) it never equals
		// a real lhs entry, so the top-level alternatives are searched
		// along the root's Next chain. A successor stub freshly created on
		// the previous iteration was seeded with this position's keysym
		// and matches at once. Otherwise the loop walks the sibling chain
		// from curr until it finds or appends a match, exactly as
		// add_node/add_production do in the original.
		for lhs[pos] != node.Keysym {
			if node.Next == 0 {
				next := t.addNode(lhs[pos])
				node = &t.Nodes[curr] // re-fetch: addNode may have relocated Nodes
				node.Next = next
			}
			curr = node.Next
			node = &t.Nodes[curr]
		}

		if pos == len(lhs)-1 {
			break
		}

		if node.Successor == 0 {
			if node.HasPayload() {
				warnings = append(warnings, "a sequence already exists which is a prefix of this sequence; overriding")
				node.UTF8 = 0
				node.KS = keysym.NoSymbol
			}
			successor := t.addNode(lhs[pos+1])
			node = &t.Nodes[curr] // re-fetch after addNode
			node.Successor = successor
		}

		curr = node.Successor
		node = &t.Nodes[curr]
	}

	if node.Successor != 0 {
		warnings = append(warnings, "the compose sequence is a prefix of another; skipping line")
		return warnings
	}
	if node.HasPayload() {
		warnings = append(warnings, "the compose sequence already exists; skipping line")
		return warnings
	}

	if hasString {
		node.UTF8 = uint32(len(t.UTF8))
		t.UTF8 = append(t.UTF8, str...)
		t.UTF8 = append(t.UTF8, 0)
	}
	if hasKeysym {
		node.KS = ks
	}
	return warnings
}

// Stats reports density metrics for the finished table, the SPEC_FULL.md
// §9 diagnostic analogous to the teacher's PatternTrieStats.
type Stats struct {
	NodeCount        int
	UTF8Bytes        int
	MaxSiblingChain  int
	LeafCount        int
	InternalNodeCount int
}

// Stats walks the whole node array once, computing aggregate statistics.
func (t *Table) Stats() Stats {
	var s Stats
	s.NodeCount = len(t.Nodes)
	s.UTF8Bytes = len(t.UTF8)
	visited := make(map[uint32]bool)
	for i := range t.Nodes {
		n := &t.Nodes[i]
		// The root is neither a leaf nor an internal trie node in the
		// spec.md §3 sense: it only ever chains top-level alternatives
		// through Next (see AddProduction), never through Successor, so
		// IsLeaf's Successor==0 check would otherwise misclassify it.
		if i != 0 {
			if n.IsLeaf() {
				s.LeafCount++
			} else {
				s.InternalNodeCount++
			}
		}
		if visited[uint32(i)] {
			continue
		}
		chain := 0
		for idx := uint32(i); ; {
			visited[idx] = true
			chain++
			next := t.Nodes[idx].Next
			if next == 0 {
				break
			}
			idx = next
		}
		if chain > s.MaxSiblingChain {
			s.MaxSiblingChain = chain
		}
	}
	return s
}

// Validate checks the invariants spec.md §8 lists for every built table.
// It is used by tests and is cheap enough to call after any build.
func (t *Table) Validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("trie: empty node array, missing root")
	}
	if t.Nodes[0].Keysym != keysym.NoSymbol {
		return fmt.Errorf("trie: root keysym = %v, want NoSymbol", t.Nodes[0].Keysym)
	}
	if len(t.UTF8) == 0 || t.UTF8[0] != 0 {
		return fmt.Errorf("trie: utf8_blob[0] must be the NUL sentinel")
	}
	n := uint32(len(t.Nodes))
	for i, node := range t.Nodes {
		if node.Next >= n {
			return fmt.Errorf("trie: node %d has out-of-range next=%d", i, node.Next)
		}
		if node.Successor >= n {
			return fmt.Errorf("trie: node %d has out-of-range successor=%d", i, node.Successor)
		}
		if uint32(node.UTF8) >= uint32(len(t.UTF8)) {
			return fmt.Errorf("trie: node %d has out-of-range utf8 offset=%d", i, node.UTF8)
		}
		if node.Successor != 0 && node.HasPayload() {
			return fmt.Errorf("trie: node %d is both internal and a leaf", i)
		}
	}
	return t.validateSiblingChain(t.Nodes[0].Next, make(map[uint32]bool))
}

// validateSiblingChain walks one sibling chain (a child list reached via
// some node's Successor), asserting pairwise-distinct keysyms, then
// recurses into each sibling's own child list.
func (t *Table) validateSiblingChain(head uint32, visited map[uint32]bool) error {
	seen := map[keysym.Keysym]bool{}
	for idx := head; idx != 0; idx = t.Nodes[idx].Next {
		if visited[idx] {
			return fmt.Errorf("trie: cycle detected at node %d", idx)
		}
		visited[idx] = true
		ks := t.Nodes[idx].Keysym
		if seen[ks] {
			return fmt.Errorf("trie: duplicate sibling keysym %v in chain starting at %d", ks, head)
		}
		seen[ks] = true
		if succ := t.Nodes[idx].Successor; succ != 0 {
			if err := t.validateSiblingChain(succ, visited); err != nil {
				return err
			}
		}
	}
	return nil
}
