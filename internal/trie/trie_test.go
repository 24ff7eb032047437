package trie

import (
	"testing"

	"github.com/gocompose/xcompose/internal/keysym"
)

func ks(name string) keysym.Keysym {
	v := keysym.FromName(name)
	if v == keysym.NoSymbol {
		panic("unknown keysym in test: " + name)
	}
	return v
}

func TestNewTableInvariants(t *testing.T) {
	tb := New()
	if len(tb.Nodes) != 1 {
		t.Fatalf("expected exactly one node (root), got %d", len(tb.Nodes))
	}
	if len(tb.UTF8) != 1 || tb.UTF8[0] != 0 {
		t.Fatalf("expected a one-byte NUL blob, got %v", tb.UTF8)
	}
	if err := tb.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestAddProductionRoundTrip(t *testing.T) {
	tb := New()
	warnings := tb.AddProduction([]keysym.Keysym{ks("dead_tilde"), ks("space")}, "~", true, ks("asciitilde"), true)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if err := tb.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	root := tb.Nodes[0]
	if root.Next == 0 {
		t.Fatal("expected root to have a child after inserting a production")
	}
	first := tb.Nodes[root.Next]
	if first.Keysym != ks("dead_tilde") {
		t.Fatalf("expected first node to match dead_tilde, got %v", first.Keysym)
	}
	if first.Successor == 0 {
		t.Fatal("expected dead_tilde node to have a successor (it's not the last lhs position)")
	}
	leaf := tb.Nodes[first.Successor]
	if leaf.Keysym != ks("space") {
		t.Fatalf("expected leaf to match space, got %v", leaf.Keysym)
	}
	if !leaf.IsLeaf() {
		t.Fatal("expected leaf node to have no successor")
	}
	if string(tb.UTF8[leaf.UTF8:leaf.UTF8+1]) != "~" {
		t.Fatalf("expected leaf utf8 to be '~', got %q", tb.UTF8[leaf.UTF8:])
	}
	if leaf.KS != ks("asciitilde") {
		t.Fatalf("expected leaf ks to be asciitilde, got %v", leaf.KS)
	}
}

func TestAddProductionSiblings(t *testing.T) {
	tb := New()
	tb.AddProduction([]keysym.Keysym{ks("dead_tilde"), ks("space")}, "~", true, keysym.NoSymbol, false)
	tb.AddProduction([]keysym.Keysym{ks("dead_acute"), ks("space")}, "´", true, keysym.NoSymbol, false)

	root := tb.Nodes[0]
	first := tb.Nodes[root.Next]
	if first.Next == 0 {
		t.Fatal("expected two top-level alternatives to be linked as siblings")
	}
	second := tb.Nodes[first.Next]
	if second.Keysym != ks("dead_acute") {
		t.Fatalf("expected second sibling to be dead_acute, got %v", second.Keysym)
	}
	if err := tb.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestAddProductionPrefixConflictOverrides(t *testing.T) {
	tb := New()
	// First insert a 1-keysym sequence with a payload...
	tb.AddProduction([]keysym.Keysym{ks("dead_tilde")}, "~", true, keysym.NoSymbol, false)
	// ...then insert a longer sequence for which the first is a prefix.
	warnings := tb.AddProduction([]keysym.Keysym{ks("dead_tilde"), ks("space")}, "~~", true, keysym.NoSymbol, false)
	if len(warnings) != 1 {
		t.Fatalf("expected one override warning, got %v", warnings)
	}
	root := tb.Nodes[0]
	node := tb.Nodes[root.Next]
	if node.HasPayload() {
		t.Fatal("expected the shorter sequence's payload to be cleared when overridden")
	}
	if node.Successor == 0 {
		t.Fatal("expected the node to now have a successor")
	}
	if err := tb.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestAddProductionSupersetConflictSkipsLine(t *testing.T) {
	tb := New()
	tb.AddProduction([]keysym.Keysym{ks("dead_tilde"), ks("space")}, "~", true, keysym.NoSymbol, false)
	// Now try to add a sequence that is a prefix of the existing one.
	warnings := tb.AddProduction([]keysym.Keysym{ks("dead_tilde")}, "x", true, keysym.NoSymbol, false)
	if len(warnings) != 1 {
		t.Fatalf("expected one 'prefix of another' warning, got %v", warnings)
	}
	root := tb.Nodes[0]
	node := tb.Nodes[root.Next]
	if node.HasPayload() {
		t.Fatal("the shorter, conflicting production must not have been inserted")
	}
}

func TestAddProductionDuplicateSkipsLine(t *testing.T) {
	tb := New()
	tb.AddProduction([]keysym.Keysym{ks("dead_tilde")}, "~", true, keysym.NoSymbol, false)
	warnings := tb.AddProduction([]keysym.Keysym{ks("dead_tilde")}, "z", true, keysym.NoSymbol, false)
	if len(warnings) != 1 {
		t.Fatalf("expected one duplicate warning, got %v", warnings)
	}
	root := tb.Nodes[0]
	node := tb.Nodes[root.Next]
	if string(tb.UTF8[node.UTF8:]) != "~\x00" {
		t.Fatalf("expected the first insertion's payload to win, got %q", tb.UTF8[node.UTF8:])
	}
}

func TestStatsReportsCounts(t *testing.T) {
	tb := New()
	tb.AddProduction([]keysym.Keysym{ks("dead_tilde"), ks("space")}, "~", true, keysym.NoSymbol, false)
	tb.AddProduction([]keysym.Keysym{ks("dead_tilde"), ks("dead_tilde")}, "~", true, ks("asciitilde"), true)
	stats := tb.Stats()
	if stats.NodeCount != 4 { // root, dead_tilde, space-leaf, dead_tilde-leaf
		t.Fatalf("expected 4 nodes, got %d", stats.NodeCount)
	}
	if stats.LeafCount != 2 {
		t.Fatalf("expected 2 leaves, got %d", stats.LeafCount)
	}
}
