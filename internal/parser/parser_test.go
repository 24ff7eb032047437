package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocompose/xcompose/internal/keysym"
	"github.com/gocompose/xcompose/internal/trie"
)

func TestParseSimpleProduction(t *testing.T) {
	tb := trie.New()
	p := New(tb, "C")
	src := `<dead_tilde> <space> : "~" asciitilde` + "\n"
	if err := p.ParseBuffer([]byte(src), "test.compose"); err != nil {
		t.Fatalf("ParseBuffer: %v", err)
	}
	if err := tb.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	root := tb.Nodes[0]
	if root.Next == 0 {
		t.Fatal("expected the production to be inserted")
	}
	first := tb.Nodes[root.Next]
	if first.Keysym != keysym.FromName("dead_tilde") {
		t.Fatalf("got %v", first.Keysym)
	}
	leaf := tb.Nodes[first.Successor]
	if leaf.Keysym != keysym.FromName("space") || !leaf.IsLeaf() {
		t.Fatalf("unexpected leaf: %+v", leaf)
	}
	if string(tb.UTF8[leaf.UTF8:leaf.UTF8+1]) != "~" {
		t.Fatalf("expected payload '~', got %q", tb.UTF8[leaf.UTF8:])
	}
	if leaf.KS != keysym.FromName("asciitilde") {
		t.Fatalf("expected replacement keysym asciitilde, got %v", leaf.KS)
	}
}

func TestParseMultipleProductions(t *testing.T) {
	tb := trie.New()
	p := New(tb, "C")
	src := "" +
		`<dead_tilde> <space> : "~" asciitilde` + "\n" +
		`<dead_acute> <dead_acute> : "´" acute` + "\n" +
		"# a comment\n" +
		"\n"
	if err := p.ParseBuffer([]byte(src), "test.compose"); err != nil {
		t.Fatalf("ParseBuffer: %v", err)
	}
	stats := tb.Stats()
	if stats.LeafCount != 2 {
		t.Fatalf("expected 2 leaves, got %d", stats.LeafCount)
	}
}

func TestParseSkipsBadLineButContinues(t *testing.T) {
	tb := trie.New()
	p := New(tb, "C")
	src := "" +
		"<bogus_not_a_real_keysym_name_xyz> : \"x\"\n" +
		`<dead_tilde> <space> : "~" asciitilde` + "\n"
	if err := p.ParseBuffer([]byte(src), "test.compose"); err != nil {
		t.Fatalf("ParseBuffer: %v", err)
	}
	stats := tb.Stats()
	if stats.LeafCount != 1 {
		t.Fatalf("expected the bad line to be skipped and the good one kept, got %d leaves", stats.LeafCount)
	}
}

func TestParseRejectsTooManyErrors(t *testing.T) {
	tb := trie.New()
	p := New(tb, "C")
	var src string
	for i := 0; i < 12; i++ {
		src += "<bogus_not_a_real_keysym_name_xyz> : \"x\"\n"
	}
	if err := p.ParseBuffer([]byte(src), "test.compose"); err == nil {
		t.Fatal("expected a parse error after exceeding the error budget")
	}
}

func TestParseIncludeDirectivePullsInOtherFile(t *testing.T) {
	dir := t.TempDir()
	included := filepath.Join(dir, "included.compose")
	if err := os.WriteFile(included, []byte(`<dead_acute> <dead_acute> : "´" acute`+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	base := filepath.Join(dir, "base.compose")

	tb := trie.New()
	p := New(tb, "C")
	src := `<dead_tilde> <space> : "~" asciitilde` + "\n" +
		fmt.Sprintf(`include "%s"`, included) + "\n"
	if err := p.ParseBuffer([]byte(src), base); err != nil {
		t.Fatalf("ParseBuffer: %v", err)
	}
	stats := tb.Stats()
	if stats.LeafCount != 2 {
		t.Fatalf("expected 2 leaves (1 from the base file, 1 from the include), got %d", stats.LeafCount)
	}
	root := tb.Nodes[0]
	if root.Next == 0 {
		t.Fatal("expected the base file's production to be inserted")
	}
	found := false
	for n := tb.Nodes[root.Next]; ; {
		if n.Keysym == keysym.FromName("dead_acute") {
			found = true
			break
		}
		if n.Next == 0 {
			break
		}
		n = tb.Nodes[n.Next]
	}
	if !found {
		t.Fatal("expected the included file's production to be reachable from the root")
	}
}

func TestParseIncludeLoopExceedsMaxDepth(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.compose")
	b := filepath.Join(dir, "b.compose")
	if err := os.WriteFile(a, []byte(fmt.Sprintf(`include "%s"`+"\n", b)), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(b, []byte(fmt.Sprintf(`include "%s"`+"\n", a)), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tb := trie.New()
	p := New(tb, "C")
	if err := p.ParseFile(a); err == nil {
		t.Fatal("expected an error once the include loop exceeds the maximum include depth")
	}
}

func TestParseRHSKeysymFallsThroughToEndOfLine(t *testing.T) {
	tb := trie.New()
	p := New(tb, "C")
	src := `<dead_tilde> : asciitilde` + "\n"
	if err := p.ParseBuffer([]byte(src), "test.compose"); err != nil {
		t.Fatalf("ParseBuffer: %v", err)
	}
	root := tb.Nodes[0]
	leaf := tb.Nodes[root.Next]
	if leaf.KS != keysym.FromName("asciitilde") {
		t.Fatalf("expected asciitilde, got %v", leaf.KS)
	}
}
