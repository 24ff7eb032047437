package xcompose

import (
	"fmt"
	"os"

	"github.com/gocompose/xcompose/internal/paths"
	"github.com/gocompose/xcompose/internal/parser"
	"github.com/gocompose/xcompose/internal/trie"
)

// Format identifies the textual format a Table was compiled from. Only
// the X11 text format is supported, matching spec.md's scope; this type
// exists so the construction API has somewhere to grow.
type Format int

// TextV1 is the classic XCompose text format this package compiles.
const TextV1 Format = 1

// CompileFlags modifies how a Table is compiled from source.
type CompileFlags int

const (
	// NoFlags requests default compilation behaviour.
	NoFlags CompileFlags = 0
)

// checkFormatAndFlags rejects any format other than TextV1 and any flag
// bits beyond NoFlags, mirroring the original's xkb_compose_new_from_file/
// _from_buffer guard (compose.c:100-108,133-141) that runs before any
// parsing is attempted.
func checkFormatAndFlags(format Format, flags CompileFlags) error {
	if format != TextV1 {
		return fmt.Errorf("xcompose: unsupported compose format: %d", format)
	}
	if flags&^NoFlags != 0 {
		return fmt.Errorf("xcompose: unrecognized flags: %#x", flags)
	}
	return nil
}

// Table is a compiled, read-only Compose sequence trie plus its interned
// UTF-8 string pool. It is safe to share across any number of States,
// concurrently, since nothing in a Table mutates after NewFrom* returns.
type Table struct {
	locale string
	tree   *trie.Table
}

// Stats reports density metrics for the compiled table, useful for
// diagnosing unexpectedly large Compose files.
type Stats = trie.Stats

// Stats returns density metrics for t.
func (t *Table) Stats() Stats {
	return t.tree.Stats()
}

// NewFromBuffer compiles a Table from a Compose file already held in
// memory. name is used only for diagnostics (it appears in "included
// from" chains if buf contains include directives naming other files).
// format must be TextV1 and flags must be NoFlags; both are rejected
// before anything else is attempted (spec.md §6/§7).
func NewFromBuffer(buf []byte, name string, locale string, format Format, flags CompileFlags) (*Table, error) {
	if err := checkFormatAndFlags(format, flags); err != nil {
		return nil, err
	}
	resolved, err := paths.ResolveLocale(locale)
	if err != nil {
		return nil, fmt.Errorf("xcompose: %w", err)
	}
	tree := trie.New()
	p := parser.New(tree, resolved)
	if err := p.ParseBuffer(buf, name); err != nil {
		return nil, fmt.Errorf("xcompose: %w", err)
	}
	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("xcompose: compiled table failed validation: %w", err)
	}
	tracer().Infof("compiled Compose table from %s: %+v", name, tree.Stats())
	return &Table{locale: resolved, tree: tree}, nil
}

// NewFromFile compiles a Table from a Compose file on disk. format must
// be TextV1 and flags must be NoFlags; both are rejected before the file
// is even opened (spec.md §6/§7).
func NewFromFile(path string, locale string, format Format, flags CompileFlags) (*Table, error) {
	if err := checkFormatAndFlags(format, flags); err != nil {
		return nil, err
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("xcompose: failed to open Compose file %q: %w", path, err)
	}
	return NewFromBuffer(buf, path, locale, format, flags)
}

// NewFromLocale discovers and compiles the Compose file appropriate for
// locale the way libX11 does (spec.md §4.7): XCOMPOSEFILE, then
// $HOME/.XCompose, then the locale's system Compose file, in that order
// of preference, committing to the first one that actually opens and
// parses rather than the first one that merely exists. An empty locale
// auto-detects from the environment. The format is always TextV1; flags
// must be NoFlags.
func NewFromLocale(locale string, flags CompileFlags) (*Table, error) {
	if err := checkFormatAndFlags(TextV1, flags); err != nil {
		return nil, err
	}
	resolved, err := paths.ResolveLocale(locale)
	if err != nil {
		return nil, fmt.Errorf("xcompose: %w", err)
	}

	var candidates []string
	if p := paths.XComposeFilePath(); p != "" {
		candidates = append(candidates, p)
	}
	if p := paths.HomeComposeFilePath(); p != "" {
		candidates = append(candidates, p)
	}
	systemPath := paths.LocaleComposeFilePath(resolved)
	candidates = append(candidates, systemPath)

	var lastErr error
	for _, p := range candidates {
		if _, statErr := os.Stat(p); statErr != nil {
			continue
		}
		table, err := NewFromFile(p, resolved, TextV1, flags)
		if err == nil {
			return table, nil
		}
		tracer().Errorf("failed to compile Compose file %q, trying next candidate: %v", p, err)
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %s", ErrNoComposeFile, systemPath)
}
