// Package parser implements Component E of the design: the seven-state
// Compose grammar driver that turns a lexer's token stream into productions
// fed to internal/trie, and handles `include` directives.
package parser

import (
	"fmt"
	"os"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/schuko/tracing"

	"github.com/gocompose/xcompose/internal/keysym"
	"github.com/gocompose/xcompose/internal/lexer"
	"github.com/gocompose/xcompose/internal/scanner"
	"github.com/gocompose/xcompose/internal/trie"
)

func tracer() tracing.Trace {
	return tracing.Select("xcompose/parser")
}

// maxLHSLen bounds the number of keysyms a single production's left-hand
// side may name.
const maxLHSLen = 10

// maxIncludeDepth bounds how many `include` directives may nest, guarding
// against include loops.
const maxIncludeDepth = 5

// maxErrors aborts a parse once too many lines have failed, rather than
// reporting an unbounded error list for a badly malformed file.
const maxErrors = 10

// state names the seven labelled states of the grammar driver. Names
// mirror the goto labels of the original driver.
type state int

const (
	stateInitial state = iota
	stateInclude
	stateIncludeEOL
	stateLHS
	stateRHS
	stateUnexpected
	stateSkip
	stateFail
	stateFinished
)

// production accumulates one LHS/RHS pair while it is being parsed.
type production struct {
	lhs       []keysym.Keysym
	hasKeysym bool
	keysym    keysym.Keysym
	hasString bool
	string    string
}

// Parser drives one parse of a Compose source (and any files it includes)
// into a shared trie.Table.
type Parser struct {
	table  *trie.Table
	locale string

	// includeChain tracks the file names of the include directives
	// currently open, innermost last, so a failure deep in an include
	// chain can be reported with its full provenance (SPEC_FULL.md §9's
	// "include-chain diagnostics" supplement).
	includeChain *arraystack.Stack
}

// New creates a Parser that inserts productions into table.
func New(table *trie.Table, locale string) *Parser {
	return &Parser{table: table, locale: locale, includeChain: arraystack.New()}
}

// ParseBuffer parses one Compose source held entirely in memory, named
// fileName for diagnostics.
func (p *Parser) ParseBuffer(buf []byte, fileName string) error {
	return p.parse(scanner.New(buf), fileName, 0)
}

// ParseFile reads and parses a Compose file from disk.
func (p *Parser) ParseFile(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to open Compose file %q: %w", path, err)
	}
	return p.parse(scanner.New(buf), path, 0)
}

func (p *Parser) parse(s *scanner.Scanner, fileName string, includeDepth int) error {
	lx := lexer.New(s, p.locale)

	var (
		st          state
		tok         lexer.Token
		val         lexer.Lvalue
		lexErr      error
		prod        production
		numErrors   int
		includePath string
	)

	st = stateInitial
	for {
		switch st {
		case stateInitial:
			prod = production{}
		initialEOL:
			tok, val, lexErr = lx.Lex()
			switch tok {
			case lexer.EndOfLine:
				goto initialEOL
			case lexer.EndOfFile:
				st = stateFinished
			case lexer.Include:
				st = stateInclude
			case lexer.LHSKeysym:
				prod.lhs = append(prod.lhs, val.Keysym)
				st = stateLHS
			default:
				st = stateUnexpected
			}

		case stateInclude:
			tok, val, lexErr = lx.LexIncludeString()
			if tok == lexer.IncludeString {
				includePath = val.Text
				st = stateIncludeEOL
			} else {
				st = stateUnexpected
			}

		case stateIncludeEOL:
			tok, val, lexErr = lx.Lex()
			if tok == lexer.EndOfLine {
				if err := p.doInclude(fileName, includePath, includeDepth); err != nil {
					p.reportErr(s, "%v", err)
					st = stateFail
				} else {
					st = stateInitial
				}
			} else {
				st = stateUnexpected
			}

		case stateLHS:
			tok, val, lexErr = lx.Lex()
			switch tok {
			case lexer.LHSKeysym:
				if len(prod.lhs)+1 > maxLHSLen {
					p.reportWarn(s, "too many keysyms (%d) on left-hand side; skipping line", maxLHSLen+1)
					st = stateSkip
					break
				}
				prod.lhs = append(prod.lhs, val.Keysym)
				st = stateLHS
			case lexer.Colon:
				if len(prod.lhs) == 0 {
					p.reportWarn(s, "expected at least one keysym on left-hand side; skipping line")
					st = stateSkip
					break
				}
				st = stateRHS
			default:
				st = stateUnexpected
			}

		case stateRHS:
			tok, val, lexErr = lx.Lex()
			switch tok {
			case lexer.String:
				if prod.hasString {
					p.reportWarn(s, "right-hand side can have at most one string; skipping line")
					st = stateSkip
					break
				}
				if val.Text == "" {
					p.reportWarn(s, "right-hand side string must not be empty; skipping line")
					st = stateSkip
					break
				}
				if len(val.Text) >= 256 {
					p.reportWarn(s, "right-hand side string is too long; skipping line")
					st = stateSkip
					break
				}
				prod.string = val.Text
				prod.hasString = true
				st = stateRHS
			case lexer.RHSKeysym:
				if prod.hasKeysym {
					p.reportWarn(s, "right-hand side can have at most one keysym; skipping line")
					st = stateSkip
					break
				}
				prod.keysym = val.Keysym
				prod.hasKeysym = true
				fallthrough // exactly as the original TOK_RHS_KEYSYM falls into TOK_END_OF_LINE
			case lexer.EndOfLine:
				if !prod.hasString && !prod.hasKeysym {
					p.reportWarn(s, "right-hand side must have at least one of string or keysym; skipping line")
					st = stateSkip
					break
				}
				warnings := p.table.AddProduction(prod.lhs, prod.string, prod.hasString, prod.keysym, prod.hasKeysym)
				for _, w := range warnings {
					p.reportWarn(s, "%s", w)
				}
				st = stateInitial
			default:
				st = stateUnexpected
			}

		case stateUnexpected:
			if tok != lexer.Error {
				p.reportErr(s, "unexpected token")
			} else if lexErr != nil {
				tracer().Errorf("%v", lexErr)
			}
			numErrors++
			if numErrors <= maxErrors {
				st = stateSkip
			} else {
				p.reportErr(s, "too many errors")
				st = stateFail
			}

		case stateSkip:
			for tok != lexer.EndOfLine && tok != lexer.EndOfFile {
				tok, val, lexErr = lx.Lex()
			}
			st = stateInitial

		case stateFail:
			return fmt.Errorf("%s: failed to parse file", fileName)

		case stateFinished:
			return nil
		}
	}
}

// doInclude resolves and recursively parses one `include` directive.
func (p *Parser) doInclude(fromFile, rawPath string, includeDepth int) error {
	if includeDepth >= maxIncludeDepth {
		return fmt.Errorf("maximum include depth (%d) exceeded; maybe there is an include loop?", maxIncludeDepth)
	}
	buf, err := os.ReadFile(rawPath)
	if err != nil {
		return fmt.Errorf("failed to open included Compose file %q: %w", rawPath, err)
	}
	p.includeChain.Push(fromFile)
	defer p.includeChain.Pop()

	s := scanner.New(buf)
	if err := p.parse(s, rawPath, includeDepth+1); err != nil {
		return fmt.Errorf("%w (included from %s)", err, p.includeChainString())
	}
	return nil
}

// includeChainString renders the currently open include chain for
// diagnostics, innermost include last.
func (p *Parser) includeChainString() string {
	values := p.includeChain.Values()
	s := ""
	for i := len(values) - 1; i >= 0; i-- {
		if s != "" {
			s += " -> "
		}
		s += fmt.Sprintf("%v", values[i])
	}
	return s
}

func (p *Parser) reportErr(s *scanner.Scanner, format string, args ...interface{}) {
	tracer().Errorf("%d:%d: %s", s.TokenLine(), s.TokenColumn(), fmt.Sprintf(format, args...))
}

func (p *Parser) reportWarn(s *scanner.Scanner, format string, args ...interface{}) {
	tracer().Errorf("%d:%d: %s", s.TokenLine(), s.TokenColumn(), fmt.Sprintf(format, args...))
}
