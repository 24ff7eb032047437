// Package lexer implements Components B and C of the design: the Compose
// grammar's token producer and the include-path lexer, both built on top
// of internal/scanner. The grammar itself is a small hand-lexed language,
// so there is no parser-generator dependency here; this mirrors how the
// teacher's own trie package hand-rolls its traversal rather than reaching
// for a third-party parsing library for a language this small.
package lexer

import (
	"fmt"
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing"

	"github.com/gocompose/xcompose/internal/keysym"
	"github.com/gocompose/xcompose/internal/paths"
	"github.com/gocompose/xcompose/internal/scanner"
)

func tracer() tracing.Trace {
	return tracing.Select("xcompose/lexer")
}

// Token is one of the Compose grammar's terminal kinds.
type Token int

const (
	EndOfFile Token = iota
	EndOfLine
	Include
	IncludeString
	LHSKeysym
	Colon
	String
	RHSKeysym
	Error
)

func (t Token) String() string {
	switch t {
	case EndOfFile:
		return "end of file"
	case EndOfLine:
		return "end of line"
	case Include:
		return "include"
	case IncludeString:
		return "include string"
	case LHSKeysym:
		return "left-hand side keysym"
	case Colon:
		return "colon"
	case String:
		return "string"
	case RHSKeysym:
		return "right-hand side keysym"
	default:
		return "error"
	}
}

// Lvalue carries the payload a token returns alongside its kind: a parsed
// keysym for LHSKeysym/RHSKeysym, or interpreted text for String and
// IncludeString.
type Lvalue struct {
	Keysym keysym.Keysym
	Text   string
}

// Lexer wraps a Scanner with the Compose grammar's tokenization rules.
// Lexical errors come back as an Error token together with an error value
// rather than ending the parse, since the driving parser (Component E)
// needs to keep going after most lexical errors (it resynchronizes on the
// next line); escape-sequence warnings are logged to the tracer.
type Lexer struct {
	s *scanner.Scanner

	// Locale is passed through to %L include-string expansion.
	Locale string
}

// New wraps s in a Lexer.
func New(s *scanner.Scanner, locale string) *Lexer {
	return &Lexer{s: s, Locale: locale}
}

// Scanner exposes the underlying Scanner, for callers that need
// line/column context (the parser, for diagnostics).
func (l *Lexer) Scanner() *scanner.Scanner { return l.s }

// Lex reads and returns the next grammar token, mirroring the real
// xkbcommon lexer's `lex()` in every particular, including the ordering
// of whitespace/comment skipping against the end-of-line check.
func (l *Lexer) Lex() (Token, Lvalue, error) {
	s := l.s
	for {
		for scanner.IsSpace(s.Peek()) {
			if s.Next() == '\n' {
				return EndOfLine, Lvalue{}, nil
			}
		}
		if s.Chr('#') {
			for !s.EOF() && !s.EOL() {
				s.Next()
			}
			continue
		}
		break
	}

	if s.EOF() {
		return EndOfFile, Lvalue{}, nil
	}

	s.MarkToken()
	s.ResetScratch()

	if s.Chr('<') {
		for s.Peek() != '>' && !s.EOL() {
			s.BufAppend(s.Next())
		}
		if !s.Chr('>') {
			return Error, Lvalue{}, l.errf("unterminated keysym literal")
		}
		name := string(s.Scratch())
		ks := keysym.FromName(name)
		if ks == keysym.NoSymbol {
			return Error, Lvalue{}, l.errf("unrecognized keysym %q on left-hand side", name)
		}
		return LHSKeysym, Lvalue{Keysym: ks}, nil
	}

	if s.Chr(':') {
		return Colon, Lvalue{}, nil
	}

	if s.Chr('"') {
		for !s.EOF() && !s.EOL() && s.Peek() != '"' {
			if s.Chr('\\') {
				switch {
				case s.Chr('\\'):
					s.BufAppend('\\')
				case s.Chr('"'):
					s.BufAppend('"')
				case s.Chr('x') || s.Chr('X'):
					if v, ok := s.Hex(); ok {
						s.BufAppend(v)
					} else {
						tracer().Errorf("illegal hexadecimal escape sequence in string literal")
					}
				default:
					if v, ok := s.Oct(); ok {
						s.BufAppend(v)
					} else {
						tracer().Errorf("unknown escape sequence (%c) in string literal", s.Peek())
					}
				}
			} else {
				s.BufAppend(s.Next())
			}
		}
		if !s.Chr('"') {
			return Error, Lvalue{}, l.errf("unterminated string literal")
		}
		text := string(s.Scratch())
		if !utf8.ValidString(text) {
			return Error, Lvalue{}, l.errf("string literal is not a valid UTF-8 string")
		}
		return String, Lvalue{Text: text}, nil
	}

	if scanner.IsAlpha(s.Peek()) || s.Peek() == '_' {
		for scanner.IsAlnum(s.Peek()) || s.Peek() == '_' {
			s.BufAppend(s.Next())
		}
		name := string(s.Scratch())
		if name == "include" {
			return Include, Lvalue{}, nil
		}
		ks := keysym.FromName(name)
		if ks == keysym.NoSymbol {
			return Error, Lvalue{}, l.errf("unrecognized keysym %q on right-hand side", name)
		}
		return RHSKeysym, Lvalue{Keysym: ks}, nil
	}

	for !s.EOF() && !s.EOL() {
		s.Next()
	}
	return Error, Lvalue{}, l.errf("unrecognized token")
}

// LexIncludeString reads the path argument of an `include` statement,
// performing the %%/%H/%L/%S expansions inline as the real lexer does.
func (l *Lexer) LexIncludeString() (Token, Lvalue, error) {
	s := l.s
	for scanner.IsSpace(s.Peek()) {
		if s.Next() == '\n' {
			return EndOfLine, Lvalue{}, nil
		}
	}

	s.MarkToken()
	s.ResetScratch()

	if !s.Chr('"') {
		return Error, Lvalue{}, l.errf("include statement must be followed by a path")
	}

	for !s.EOF() && !s.EOL() && s.Peek() != '"' {
		if s.Chr('%') {
			switch {
			case s.Chr('%'):
				s.BufAppend('%')
			case s.Chr('H'):
				home, ok := paths.Home()
				if !ok {
					return Error, Lvalue{}, l.errf("%%H was used in an include statement, but the HOME environment variable is not set")
				}
				if !s.BufAppends(home) {
					return Error, Lvalue{}, l.errf("include path after expanding %%H is too long")
				}
			case s.Chr('L'):
				resolved, err := paths.ResolveLocale(l.Locale)
				if err != nil {
					return Error, Lvalue{}, l.errf("failed to expand %%L to the locale Compose file: %v", err)
				}
				if !s.BufAppends(paths.LocaleComposeFilePath(resolved)) {
					return Error, Lvalue{}, l.errf("include path after expanding %%L is too long")
				}
			case s.Chr('S'):
				if !s.BufAppends(paths.XLocaleDirPath()) {
					return Error, Lvalue{}, l.errf("include path after expanding %%S is too long")
				}
			default:
				return Error, Lvalue{}, l.errf("unknown %% format (%c) in include statement", s.Peek())
			}
		} else {
			s.BufAppend(s.Next())
		}
	}
	if !s.Chr('"') {
		return Error, Lvalue{}, l.errf("unterminated include statement")
	}
	return IncludeString, Lvalue{Text: string(s.Scratch())}, nil
}

func (l *Lexer) errf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%d:%d: %s", l.s.TokenLine(), l.s.TokenColumn(), msg)
}
