// Package keysym is the keyboard-symbol namespace collaborator the Compose
// engine is built against. xcompose treats keysym naming, Unicode
// conversion and modifier classification as an external concern (see
// spec.md §1); this package supplies that concern with a real, if partial,
// X11 keysym table so the rest of the engine is exercisable end to end.
package keysym

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/derekparker/trie"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("xcompose/keysym")
}

// Keysym is a 32-bit keyboard-symbol identifier. NoSymbol (zero) never
// names a real symbol.
type Keysym uint32

// NoSymbol is the sentinel "no symbol" value.
const NoSymbol Keysym = 0

// unicodeOffset is the XKB convention for keysyms that encode a Unicode
// code point outside of Latin-1: keysym = unicodeOffset | codepoint.
const unicodeOffset Keysym = 0x01000000

// byName and byValue are populated from namedKeysyms at init time; the name
// index also backs a trie used for "unrecognized keysym" suggestions.
var (
	byName  map[string]Keysym
	byValue map[Keysym]string
	index   *trie.Trie
	once    sync.Once
)

func build() {
	byName = make(map[string]Keysym, len(namedKeysyms))
	byValue = make(map[Keysym]string, len(namedKeysyms))
	index = trie.New()
	for _, e := range namedKeysyms {
		byName[e.name] = e.value
		if _, exists := byValue[e.value]; !exists {
			byValue[e.value] = e.name // first (canonical) name wins
		}
		index.Add(e.name, e.value)
	}
}

// FromName resolves a Compose-file `<name>` or bareword keysym reference.
// It recognizes the named table below, plus the XKB "0x..." hexadecimal
// and "U<hex>" Unicode-codepoint spellings. It returns NoSymbol if name is
// not a recognized keysym.
func FromName(name string) Keysym {
	once.Do(build)
	if ks, ok := byName[name]; ok {
		return ks
	}
	if strings.HasPrefix(name, "0x") || strings.HasPrefix(name, "0X") {
		if v, err := strconv.ParseUint(name[2:], 16, 32); err == nil {
			return Keysym(v)
		}
		return NoSymbol
	}
	if len(name) >= 2 && (name[0] == 'U' || name[0] == 'u') {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return fromCodepoint(rune(v))
		}
	}
	return NoSymbol
}

// Suggest returns up to n keysym names that fuzzily match name (contain
// its characters in order), useful for "unrecognized keysym, did you mean...?" diagnostics.
func Suggest(name string, n int) []string {
	once.Do(build)
	matches := index.FuzzySearch(name)
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}

// IsModifier reports whether ks names a modifier or lock key. Per spec.md
// §9 this check is used by the state machine to silently swallow modifier
// keysyms during Feed, verbatim from the source behaviour ("FIXME:
// dubious" in the original).
func IsModifier(ks Keysym) bool {
	switch {
	case ks >= 0xFE01 && ks <= 0xFE0F: // ISO_Lock .. ISO_Last_Group_Lock (incl. ISO_Level2/3 Shift/Latch/Lock)
		return true
	case ks >= 0xFFE1 && ks <= 0xFFEE: // Shift_L .. Hyper_R
		return true
	case ks == 0xFF7E: // Mode_switch
		return true
	case ks == 0xFF7F: // Num_Lock
		return true
	default:
		return false
	}
}

// ToUTF8 converts ks to its UTF-8 representation, returning the string and
// true. It returns ("", false) for keysyms with no defined Unicode value
// (most modifiers and function keys).
func ToUTF8(ks Keysym) (string, bool) {
	once.Do(build)
	if ks == NoSymbol {
		return "", false
	}
	if r, ok := toCodepoint(ks); ok {
		return string(r), true
	}
	return "", false
}

func fromCodepoint(r rune) Keysym {
	if r >= 0x20 && r <= 0xFF {
		return Keysym(r)
	}
	return unicodeOffset | Keysym(r)
}

func toCodepoint(ks Keysym) (rune, bool) {
	if ks&unicodeOffset == unicodeOffset {
		return rune(ks &^ unicodeOffset), true
	}
	if ks >= 0x20 && ks <= 0xFF {
		return rune(ks), true
	}
	return 0, false
}

// String renders ks using its canonical name, falling back to a numeric
// form for unnamed keysyms (mirroring xkb_keysym_get_name's fallback).
func (ks Keysym) String() string {
	once.Do(build)
	if ks == NoSymbol {
		return "NoSymbol"
	}
	if name, ok := byValue[ks]; ok {
		return name
	}
	return fmt.Sprintf("0x%08x", uint32(ks))
}

type namedEntry struct {
	name  string
	value Keysym
}

// namedKeysyms is a partial X11 keysymdef.h table: the subset needed to
// exercise dead-key composition, letters, digits and common modifiers.
// Values are the real X11 keysym codes.
var namedKeysyms = []namedEntry{
	{"space", 0x0020},
	{"exclam", 0x0021},
	{"quotedbl", 0x0022},
	{"numbersign", 0x0023},
	{"dollar", 0x0024},
	{"percent", 0x0025},
	{"ampersand", 0x0026},
	{"apostrophe", 0x0027},
	{"quoteright", 0x0027},
	{"parenleft", 0x0028},
	{"parenright", 0x0029},
	{"asterisk", 0x002a},
	{"plus", 0x002b},
	{"comma", 0x002c},
	{"minus", 0x002d},
	{"period", 0x002e},
	{"slash", 0x002f},
	{"0", 0x0030},
	{"1", 0x0031},
	{"2", 0x0032},
	{"3", 0x0033},
	{"4", 0x0034},
	{"5", 0x0035},
	{"6", 0x0036},
	{"7", 0x0037},
	{"8", 0x0038},
	{"9", 0x0039},
	{"colon", 0x003a},
	{"semicolon", 0x003b},
	{"less", 0x003c},
	{"equal", 0x003d},
	{"greater", 0x003e},
	{"question", 0x003f},
	{"at", 0x0040},
	{"A", 0x0041},
	{"B", 0x0042},
	{"C", 0x0043},
	{"D", 0x0044},
	{"E", 0x0045},
	{"F", 0x0046},
	{"G", 0x0047},
	{"H", 0x0048},
	{"I", 0x0049},
	{"J", 0x004a},
	{"K", 0x004b},
	{"L", 0x004c},
	{"M", 0x004d},
	{"N", 0x004e},
	{"O", 0x004f},
	{"P", 0x0050},
	{"Q", 0x0051},
	{"R", 0x0052},
	{"S", 0x0053},
	{"T", 0x0054},
	{"U", 0x0055},
	{"V", 0x0056},
	{"W", 0x0057},
	{"X", 0x0058},
	{"Y", 0x0059},
	{"Z", 0x005a},
	{"bracketleft", 0x005b},
	{"backslash", 0x005c},
	{"bracketright", 0x005d},
	{"asciicircum", 0x005e},
	{"underscore", 0x005f},
	{"grave", 0x0060},
	{"quoteleft", 0x0060},
	{"a", 0x0061},
	{"b", 0x0062},
	{"c", 0x0063},
	{"d", 0x0064},
	{"e", 0x0065},
	{"f", 0x0066},
	{"g", 0x0067},
	{"h", 0x0068},
	{"i", 0x0069},
	{"j", 0x006a},
	{"k", 0x006b},
	{"l", 0x006c},
	{"m", 0x006d},
	{"n", 0x006e},
	{"o", 0x006f},
	{"p", 0x0070},
	{"q", 0x0071},
	{"r", 0x0072},
	{"s", 0x0073},
	{"t", 0x0074},
	{"u", 0x0075},
	{"v", 0x0076},
	{"w", 0x0077},
	{"x", 0x0078},
	{"y", 0x0079},
	{"z", 0x007a},
	{"braceleft", 0x007b},
	{"bar", 0x007c},
	{"braceright", 0x007d},
	{"asciitilde", 0x007e},

	// Latin-1 punctuation used as Compose RHS leaves.
	{"degree", 0x00b0},
	{"acute", 0x00b4},
	{"diaeresis", 0x00a8},
	{"ccedilla", 0x00e7},
	{"Ccedilla", 0x00c7},
	{"ntilde", 0x00f1},
	{"Ntilde", 0x00d1},

	// Dead keys (real X11 keysymdef.h "Dead Keys" block).
	{"dead_grave", 0xfe50},
	{"dead_acute", 0xfe51},
	{"dead_circumflex", 0xfe52},
	{"dead_tilde", 0xfe53},
	{"dead_macron", 0xfe54},
	{"dead_breve", 0xfe55},
	{"dead_abovedot", 0xfe56},
	{"dead_diaeresis", 0xfe57},
	{"dead_abovering", 0xfe58},
	{"dead_doubleacute", 0xfe59},
	{"dead_caron", 0xfe5a},
	{"dead_cedilla", 0xfe5b},
	{"dead_ogonek", 0xfe5c},

	// Compose/modifier keys.
	{"Multi_key", 0xff20},
	{"Mode_switch", 0xff7e},
	{"Num_Lock", 0xff7f},
	{"BackSpace", 0xff08},
	{"Tab", 0xff09},
	{"Return", 0xff0d},
	{"Escape", 0xff1b},
	{"Delete", 0xffff},
	{"Shift_L", 0xffe1},
	{"Shift_R", 0xffe2},
	{"Control_L", 0xffe3},
	{"Control_R", 0xffe4},
	{"Caps_Lock", 0xffe5},
	{"Shift_Lock", 0xffe6},
	{"Meta_L", 0xffe7},
	{"Meta_R", 0xffe8},
	{"Alt_L", 0xffe9},
	{"Alt_R", 0xffea},
	{"Super_L", 0xffeb},
	{"Super_R", 0xffec},
	{"Hyper_L", 0xffed},
	{"Hyper_R", 0xffee},

	// Function keys.
	{"F1", 0xffbe},
	{"F2", 0xffbf},
	{"F3", 0xffc0},
	{"F4", 0xffc1},
	{"F5", 0xffc2},
	{"F6", 0xffc3},
	{"F7", 0xffc4},
	{"F8", 0xffc5},
	{"F9", 0xffc6},
	{"F10", 0xffc7},
	{"F11", 0xffc8},
	{"F12", 0xffc9},
}
