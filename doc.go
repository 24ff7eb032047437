/*
Package xcompose implements the XCompose sequence engine: a compiler for
the X11 Compose-file format and a runtime state machine that turns a feed
of keysyms into composed Unicode strings or replacement keysyms.

A Table is built once, from a Compose file (or the system/locale Compose
files discovered the way libX11 discovers them), and then shared by any
number of independent State values — one per input device or text field —
each tracking its own position in the compose sequence trie.

Typical use:

	table, err := xcompose.NewFromLocale("", xcompose.NoFlags)
	if err != nil {
		// e.g. ErrNoComposeFile: not fatal for the application, but
		// there is no table to compose with
		return
	}
	state := xcompose.NewState(table, 0)
	for _, ks := range keysyms {
		state.Feed(ks)
		switch state.Status() {
		case xcompose.Composed:
			fmt.Println(state.UTF8())
			state.Reset()
		case xcompose.Cancelled:
			state.Reset()
		}
	}

Further Reading

	https://www.x.org/releases/X11R7.7/doc/libX11/i18n/compose/compose.html
	https://man.archlinux.org/man/XCompose.5
*/
package xcompose

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'xcompose'
func tracer() tracing.Trace {
	return tracing.Select("xcompose")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
