package xcompose

import "errors"

// ErrNoComposeFile is returned by NewFromLocale when none of
// XCOMPOSEFILE, $HOME/.XCompose, or the locale's system Compose file
// could be found. It is not necessarily fatal to a caller: many locales
// simply have no Compose customizations.
var ErrNoComposeFile = errors.New("xcompose: no Compose file found for locale")
