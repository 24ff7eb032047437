// Package paths resolves locale names and discovers Compose file
// locations. It is the Go stand-in for the "locale"/"paths" collaborators
// spec.md §1 treats as external to the Compose engine proper.
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	jj "github.com/cloudfoundry/jibber_jabber"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/language"
)

func tracer() tracing.Trace {
	return tracing.Select("xcompose/paths")
}

// DefaultXLocaleDir is the historical system directory for X11 locale and
// Compose data, used when XLOCALEDIR is unset.
const DefaultXLocaleDir = "/usr/share/X11/locale"

// ResolveLocale canonicalizes a locale string the way spec.md §4.7's
// `resolve_locale` does (aliases collapse to a base form). An empty locale
// is auto-detected from the environment via jibber_jabber, mirroring
// SPEC_FULL.md §9's "locale auto-detection" supplement; a failed detection
// falls back to "C", the traditional X11 default.
func ResolveLocale(locale string) (string, error) {
	if locale == "" {
		detected, err := jj.DetectIETF()
		if err != nil {
			tracer().Infof("locale auto-detection failed (%v), falling back to \"C\"", err)
			return "C", nil
		}
		locale = detected
	}
	if locale == "C" || locale == "POSIX" {
		return "C", nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return "", fmt.Errorf("could not resolve locale %q: %w", locale, err)
	}
	base, _ := tag.Base()
	region, confidence := tag.Region()
	if confidence != language.Exact {
		return base.String(), nil
	}
	return base.String() + "_" + region.String(), nil
}

// XComposeFilePath returns the path named by the XCOMPOSEFILE environment
// variable, or "" if it is unset.
func XComposeFilePath() string {
	return os.Getenv("XCOMPOSEFILE")
}

// HomeComposeFilePath returns "$HOME/.XCompose", or "" if HOME is unset
// (spec.md §4.7: "skipped when HOME unset").
func HomeComposeFilePath() string {
	home := os.Getenv("HOME")
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".XCompose")
}

// XLocaleDirPath returns the system directory for X11 locale data,
// honouring XLOCALEDIR if set (the `%S` expansion of spec.md §4.2/§6).
func XLocaleDirPath() string {
	if dir := os.Getenv("XLOCALEDIR"); dir != "" {
		return dir
	}
	return DefaultXLocaleDir
}

// LocaleComposeFilePath returns the per-locale system Compose file path
// (the `%L` expansion), for an already-resolved locale.
func LocaleComposeFilePath(resolvedLocale string) string {
	return filepath.Join(XLocaleDirPath(), resolvedLocale, "Compose")
}

// Home returns the HOME environment variable's value and whether it was
// set, for the `%H` include-string expansion (spec.md §4.2), which must
// error rather than silently expand to "" when HOME is unset.
func Home() (string, bool) {
	home, ok := os.LookupEnv("HOME")
	return home, ok
}
