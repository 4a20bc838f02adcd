// Package normalize canonicalizes folder names for comparison (spec
// §4.1). It is pure: normalize(x) never touches the filesystem or the
// clock, and its output is only ever used for matching — display and
// stored paths keep the original string.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Flags selects which normalization steps run, mirroring ScanOptions'
// normalization fields (spec §3).
type Flags struct {
	Unicode    bool // NFKC composition
	Width      bool // full/half-width folding
	Diacritics bool // strip combining marks
	CaseFold   bool // Unicode case-fold (not locale lowercasing)
}

// All returns a Flags with every step enabled — the common case for a
// scan configured with default normalization.
func All() Flags {
	return Flags{Unicode: true, Width: true, Diacritics: true, CaseFold: true}
}

var caseFolder = cases.Fold()

// Normalize canonicalizes text according to flags, applying steps in the
// fixed order the spec mandates: NFKC, width folding, diacritic
// stripping, then case-fold. Each step is independently toggleable but
// order never changes, so normalize(normalize(x)) == normalize(x) for
// any fixed flag set (idempotence, spec §8).
func Normalize(text string, flags Flags) string {
	out := text

	if flags.Unicode {
		out = norm.NFKC.String(out)
	}
	if flags.Width {
		// width.Fold maps fullwidth ASCII to halfwidth and halfwidth
		// katakana to fullwidth, which is the "canonical half-width for
		// ASCII, canonical full-width for CJK" rule from spec §4.1.
		out = width.Fold.String(out)
	}
	if flags.Diacritics {
		out = stripDiacritics(out)
	}
	if flags.CaseFold {
		out = caseFolder.String(out)
	}
	return out
}

// stripDiacritics decomposes to NFD, drops combining marks, and
// recomposes to NFC, exactly as spec §4.1 describes.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
