// Package normalize canonicalizes user supplied list keys
//
// Hashtags pass through a fixed pipeline so "#Pâtes", "pâtes" and "ＰÂＴＥＳ" all
// address the same hashtag feed:
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization
// 3 Case folding
// 4 Remove format chars (ZWJ, ZWNJ, BOM)
// 5 Width fold fullwidth to ASCII
// 6 Strip leading '#' and surrounding whitespace
//
// Locales are parsed as BCP 47 tags and reduced to their base language.
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// MaxTagLen bounds a canonical hashtag in runes
const MaxTagLen = 64

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// Tag returns the canonical form of a hashtag, or "" when nothing usable remains
func Tag(s string) string {
	s = strings.ToValidUTF8(s, "")
	if strings.TrimSpace(s) == "" {
		return ""
	}

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		return ""
	}

	ns = strings.TrimSpace(ns)
	ns = strings.TrimLeft(ns, "#")
	ns = strings.TrimSpace(ns)
	if strings.IndexFunc(ns, unicode.IsSpace) >= 0 {
		return ""
	}
	if r := []rune(ns); len(r) > MaxTagLen {
		ns = string(r[:MaxTagLen])
	}
	return ns
}

// Locale returns the base language of s ("pt-BR" -> "pt"), or def when s is empty or unparsable
func Locale(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	tag, err := language.Parse(s)
	if err != nil {
		return def
	}
	base, conf := tag.Base()
	if conf == language.No {
		return def
	}
	return base.String()
}
