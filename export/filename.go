package export

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxNameLen bounds the stem of an archive entry name.
const maxNameLen = 64

// SanitizeName turns a display name into a portable file name stem.
// Accents are folded to their base letters, anything outside
// [A-Za-z0-9._-] becomes '_', and leading dots are dropped. An empty
// result becomes "untitled".
func SanitizeName(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= maxNameLen {
			break
		}
	}
	out := strings.TrimLeft(strings.TrimSpace(b.String()), ".")
	if strings.Trim(out, "_") == "" {
		return "untitled"
	}
	return out
}

// nameSet hands out unique file names.
type nameSet map[string]bool

// unique returns stem.ext, or stem_2.ext, stem_3.ext, ... when taken.
func (s nameSet) unique(stem, ext string) string {
	name := stem + "." + ext
	for n := 2; s[name]; n++ {
		name = stem + "_" + strconv.Itoa(n) + "." + ext
	}
	s[name] = true
	return name
}
