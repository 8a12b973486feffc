package catalog

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// titleSeparators are replaced with spaces when deriving a title.
var titleSeparators = strings.NewReplacer(".", " ", "_", " ")

// DeriveTitle builds a display title from a file name: the extension is
// dropped, dots and underscores become spaces, runs of whitespace collapse
// and every word is capitalized.
func DeriveTitle(path string) string {
	base := filepath.Base(strings.ReplaceAll(path, `\`, "/"))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = norm.NFC.String(stem)
	words := strings.Fields(titleSeparators.Replace(stem))
	return titleCase(strings.Join(words, " "))
}

// ExtractYear returns the first four-digit run in title, or YearUnknown.
func ExtractYear(title string) Year {
	if m := yearPattern.FindString(title); m != "" {
		return Year(m)
	}
	return YearUnknown
}

// titleCase upper-cases a letter that follows a non-letter and lower-cases
// every other letter, so "movie2015part" becomes "Movie2015Part".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case cased && !prevCased:
			b.WriteRune(unicode.ToTitle(r))
		case cased:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevCased = cased
	}
	return b.String()
}
