package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var quoteReplacer = strings.NewReplacer("“", `"`, "”", `"`)

// straightenQuotes swaps the curly double quotes NetrunnerDB uses in some
// identity titles for plain ones.
func straightenQuotes(s string) string {
	return quoteReplacer.Replace(s)
}

// RemoveAccents decomposes the string and keeps only printable ASCII, so
// "Café" becomes "Cafe".
func RemoveAccents(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFKD.String(s) {
		if r <= unicode.MaxASCII && (unicode.IsPrint(r) || unicode.IsSpace(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
