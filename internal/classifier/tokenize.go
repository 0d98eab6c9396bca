package classifier

import (
	"strings"
	"unicode"
)

// Tokenize lowercases the text and splits on anything that is not a letter or
// digit. Carrier boilerplate carries the signal, so nothing fancier is needed.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
