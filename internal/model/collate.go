package model

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Compare orders two strings, returning <0, 0 or >0.
type Compare func(a, b string) int

// NewCollator returns a locale-aware Compare for a BCP 47 tag such as "ja".
// Unknown tags fall back to the root collation order.
func NewCollator(locale string) Compare {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	c := collate.New(tag)
	return func(a, b string) int {
		if r := c.CompareString(a, b); r != 0 {
			return r
		}
		return strings.Compare(a, b)
	}
}
