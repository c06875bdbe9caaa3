// Package naming turns schema identifiers and counts into display text.
package naming

import (
	"strconv"
	"strings"

	"github.com/jinzhu/inflection"
)

// acronyms are rendered upper case in labels.
var acronyms = map[string]bool{
	"id":  true,
	"hmo": true,
	"erp": true,
	"sql": true,
	"url": true,
	"api": true,
}

// Label converts a snake_case identifier to a display label:
// "hmo_partner_id" becomes "HMO Partner ID".
func Label(ident string) string {
	parts := strings.FieldsFunc(ident, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, p := range parts {
		lower := strings.ToLower(p)
		if acronyms[lower] {
			parts[i] = strings.ToUpper(lower)
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

// Plural returns the plural form of a noun.
func Plural(noun string) string {
	return inflection.Plural(noun)
}

// Singular returns the singular form of a noun.
func Singular(noun string) string {
	return inflection.Singular(noun)
}

// Counted formats n with the noun in the matching number: "1 day", "7 days".
func Counted(n int, noun string) string {
	if n == 1 || n == -1 {
		return strconv.Itoa(n) + " " + Singular(noun)
	}
	return strconv.Itoa(n) + " " + Plural(noun)
}

// TableNoun returns the singular noun for a table: "claim_items" becomes "claim item".
func TableNoun(table string) string {
	words := strings.Split(strings.ToLower(table), "_")
	words[len(words)-1] = Singular(words[len(words)-1])
	return strings.Join(words, " ")
}
