package strings

import (
	"strings"
	"unicode"
)

// EntityCase strips every non-alphanumeric character and uppercases the
// first remaining rune. The rest of the casing is preserved, so the
// function is idempotent (EntityCase(EntityCase(s)) == EntityCase(s)).
func EntityCase(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		return out
	}
	runes := []rune(out)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// LowerCamel collapses runs of non-alphanumeric characters into token
// boundaries and joins the tokens in lowerCamelCase: the first token is
// lowercased, every later token gets an initial capital with the remainder
// lowercased.
func LowerCamel(s string) string {
	tokens := splitAlnum(s)
	if len(tokens) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(tokens[0]))
	for _, t := range tokens[1:] {
		b.WriteString(capitalize(t))
	}
	return b.String()
}

// UpperSnake rewrites a value for use as an enum member: hyphens and spaces
// become underscores and the whole value is uppercased.
func UpperSnake(s string) string {
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ToUpper(s)
}

// Pluralize appends a plural "s". Collection field naming only; it makes no
// attempt at irregular English plurals.
func Pluralize(s string) string {
	return s + "s"
}

func splitAlnum(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
}
