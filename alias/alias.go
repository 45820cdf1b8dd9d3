// Package alias provides the stock alias generators: field-name converters
// between snake_case, camelCase, kebab-case and PascalCase.
package alias

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	wordBoundary = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	lowerToUpper = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// title upper-cases the first letter and lower-cases the rest. Casers are
// stateful, so each call gets its own.
func title(word string) string { return cases.Title(language.Und).String(word) }

// Snake converts camelCase or PascalCase to snake_case.
// "XMLHttpRequest" becomes "xml_http_request".
func Snake(name string) string {
	s := wordBoundary.ReplaceAllString(name, "${1}_${2}")
	s = lowerToUpper.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// Camel converts snake_case to camelCase. The first word is kept as is.
func Camel(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		b.WriteString(title(p))
	}
	return b.String()
}

// Kebab converts snake_case or camelCase to kebab-case.
func Kebab(name string) string {
	return strings.ReplaceAll(Snake(name), "_", "-")
}

// Pascal converts snake_case to PascalCase.
func Pascal(name string) string {
	var b strings.Builder
	for _, p := range strings.Split(name, "_") {
		b.WriteString(title(p))
	}
	return b.String()
}

// ByName returns a generator by its configuration name: "snake", "camel",
// "kebab" or "pascal" (a "_case" suffix is accepted).
func ByName(name string) (func(string) string, bool) {
	switch strings.TrimSuffix(strings.ToLower(name), "_case") {
	case "snake":
		return Snake, true
	case "camel":
		return Camel, true
	case "kebab":
		return Kebab, true
	case "pascal":
		return Pascal, true
	}
	return nil, false
}
