package glsl

import "regexp"

// Identifiers finds and replaces identifiers as whole words. Patterns are
// compiled once per name and kept for the lifetime of the value, which must
// not be shared between goroutines.
type Identifiers struct {
	patterns map[string]*regexp.Regexp
}

// NewIdentifiers creates an empty pattern cache.
func NewIdentifiers() *Identifiers {
	return &Identifiers{patterns: make(map[string]*regexp.Regexp)}
}

// Pattern returns the whole-word pattern for name.
func (ids *Identifiers) Pattern(name string) *regexp.Regexp {
	if re, ok := ids.patterns[name]; ok {
		return re
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	ids.patterns[name] = re
	return re
}

// Replace replaces every whole-word occurrence of name in code.
func (ids *Identifiers) Replace(code, name, replacement string) string {
	if code == "" || name == replacement {
		return code
	}
	return ids.Pattern(name).ReplaceAllLiteralString(code, replacement)
}

// Contains reports whether name occurs as a whole word in code.
func (ids *Identifiers) Contains(code, name string) bool {
	return code != "" && ids.Pattern(name).MatchString(code)
}
