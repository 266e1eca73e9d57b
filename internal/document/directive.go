package document

import (
	"fmt"
	"strconv"
)

// Grammar selects which directives a document may contain and how programs
// are addressed.
type Grammar uint8

const (
	// GrammarIndexed addresses programs by position: `vertex 0`.
	GrammarIndexed Grammar = iota
	// GrammarNamed addresses programs by name: `vertex blur`.
	GrammarNamed
	// GrammarMinifier is the indexed grammar plus the `variables` and
	// `uniform_arrays` markers used for the minifier round trip.
	GrammarMinifier
)

var grammarNames = []string{
	GrammarIndexed:  "index",
	GrammarNamed:    "name",
	GrammarMinifier: "minifier",
}

func (g Grammar) String() string {
	if int(g) < len(grammarNames) {
		return grammarNames[g]
	}
	return "Grammar(" + strconv.Itoa(int(g)) + ")"
}

// ParseGrammar returns the grammar spelled name.
func ParseGrammar(name string) (Grammar, error) {
	for i, n := range grammarNames {
		if n == name {
			return Grammar(i), nil
		}
	}
	return 0, fmt.Errorf("unknown grammar %q (expected index or name)", name)
}

func (g Grammar) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Grammar) UnmarshalText(text []byte) error {
	grammar, err := ParseGrammar(string(text))
	if err != nil {
		return err
	}
	*g = grammar
	return nil
}

// DirectiveKind is the keyword of a `#pragma shiba` marker.
type DirectiveKind uint8

const (
	Attributes DirectiveKind = iota
	Common
	Outputs
	Varyings
	Vertex
	Fragment
	Variables
	UniformArrays
)

var directiveKeywords = []string{
	Attributes:    "attributes",
	Common:        "common",
	Outputs:       "outputs",
	Varyings:      "varyings",
	Vertex:        "vertex",
	Fragment:      "fragment",
	Variables:     "variables",
	UniformArrays: "uniform_arrays",
}

func (k DirectiveKind) String() string {
	if int(k) < len(directiveKeywords) {
		return directiveKeywords[k]
	}
	return "DirectiveKind(" + strconv.Itoa(int(k)) + ")"
}

// IsStage reports whether the directive opens a program stage.
func (k DirectiveKind) IsStage() bool {
	return k == Vertex || k == Fragment
}

// MinifierOnly reports whether the directive only exists in the minifier
// grammar.
func (k DirectiveKind) MinifierOnly() bool {
	return k == Variables || k == UniformArrays
}

func (g Grammar) allows(k DirectiveKind) bool {
	return g == GrammarMinifier || !k.MinifierOnly()
}

func lookupDirective(word string, g Grammar) (DirectiveKind, bool) {
	for i, kw := range directiveKeywords {
		if kw == word && g.allows(DirectiveKind(i)) {
			return DirectiveKind(i), true
		}
	}
	return 0, false
}

// Directive is a parsed `#pragma shiba` marker. Stage directives address
// their program either by Index or, in the named grammar, by Name.
type Directive struct {
	Kind  DirectiveKind
	Index int
	Name  string
}

// Section returns a directive without a program address.
func Section(kind DirectiveKind) Directive {
	return Directive{Kind: kind}
}

// Stage returns an index-addressed stage directive.
func Stage(kind DirectiveKind, index int) Directive {
	return Directive{Kind: kind, Index: index}
}

// NamedStage returns a name-addressed stage directive.
func NamedStage(kind DirectiveKind, name string) Directive {
	return Directive{Kind: kind, Name: name}
}

// String renders the directive as it appears after `#pragma shiba`.
func (d Directive) String() string {
	if !d.Kind.IsStage() {
		return d.Kind.String()
	}
	if d.Name != "" {
		return d.Kind.String() + " " + d.Name
	}
	return d.Kind.String() + " " + strconv.Itoa(d.Index)
}

// Marker renders the full marker line, without the line ending.
func (d Directive) Marker() string {
	return "#pragma shiba " + d.String()
}
