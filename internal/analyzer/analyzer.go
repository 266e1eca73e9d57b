// Package analyzer implements the size optimizations applied to a shader
// descriptor before code generation.
//
// Analysis runs in order:
// 1. Constants are inlined into the code that uses them and deactivated
// 2. Variables never referenced in code are deactivated
// 3. Active uniforms are packed into one array per type
// 4. References to packed uniforms are rewritten to array elements
//
// All passes work in place and are idempotent: analyzing an already
// analyzed descriptor changes nothing.
//
// Only the common section and the program stages are scanned for
// references. Attributes, varyings and outputs are not.
package analyzer

import (
	"strings"

	"github.com/HugoDaniel/shiba/internal/glsl"
	"github.com/HugoDaniel/shiba/internal/shader"
)

// Stats counts what one Analyze call changed.
type Stats struct {
	Inlined  int // Constants substituted into code
	Dead     int // Variables deactivated because nothing references them
	Bucketed int // Uniforms newly packed into an array
}

// Analyzer runs the analysis passes. It memoizes the identifier patterns it
// builds, so reusing one Analyzer across descriptors is cheaper than creating
// a new one each time. An Analyzer must not be used concurrently.
type Analyzer struct {
	ids *glsl.Identifiers
}

// New creates an Analyzer.
func New() *Analyzer {
	return &Analyzer{ids: glsl.NewIdentifiers()}
}

// Analyze runs every pass over d.
func (a *Analyzer) Analyze(d *shader.Descriptor) Stats {
	var stats Stats
	stats.Inlined = a.InlineConstants(d)
	stats.Dead = a.MarkLiveness(d)
	stats.Bucketed = BucketUniforms(d)
	a.RewriteUniformArrays(d)
	return stats
}

func (a *Analyzer) replaceInBodies(d *shader.Descriptor, name, replacement string) {
	for _, body := range d.Bodies() {
		*body = a.ids.Replace(*body, name, replacement)
	}
}

func (a *Analyzer) referencedInBodies(d *shader.Descriptor, name string) bool {
	for _, body := range d.Bodies() {
		if a.ids.Contains(*body, name) {
			return true
		}
	}
	return false
}

// ----------------------------------------------------------------------------
// Constants and Liveness
// ----------------------------------------------------------------------------

// InlineConstants replaces every reference to an active constant with its
// value and deactivates the constant. The values of constants not yet
// inlined are rewritten as well, so constants may refer to each other.
// It returns the number of constants inlined.
func (a *Analyzer) InlineConstants(d *shader.Descriptor) int {
	inlined := 0
	for i := range d.Variables {
		v := &d.Variables[i]
		if !v.Active || v.Kind != shader.KindConst {
			continue
		}

		value := parenthesize(v.Value)
		a.replaceInBodies(d, v.Name, value)
		for j := range d.Variables {
			other := &d.Variables[j]
			if j != i && other.Active && other.Kind == shader.KindConst {
				other.Value = a.ids.Replace(other.Value, v.Name, value)
			}
		}

		v.Active = false
		inlined++
	}
	return inlined
}

// MarkLiveness deactivates non-constant variables that no code body
// references. Uniforms already packed into an array are live: their
// references were rewritten to array elements. It returns the number of
// variables deactivated.
func (a *Analyzer) MarkLiveness(d *shader.Descriptor) int {
	dead := 0
	for i := range d.Variables {
		v := &d.Variables[i]
		if !v.Active || v.Kind == shader.KindConst {
			continue
		}
		if v.Kind == shader.KindUniform && bucketed(d, v) {
			continue
		}
		if !a.referencedInBodies(d, v.Name) {
			v.Active = false
			dead++
		}
	}
	return dead
}

// parenthesize wraps a constant value in parentheses unless it is a single
// operand, so that inlining `k = 1.+2.` into `k*3.` keeps its meaning.
func parenthesize(value string) string {
	if isOperand(value) {
		return value
	}
	return "(" + value + ")"
}

// isOperand reports whether value is a literal, an identifier, or a call
// such as `vec3(1.)` whose parentheses span the rest of the value.
func isOperand(value string) bool {
	i := 0
	for i < len(value) && isWordByte(value[i]) {
		i++
	}
	if i == 0 {
		return false
	}
	if i == len(value) {
		return true
	}
	if value[i] != '(' || !strings.HasSuffix(value, ")") {
		return false
	}
	depth := 0
	for j := i; j < len(value); j++ {
		switch value[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && j != len(value)-1 {
				return false
			}
		}
	}
	return depth == 0
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
