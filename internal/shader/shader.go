// Package shader defines the shader descriptor: the structured form of one
// annotated shader document that flows from the builder through the analyzer
// and the minifier to the code generator.
//
// A Descriptor is owned by exactly one build. The builder creates it, the
// analyzer and the minifier mutate or replace it, and everything downstream
// reads it.
package shader

import (
	"fmt"
	"strconv"
)

// ----------------------------------------------------------------------------
// Variables
// ----------------------------------------------------------------------------

// VariableKind tells constant, regular and uniform declarations apart.
type VariableKind uint8

const (
	KindRegular VariableKind = iota
	KindConst
	KindUniform
)

var variableKindNames = map[VariableKind]string{
	KindRegular: "regular",
	KindConst:   "const",
	KindUniform: "uniform",
}

func (k VariableKind) String() string {
	if name, ok := variableKindNames[k]; ok {
		return name
	}
	return "VariableKind(" + strconv.Itoa(int(k)) + ")"
}

func (k VariableKind) MarshalText() ([]byte, error) {
	name, ok := variableKindNames[k]
	if !ok {
		return nil, fmt.Errorf("invalid variable kind %d", k)
	}
	return []byte(name), nil
}

func (k *VariableKind) UnmarshalText(text []byte) error {
	for kind, name := range variableKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("invalid variable kind %q", text)
}

// Variable is one global declaration found in the prolog of a document.
type Variable struct {
	Kind VariableKind `json:"kind"`

	// Value is the initializer expression of a constant, trimmed.
	Value string `json:"value,omitempty"`

	// Annotations are the `// shiba ...` annotations of a uniform.
	Annotations []UniformAnnotation `json:"annotations,omitempty"`

	Active bool `json:"active"`

	// Length is the array size; zero means the variable is not an array.
	Length int `json:"length,omitempty"`

	// MinifiedName is empty until the minifier assigned one.
	MinifiedName string `json:"minified-name,omitempty"`

	Name     string `json:"name"`
	TypeName string `json:"type-name"`
}

// IsArray reports whether the variable was declared with an array length.
func (v *Variable) IsArray() bool {
	return v.Length > 0
}

// EmittedName returns the minified name when present, the name otherwise.
func (v *Variable) EmittedName() string {
	if v.MinifiedName != "" {
		return v.MinifiedName
	}
	return v.Name
}

// Declarator renders `name` or `name[length]`.
func (v *Variable) Declarator() string {
	if v.IsArray() {
		return v.Name + "[" + strconv.Itoa(v.Length) + "]"
	}
	return v.Name
}

// Clone returns a deep copy of the variable.
func (v Variable) Clone() Variable {
	if v.Annotations != nil {
		annotations := make([]UniformAnnotation, len(v.Annotations))
		for i, a := range v.Annotations {
			annotations[i] = a.Clone()
		}
		v.Annotations = annotations
	}
	return v
}

// ----------------------------------------------------------------------------
// Uniform Arrays
// ----------------------------------------------------------------------------

// UniformArray packs same-typed uniforms into one array declaration. The
// position of a variable in Variables is its index in the emitted code and
// must never change once the array is built.
type UniformArray struct {
	Name         string     `json:"name"`
	MinifiedName string     `json:"minified-name,omitempty"`
	TypeName     string     `json:"type-name"`
	Variables    []Variable `json:"variables"`
}

// Index returns the position of the member with the given name, or -1.
func (a *UniformArray) Index(name string) int {
	for i := range a.Variables {
		if a.Variables[i].Name == name {
			return i
		}
	}
	return -1
}

// EmittedName returns the minified name when present, the name otherwise.
func (a *UniformArray) EmittedName() string {
	if a.MinifiedName != "" {
		return a.MinifiedName
	}
	return a.Name
}

// ArrayName returns the name under which uniforms of typeName are bucketed.
func ArrayName(typeName string) string {
	return "_shiba_" + typeName + "_uniforms"
}

// ----------------------------------------------------------------------------
// Sections and Programs
// ----------------------------------------------------------------------------

// Sections holds the shared code blocks. An empty string means the section
// is absent.
type Sections struct {
	Attributes string `json:"attributes,omitempty"`
	Common     string `json:"common,omitempty"`
	Outputs    string `json:"outputs,omitempty"`
	Varyings   string `json:"varyings,omitempty"`
}

// Program is one vertex and fragment pair. An empty stage is absent.
type Program struct {
	Name     string `json:"name"`
	Vertex   string `json:"vertex,omitempty"`
	Fragment string `json:"fragment,omitempty"`
}

// Programs is the ordered list of programs. Index addressing and name
// addressing are two views of the same list.
type Programs []Program

// At returns the program at index i, padding the list with empty programs
// named by their index when it is too short.
func (ps *Programs) At(i int) *Program {
	for len(*ps) <= i {
		*ps = append(*ps, Program{Name: strconv.Itoa(len(*ps))})
	}
	return &(*ps)[i]
}

// Named returns the program with the given name, appending it when missing.
func (ps *Programs) Named(name string) *Program {
	if i := ps.Find(name); i >= 0 {
		return &(*ps)[i]
	}
	*ps = append(*ps, Program{Name: name})
	return &(*ps)[len(*ps)-1]
}

// Find returns the index of the program with the given name, or -1.
func (ps Programs) Find(name string) int {
	for i := range ps {
		if ps[i].Name == name {
			return i
		}
	}
	return -1
}

// ----------------------------------------------------------------------------
// Descriptor
// ----------------------------------------------------------------------------

// Descriptor is the structured form of a shader document.
type Descriptor struct {
	// GLSLVersion is the token of the leading #version line, if any.
	GLSLVersion   string         `json:"glsl-version,omitempty"`
	Sections      Sections       `json:"sections"`
	Programs      Programs       `json:"programs"`
	UniformArrays []UniformArray `json:"uniform-arrays"`
	Variables     []Variable     `json:"variables"`
}

// Clone returns a deep copy of the descriptor.
func (d *Descriptor) Clone() *Descriptor {
	c := &Descriptor{
		GLSLVersion: d.GLSLVersion,
		Sections:    d.Sections,
	}
	if d.Programs != nil {
		c.Programs = append(Programs(nil), d.Programs...)
	}
	if d.UniformArrays != nil {
		c.UniformArrays = make([]UniformArray, len(d.UniformArrays))
		for i, a := range d.UniformArrays {
			a.Variables = cloneVariables(a.Variables)
			c.UniformArrays[i] = a
		}
	}
	c.Variables = cloneVariables(d.Variables)
	return c
}

// NonUniformVariables returns the active constant and regular variables in
// declaration order. This is the list the minifier renames.
func (d *Descriptor) NonUniformVariables() []*Variable {
	var result []*Variable
	for i := range d.Variables {
		v := &d.Variables[i]
		if v.Active && v.Kind != KindUniform {
			result = append(result, v)
		}
	}
	return result
}

// Bodies returns pointers to every code body the analyzer scans: the common
// section and each program stage.
func (d *Descriptor) Bodies() []*string {
	bodies := []*string{&d.Sections.Common}
	for i := range d.Programs {
		bodies = append(bodies, &d.Programs[i].Vertex, &d.Programs[i].Fragment)
	}
	return bodies
}

func cloneVariables(vars []Variable) []Variable {
	if vars == nil {
		return nil
	}
	result := make([]Variable, len(vars))
	for i, v := range vars {
		result[i] = v.Clone()
	}
	return result
}
