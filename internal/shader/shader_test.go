package shader

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramsAt(t *testing.T) {
	var ps Programs
	ps.At(2).Fragment = "void main(){}"

	require.Len(t, ps, 3)
	assert.Equal(t, []string{"0", "1", "2"}, []string{ps[0].Name, ps[1].Name, ps[2].Name})
	assert.Empty(t, ps[0].Fragment)
	assert.Equal(t, "void main(){}", ps[2].Fragment)

	ps.At(0).Vertex = "v"
	assert.Len(t, ps, 3)
	assert.Equal(t, "v", ps[0].Vertex)
}

func TestProgramsNamed(t *testing.T) {
	var ps Programs
	ps.Named("blur").Vertex = "a"
	ps.Named("main").Vertex = "b"
	ps.Named("blur").Fragment = "c"

	require.Len(t, ps, 2)
	assert.Equal(t, Program{Name: "blur", Vertex: "a", Fragment: "c"}, ps[0])
	assert.Equal(t, 1, ps.Find("main"))
	assert.Equal(t, -1, ps.Find("nope"))

	// Both schemes address the same list.
	assert.Same(t, ps.Named("main"), ps.At(1))
}

func TestDescriptorClone(t *testing.T) {
	d := &Descriptor{
		Programs: Programs{{Name: "0", Fragment: "f"}},
		UniformArrays: []UniformArray{{
			Name:     ArrayName("float"),
			TypeName: "float",
			Variables: []Variable{{
				Kind:        KindUniform,
				Name:        "u",
				TypeName:    "float",
				Annotations: []UniformAnnotation{{Kind: AnnotationControl, Parameters: map[string]string{"min": "0"}}},
			}},
		}},
		Variables: []Variable{{Kind: KindRegular, Name: "x", TypeName: "float", Active: true}},
	}

	c := d.Clone()
	c.Programs[0].Fragment = "changed"
	c.Variables[0].Active = false
	c.UniformArrays[0].Variables[0].Annotations[0].Parameters["min"] = "1"

	assert.Equal(t, "f", d.Programs[0].Fragment)
	assert.True(t, d.Variables[0].Active)
	assert.Equal(t, "0", d.UniformArrays[0].Variables[0].Annotations[0].Parameters["min"])
}

func TestNonUniformVariables(t *testing.T) {
	d := &Descriptor{Variables: []Variable{
		{Kind: KindRegular, Name: "a", Active: true},
		{Kind: KindUniform, Name: "b", Active: true},
		{Kind: KindConst, Name: "c", Active: true},
		{Kind: KindRegular, Name: "d", Active: false},
	}}

	vars := d.NonUniformVariables()
	require.Len(t, vars, 2)
	assert.Equal(t, "a", vars[0].Name)
	assert.Equal(t, "c", vars[1].Name)

	vars[0].MinifiedName = "A"
	assert.Equal(t, "A", d.Variables[0].EmittedName())
}

func TestDeclarator(t *testing.T) {
	assert.Equal(t, "x", (&Variable{Name: "x"}).Declarator())
	assert.Equal(t, "x[4]", (&Variable{Name: "x", Length: 4}).Declarator())
	assert.Equal(t, "_shiba_vec3_uniforms", ArrayName("vec3"))
}

func TestDescriptorJSON(t *testing.T) {
	d := &Descriptor{
		GLSLVersion: "450",
		Programs:    Programs{{Name: "0", Fragment: "void main(){}"}},
		Variables: []Variable{{
			Kind:        KindUniform,
			Name:        "resolution",
			TypeName:    "float",
			Active:      true,
			Annotations: []UniformAnnotation{{Kind: AnnotationResolutionWidth}},
		}},
	}

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"uniform"`)
	assert.Contains(t, string(data), `"kind":"resolution-width"`)
	assert.Contains(t, string(data), `"glsl-version":"450"`)

	var back Descriptor
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d.Variables, back.Variables)
	assert.Equal(t, d.Programs, back.Programs)
}

func TestAnnotationKinds(t *testing.T) {
	for _, kind := range AnnotationKinds() {
		found, ok := LookupAnnotationKind(kind.String())
		assert.True(t, ok)
		assert.Equal(t, kind, found)
	}
	_, ok := LookupAnnotationKind("camera")
	assert.False(t, ok)
}
