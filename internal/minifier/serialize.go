package minifier

import (
	"strconv"
	"strings"

	"github.com/HugoDaniel/shiba/internal/document"
	"github.com/HugoDaniel/shiba/internal/shader"
)

// Serialize renders d as a single minifier input document. Sections are
// written in the order attributes, varyings, outputs, variables,
// uniform_arrays, common, followed by every program's stages. Programs are
// always addressed by index. Empty sections are left out.
func Serialize(d *shader.Descriptor) string {
	var sb strings.Builder

	if d.GLSLVersion != "" {
		sb.WriteString("#version ")
		sb.WriteString(d.GLSLVersion)
		sb.WriteByte('\n')
	}

	section := func(directive document.Directive, code string) {
		if code == "" {
			return
		}
		sb.WriteString(directive.Marker())
		sb.WriteByte('\n')
		sb.WriteString(code)
		sb.WriteByte('\n')
	}

	section(document.Section(document.Attributes), d.Sections.Attributes)
	section(document.Section(document.Varyings), d.Sections.Varyings)
	section(document.Section(document.Outputs), d.Sections.Outputs)
	section(document.Section(document.Variables), declareVariables(d.NonUniformVariables()))
	section(document.Section(document.UniformArrays), declareUniformArrays(d.UniformArrays))
	section(document.Section(document.Common), d.Sections.Common)

	for i, p := range d.Programs {
		section(document.Stage(document.Vertex, i), p.Vertex)
		section(document.Stage(document.Fragment, i), p.Fragment)
	}

	return sb.String()
}

// declareVariables writes one declaration per line.
func declareVariables(vars []*shader.Variable) string {
	lines := make([]string, 0, len(vars))
	for _, v := range vars {
		switch v.Kind {
		case shader.KindConst:
			lines = append(lines, "const "+v.TypeName+" "+v.Declarator()+" = "+v.Value+";")
		default:
			lines = append(lines, v.TypeName+" "+v.Declarator()+";")
		}
	}
	return strings.Join(lines, "\n")
}

func declareUniformArrays(arrays []shader.UniformArray) string {
	lines := make([]string, 0, len(arrays))
	for _, a := range arrays {
		lines = append(lines, "uniform "+a.TypeName+" "+a.Name+"["+strconv.Itoa(len(a.Variables))+"];")
	}
	return strings.Join(lines, "\n")
}
