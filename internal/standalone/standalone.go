// Package standalone turns a descriptor into complete, self-contained stage
// sources, one vertex and one fragment shader per program, ready to be fed
// to a GL implementation without the runtime that normally links the
// sections together.
package standalone

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/HugoDaniel/shiba/internal/shader"
)

// stageVariableRE matches one `type name[,name];` declaration inside an
// interface section.
var stageVariableRE = regexp.MustCompile(`\w+ [\w,]+;`)

// Codes holds the prefixes shared by every program of a descriptor.
type Codes struct {
	// Header is written first in every stage. It holds the version line
	// unless there are no stage-specific declarations, in which case the
	// version moves into Shared.
	Header string

	// Vertex and Fragment hold the stage-specific interface declarations.
	Vertex   string
	Fragment string

	// Shared holds the uniform arrays, the live globals and the common
	// section.
	Shared string
}

// Pass is one program with every stage fully prefixed. A stage that was
// empty in the descriptor stays empty.
type Pass struct {
	Name     string `json:"name"`
	Vertex   string `json:"vertex,omitempty"`
	Fragment string `json:"fragment,omitempty"`
}

// Load computes the shared prefixes of d.
func Load(d *shader.Descriptor) Codes {
	var c Codes

	location := 0
	for _, decl := range stageVariableRE.FindAllString(d.Sections.Attributes, -1) {
		c.Vertex += "layout(location=" + strconv.Itoa(location) + ")in " + decl
		location++
	}
	for _, decl := range stageVariableRE.FindAllString(d.Sections.Varyings, -1) {
		c.Vertex += "out " + decl
		c.Fragment += "in " + decl
	}
	for _, decl := range stageVariableRE.FindAllString(d.Sections.Outputs, -1) {
		c.Fragment += "out " + decl
	}

	if d.GLSLVersion != "" {
		c.Header = "#version " + d.GLSLVersion + "\n"
	}

	var shared strings.Builder
	for i := range d.UniformArrays {
		a := &d.UniformArrays[i]
		shared.WriteString("uniform " + a.TypeName + " " + a.EmittedName() + "[" + strconv.Itoa(len(a.Variables)) + "];")
	}
	for _, group := range globalsByType(d) {
		shared.WriteString(group.typeName + " " + strings.Join(group.names, ",") + ";")
	}
	shared.WriteString(d.Sections.Common)
	c.Shared = shared.String()

	if c.Header != "" && c.Vertex == "" && c.Fragment == "" {
		c.Shared = c.Header + c.Shared
		c.Header = ""
	}

	return c
}

// Passes returns one standalone pass per program of d, in program order.
func Passes(d *shader.Descriptor) []Pass {
	c := Load(d)
	vertexPrefix := c.Header + c.Vertex + c.Shared
	fragmentPrefix := c.Header + c.Fragment + c.Shared

	passes := make([]Pass, len(d.Programs))
	for i, p := range d.Programs {
		passes[i].Name = p.Name
		if p.Vertex != "" {
			passes[i].Vertex = vertexPrefix + p.Vertex
		}
		if p.Fragment != "" {
			passes[i].Fragment = fragmentPrefix + p.Fragment
		}
	}
	return passes
}

type typeGroup struct {
	typeName string
	names    []string
}

// globalsByType groups the active non-uniform variables by type, keeping the
// order in which each type was first declared. Constants form their own
// groups since a declaration is either entirely const or not at all.
func globalsByType(d *shader.Descriptor) []typeGroup {
	var groups []typeGroup
	index := make(map[string]int)
	for _, v := range d.NonUniformVariables() {
		name := v.EmittedName()
		if v.IsArray() {
			name += "[" + strconv.Itoa(v.Length) + "]"
		}
		typeName := v.TypeName
		if v.Kind == shader.KindConst {
			typeName = "const " + typeName
			name += " = " + v.Value
		}

		i, ok := index[typeName]
		if !ok {
			i = len(groups)
			index[typeName] = i
			groups = append(groups, typeGroup{typeName: typeName})
		}
		groups[i].names = append(groups[i].names, name)
	}
	return groups
}
