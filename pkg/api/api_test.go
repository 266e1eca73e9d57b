package api

import (
	"encoding/json"
	"strings"
	"testing"
)

const source = `#version 450
uniform float time; // shiba time
uniform vec3 color; // shiba control(min=0, max=1)
const float speed = 2.;
float unused;
#pragma shiba common
float wave() { return sin(time * speed); }
#pragma shiba fragment 0
void mainImage() { gl_FragColor = vec4(color * wave(), 1.); }
`

func TestCompile(t *testing.T) {
	result := Compile(source)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	d := result.Descriptor
	if d.GLSLVersion != "450" {
		t.Errorf("expected version 450, got %q", d.GLSLVersion)
	}
	if result.Inlined != 1 || result.Dead != 1 || result.Bucketed != 2 {
		t.Errorf("unexpected stats: inlined=%d dead=%d bucketed=%d", result.Inlined, result.Dead, result.Bucketed)
	}

	if got := d.Sections.Common; got != "float wave() { return sin(_shiba_float_uniforms[0] * 2.); }" {
		t.Errorf("unexpected common section %q", got)
	}
	if got := d.Programs[0].Fragment; got != "void main() { gl_FragColor = vec4(_shiba_vec3_uniforms[0] * wave(), 1.); }" {
		t.Errorf("unexpected fragment %q", got)
	}
}

func TestCompileWithTemplate(t *testing.T) {
	src := "#pragma shiba fragment 0\nvoid main(){ {{if .Development}}debug();{{end}}{{.Target}}; }\n"

	result := CompileWithOptions(src, CompileOptions{Template: true, Development: true, Target: "library"})
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if got := result.Descriptor.Programs[0].Fragment; got != "void main(){ debug();library; }" {
		t.Errorf("unexpected fragment %q", got)
	}
}

func TestCompileNamedPrograms(t *testing.T) {
	src := "#pragma shiba fragment blur\nvoid main(){}\n#pragma shiba fragment post\nvoid main(){}\n"

	result := CompileWithOptions(src, CompileOptions{Grammar: "name"})
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	programs := result.Descriptor.Programs
	if len(programs) != 2 || programs[0].Name != "blur" || programs[1].Name != "post" {
		t.Errorf("unexpected programs %+v", programs)
	}
}

func TestCompileWithErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		opts   CompileOptions
		kind   string
		line   int
	}{
		{"unknown directive", "float a;\n#pragma shiba geometry 0\n", CompileOptions{}, "parse error", 2},
		{"no programs", "#pragma shiba common\nfloat f;\n", CompileOptions{}, "structural error", 0},
		{"bad annotation", "uniform float t; // shiba tiem\n#pragma shiba fragment 0\nx\n", CompileOptions{}, "parse error", 1},
		{"missing minifier", source, CompileOptions{MinifierPath: "/nonexistent/shader_minifier"}, "tool error", 0},
		{"bad grammar", source, CompileOptions{Grammar: "minifier"}, "error", 0},
		{"bad target", source, CompileOptions{Target: "wasm"}, "error", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := CompileWithOptions(tc.source, tc.opts)
			if result.Descriptor != nil {
				t.Error("expected no descriptor")
			}
			if len(result.Errors) != 1 {
				t.Fatalf("expected 1 error, got %v", result.Errors)
			}
			e := result.Errors[0]
			if e.Kind != tc.kind {
				t.Errorf("expected kind %q, got %q (%s)", tc.kind, e.Kind, e.Message)
			}
			if e.Line != tc.line {
				t.Errorf("expected line %d, got %d", tc.line, e.Line)
			}
			if e.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestParseSkipsAnalysis(t *testing.T) {
	d, err := Parse(source, "index")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(d.UniformArrays) != 0 {
		t.Errorf("expected no uniform arrays before analysis, got %d", len(d.UniformArrays))
	}
	for _, v := range d.Variables {
		if !v.Active {
			t.Errorf("variable %s: expected active before analysis", v.Name)
		}
	}

	if _, err := Parse(source, "minifier"); err == nil {
		t.Error("expected an error for the minifier grammar")
	}
}

func TestStandalone(t *testing.T) {
	result := Compile(source)
	passes := Standalone(result.Descriptor)

	if len(passes) != 1 {
		t.Fatalf("expected 1 pass, got %d", len(passes))
	}
	if passes[0].Vertex != "" {
		t.Errorf("expected no vertex stage, got %q", passes[0].Vertex)
	}
	if !strings.HasPrefix(passes[0].Fragment, "#version 450\nuniform float _shiba_float_uniforms[1];uniform vec3 _shiba_vec3_uniforms[1];") {
		t.Errorf("unexpected fragment prefix %q", passes[0].Fragment)
	}
}

func TestReflect(t *testing.T) {
	result := Reflect(Compile(source).Descriptor)

	if len(result.Arrays) != 2 {
		t.Fatalf("expected 2 arrays, got %d", len(result.Arrays))
	}
	color := result.Arrays[1]
	if color.Type != "vec3" || color.Components != 3 || color.Count != 1 {
		t.Errorf("unexpected array %+v", color)
	}
	params := color.Uniforms[0].Annotations[0].Parameters
	if params["min"] != "0" || params["max"] != "1" {
		t.Errorf("unexpected control parameters %v", params)
	}
}

func TestCompileResultJSON(t *testing.T) {
	data, err := json.Marshal(Compile("#pragma shiba common\nx\n"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"kind":"structural error"`) {
		t.Errorf("unexpected JSON %s", data)
	}
	if strings.Contains(string(data), `"descriptor"`) {
		t.Errorf("failed result must not carry a descriptor: %s", data)
	}
}
