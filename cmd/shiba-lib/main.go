// Package main provides a C-callable static library for shader descriptor
// compilation.
//
// This is built with -buildmode=c-archive to produce libshiba.a that can be
// linked into C/C++ host applications such as demo players or editor
// plugins.
//
// Build:
//
//	CGO_ENABLED=1 go build -buildmode=c-archive -o build/libshiba.a ./cmd/shiba-lib
//
// Exported functions:
//
//	shiba_compile(source, source_len, options_json, options_len, out_json, out_json_len) -> error_code
//	shiba_standalone(source, source_len, options_json, options_len, out_json, out_json_len) -> error_code
//	shiba_free(ptr) -> void
//	shiba_version() -> *char
package main

/*
#include <stdlib.h>
*/
import "C"
import (
	"encoding/json"
	"unsafe"

	"github.com/HugoDaniel/shiba/pkg/api"
)

const version = "0.1.0"

// Error codes
const (
	SHIBA_OK              = 0
	SHIBA_ERR_JSON_ENCODE = 1
	SHIBA_ERR_NULL_INPUT  = 2
	SHIBA_ERR_JSON_DECODE = 3
)

// CompileOptions mirrors api.CompileOptions for JSON parsing.
type CompileOptions struct {
	Grammar      string   `json:"grammar"`
	Template     bool     `json:"template"`
	Development  bool     `json:"development"`
	Target       string   `json:"target"`
	MinifierPath string   `json:"minifierPath"`
	MinifierArgs []string `json:"minifierArgs"`
}

// CompileResult is the JSON result of shiba_compile.
type CompileResult struct {
	api.CompileResult
	Reflect *api.ReflectResult `json:"reflect,omitempty"`
}

// StandaloneResult is the JSON result of shiba_standalone.
type StandaloneResult struct {
	Passes []api.Pass       `json:"passes,omitempty"`
	Errors []api.Diagnostic `json:"errors,omitempty"`
}

func decodeOptions(options_json *C.char, options_len C.int) (api.CompileOptions, bool) {
	var opts CompileOptions
	if options_json != nil && options_len > 0 {
		if err := json.Unmarshal([]byte(C.GoStringN(options_json, options_len)), &opts); err != nil {
			return api.CompileOptions{}, false
		}
	}
	return api.CompileOptions(opts), true
}

func writeJSON(v any, out_json **C.char, out_json_len *C.int) C.int {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return SHIBA_ERR_JSON_ENCODE
	}
	*out_json = C.CString(string(jsonBytes))
	*out_json_len = C.int(len(jsonBytes))
	return SHIBA_OK
}

// shiba_compile compiles a shader document and returns the descriptor and
// its uniform reflection as JSON.
//
// Parameters:
//   - source: pointer to the shader document (UTF-8)
//   - source_len: length of source in bytes
//   - options_json: pointer to JSON options (can be NULL for defaults)
//   - options_len: length of options JSON
//   - out_json: pointer to receive the JSON result (caller must free with shiba_free)
//   - out_json_len: pointer to receive JSON length
//
// Returns:
//   - 0 on success, including compilation errors reported in the JSON
//   - non-zero error code on failure
//
//export shiba_compile
func shiba_compile(
	source *C.char, source_len C.int,
	options_json *C.char, options_len C.int,
	out_json **C.char, out_json_len *C.int,
) C.int {
	if source == nil || out_json == nil || out_json_len == nil {
		return SHIBA_ERR_NULL_INPUT
	}
	opts, ok := decodeOptions(options_json, options_len)
	if !ok {
		return SHIBA_ERR_JSON_DECODE
	}

	result := CompileResult{CompileResult: api.CompileWithOptions(C.GoStringN(source, source_len), opts)}
	if result.Descriptor != nil {
		r := api.Reflect(result.Descriptor)
		result.Reflect = &r
	}
	return writeJSON(result, out_json, out_json_len)
}

// shiba_standalone compiles a shader document and returns self-contained
// vertex and fragment sources for every program as JSON. Parameters and
// return values are those of shiba_compile.
//
//export shiba_standalone
func shiba_standalone(
	source *C.char, source_len C.int,
	options_json *C.char, options_len C.int,
	out_json **C.char, out_json_len *C.int,
) C.int {
	if source == nil || out_json == nil || out_json_len == nil {
		return SHIBA_ERR_NULL_INPUT
	}
	opts, ok := decodeOptions(options_json, options_len)
	if !ok {
		return SHIBA_ERR_JSON_DECODE
	}

	compiled := api.CompileWithOptions(C.GoStringN(source, source_len), opts)
	result := StandaloneResult{Errors: compiled.Errors}
	if compiled.Descriptor != nil {
		result.Passes = api.Standalone(compiled.Descriptor)
	}
	return writeJSON(result, out_json, out_json_len)
}

// shiba_free frees memory allocated by shiba functions.
//
//export shiba_free
func shiba_free(ptr *C.char) {
	if ptr != nil {
		C.free(unsafe.Pointer(ptr))
	}
}

// shiba_version returns the library version string. The caller must free
// it with shiba_free.
//
//export shiba_version
func shiba_version() *C.char {
	return C.CString(version)
}

// Required for c-archive build mode
func main() {}
