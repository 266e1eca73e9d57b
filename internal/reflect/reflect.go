// Package reflect describes the uniform arrays of a descriptor for host code
// generators. It reports the name to bind, the element type and its layout,
// and which source uniform lives at which index.
package reflect

import (
	"github.com/HugoDaniel/shiba/internal/shader"
)

// ReflectResult contains the reflection information of a descriptor.
type ReflectResult struct {
	Arrays []ArrayInfo `json:"arrays"`
}

// ArrayInfo describes one uniform array.
type ArrayInfo struct {
	Name         string `json:"name"`
	MinifiedName string `json:"minifiedName,omitempty"`
	Type         string `json:"type"`
	Count        int    `json:"count"`

	// Components is the number of scalars per element.
	Components int `json:"components"`

	// Stride and Size are the std140 element stride and total size; both
	// are zero for opaque types.
	Stride int `json:"stride"`
	Size   int `json:"size"`

	Uniforms []UniformInfo `json:"uniforms"`
}

// UniformInfo describes one uniform packed into an array.
type UniformInfo struct {
	Index       int                        `json:"index"`
	Name        string                     `json:"name"`
	Annotations []shader.UniformAnnotation `json:"annotations,omitempty"`
}

// Location addresses one element of one uniform array.
type Location struct {
	Array string `json:"array"`
	Index int    `json:"index"`
}

// Uniforms extracts the uniform array information of d. Arrays and their
// members are reported in order, so a member's position equals its Index.
func Uniforms(d *shader.Descriptor) ReflectResult {
	result := ReflectResult{Arrays: make([]ArrayInfo, 0, len(d.UniformArrays))}

	for i := range d.UniformArrays {
		a := &d.UniformArrays[i]
		layout := LayoutOf(a.TypeName)

		info := ArrayInfo{
			Name:         a.Name,
			MinifiedName: a.MinifiedName,
			Type:         a.TypeName,
			Count:        len(a.Variables),
			Components:   layout.Components,
			Uniforms:     make([]UniformInfo, len(a.Variables)),
		}
		if !layout.Opaque {
			info.Stride = arrayStride(layout)
			info.Size = info.Stride * info.Count
		}
		for j, v := range a.Variables {
			info.Uniforms[j] = UniformInfo{
				Index:       j,
				Name:        v.Name,
				Annotations: v.Clone().Annotations,
			}
		}

		result.Arrays = append(result.Arrays, info)
	}

	return result
}

// Annotated returns the location of every uniform carrying an annotation of
// the given kind, using the emitted array names.
func (r ReflectResult) Annotated(kind shader.AnnotationKind) []Location {
	var locations []Location
	for _, a := range r.Arrays {
		name := a.Name
		if a.MinifiedName != "" {
			name = a.MinifiedName
		}
		for _, u := range a.Uniforms {
			for _, annotation := range u.Annotations {
				if annotation.Kind == kind {
					locations = append(locations, Location{Array: name, Index: u.Index})
					break
				}
			}
		}
	}
	return locations
}
