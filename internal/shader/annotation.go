package shader

import (
	"fmt"
	"maps"
	"strconv"
)

// AnnotationKind identifies a `// shiba` uniform annotation.
type AnnotationKind uint8

const (
	AnnotationControl AnnotationKind = iota
	AnnotationTime
	AnnotationProjection
	AnnotationInverseProjection
	AnnotationView
	AnnotationInverseView
	AnnotationResolutionWidth
	AnnotationResolutionHeight
)

var annotationNames = []string{
	AnnotationControl:           "control",
	AnnotationTime:              "time",
	AnnotationProjection:        "projection",
	AnnotationInverseProjection: "inverse-projection",
	AnnotationView:              "view",
	AnnotationInverseView:       "inverse-view",
	AnnotationResolutionWidth:   "resolution-width",
	AnnotationResolutionHeight:  "resolution-height",
}

// AnnotationKinds returns every annotation kind in declaration order.
func AnnotationKinds() []AnnotationKind {
	kinds := make([]AnnotationKind, len(annotationNames))
	for i := range annotationNames {
		kinds[i] = AnnotationKind(i)
	}
	return kinds
}

func (k AnnotationKind) String() string {
	if int(k) < len(annotationNames) {
		return annotationNames[k]
	}
	return "AnnotationKind(" + strconv.Itoa(int(k)) + ")"
}

// LookupAnnotationKind returns the kind spelled name.
func LookupAnnotationKind(name string) (AnnotationKind, bool) {
	for i, n := range annotationNames {
		if n == name {
			return AnnotationKind(i), true
		}
	}
	return 0, false
}

func (k AnnotationKind) MarshalText() ([]byte, error) {
	if int(k) >= len(annotationNames) {
		return nil, fmt.Errorf("invalid annotation kind %d", k)
	}
	return []byte(annotationNames[k]), nil
}

func (k *AnnotationKind) UnmarshalText(text []byte) error {
	kind, ok := LookupAnnotationKind(string(text))
	if !ok {
		return fmt.Errorf("invalid annotation kind %q", text)
	}
	*k = kind
	return nil
}

// UniformAnnotation is advisory metadata read by the code generator.
// Only control annotations carry parameters.
type UniformAnnotation struct {
	Kind       AnnotationKind    `json:"kind"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Clone returns a deep copy of the annotation.
func (a UniformAnnotation) Clone() UniformAnnotation {
	if a.Parameters != nil {
		a.Parameters = maps.Clone(a.Parameters)
	}
	return a
}
