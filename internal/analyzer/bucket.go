package analyzer

import (
	"strconv"

	"github.com/HugoDaniel/shiba/internal/shader"
)

// BucketUniforms packs every active uniform into the uniform array of its
// type, creating arrays in first-seen order. A uniform's position in its
// array is its index in the emitted code. Uniforms that are already members
// are left where they are. It returns the number of uniforms added.
func BucketUniforms(d *shader.Descriptor) int {
	added := 0
	for i := range d.Variables {
		v := &d.Variables[i]
		if !v.Active || v.Kind != shader.KindUniform || bucketed(d, v) {
			continue
		}
		array := arrayFor(d, v.TypeName)
		array.Variables = append(array.Variables, v.Clone())
		added++
	}
	return added
}

// RewriteUniformArrays replaces every reference to a packed uniform with
// the matching array element, `<array>[<index>]`. It must run after all
// uniforms have been bucketed.
func (a *Analyzer) RewriteUniformArrays(d *shader.Descriptor) {
	for _, array := range d.UniformArrays {
		for i, v := range array.Variables {
			a.replaceInBodies(d, v.Name, array.Name+"["+strconv.Itoa(i)+"]")
		}
	}
}

func arrayFor(d *shader.Descriptor, typeName string) *shader.UniformArray {
	for i := range d.UniformArrays {
		if d.UniformArrays[i].TypeName == typeName {
			return &d.UniformArrays[i]
		}
	}
	d.UniformArrays = append(d.UniformArrays, shader.UniformArray{
		Name:     shader.ArrayName(typeName),
		TypeName: typeName,
	})
	return &d.UniformArrays[len(d.UniformArrays)-1]
}

func bucketed(d *shader.Descriptor, v *shader.Variable) bool {
	for i := range d.UniformArrays {
		if d.UniformArrays[i].TypeName == v.TypeName && d.UniformArrays[i].Index(v.Name) >= 0 {
			return true
		}
	}
	return false
}
