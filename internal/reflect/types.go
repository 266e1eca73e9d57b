package reflect

// TypeLayout holds the std140 size and alignment of a GLSL type, plus the
// number of scalar components the host uploads per element.
type TypeLayout struct {
	Size       int `json:"size"`
	Alignment  int `json:"alignment"`
	Components int `json:"components"`

	// Opaque types (samplers, images) occupy a texture unit rather than
	// buffer memory; only Components is meaningful for them.
	Opaque bool `json:"opaque,omitempty"`
}

// std140 layouts of the GLSL basic types.
// Reference: OpenGL 4.6 core profile, section 7.6.2.2.
var primitiveLayouts = map[string]TypeLayout{
	"float": {Size: 4, Alignment: 4, Components: 1},
	"int":   {Size: 4, Alignment: 4, Components: 1},
	"uint":  {Size: 4, Alignment: 4, Components: 1},
	"bool":  {Size: 4, Alignment: 4, Components: 1},

	"vec2":  computeVecLayout(2),
	"vec3":  computeVecLayout(3),
	"vec4":  computeVecLayout(4),
	"ivec2": computeVecLayout(2),
	"ivec3": computeVecLayout(3),
	"ivec4": computeVecLayout(4),
	"uvec2": computeVecLayout(2),
	"uvec3": computeVecLayout(3),
	"uvec4": computeVecLayout(4),
	"bvec2": computeVecLayout(2),
	"bvec3": computeVecLayout(3),
	"bvec4": computeVecLayout(4),

	// matCxR is C columns of R-component vectors; matN is matNxN.
	"mat2":   computeMatLayout(2, 2),
	"mat3":   computeMatLayout(3, 3),
	"mat4":   computeMatLayout(4, 4),
	"mat2x2": computeMatLayout(2, 2),
	"mat2x3": computeMatLayout(2, 3),
	"mat2x4": computeMatLayout(2, 4),
	"mat3x2": computeMatLayout(3, 2),
	"mat3x3": computeMatLayout(3, 3),
	"mat3x4": computeMatLayout(3, 4),
	"mat4x2": computeMatLayout(4, 2),
	"mat4x3": computeMatLayout(4, 3),
	"mat4x4": computeMatLayout(4, 4),
}

// LayoutOf returns the layout of typeName. Types that are neither basic
// nor known are treated as opaque with a single component.
func LayoutOf(typeName string) TypeLayout {
	if l, ok := primitiveLayouts[typeName]; ok {
		return l
	}
	return TypeLayout{Components: 1, Opaque: true}
}

// computeVecLayout computes the layout of an n-component vector of 4-byte
// scalars. vec3 is aligned like vec4.
func computeVecLayout(n int) TypeLayout {
	align := 4 * n
	if n == 3 {
		align = 16
	}
	return TypeLayout{Size: 4 * n, Alignment: align, Components: n}
}

// computeMatLayout lays a matrix out as an array of its column vectors, each
// padded to a vec4 stride.
func computeMatLayout(cols, rows int) TypeLayout {
	column := computeVecLayout(rows)
	stride := roundUp(column.Size, 16)
	return TypeLayout{Size: cols * stride, Alignment: 16, Components: cols * rows}
}

// arrayStride is the distance between array elements: the element size
// rounded up to a vec4.
func arrayStride(l TypeLayout) int {
	return roundUp(l.Size, 16)
}

// roundUp rounds x up to the nearest multiple of align.
func roundUp(x, align int) int {
	if align == 0 {
		return x
	}
	return ((x + align - 1) / align) * align
}
