package vector

import "github.com/viant/vec/search"

// CosineSimilarity returns the cosine similarity between a and b.
//
// Degenerate inputs never fail: a zero-magnitude operand, an empty vector, or
// a dimension mismatch all yield 0, so the scoring pipeline treats them as
// "no signal" instead of dividing by zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	va := search.Float32s(a)
	if va.Magnitude() == 0 || search.Float32s(b).Magnitude() == 0 {
		return 0
	}
	return 1 - float64(va.CosineDistance(b))
}

// Normalize scales v to unit L2 norm in place. A zero vector is left as is.
func Normalize(v []float32) {
	m := search.Float32s(v).Magnitude()
	if m == 0 {
		return
	}
	for i := range v {
		v[i] /= m
	}
}
