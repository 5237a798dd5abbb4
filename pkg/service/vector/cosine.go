package vector

import "math"

// Cosine computes the cosine similarity of two vectors: dot(a,b) divided by
// the product of their norms. Length mismatch or a zero norm yields 0,
// never NaN, so degenerate vectors rank last instead of poisoning a sort.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
