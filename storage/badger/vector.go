package badger

import "math"

// cosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different length have similarity 0, as does a zero vector.
func cosineSimilarity(a, b []float32, normA float64) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, sumB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		sumB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || sumB == 0 {
		return 0
	}
	return float32(dot / (normA * math.Sqrt(sumB)))
}

// norm returns the Euclidean length of v.
func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}
