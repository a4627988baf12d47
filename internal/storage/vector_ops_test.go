package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorSerializationRoundTrip(t *testing.T) {
	vector := []float32{0.25, -1.5, 3.14159, 0, 1e-8}

	blob := SerializeVector(vector)
	assert.Len(t, blob, len(vector)*4)

	got := DeserializeVector(blob)
	assert.Equal(t, vector, got)
}

func TestSerializeVector_Empty(t *testing.T) {
	assert.Empty(t, SerializeVector(nil))
	assert.Empty(t, DeserializeVector(nil))
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1.0},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0.0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1.0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0.0},
		{name: "dimension mismatch", a: []float32{1}, b: []float32{1, 2}, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestBuildVectorResults_LimitHandling(t *testing.T) {
	candidates := []candidate{
		{chunkID: 1, score: 0.9},
		{chunkID: 2, score: 0.8},
		{chunkID: 3, score: 0.7},
	}

	assert.Len(t, buildVectorResults(candidates, 2), 2)
	assert.Len(t, buildVectorResults(candidates, 10), 3)
	assert.Len(t, buildVectorResults(candidates, 0), 3)
	assert.Empty(t, buildVectorResults(nil, 5))
}
