package bloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBloomFilter_NeverFalseNegative(t *testing.T) {
	bf := NewWithEstimates(1000, 0.01)
	items := [][]byte{[]byte("nyc"), []byte("sf"), []byte("la")}
	for _, item := range items {
		bf.Add(item)
	}
	for _, item := range items {
		assert.True(t, bf.Contains(item))
	}
	assert.False(t, bf.Contains([]byte("definitely-absent-value")))
}

func TestBloomFilter_CountTracksAdditions(t *testing.T) {
	bf := New(1024, 4)
	assert.Equal(t, uint64(0), bf.Count())
	bf.Add([]byte("a"))
	bf.Add([]byte("b"))
	assert.Equal(t, uint64(2), bf.Count())
}

func TestOptimalParameters_ProducesUsableFilter(t *testing.T) {
	numBits, numHashes := OptimalParameters(500, 0.05)
	assert.GreaterOrEqual(t, numBits, 64)
	assert.GreaterOrEqual(t, numHashes, 1)

	bf := New(numBits, numHashes)
	bf.Add([]byte("value"))
	assert.True(t, bf.Contains([]byte("value")))
}
