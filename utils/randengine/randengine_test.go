package randengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministic(t *testing.T) {
	e1 := New(42)
	e2 := New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, e1.Uint64(), e2.Uint64())
	}
}

func TestDiscreteDistribution(t *testing.T) {
	e := New(42)
	weight := []float64{0, 1, 2}
	counts := make([]int, len(weight))
	for i := 0; i < 1000; i++ {
		idx := e.DiscreteDistribution(weight)
		assert.GreaterOrEqual(t, idx, int32(0))
		assert.Less(t, idx, int32(len(weight)))
		counts[idx]++
	}
	// 零权重的索引不会被抽到
	assert.Equal(t, 0, counts[0])
	assert.Greater(t, counts[2], counts[1])
}
