package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPPWeight(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, PPWeight(0))
	assert.InDelta(t, 0.95, PPWeight(1), 1e-12)
	assert.InDelta(t, 0.9025, PPWeight(2), 1e-12)
	assert.InDelta(t, 0.95*0.95*0.95, PPWeight(3), 1e-12)
}

func TestWeightedPP(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 100.0, WeightedPP(100, 0), 1e-12)
	assert.InDelta(t, 95.0, WeightedPP(100, 1), 1e-12)
	assert.Equal(t, 0.0, WeightedPP(0, 0))
	assert.Equal(t, 0.0, WeightedPP(-10, 3))
}

func TestWeightedAcc(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.99, WeightedAcc(0.99, 0), 1e-12)
	assert.InDelta(t, 0.99*0.95, WeightedAcc(0.99, 1), 1e-12)
	assert.Equal(t, 0.0, WeightedAcc(0, 5))
	assert.Equal(t, 0.0, WeightedAcc(-0.5, 1))
}
