package opportunity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreReferenceFixture(t *testing.T) {
	w := DefaultWeights()

	// INTS6 deleted in 28.8% of samples, pair validated in all 27
	// reference lines, baseline essentiality. Documented reference score
	// is ~0.903.
	score := w.Score(0.288, -1.568, false, 0.1, 27)
	assert.InDelta(t, 0.903, score, 1e-3)
}

func TestEssentialityWeight(t *testing.T) {
	w := DefaultWeights()
	tests := []struct {
		name      string
		essential bool
		depFrac   float64
		want      float64
	}{
		{"common essential", true, 0.0, 2.0},
		{"common essential trumps dependency", true, 0.9, 2.0},
		{"broad dependency", false, 0.69, 1.5},
		{"at threshold is baseline", false, 0.5, 1.0},
		{"baseline", false, 0.1, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.EssentialityWeight(tt.essential, tt.depFrac))
		})
	}
}

func TestContextWeight(t *testing.T) {
	w := DefaultWeights()

	assert.InDelta(t, 0.5, w.ContextWeight(0), 1e-12)
	assert.InDelta(t, 2.0, w.ContextWeight(27), 1e-12)
	assert.InDelta(t, 0.5+1.5*13.0/27.0, w.ContextWeight(13), 1e-12)

	// Counts beyond the panel clamp at the upper bound.
	assert.InDelta(t, 2.0, w.ContextWeight(40), 1e-12)
}

func TestScoreUsesGIMagnitude(t *testing.T) {
	w := DefaultWeights()
	neg := w.Score(0.3, -1.2, false, 0, 27)
	pos := w.Score(0.3, 1.2, false, 0, 27)
	assert.Equal(t, neg, pos)
}

func TestScoreMonotonicInDeletionFrequency(t *testing.T) {
	w := DefaultWeights()
	prev := 0.0
	for _, freq := range []float64{0.05, 0.10, 0.25, 0.50, 0.99} {
		score := w.Score(freq, -1.0, false, 0, 10)
		assert.Greater(t, score, prev)
		prev = score
	}
}

func TestScoreMonotonicInGIScore(t *testing.T) {
	w := DefaultWeights()
	prev := 0.0
	for _, gi := range []float64{-0.5, -1.0, -1.5, -2.0} {
		score := w.Score(0.3, gi, false, 0, 10)
		assert.Greater(t, score, prev)
		prev = score
	}
}

func TestScoreMonotonicInValidationBreadth(t *testing.T) {
	w := DefaultWeights()
	prev := -1.0
	for lines := 0; lines <= 27; lines++ {
		score := w.Score(0.3, -1.0, false, 0, lines)
		assert.Greater(t, score, prev)
		prev = score
	}
}

func TestWeightsConfigurable(t *testing.T) {
	w := DefaultWeights()
	w.CommonEssential = 3.0
	assert.Equal(t, 3.0, w.EssentialityWeight(true, 0))

	w.ContextBase = 1.0
	w.ContextSpan = 0.0
	assert.Equal(t, 1.0, w.ContextWeight(0))
	assert.Equal(t, 1.0, w.ContextWeight(27))
}
