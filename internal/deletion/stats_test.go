package deletion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncodel/codel/internal/genome"
)

// tenSampleMatrix is the hand-checkable fixture: 10 samples, gene X deleted
// in samples 1-3, gene Y in samples 2-4, gene Z never.
func tenSampleMatrix(t *testing.T) *Matrix {
	t.Helper()
	genes := []genome.Info{geneInfo("X", 1), geneInfo("Y", 2), geneInfo("Z", 3)}
	calls := buildFromPattern(t, map[int64]string{
		1: "dddiiiiiii",
		2: "idddiiiiii",
		3: "iiiiiiiiii",
	}, 10)
	m, excluded := Build(calls, genes, DefaultConfig())
	require.Empty(t, excluded)
	require.Equal(t, 10, m.SampleCount())
	return m
}

func TestCountCoDeletions(t *testing.T) {
	cm := CountCoDeletions(tenSampleMatrix(t))

	// Diagonal is the single-gene deletion count.
	assert.Equal(t, 3, cm.At(0, 0))
	assert.Equal(t, 3, cm.At(1, 1))
	assert.Equal(t, 0, cm.At(2, 2))

	// X and Y are both deleted in samples 2 and 3.
	assert.Equal(t, 2, cm.At(0, 1))
	assert.Equal(t, 2, cm.At(1, 0))
	assert.Equal(t, 0, cm.At(0, 2))
}

func TestConditionalProbabilities(t *testing.T) {
	cond := ConditionalProbabilities(CountCoDeletions(tenSampleMatrix(t)))

	pXY, ok := cond.At(0, 1)
	require.True(t, ok)
	assert.InDelta(t, 2.0/3.0, pXY, 1e-12)

	pYX, ok := cond.At(1, 0)
	require.True(t, ok)
	assert.InDelta(t, 2.0/3.0, pYX, 1e-12)

	// Diagonal is exactly 1.0 for genes with at least one deletion.
	for i := 0; i < 2; i++ {
		p, ok := cond.At(i, i)
		require.True(t, ok)
		assert.Equal(t, 1.0, p)
	}
}

func TestConditionalUndefinedColumn(t *testing.T) {
	cond := ConditionalProbabilities(CountCoDeletions(tenSampleMatrix(t)))

	// Z has zero deletions: conditioning on Z is undefined, not zero.
	for i := 0; i < 3; i++ {
		_, ok := cond.At(i, 2)
		assert.False(t, ok)
	}

	// P(Z|X) is defined and zero, which is a different statement.
	p, ok := cond.At(2, 0)
	require.True(t, ok)
	assert.Equal(t, 0.0, p)
}

func TestConditionalAsymmetry(t *testing.T) {
	// Unequal marginals: A deleted in 4 samples, B in 2, overlap 2.
	genes := []genome.Info{geneInfo("A", 1), geneInfo("B", 2)}
	calls := buildFromPattern(t, map[int64]string{
		1: "ddddiiiiii",
		2: "ddiiiiiiii",
	}, 10)
	m, _ := Build(calls, genes, DefaultConfig())
	cond := ConditionalProbabilities(CountCoDeletions(m))

	pAB, ok := cond.At(0, 1)
	require.True(t, ok)
	pBA, ok := cond.At(1, 0)
	require.True(t, ok)

	assert.InDelta(t, 1.0, pAB, 1e-12)  // B deleted => A always deleted
	assert.InDelta(t, 0.5, pBA, 1e-12) // A deleted => B deleted half the time
	assert.NotEqual(t, pAB, pBA, "fixture must exercise asymmetry")
}

func TestConditionalValuesInRange(t *testing.T) {
	cond := ConditionalProbabilities(CountCoDeletions(tenSampleMatrix(t)))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if p, ok := cond.At(i, j); ok {
				assert.GreaterOrEqual(t, p, 0.0)
				assert.LessOrEqual(t, p, 1.0)
			}
		}
	}
}

func TestFrequencies(t *testing.T) {
	cm := CountCoDeletions(tenSampleMatrix(t))
	freqs := cm.Frequencies()
	require.Len(t, freqs, 3)

	// Sorted by frequency descending, gene identity breaking the X/Y tie.
	assert.Equal(t, "X", freqs[0].Gene.Symbol)
	assert.InDelta(t, 0.3, freqs[0].Frequency, 1e-12)
	assert.Equal(t, "Y", freqs[1].Gene.Symbol)
	assert.Equal(t, "Z", freqs[2].Gene.Symbol)
	assert.Equal(t, 0.0, freqs[2].Frequency)
}

func TestTopPairs(t *testing.T) {
	genes := []genome.Info{
		geneInfo("C", 3), geneInfo("A", 1), geneInfo("B", 2),
	}
	// C+A co-deleted in 3 samples, C+B in 2, A+B in 2.
	calls := buildFromPattern(t, map[int64]string{
		3: "dddddiiiii",
		1: "dddiiddiii",
		2: "iiiddddiii",
	}, 10)
	m, _ := Build(calls, genes, DefaultConfig())
	cm := CountCoDeletions(m)

	pairs := TopPairs(cm, 2)
	require.Len(t, pairs, 2)

	assert.Equal(t, "A", pairs[0].GeneI.Symbol)
	assert.Equal(t, "C", pairs[0].GeneJ.Symbol)
	assert.Equal(t, 3, pairs[0].Count)
	assert.InDelta(t, 0.3, pairs[0].JointFrequency, 1e-12)

	// A|B and B|C tie at 2/10; lexical order on the pair decides.
	assert.Equal(t, "A", pairs[1].GeneI.Symbol)
	assert.Equal(t, "B", pairs[1].GeneJ.Symbol)
}

func TestTopPairsDeterministic(t *testing.T) {
	m := tenSampleMatrix(t)
	cm := CountCoDeletions(m)
	first := TopPairs(cm, 0)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, TopPairs(cm, 0))
	}
}

func TestCountCoDeletionsSkipsUnobservedPairs(t *testing.T) {
	genes := []genome.Info{geneInfo("A", 1), geneInfo("B", 2)}
	// S1: both deleted. S2: A deleted, B missing.
	calls := buildFromPattern(t, map[int64]string{
		1: "dd",
		2: "d.",
	}, 2)
	cfg := DefaultConfig()
	cfg.MinObservedFraction = 0
	m, _ := Build(calls, genes, cfg)
	cm := CountCoDeletions(m)

	assert.Equal(t, 2, cm.At(0, 0))
	assert.Equal(t, 1, cm.At(1, 1))
	assert.Equal(t, 1, cm.At(0, 1), "missing cell must not count as co-deleted")
}
