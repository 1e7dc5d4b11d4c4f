package opportunity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncodel/codel/internal/genome"
	"github.com/oncodel/codel/internal/slpairs"
)

func slPair(a, b string, fdr float64) slpairs.Pair {
	return slpairs.Pair{
		GeneA:              a,
		GeneB:              b,
		GIScore:            -1.0,
		FDR:                fdr,
		ValidatedCellLines: []string{"A375"},
	}
}

func freq(symbol string, entrez int64, f float64) GeneFrequency {
	return GeneFrequency{Gene: genome.Gene{Symbol: symbol, EntrezID: entrez}, Frequency: f}
}

func TestJoinBidirectional(t *testing.T) {
	pairs := []slpairs.Pair{slPair("RB1", "E2F1", 0.01)}
	params := DefaultParams()

	tests := []struct {
		name  string
		freqs []GeneFrequency
		want  int
	}{
		{"both sides clear", []GeneFrequency{freq("RB1", 5925, 0.30), freq("E2F1", 1869, 0.10)}, 2},
		{"one side clears", []GeneFrequency{freq("RB1", 5925, 0.30), freq("E2F1", 1869, 0.01)}, 1},
		{"neither clears", []GeneFrequency{freq("RB1", 5925, 0.02), freq("E2F1", 1869, 0.01)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewJoiner().Join("prad", pairs, tt.freqs, params)
			assert.Len(t, res.Opportunities, tt.want)
		})
	}
}

func TestJoinDirections(t *testing.T) {
	pairs := []slpairs.Pair{slPair("RB1", "E2F1", 0.01)}
	freqs := []GeneFrequency{freq("RB1", 5925, 0.30), freq("E2F1", 1869, 0.10)}

	res := NewJoiner().Join("prad", pairs, freqs, DefaultParams())
	require.Len(t, res.Opportunities, 2)

	byDeleted := map[string]Opportunity{}
	for _, o := range res.Opportunities {
		byDeleted[o.DeletedGene.Symbol] = o
	}

	rb1 := byDeleted["RB1"]
	assert.Equal(t, "E2F1", rb1.TargetGene)
	assert.Equal(t, 0.30, rb1.DeletionFrequency)
	assert.Equal(t, "RB1|E2F1", rb1.SourcePair)
	assert.Equal(t, "prad", rb1.StudyID)

	e2f1 := byDeleted["E2F1"]
	assert.Equal(t, "RB1", e2f1.TargetGene)
	assert.Equal(t, 0.10, e2f1.DeletionFrequency)
}

func TestJoinFDRFilter(t *testing.T) {
	pairs := []slpairs.Pair{
		slPair("RB1", "E2F1", 0.01),
		slPair("BRCA2", "PARP1", 0.20),
	}
	freqs := []GeneFrequency{
		freq("RB1", 5925, 0.30), freq("E2F1", 1869, 0.10),
		freq("BRCA2", 675, 0.30), freq("PARP1", 142, 0.10),
	}

	res := NewJoiner().Join("prad", pairs, freqs, DefaultParams())
	for _, o := range res.Opportunities {
		assert.Equal(t, "RB1|E2F1", o.SourcePair)
	}
}

func TestJoinMissingGeneSkippedNotZero(t *testing.T) {
	pairs := []slpairs.Pair{slPair("RB1", "E2F1", 0.01)}
	// E2F1 has no genome-wide record: only the RB1-deleted direction may
	// be emitted, and nothing may treat E2F1 as frequency 0.
	freqs := []GeneFrequency{freq("RB1", 5925, 0.30)}

	res := NewJoiner().Join("prad", pairs, freqs, DefaultParams())
	require.Len(t, res.Opportunities, 1)
	assert.Equal(t, "RB1", res.Opportunities[0].DeletedGene.Symbol)
}

func TestJoinEssentialityFilter(t *testing.T) {
	p := slPair("RB1", "E2F1", 0.01)
	p.BEssential = true // target E2F1 essential in the RB1-deleted direction
	pairs := []slpairs.Pair{p}
	freqs := []GeneFrequency{freq("RB1", 5925, 0.30), freq("E2F1", 1869, 0.10)}

	params := DefaultParams()
	params.Essentiality = FilterEssentialOnly
	res := NewJoiner().Join("prad", pairs, freqs, params)
	require.Len(t, res.Opportunities, 1)
	assert.Equal(t, "E2F1", res.Opportunities[0].TargetGene)
	assert.True(t, res.Opportunities[0].TargetEssential)

	params.Essentiality = FilterNonEssentialOnly
	res = NewJoiner().Join("prad", pairs, freqs, params)
	require.Len(t, res.Opportunities, 1)
	assert.Equal(t, "RB1", res.Opportunities[0].TargetGene)
}

func TestJoinEmptyResultIsValid(t *testing.T) {
	res := NewJoiner().Join("prad", []slpairs.Pair{slPair("RB1", "E2F1", 0.01)}, nil, DefaultParams())
	assert.Empty(t, res.Opportunities)
	assert.Equal(t, "prad", res.StudyID)
}

func TestJoinSortDeterministic(t *testing.T) {
	pairs := []slpairs.Pair{
		slPair("A", "B", 0.01),
		slPair("C", "D", 0.01),
		slPair("E", "F", 0.01),
	}
	freqs := []GeneFrequency{
		freq("A", 1, 0.20), freq("B", 2, 0.20),
		freq("C", 3, 0.20), freq("D", 4, 0.20),
		freq("E", 5, 0.20), freq("F", 6, 0.20),
	}

	first := NewJoiner().Join("prad", pairs, freqs, DefaultParams())
	for i := 0; i < 5; i++ {
		again := NewJoiner().Join("prad", pairs, freqs, DefaultParams())
		assert.Equal(t, first.Opportunities, again.Opportunities)
	}

	// All six tie on score and frequency: deleted-gene identity decides.
	var deleted []string
	for _, o := range first.Opportunities {
		deleted = append(deleted, o.DeletedGene.Symbol)
	}
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F"}, deleted)
}

func TestJoinSortByScore(t *testing.T) {
	pairs := []slpairs.Pair{
		slPair("LOW", "T1", 0.01),
		slPair("HIGH", "T2", 0.01),
	}
	freqs := []GeneFrequency{
		freq("LOW", 1, 0.06),
		freq("HIGH", 2, 0.50),
	}

	res := NewJoiner().Join("prad", pairs, freqs, DefaultParams())
	require.Len(t, res.Opportunities, 2)
	assert.Equal(t, "HIGH", res.Opportunities[0].DeletedGene.Symbol)
	assert.Greater(t, res.Opportunities[0].TherapeuticScore, res.Opportunities[1].TherapeuticScore)
}

func TestParseEssentialityFilter(t *testing.T) {
	for _, valid := range []string{"all", "essentialOnly", "nonEssentialOnly"} {
		f, err := ParseEssentialityFilter(valid)
		require.NoError(t, err)
		assert.Equal(t, EssentialityFilter(valid), f)
	}
	_, err := ParseEssentialityFilter("essential")
	assert.Error(t, err)
}
