package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncodel/codel/internal/cbioportal"
	"github.com/oncodel/codel/internal/deletion"
	"github.com/oncodel/codel/internal/genome"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// testMatrix builds a small matrix: RB1 deleted in s1,s2; BRCA2 in s2; ZFIN
// never deleted (its conditional column is undefined).
func testMatrix(t *testing.T) *deletion.Matrix {
	t.Helper()
	genes := []genome.Info{
		{Gene: genome.Gene{Symbol: "RB1", EntrezID: 5925}, Chromosome: "13"},
		{Gene: genome.Gene{Symbol: "BRCA2", EntrezID: 675}, Chromosome: "13"},
		{Gene: genome.Gene{Symbol: "ZFIN", EntrezID: 99}, Chromosome: "13"},
	}
	var calls []cbioportal.CopyNumberCall
	for _, s := range []string{"s1", "s2", "s3"} {
		for _, g := range genes {
			alt := 0
			if g.Symbol == "RB1" && (s == "s1" || s == "s2") {
				alt = -2
			}
			if g.Symbol == "BRCA2" && s == "s2" {
				alt = -1
			}
			calls = append(calls, cbioportal.CopyNumberCall{
				SampleID: s, EntrezGeneID: g.EntrezID, Alteration: alt,
			})
		}
	}
	m, excluded := deletion.Build(calls, genes, deletion.DefaultConfig())
	require.Empty(t, excluded)
	return m
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.False(t, s.ReadOnly())
}

func TestWriteAndReadFrequencies(t *testing.T) {
	s := openInMemory(t)
	cm := deletion.CountCoDeletions(testMatrix(t))

	require.NoError(t, s.WriteFrequencies("prad", "13", cm.Frequencies()))

	perChrom, err := s.StudyFrequencies("prad")
	require.NoError(t, err)
	require.Len(t, perChrom, 1)

	freqs := perChrom["13"]
	require.Len(t, freqs, 3)
	byGene := map[string]deletion.Frequency{}
	for _, f := range freqs {
		byGene[f.Gene.Symbol] = f
	}
	assert.InDelta(t, 2.0/3.0, byGene["RB1"].Frequency, 1e-12)
	assert.Equal(t, 2, byGene["RB1"].Deleted)
	assert.Equal(t, 3, byGene["RB1"].Observed)
	assert.Equal(t, "13", byGene["RB1"].Gene.Chromosome)
	assert.Equal(t, 0.0, byGene["ZFIN"].Frequency)
}

func TestWriteFrequenciesReplaces(t *testing.T) {
	s := openInMemory(t)
	cm := deletion.CountCoDeletions(testMatrix(t))

	require.NoError(t, s.WriteFrequencies("prad", "13", cm.Frequencies()))
	require.NoError(t, s.WriteFrequencies("prad", "13", cm.Frequencies()))

	freqs, err := s.ChromosomeFrequencies("prad", "13")
	require.NoError(t, err)
	assert.Len(t, freqs, 3) // rewrite, not append
}

func TestWriteConditionalsUndefinedIsNull(t *testing.T) {
	s := openInMemory(t)
	cm := deletion.CountCoDeletions(testMatrix(t))
	pm := deletion.ConditionalProbabilities(cm)

	require.NoError(t, s.WriteConditionals("prad", "13", pm))

	conds, err := s.Conditionals("prad", "13")
	require.NoError(t, err)
	require.Len(t, conds, 9)

	defined := 0
	for _, c := range conds {
		if c.GeneJ.Symbol == "ZFIN" {
			// ZFIN has zero deletions: its whole denominator column is NULL.
			assert.False(t, c.Probability.Valid, "P(%s|ZFIN) must be NULL", c.GeneI.Symbol)
			continue
		}
		defined++
		assert.True(t, c.Probability.Valid)
		if c.GeneI == c.GeneJ {
			assert.Equal(t, 1.0, c.Probability.Float64)
		}
	}
	assert.Equal(t, 6, defined)
}

func TestWriteCoDeletions(t *testing.T) {
	s := openInMemory(t)
	cm := deletion.CountCoDeletions(testMatrix(t))

	require.NoError(t, s.WriteCoDeletions("prad", "13", cm))

	var pairCount, sampleCount int
	err := s.DB().QueryRow(
		`SELECT pair_count, sample_count FROM codeletion_counts
		 WHERE study_id='prad' AND gene_i='RB1' AND gene_j='BRCA2'`).
		Scan(&pairCount, &sampleCount)
	require.NoError(t, err)
	assert.Equal(t, 1, pairCount) // both deleted only in s2
	assert.Equal(t, 3, sampleCount)

	// Upper triangle only: the mirrored pair is not stored.
	var n int
	require.NoError(t, s.DB().QueryRow(
		`SELECT count(*) FROM codeletion_counts
		 WHERE gene_i='BRCA2' AND gene_j='RB1'`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestWriteGenes(t *testing.T) {
	s := openInMemory(t)
	genes := []genome.Info{
		{Gene: genome.Gene{Symbol: "RB1", EntrezID: 5925}, Chromosome: "13",
			Cytoband: "13q14.2", Start: 48303748, End: 48481890},
		{Gene: genome.Gene{Symbol: "NOVEL", EntrezID: 1}, Chromosome: "13"},
	}
	require.NoError(t, s.WriteGenes(genes))
	require.NoError(t, s.WriteGenes(genes)) // idempotent upsert

	var start any
	require.NoError(t, s.DB().QueryRow(
		`SELECT start_position FROM genes WHERE gene_symbol='NOVEL'`).Scan(&start))
	assert.Nil(t, start) // unknown coordinates stored as NULL, not 0
}

func TestRecordAndReadUnits(t *testing.T) {
	s := openInMemory(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, s.RecordUnit(Unit{
		RunID: "run-1", StudyID: "prad", Chromosome: "13",
		Status: "ok", Samples: 489, Genes: 321, FinishedAt: now,
	}))
	require.NoError(t, s.RecordUnit(Unit{
		RunID: "run-1", StudyID: "tiny", Chromosome: "13",
		Status: "skipped", Detail: "3 samples, need 10", FinishedAt: now,
	}))

	units, err := s.Units("run-1")
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "ok", units[0].Status)
	assert.Equal(t, "skipped", units[1].Status)
	assert.Equal(t, "3 samples, need 10", units[1].Detail)

	none, err := s.Units("run-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}
