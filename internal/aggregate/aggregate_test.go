package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncodel/codel/internal/deletion"
	"github.com/oncodel/codel/internal/genome"
)

func chromFreq(symbol string, entrez int64, f float64) deletion.Frequency {
	return deletion.Frequency{
		Gene:      genome.Info{Gene: genome.Gene{Symbol: symbol, EntrezID: entrez}},
		Frequency: f,
	}
}

func TestMergeTwoChromosomes(t *testing.T) {
	tables := map[string][]deletion.Frequency{
		"13": {chromFreq("RB1", 5925, 0.30), chromFreq("BRCA2", 675, 0.12)},
		"17": {chromFreq("TP53", 7157, 0.25)},
	}

	tab, err := Merge("prad_tcga", tables)
	require.NoError(t, err)

	assert.Equal(t, "prad_tcga", tab.StudyID)
	assert.Equal(t, []string{"13", "17"}, tab.Chromosomes)
	assert.False(t, tab.Complete())

	require.Len(t, tab.Records, 3)
	// Gene identity order, chromosome of origin preserved per record.
	assert.Equal(t, "BRCA2", tab.Records[0].Gene.Symbol)
	assert.Equal(t, "13", tab.Records[0].Chromosome)
	assert.Equal(t, "RB1", tab.Records[1].Gene.Symbol)
	assert.Equal(t, "TP53", tab.Records[2].Gene.Symbol)
	assert.Equal(t, "17", tab.Records[2].Chromosome)
}

func TestMergeDuplicateGeneFailsLoudly(t *testing.T) {
	tables := map[string][]deletion.Frequency{
		"13": {chromFreq("RB1", 5925, 0.30)},
		"17": {chromFreq("RB1", 5925, 0.28)},
	}

	_, err := Merge("prad_tcga", tables)
	require.Error(t, err)

	var mismatch *SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "RB1", mismatch.Gene.Symbol)
	assert.Equal(t, "13", mismatch.FirstChromosome)
	assert.Equal(t, "17", mismatch.Chromosome)
}

func TestMergeDuplicateWithinChromosomeFails(t *testing.T) {
	tables := map[string][]deletion.Frequency{
		"13": {chromFreq("RB1", 5925, 0.30), chromFreq("RB1", 5925, 0.30)},
	}
	_, err := Merge("prad_tcga", tables)
	var mismatch *SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestMergeSameSymbolDifferentEntrezAllowed(t *testing.T) {
	// Identity is (symbol, Entrez ID); a symbol collision alone is not a
	// duplicate gene.
	tables := map[string][]deletion.Frequency{
		"13": {chromFreq("DUP", 1, 0.30)},
		"17": {chromFreq("DUP", 2, 0.10)},
	}
	tab, err := Merge("prad_tcga", tables)
	require.NoError(t, err)
	assert.Len(t, tab.Records, 2)
}

func TestMergeUnknownChromosome(t *testing.T) {
	tables := map[string][]deletion.Frequency{
		"chr13": {chromFreq("RB1", 5925, 0.30)},
	}
	_, err := Merge("prad_tcga", tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chr13")
}

func TestMergeCompleteGenome(t *testing.T) {
	tables := make(map[string][]deletion.Frequency, len(genome.Chromosomes))
	for i, chrom := range genome.Chromosomes {
		tables[chrom] = []deletion.Frequency{chromFreq("G"+chrom, int64(i+1), 0.1)}
	}
	tab, err := Merge("prad_tcga", tables)
	require.NoError(t, err)
	assert.True(t, tab.Complete())
	assert.Equal(t, genome.Chromosomes, tab.Chromosomes)
	assert.Len(t, tab.Records, 24)
}

func TestMergeEmptyInput(t *testing.T) {
	tab, err := Merge("prad_tcga", nil)
	require.NoError(t, err)
	assert.Empty(t, tab.Chromosomes)
	assert.Empty(t, tab.Records)
}

func TestLookup(t *testing.T) {
	tab, err := Merge("prad_tcga", map[string][]deletion.Frequency{
		"13": {chromFreq("RB1", 5925, 0.30)},
	})
	require.NoError(t, err)

	r, ok := tab.Lookup("RB1")
	require.True(t, ok)
	assert.Equal(t, 0.30, r.Frequency)

	_, ok = tab.Lookup("TP53")
	assert.False(t, ok)
}
