package deletion

import (
	"sort"

	"github.com/oncodel/codel/internal/genome"
)

// CountMatrix holds symmetric co-deletion counts. Entry (i,j) is the number
// of samples where both genes are observed and deleted; the diagonal is the
// per-gene deletion count.
type CountMatrix struct {
	genes       []genome.Info
	counts      [][]int
	observed    []int // per-gene observed sample count
	sampleCount int
}

// CountCoDeletions computes co-occurrence counts for every gene pair. Only
// samples with observed calls for both genes contribute to a pair's count.
func CountCoDeletions(m *Matrix) *CountMatrix {
	n := m.GeneCount()
	counts := make([][]int, n)
	for i := range counts {
		counts[i] = make([]int, n)
	}

	for row := 0; row < m.SampleCount(); row++ {
		// Collect the genes deleted in this sample once, then bump every
		// pair among them. Far cheaper than the full n^2 scan per sample.
		var deleted []int
		for col := 0; col < n; col++ {
			if del, obs := m.At(row, col); obs && del {
				deleted = append(deleted, col)
			}
		}
		for a := 0; a < len(deleted); a++ {
			for b := a; b < len(deleted); b++ {
				i, j := deleted[a], deleted[b]
				counts[i][j]++
				if i != j {
					counts[j][i]++
				}
			}
		}
	}

	observed := make([]int, n)
	for col := 0; col < n; col++ {
		observed[col] = m.ObservedCount(col)
	}

	return &CountMatrix{
		genes:       m.Genes(),
		counts:      counts,
		observed:    observed,
		sampleCount: m.SampleCount(),
	}
}

// Genes returns the gene metadata in matrix order.
func (cm *CountMatrix) Genes() []genome.Info { return cm.genes }

// At returns the co-deletion count for a gene pair.
func (cm *CountMatrix) At(i, j int) int { return cm.counts[i][j] }

// SampleCount returns the number of samples the counts were computed over.
func (cm *CountMatrix) SampleCount() int { return cm.sampleCount }

// Frequency is the per-gene deletion frequency with its supporting counts.
type Frequency struct {
	Gene      genome.Info
	Frequency float64 // deleted / observed
	Deleted   int
	Observed  int
}

// Frequencies returns per-gene deletion frequencies, highest first, ties
// broken by gene identity. The denominator is the per-gene observed sample
// count, so missing calls do not bias the estimate.
func (cm *CountMatrix) Frequencies() []Frequency {
	freqs := make([]Frequency, 0, len(cm.genes))
	for i, g := range cm.genes {
		f := Frequency{Gene: g, Deleted: cm.counts[i][i], Observed: cm.observed[i]}
		if f.Observed > 0 {
			f.Frequency = float64(f.Deleted) / float64(f.Observed)
		}
		freqs = append(freqs, f)
	}
	sort.SliceStable(freqs, func(i, j int) bool {
		if freqs[i].Frequency != freqs[j].Frequency {
			return freqs[i].Frequency > freqs[j].Frequency
		}
		return freqs[i].Gene.Gene.Less(freqs[j].Gene.Gene)
	})
	return freqs
}

// CondMatrix holds conditional co-deletion probabilities P(i|j). The matrix
// is asymmetric: P(i|j) and P(j|i) use different denominators. Entries with
// a zero denominator are undefined, which is distinct from probability 0.
type CondMatrix struct {
	genes   []genome.Info
	probs   [][]float64
	defined [][]bool
}

// ConditionalProbabilities derives P(i|j) = count(i,j) / count(j,j) from a
// count matrix. Columns for genes with zero deletions are undefined.
func ConditionalProbabilities(cm *CountMatrix) *CondMatrix {
	n := len(cm.genes)
	probs := make([][]float64, n)
	defined := make([][]bool, n)
	for i := range probs {
		probs[i] = make([]float64, n)
		defined[i] = make([]bool, n)
	}

	for j := 0; j < n; j++ {
		denom := cm.counts[j][j]
		if denom == 0 {
			continue // whole column undefined
		}
		for i := 0; i < n; i++ {
			probs[i][j] = float64(cm.counts[i][j]) / float64(denom)
			defined[i][j] = true
		}
	}

	return &CondMatrix{genes: cm.genes, probs: probs, defined: defined}
}

// Genes returns the gene metadata in matrix order.
func (c *CondMatrix) Genes() []genome.Info { return c.genes }

// At returns P(i|j) and whether it is defined.
func (c *CondMatrix) At(i, j int) (float64, bool) {
	return c.probs[i][j], c.defined[i][j]
}

// Pair is one unordered gene pair with its joint co-deletion statistics.
// GeneI always orders before GeneJ by gene identity.
type Pair struct {
	GeneI, GeneJ   genome.Info
	Count          int
	JointFrequency float64 // count / sample count
}

// TopPairs returns the n gene pairs with the highest joint co-deletion
// frequency, ties broken by gene identity so repeated runs produce the same
// order. n <= 0 returns all pairs.
func TopPairs(cm *CountMatrix, n int) []Pair {
	var pairs []Pair
	for i := 0; i < len(cm.genes); i++ {
		for j := i + 1; j < len(cm.genes); j++ {
			gi, gj := cm.genes[i], cm.genes[j]
			if gj.Gene.Less(gi.Gene) {
				gi, gj = gj, gi
			}
			p := Pair{GeneI: gi, GeneJ: gj, Count: cm.counts[i][j]}
			if cm.sampleCount > 0 {
				p.JointFrequency = float64(p.Count) / float64(cm.sampleCount)
			}
			pairs = append(pairs, p)
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		if pairs[a].JointFrequency != pairs[b].JointFrequency {
			return pairs[a].JointFrequency > pairs[b].JointFrequency
		}
		if pairs[a].GeneI.Gene != pairs[b].GeneI.Gene {
			return pairs[a].GeneI.Gene.Less(pairs[b].GeneI.Gene)
		}
		return pairs[a].GeneJ.Gene.Less(pairs[b].GeneJ.Gene)
	})

	if n > 0 && n < len(pairs) {
		pairs = pairs[:n]
	}
	return pairs
}
