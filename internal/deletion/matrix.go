// Package deletion builds binary deletion matrices from discrete copy-number
// calls and computes co-deletion statistics over them.
package deletion

import (
	"fmt"
	"sort"

	"github.com/oncodel/codel/internal/cbioportal"
	"github.com/oncodel/codel/internal/genome"
)

// Cell states. A gene without a call for a sample is missing, never intact:
// treating it as intact would deflate every frequency downstream.
const (
	cellMissing int8 = -1
	cellIntact  int8 = 0
	cellDeleted int8 = 1
)

// Config controls how copy-number calls map to deletion indicators.
type Config struct {
	// DeletionCutoff marks alteration <= cutoff as deleted. -1 counts
	// shallow and deep deletions, -2 deep deletions only.
	DeletionCutoff int
	// MinObservedFraction excludes genes observed in fewer than this
	// fraction of samples.
	MinObservedFraction float64
}

// DefaultConfig matches the upstream GISTIC coding: shallow and deep
// deletions count, genes must be observed in half the samples.
func DefaultConfig() Config {
	return Config{
		DeletionCutoff:      -1,
		MinObservedFraction: 0.5,
	}
}

// Matrix is a samples-by-genes deletion indicator table. Cells are ternary:
// deleted, intact, or missing. Columns keep chromosomal gene order.
type Matrix struct {
	samples []string
	genes   []genome.Info
	cells   [][]int8
}

// Excluded records a gene or sample dropped during matrix construction.
type Excluded struct {
	Gene   genome.Gene // zero value when a sample was excluded
	Sample string      // empty when a gene was excluded
	Reason string
}

// Build converts copy-number calls into a deletion matrix over the given
// gene set. Genes and samples with insufficient observed data are excluded
// and reported. Duplicate calls for a (sample, gene) pair are tolerated;
// any deletion among them wins.
func Build(calls []cbioportal.CopyNumberCall, genes []genome.Info, cfg Config) (*Matrix, []Excluded) {
	colByEntrez := make(map[int64]int, len(genes))
	for i, g := range genes {
		colByEntrez[g.EntrezID] = i
	}

	sampleSet := make(map[string]bool)
	for _, call := range calls {
		sampleSet[call.SampleID] = true
	}
	samples := make([]string, 0, len(sampleSet))
	for s := range sampleSet {
		samples = append(samples, s)
	}
	sort.Strings(samples)

	rowBySample := make(map[string]int, len(samples))
	for i, s := range samples {
		rowBySample[s] = i
	}

	cells := make([][]int8, len(samples))
	for i := range cells {
		row := make([]int8, len(genes))
		for j := range row {
			row[j] = cellMissing
		}
		cells[i] = row
	}

	for _, call := range calls {
		col, ok := colByEntrez[call.EntrezGeneID]
		if !ok {
			continue // gene outside the requested set
		}
		row := rowBySample[call.SampleID]
		if call.Alteration <= cfg.DeletionCutoff {
			cells[row][col] = cellDeleted
		} else if cells[row][col] != cellDeleted {
			cells[row][col] = cellIntact
		}
	}

	m := &Matrix{samples: samples, genes: genes, cells: cells}
	excluded := m.dropSparseGenes(cfg.MinObservedFraction)
	excluded = append(excluded, m.dropEmptySamples()...)
	return m, excluded
}

// dropSparseGenes removes columns observed in fewer than the required
// fraction of samples.
func (m *Matrix) dropSparseGenes(minFraction float64) []Excluded {
	if len(m.samples) == 0 {
		return nil
	}
	minObserved := minFraction * float64(len(m.samples))

	var excluded []Excluded
	var keptGenes []genome.Info
	var keptCols []int
	for j, g := range m.genes {
		observed := 0
		for i := range m.cells {
			if m.cells[i][j] != cellMissing {
				observed++
			}
		}
		if float64(observed) < minObserved {
			excluded = append(excluded, Excluded{
				Gene:   g.Gene,
				Reason: fmt.Sprintf("observed in %d of %d samples", observed, len(m.samples)),
			})
			continue
		}
		keptGenes = append(keptGenes, g)
		keptCols = append(keptCols, j)
	}

	if len(keptGenes) == len(m.genes) {
		return excluded
	}
	for i, row := range m.cells {
		newRow := make([]int8, len(keptCols))
		for k, j := range keptCols {
			newRow[k] = row[j]
		}
		m.cells[i] = newRow
	}
	m.genes = keptGenes
	return excluded
}

// dropEmptySamples removes rows with no observed cells left.
func (m *Matrix) dropEmptySamples() []Excluded {
	var excluded []Excluded
	var keptSamples []string
	var keptRows [][]int8
	for i, row := range m.cells {
		observed := false
		for _, c := range row {
			if c != cellMissing {
				observed = true
				break
			}
		}
		if !observed {
			excluded = append(excluded, Excluded{
				Sample: m.samples[i],
				Reason: "no observed copy-number calls",
			})
			continue
		}
		keptSamples = append(keptSamples, m.samples[i])
		keptRows = append(keptRows, row)
	}
	m.samples = keptSamples
	m.cells = keptRows
	return excluded
}

// Samples returns the sample barcodes in row order.
func (m *Matrix) Samples() []string { return m.samples }

// Genes returns the gene metadata in column order.
func (m *Matrix) Genes() []genome.Info { return m.genes }

// SampleCount returns the number of rows.
func (m *Matrix) SampleCount() int { return len(m.samples) }

// GeneCount returns the number of columns.
func (m *Matrix) GeneCount() int { return len(m.genes) }

// At reports whether the gene is deleted in the sample, and whether the
// cell was observed at all.
func (m *Matrix) At(row, col int) (deleted, observed bool) {
	c := m.cells[row][col]
	return c == cellDeleted, c != cellMissing
}

// ObservedCount returns how many samples have an observed call for a gene.
func (m *Matrix) ObservedCount(col int) int {
	n := 0
	for i := range m.cells {
		if m.cells[i][col] != cellMissing {
			n++
		}
	}
	return n
}

// DeletedCount returns how many samples carry a deletion of a gene.
func (m *Matrix) DeletedCount(col int) int {
	n := 0
	for i := range m.cells {
		if m.cells[i][col] == cellDeleted {
			n++
		}
	}
	return n
}
