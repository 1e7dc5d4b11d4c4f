// Package aggregate merges per-chromosome deletion-frequency tables into one
// genome-wide table for a study.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/oncodel/codel/internal/deletion"
	"github.com/oncodel/codel/internal/genome"
	"github.com/oncodel/codel/internal/opportunity"
)

// SchemaMismatchError reports a gene that appears in more than one
// chromosome's frequency table. Per-chromosome tables partition the genome,
// so a duplicate means a malformed input and the aggregation must not
// silently drop or average it.
type SchemaMismatchError struct {
	Gene            genome.Gene
	FirstChromosome string
	Chromosome      string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("aggregate: gene %s present in chromosome %s and chromosome %s tables",
		e.Gene, e.FirstChromosome, e.Chromosome)
}

// Table is a genome-wide deletion-frequency table for one study.
// Chromosomes records which per-chromosome tables contributed, in karyotype
// order; a partial genome (some chromosomes unavailable) is a valid table.
type Table struct {
	StudyID     string
	Chromosomes []string
	Records     []opportunity.GeneFrequency
}

// Merge concatenates per-chromosome frequency tables, keyed by chromosome
// name, into one genome-wide table. Records are ordered by gene identity.
// A gene appearing under two chromosomes fails the whole merge with a
// SchemaMismatchError.
func Merge(studyID string, perChromosome map[string][]deletion.Frequency) (*Table, error) {
	t := &Table{StudyID: studyID}
	seen := make(map[genome.Gene]string)

	for _, chrom := range genome.Chromosomes {
		freqs, ok := perChromosome[chrom]
		if !ok {
			continue
		}
		t.Chromosomes = append(t.Chromosomes, chrom)
		for _, f := range freqs {
			g := f.Gene.Gene
			if first, dup := seen[g]; dup {
				return nil, &SchemaMismatchError{Gene: g, FirstChromosome: first, Chromosome: chrom}
			}
			seen[g] = chrom
			t.Records = append(t.Records, opportunity.GeneFrequency{
				Gene:       g,
				Chromosome: chrom,
				Frequency:  f.Frequency,
			})
		}
	}

	for chrom := range perChromosome {
		if !genome.IsChromosome(chrom) {
			return nil, fmt.Errorf("aggregate: unknown chromosome %q", chrom)
		}
	}

	sort.SliceStable(t.Records, func(i, j int) bool {
		return t.Records[i].Gene.Less(t.Records[j].Gene)
	})
	return t, nil
}

// Complete reports whether all 24 chromosomes contributed.
func (t *Table) Complete() bool {
	return len(t.Chromosomes) == len(genome.Chromosomes)
}

// Lookup returns the frequency record for a gene symbol.
func (t *Table) Lookup(symbol string) (opportunity.GeneFrequency, bool) {
	for _, r := range t.Records {
		if r.Gene.Symbol == symbol {
			return r, true
		}
	}
	return opportunity.GeneFrequency{}, false
}
