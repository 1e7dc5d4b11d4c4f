package results

import (
	"database/sql"
	"fmt"

	"github.com/oncodel/codel/internal/deletion"
	"github.com/oncodel/codel/internal/genome"
)

// StudyFrequencies reads back all persisted frequency tables for a study,
// keyed by chromosome. This is the aggregation input.
func (s *Store) StudyFrequencies(studyID string) (map[string][]deletion.Frequency, error) {
	rows, err := s.db.Query(
		`SELECT chromosome, gene_symbol, entrez_id, frequency, deleted, observed
		 FROM gene_frequencies WHERE study_id=?
		 ORDER BY chromosome, gene_symbol, entrez_id`, studyID)
	if err != nil {
		return nil, fmt.Errorf("query frequencies: %w", err)
	}
	defer rows.Close()

	perChrom := make(map[string][]deletion.Frequency)
	for rows.Next() {
		var chrom string
		var f deletion.Frequency
		if err := rows.Scan(&chrom, &f.Gene.Symbol, &f.Gene.EntrezID,
			&f.Frequency, &f.Deleted, &f.Observed); err != nil {
			return nil, fmt.Errorf("scan frequency: %w", err)
		}
		f.Gene.Chromosome = chrom
		perChrom[chrom] = append(perChrom[chrom], f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frequencies: %w", err)
	}
	return perChrom, nil
}

// ChromosomeFrequencies reads one persisted (study, chromosome) table.
func (s *Store) ChromosomeFrequencies(studyID, chromosome string) ([]deletion.Frequency, error) {
	perChrom, err := s.StudyFrequencies(studyID)
	if err != nil {
		return nil, err
	}
	return perChrom[chromosome], nil
}

// Conditional is one stored conditional-probability entry. Probability is
// invalid (NULL in the store) when the denominator gene had zero deletions.
type Conditional struct {
	GeneI, GeneJ genome.Gene
	Probability  sql.NullFloat64
}

// Conditionals reads the conditional-probability matrix entries for one
// (study, chromosome) in deterministic order.
func (s *Store) Conditionals(studyID, chromosome string) ([]Conditional, error) {
	rows, err := s.db.Query(
		`SELECT gene_i, entrez_i, gene_j, entrez_j, probability
		 FROM conditional_probabilities WHERE study_id=? AND chromosome=?
		 ORDER BY gene_i, entrez_i, gene_j, entrez_j`, studyID, chromosome)
	if err != nil {
		return nil, fmt.Errorf("query probabilities: %w", err)
	}
	defer rows.Close()

	var conds []Conditional
	for rows.Next() {
		var c Conditional
		if err := rows.Scan(&c.GeneI.Symbol, &c.GeneI.EntrezID,
			&c.GeneJ.Symbol, &c.GeneJ.EntrezID, &c.Probability); err != nil {
			return nil, fmt.Errorf("scan probability: %w", err)
		}
		conds = append(conds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate probabilities: %w", err)
	}
	return conds, nil
}

// Units reads the batch summary rows for one run.
func (s *Store) Units(runID string) ([]Unit, error) {
	rows, err := s.db.Query(
		`SELECT run_id, study_id, chromosome, status, detail, samples, genes, finished_at
		 FROM batch_units WHERE run_id=?
		 ORDER BY study_id, chromosome`, runID)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.RunID, &u.StudyID, &u.Chromosome, &u.Status,
			&u.Detail, &u.Samples, &u.Genes, &u.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}
	return units, nil
}
