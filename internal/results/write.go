package results

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/oncodel/codel/internal/deletion"
	"github.com/oncodel/codel/internal/genome"
)

// ErrReadOnly is returned by write methods on a read-only attached store.
var ErrReadOnly = fmt.Errorf("results: store attached read-only")

// appender opens a DuckDB appender on one table.
func (s *Store) appender(table string) (*goduckdb.Appender, func(), error) {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("get connection: %w", err)
	}

	var app *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		app, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("create appender for %s: %w", table, err)
	}

	return app, func() {
		app.Close()
		conn.Close()
	}, nil
}

// WriteGenes upserts gene metadata. Zero start/end means the coordinates are
// unknown and is stored as NULL.
func (s *Store) WriteGenes(genes []genome.Info) error {
	if s.readOnly {
		return ErrReadOnly
	}
	for _, g := range genes {
		var start, end any
		if g.HasCoordinates() {
			start, end = g.Start, g.End
		}
		_, err := s.db.Exec(
			`INSERT OR REPLACE INTO genes VALUES (?, ?, ?, ?, ?, ?)`,
			g.Symbol, g.EntrezID, g.Chromosome, g.Cytoband, start, end)
		if err != nil {
			return fmt.Errorf("write gene %s: %w", g.Gene, err)
		}
	}
	return nil
}

// WriteFrequencies replaces the frequency table for one (study, chromosome).
func (s *Store) WriteFrequencies(studyID, chromosome string, freqs []deletion.Frequency) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if _, err := s.db.Exec(
		`DELETE FROM gene_frequencies WHERE study_id=? AND chromosome=?`,
		studyID, chromosome); err != nil {
		return fmt.Errorf("clear frequencies: %w", err)
	}

	app, done, err := s.appender("gene_frequencies")
	if err != nil {
		return err
	}
	defer done()

	for _, f := range freqs {
		if err := app.AppendRow(
			studyID, chromosome, f.Gene.Symbol, f.Gene.EntrezID,
			f.Frequency, int32(f.Deleted), int32(f.Observed),
		); err != nil {
			return fmt.Errorf("append frequency: %w", err)
		}
	}
	return app.Flush()
}

// WriteCoDeletions replaces the co-deletion counts for one
// (study, chromosome). Only the upper triangle including the diagonal is
// stored; counts are symmetric.
func (s *Store) WriteCoDeletions(studyID, chromosome string, cm *deletion.CountMatrix) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if _, err := s.db.Exec(
		`DELETE FROM codeletion_counts WHERE study_id=? AND chromosome=?`,
		studyID, chromosome); err != nil {
		return fmt.Errorf("clear counts: %w", err)
	}

	app, done, err := s.appender("codeletion_counts")
	if err != nil {
		return err
	}
	defer done()

	genes := cm.Genes()
	for i := range genes {
		for j := i; j < len(genes); j++ {
			if err := app.AppendRow(
				studyID, chromosome,
				genes[i].Symbol, genes[i].EntrezID,
				genes[j].Symbol, genes[j].EntrezID,
				int32(cm.At(i, j)), int32(cm.SampleCount()),
			); err != nil {
				return fmt.Errorf("append count: %w", err)
			}
		}
	}
	return app.Flush()
}

// WriteConditionals replaces the conditional-probability table for one
// (study, chromosome). Undefined entries become NULL; the full asymmetric
// matrix is stored because P(i|j) and P(j|i) differ.
func (s *Store) WriteConditionals(studyID, chromosome string, pm *deletion.CondMatrix) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if _, err := s.db.Exec(
		`DELETE FROM conditional_probabilities WHERE study_id=? AND chromosome=?`,
		studyID, chromosome); err != nil {
		return fmt.Errorf("clear probabilities: %w", err)
	}

	app, done, err := s.appender("conditional_probabilities")
	if err != nil {
		return err
	}
	defer done()

	genes := pm.Genes()
	for i := range genes {
		for j := range genes {
			var prob any
			if p, ok := pm.At(i, j); ok {
				prob = p
			}
			if err := app.AppendRow(
				studyID, chromosome,
				genes[i].Symbol, genes[i].EntrezID,
				genes[j].Symbol, genes[j].EntrezID,
				prob,
			); err != nil {
				return fmt.Errorf("append probability: %w", err)
			}
		}
	}
	return app.Flush()
}

// Unit is one batch summary row: one (study, chromosome) processed, skipped,
// or failed.
type Unit struct {
	RunID      string
	StudyID    string
	Chromosome string
	Status     string // "ok", "skipped", "failed"
	Detail     string // skip/failure reason, empty on success
	Samples    int
	Genes      int
	FinishedAt time.Time
}

// RecordUnit appends one batch summary row.
func (s *Store) RecordUnit(u Unit) error {
	if s.readOnly {
		return ErrReadOnly
	}
	_, err := s.db.Exec(
		`INSERT INTO batch_units VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.RunID, u.StudyID, u.Chromosome, u.Status, u.Detail,
		u.Samples, u.Genes, u.FinishedAt)
	if err != nil {
		return fmt.Errorf("record unit: %w", err)
	}
	return nil
}
