// Package batch runs the per-(study, chromosome) pipeline across a study
// list: fetch copy-number calls, build the deletion matrix, compute
// co-deletion statistics, and persist everything to the results store.
// Failures are isolated per unit; the run always produces a summary.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oncodel/codel/internal/cbioportal"
	"github.com/oncodel/codel/internal/deletion"
	"github.com/oncodel/codel/internal/genome"
	"github.com/oncodel/codel/internal/results"
)

// Fetcher is the upstream data access the runner needs. *cbioportal.Client
// satisfies it.
type Fetcher interface {
	MolecularProfiles(ctx context.Context, studyID string) ([]cbioportal.MolecularProfile, error)
	SampleLists(ctx context.Context, studyID string) ([]cbioportal.SampleList, error)
	ChromosomeGenes(ctx context.Context, genomeBuild, chrom string) ([]genome.Info, error)
	DiscreteCopyNumber(ctx context.Context, profileID, sampleListID string, entrezIDs []int64) ([]cbioportal.CopyNumberCall, error)
}

// Config controls a batch run.
type Config struct {
	// MinSamples skips studies with fewer copy-number samples.
	MinSamples int
	// Workers bounds concurrent units. Units hit a shared rate-limited API,
	// so the pool stays small.
	Workers int
	// GenomeBuild names the reference genome for gene coordinates.
	GenomeBuild string
	// Deletion configures the matrix construction.
	Deletion deletion.Config
}

// DefaultConfig returns the standard batch settings.
func DefaultConfig() Config {
	return Config{
		MinSamples:  10,
		Workers:     4,
		GenomeBuild: "hg19",
		Deletion:    deletion.DefaultConfig(),
	}
}

// Unit is one (study, chromosome) processing unit.
type Unit struct {
	StudyID    string
	Chromosome string
}

// UnitResult records the outcome of one unit.
type UnitResult struct {
	Unit
	Samples int
	Genes   int
	Skipped bool
	Err     error
}

// Status renders the outcome for the summary table.
func (r UnitResult) Status() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Err != nil:
		return "failed"
	default:
		return "ok"
	}
}

// Summary is the outcome of a whole run. Per-unit errors never abort the
// run; they are recorded here.
type Summary struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Units    []UnitResult
}

// Counts returns how many units succeeded, were skipped, and failed.
func (s *Summary) Counts() (ok, skipped, failed int) {
	for _, u := range s.Units {
		switch u.Status() {
		case "ok":
			ok++
		case "skipped":
			skipped++
		default:
			failed++
		}
	}
	return
}

// Runner executes batch runs.
type Runner struct {
	fetcher Fetcher
	store   *results.Store
	cfg     Config
	logger  *zap.Logger
	newID   func() string
}

// NewRunner creates a runner writing to store.
func NewRunner(fetcher Fetcher, store *results.Store, cfg Config) *Runner {
	return &Runner{
		fetcher: fetcher,
		store:   store,
		cfg:     cfg,
		logger:  zap.NewNop(),
		newID:   uuid.NewString,
	}
}

// SetLogger sets the logger for run progress.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Run processes every (study, chromosome) combination and records each
// outcome in the results store under a fresh run ID.
func (r *Runner) Run(ctx context.Context, studies, chromosomes []string) (*Summary, error) {
	for _, chrom := range chromosomes {
		if !genome.IsChromosome(chrom) {
			return nil, fmt.Errorf("unknown chromosome %q", chrom)
		}
	}

	summary := &Summary{RunID: r.newID(), Started: time.Now()}

	var units []Unit
	for _, study := range studies {
		for _, chrom := range chromosomes {
			units = append(units, Unit{StudyID: study, Chromosome: chrom})
		}
	}

	r.logger.Info("starting batch run",
		zap.String("run", summary.RunID),
		zap.Int("units", len(units)),
		zap.Int("workers", r.cfg.Workers))

	summary.Units = r.runUnits(ctx, units)
	summary.Finished = time.Now()

	for _, u := range summary.Units {
		detail := ""
		if u.Err != nil {
			detail = u.Err.Error()
		}
		if err := r.store.RecordUnit(results.Unit{
			RunID:      summary.RunID,
			StudyID:    u.StudyID,
			Chromosome: u.Chromosome,
			Status:     u.Status(),
			Detail:     detail,
			Samples:    u.Samples,
			Genes:      u.Genes,
			FinishedAt: summary.Finished,
		}); err != nil {
			return nil, fmt.Errorf("record summary: %w", err)
		}
	}

	ok, skipped, failed := summary.Counts()
	r.logger.Info("batch run finished",
		zap.String("run", summary.RunID),
		zap.Int("ok", ok),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed))
	return summary, nil
}

// processUnit runs the full pipeline for one (study, chromosome).
func (r *Runner) processUnit(ctx context.Context, u Unit) UnitResult {
	res := UnitResult{Unit: u}

	profiles, err := r.fetcher.MolecularProfiles(ctx, u.StudyID)
	if err != nil {
		res.Err = fmt.Errorf("molecular profiles: %w", err)
		return res
	}
	profileID, err := cbioportal.SelectCNAProfile(profiles)
	if err != nil {
		res.Err = err
		return res
	}

	lists, err := r.fetcher.SampleLists(ctx, u.StudyID)
	if err != nil {
		res.Err = fmt.Errorf("sample lists: %w", err)
		return res
	}
	listID, err := cbioportal.SelectCNASampleList(lists)
	if err != nil {
		res.Err = err
		return res
	}
	for _, sl := range lists {
		if sl.SampleListID == listID && sl.SampleCount > 0 && sl.SampleCount < r.cfg.MinSamples {
			res.Skipped = true
			res.Err = &InsufficientSampleError{
				StudyID: u.StudyID, Samples: sl.SampleCount, Minimum: r.cfg.MinSamples,
			}
			return res
		}
	}

	genes, err := r.fetcher.ChromosomeGenes(ctx, r.cfg.GenomeBuild, u.Chromosome)
	if err != nil {
		res.Err = fmt.Errorf("chromosome genes: %w", err)
		return res
	}
	if len(genes) == 0 {
		res.Err = fmt.Errorf("no genes on chromosome %s", u.Chromosome)
		return res
	}

	entrezIDs := make([]int64, len(genes))
	for i, g := range genes {
		entrezIDs[i] = g.EntrezID
	}
	calls, err := r.fetcher.DiscreteCopyNumber(ctx, profileID, listID, entrezIDs)
	if err != nil {
		res.Err = fmt.Errorf("copy-number calls: %w", err)
		return res
	}

	matrix, excluded := deletion.Build(calls, genes, r.cfg.Deletion)
	if matrix.SampleCount() < r.cfg.MinSamples {
		res.Skipped = true
		res.Err = &InsufficientSampleError{
			StudyID: u.StudyID, Samples: matrix.SampleCount(), Minimum: r.cfg.MinSamples,
		}
		return res
	}
	res.Samples = matrix.SampleCount()
	res.Genes = matrix.GeneCount()

	cm := deletion.CountCoDeletions(matrix)
	pm := deletion.ConditionalProbabilities(cm)

	if err := r.store.WriteGenes(matrix.Genes()); err != nil {
		res.Err = err
		return res
	}
	if err := r.store.WriteFrequencies(u.StudyID, u.Chromosome, cm.Frequencies()); err != nil {
		res.Err = err
		return res
	}
	if err := r.store.WriteCoDeletions(u.StudyID, u.Chromosome, cm); err != nil {
		res.Err = err
		return res
	}
	if err := r.store.WriteConditionals(u.StudyID, u.Chromosome, pm); err != nil {
		res.Err = err
		return res
	}

	r.logger.Info("processed unit",
		zap.String("study", u.StudyID),
		zap.String("chromosome", u.Chromosome),
		zap.Int("samples", res.Samples),
		zap.Int("genes", res.Genes),
		zap.Int("excludedGenes", len(excluded)))
	return res
}

// IsSkip reports whether a unit error is a recorded skip rather than a
// failure.
func IsSkip(err error) bool {
	var ise *InsufficientSampleError
	return errors.As(err, &ise)
}
