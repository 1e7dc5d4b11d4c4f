package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/oncodel/codel/internal/batch"
	"github.com/oncodel/codel/internal/cbioportal"
	"github.com/oncodel/codel/internal/fetchcache"
	"github.com/oncodel/codel/internal/results"
)

func runBatch(args []string) int {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)

	var (
		studies     string
		studyList   string
		chromosomes string
		baseURL     string
		resultsPath string
		cacheDir    string
		genomeBuild string
		minSamples  int
		workers     int
		cutoff      int
		verbose     bool
	)

	fs.StringVar(&studies, "studies", "", "Comma-separated study identifiers")
	fs.StringVar(&studyList, "study-list", "", "CSV file with a study-identifier column")
	fs.StringVar(&chromosomes, "chromosomes", "all", "Comma-separated chromosomes, or 'all'")
	fs.StringVar(&baseURL, "api", viper.GetString("api.base_url"), "cBioPortal API base URL")
	fs.StringVar(&resultsPath, "results", viper.GetString("results"), "Results DuckDB path")
	fs.StringVar(&cacheDir, "cache-dir", filepath.Join(viper.GetString("data_dir"), "fetchcache"), "Response cache directory")
	fs.StringVar(&genomeBuild, "genome-build", "hg19", "Reference genome for gene coordinates")
	fs.IntVar(&minSamples, "min-samples", 10, "Skip studies with fewer copy-number samples")
	fs.IntVar(&workers, "workers", 4, "Concurrent (study, chromosome) units")
	fs.IntVar(&cutoff, "cutoff", -1, "Deletion cutoff: -1 shallow+deep, -2 deep only")
	fs.BoolVar(&verbose, "verbose", false, "Debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Compute per-(study, chromosome) co-deletion statistics and persist them.

Usage:
  codel batch [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  codel batch --studies prad_tcga --chromosomes 13
  codel batch --studies prad_tcga,prad_mskcc --chromosomes all
  codel batch --study-list tcga_studies.csv --chromosomes 13
  codel batch --studies prad_tcga --cutoff -2 --workers 2
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	studyIDs := splitList(studies)
	if studyList != "" {
		fromFile, err := readStudyList(studyList)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading study list: %v\n", err)
			return ExitError
		}
		studyIDs = append(studyIDs, fromFile...)
	}
	if len(studyIDs) == 0 {
		fmt.Fprintf(os.Stderr, "Error: --studies or --study-list is required\n\n")
		fs.Usage()
		return ExitUsage
	}

	chromList, err := parseChromosomes(chromosomes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsage
	}

	logger, err := newLogger(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer logger.Sync()

	cache, err := fetchcache.NewStore(cacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening fetch cache: %v\n", err)
		return ExitError
	}
	client := cbioportal.NewClient(baseURL, cache)
	client.SetLogger(logger)

	store, err := results.Open(resultsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening results store: %v\n", err)
		return ExitError
	}
	defer store.Close()

	cfg := batch.DefaultConfig()
	cfg.MinSamples = minSamples
	cfg.Workers = workers
	cfg.GenomeBuild = genomeBuild
	cfg.Deletion.DeletionCutoff = cutoff

	runner := batch.NewRunner(client, store, cfg)
	runner.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := runner.Run(ctx, studyIDs, chromList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	printSummary(summary)

	_, _, failed := summary.Counts()
	if failed > 0 {
		return ExitError
	}
	return ExitSuccess
}

// readStudyList reads study identifiers from a CSV: the column named
// "study" or ending in "_study" when a header is present, else the first
// column.
func readStudyList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	col := 0
	header := false
	for i, name := range first {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "study" || name == "studyid" || strings.HasSuffix(name, "_study") {
			col = i
			header = true
			break
		}
	}

	var ids []string
	if !header && len(first) > 0 {
		if id := strings.TrimSpace(first[0]); id != "" {
			ids = append(ids, id)
		}
	}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if col >= len(record) {
			continue
		}
		if id := strings.TrimSpace(record[col]); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func printSummary(s *batch.Summary) {
	fmt.Fprintf(os.Stderr, "\nRun %s finished in %s\n", s.RunID, s.Finished.Sub(s.Started).Round(10*time.Millisecond))
	for _, u := range s.Units {
		switch u.Status() {
		case "ok":
			fmt.Fprintf(os.Stderr, "  ok       %s chr%-3s %d samples, %d genes\n",
				u.StudyID, u.Chromosome, u.Samples, u.Genes)
		case "skipped":
			fmt.Fprintf(os.Stderr, "  skipped  %s chr%-3s %v\n", u.StudyID, u.Chromosome, u.Err)
		default:
			fmt.Fprintf(os.Stderr, "  failed   %s chr%-3s %v\n", u.StudyID, u.Chromosome, u.Err)
		}
	}
	ok, skipped, failed := s.Counts()
	fmt.Fprintf(os.Stderr, "%d ok, %d skipped, %d failed\n", ok, skipped, failed)
}
