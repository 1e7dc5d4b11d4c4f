package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/oncodel/codel/internal/aggregate"
	"github.com/oncodel/codel/internal/opportunity"
	"github.com/oncodel/codel/internal/output"
	"github.com/oncodel/codel/internal/results"
	"github.com/oncodel/codel/internal/slpairs"
)

func runOpportunities(args []string) int {
	fs := flag.NewFlagSet("opportunities", flag.ExitOnError)

	var (
		study        string
		resultsPath  string
		pairsPath    string
		outputFile   string
		format       string
		fdr          float64
		minFreq      float64
		essentiality string
	)

	fs.StringVar(&study, "study", "", "Study identifier (required)")
	fs.StringVar(&resultsPath, "results", viper.GetString("results"), "Results DuckDB path (local or s3://)")
	fs.StringVar(&pairsPath, "pairs", defaultPairsPath(), "Curated synthetic-lethal CSV")
	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")
	fs.StringVar(&format, "f", "tab", "Output format: tab, csv")
	fs.Float64Var(&fdr, "fdr", viper.GetFloat64("fdr_threshold"), "FDR threshold for pairs")
	fs.Float64Var(&minFreq, "min-freq", viper.GetFloat64("min_deletion_frequency"), "Minimum deletion frequency")
	fs.StringVar(&essentiality, "essentiality", "all", "Target filter: all, essentialOnly, nonEssentialOnly")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Rank therapeutic opportunities by joining genome-wide deletion frequencies
with the curated synthetic-lethal gene pairs.

Usage:
  codel opportunities [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  codel opportunities --study prad_tcga
  codel opportunities --study prad_tcga --fdr 0.01 --min-freq 0.1
  codel opportunities --study prad_tcga --essentiality nonEssentialOnly -f csv -o opps.csv
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if study == "" {
		fmt.Fprintf(os.Stderr, "Error: --study is required\n\n")
		fs.Usage()
		return ExitUsage
	}

	filter, err := opportunity.ParseEssentialityFilter(essentiality)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsage
	}

	dataset, err := slpairs.Load(pairsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading pairs: %v\n", err)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Hint: fetch the dataset with: codel download\n")
		}
		return ExitError
	}

	store, err := results.Open(resultsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening results store: %v\n", err)
		return ExitError
	}
	defer store.Close()

	perChrom, err := store.StudyFrequencies(study)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	if len(perChrom) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no frequency tables for study %q; run 'codel batch' first\n", study)
		return ExitError
	}
	table, err := aggregate.Merge(study, perChrom)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	params := opportunity.Params{
		FDRThreshold:         fdr,
		MinDeletionFrequency: minFreq,
		Essentiality:         filter,
		Weights:              configuredWeights(),
	}

	res := opportunity.NewJoiner().Join(study, dataset.Pairs(), table.Records, params)

	out, cleanup, err := openOutput(outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer cleanup()

	sink, err := newSink(format, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	if err := output.WriteOpportunities(sink, res); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing table: %v\n", err)
		return ExitError
	}

	if len(res.Opportunities) == 0 {
		// Valid outcome, distinct from an error.
		fmt.Fprintf(os.Stderr, "No opportunities found for study %s with the current thresholds\n", study)
	} else {
		fmt.Fprintf(os.Stderr, "%d opportunities from %d curated pairs\n",
			len(res.Opportunities), len(dataset.Pairs()))
	}
	return ExitSuccess
}
