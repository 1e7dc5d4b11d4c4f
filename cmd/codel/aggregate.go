package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/oncodel/codel/internal/aggregate"
	"github.com/oncodel/codel/internal/output"
	"github.com/oncodel/codel/internal/results"
)

func runAggregate(args []string) int {
	fs := flag.NewFlagSet("aggregate", flag.ExitOnError)

	var (
		study       string
		resultsPath string
		outputFile  string
		format      string
	)

	fs.StringVar(&study, "study", "", "Study identifier (required)")
	fs.StringVar(&resultsPath, "results", viper.GetString("results"), "Results DuckDB path (local or s3://)")
	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")
	fs.StringVar(&format, "f", "tab", "Output format: tab, csv")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Merge per-chromosome deletion-frequency tables into a genome-wide table.

Usage:
  codel aggregate [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  codel aggregate --study prad_tcga
  codel aggregate --study prad_tcga -f csv -o prad_frequencies.csv
  codel aggregate --study prad_tcga --results s3://bucket/results.duckdb
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
	if err := output.WriteFrequencyTable(sink, table); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing table: %v\n", err)
		return ExitError
	}

	fmt.Fprintf(os.Stderr, "%d genes across chromosomes %s\n",
		len(table.Records), strings.Join(table.Chromosomes, ","))
	if !table.Complete() {
		fmt.Fprintf(os.Stderr, "Note: partial genome, %d of 24 chromosomes available\n",
			len(table.Chromosomes))
	}
	return ExitSuccess
}

// openOutput opens the output file, or stdout for an empty path.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// newSink picks the table sink for an output format.
func newSink(format string, w io.Writer) (output.TableSink, error) {
	switch format {
	case "tab":
		return output.NewTabSink(w), nil
	case "csv":
		return output.NewCSVSink(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}
