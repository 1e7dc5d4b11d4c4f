// Package main provides the codel command-line tool.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/oncodel/codel/internal/genome"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Parse()

	if showVersion {
		fmt.Printf("codel version %s (%s) built %s\n", version, commit, date)
		return ExitSuccess
	}

	initConfig()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "batch":
		return runBatch(args[1:])
	case "aggregate":
		return runAggregate(args[1:])
	case "opportunities":
		return runOpportunities(args[1:])
	case "download":
		return runDownload(args[1:])
	case "config":
		return runConfig(args[1:])
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `codel - co-deletion statistics and synthetic-lethal opportunity ranking

Usage:
  codel [options] <command> [arguments]

Commands:
  batch          Compute per-chromosome co-deletion statistics for studies
  aggregate      Merge per-chromosome frequencies into a genome-wide table
  opportunities  Rank therapeutic opportunities from synthetic-lethal pairs
  download       Download the curated synthetic-lethal dataset
  config         Manage configuration
  help           Show this help message

Global Options:
  --version      Show version information

Examples:
  # One-time setup: fetch the curated synthetic-lethal pairs
  codel download

  # Process chromosome 13 of two prostate studies
  codel batch --studies prad_tcga,prad_mskcc --chromosomes 13

  # Build the genome-wide frequency table
  codel aggregate --study prad_tcga

  # Rank opportunities
  codel opportunities --study prad_tcga

For more information on a command, use:
  codel <command> --help
`)
}

// newLogger builds the CLI logger. Verbose switches to the development
// encoder with debug output.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	return cfg.Build()
}

// splitList parses a comma-separated flag value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseChromosomes expands the --chromosomes flag; "all" means every human
// chromosome.
func parseChromosomes(s string) ([]string, error) {
	if s == "" || s == "all" {
		return genome.Chromosomes, nil
	}
	chroms := splitList(s)
	for _, c := range chroms {
		if !genome.IsChromosome(c) {
			return nil, fmt.Errorf("unknown chromosome %q", c)
		}
	}
	return chroms, nil
}
