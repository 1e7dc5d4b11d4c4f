package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Curated synthetic-lethal dataset (Harle et al. 2025, Genome Biology,
// doi:10.1186/s13059-025-03737-w).
const (
	pairsFileName   = "SyntheticLethalData_Harle_2025.csv"
	defaultPairsURL = "https://tcga-codeletion-data.s3.amazonaws.com/synthetic_lethality/" + pairsFileName
)

// defaultPairsPath is where the dataset lands after 'codel download'.
func defaultPairsPath() string {
	return filepath.Join(viper.GetString("data_dir"), pairsFileName)
}

func runDownload(args []string) int {
	fs := flag.NewFlagSet("download", flag.ExitOnError)

	var (
		url       string
		outputDir string
	)

	fs.StringVar(&url, "url", defaultPairsURL, "Dataset URL")
	fs.StringVar(&outputDir, "output", viper.GetString("data_dir"), "Output directory")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Download the curated synthetic-lethal gene-pair dataset.

Usage:
  codel download [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Download to the default data directory
  codel download

  # Download to a custom directory
  codel download --output /data/codel

The dataset is Harle et al. 2025: 472 gene pairs screened across 27 cancer
cell lines. After downloading, 'codel opportunities' finds it automatically.
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create directory %s: %v\n", outputDir, err)
		return ExitError
	}

	dest := filepath.Join(outputDir, pairsFileName)
	fmt.Printf("Downloading synthetic-lethal pairs...\n")
	fmt.Printf("Destination: %s\n\n", dest)

	if err := downloadFile(url, dest); err != nil {
		fmt.Fprintf(os.Stderr, "Error downloading dataset: %v\n", err)
		return ExitError
	}

	fmt.Printf("\nDownload complete!\n")
	fmt.Printf("To rank opportunities, run:\n")
	fmt.Printf("  codel opportunities --study <study-id>\n")
	return ExitSuccess
}

// downloadFile downloads a file from URL to the destination path with
// progress. Writes go to a temp file renamed into place on success.
func downloadFile(url, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		fmt.Printf("  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Printf("  Downloading %s...\n", filepath.Base(destPath))

	client := &http.Client{
		Timeout: 10 * time.Minute,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	var downloaded int64
	pw := &progressWriter{
		total:      resp.ContentLength,
		downloaded: &downloaded,
		lastPrint:  time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Printf("    Done: %s\n", formatSize(downloaded))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	total      int64
	downloaded *int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	*pw.downloaded += int64(n)

	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(*pw.downloaded) / float64(pw.total) * 100
			fmt.Printf("\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(*pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Printf("\r    Progress: %s  ", formatSize(*pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
