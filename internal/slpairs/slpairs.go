// Package slpairs loads the curated synthetic-lethal gene-pair dataset.
//
// The source CSV carries one row per (gene pair, cell line) measurement from
// a combinatorial CRISPR screen. Loading collapses measurements into one
// Pair per sorted gene pair: mean genetic-interaction score, most
// significant FDR, per-gene essentiality annotations, and the set of cell
// lines and cancer types the pair was validated in.
package slpairs

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// depmapPanelSize is the reference cell-line panel the dependency counts
// are reported against ("N/1086" strings).
const depmapPanelSize = 1086

// Pair is one curated synthetic-lethal gene pair, collapsed across all cell
// lines it was measured in. Immutable after loading.
type Pair struct {
	GeneA string
	GeneB string
	// GIScore is the mean genetic-interaction score; negative means
	// synthetic lethal.
	GIScore float64
	// FDR is the most significant false discovery rate across
	// measurements.
	FDR float64
	// Per-gene annotations: common-essential flags and the fraction of
	// the dependency panel dependent on the gene.
	AEssential          bool
	BEssential          bool
	ADependencyFraction float64
	BDependencyFraction float64
	// Validation breadth across the screen's reference cell lines.
	ValidatedCellLines   []string
	ValidatedCancerTypes []string
}

// HitCount returns the number of distinct cell lines the pair was
// validated in.
func (p Pair) HitCount() int {
	return len(p.ValidatedCellLines)
}

// Key returns the sorted "A|B" pair identifier.
func (p Pair) Key() string {
	return p.GeneA + "|" + p.GeneB
}

// Dataset holds the loaded pairs in deterministic order.
type Dataset struct {
	pairs []Pair
}

// Pairs returns all pairs, sorted by gene pair.
func (d *Dataset) Pairs() []Pair {
	return d.pairs
}

// FilterFDR returns the pairs with FDR at or below threshold.
func (d *Dataset) FilterFDR(threshold float64) []Pair {
	var out []Pair
	for _, p := range d.pairs {
		if p.FDR <= threshold {
			out = append(out, p)
		}
	}
	return out
}

// Load reads the curated CSV from path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open synthetic-lethal dataset: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// accumulator collects per-pair state while scanning measurement rows.
type accumulator struct {
	pair        Pair
	giSum       float64
	giN         int
	cellLines   map[string]bool
	cancerTypes map[string]bool
}

// Read parses the curated CSV from r.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read synthetic-lethal header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	required := []string{
		"sorted_gene_pair", "targetA", "targetB", "mean_norm_gi", "fdr",
		"cancer_type", "cell_line_label",
		"targetA__is_common_essential_bagel2", "targetB__is_common_essential_bagel2",
		"targetA__n_depmap_dependent_cell_lines", "targetB__n_depmap_dependent_cell_lines",
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("synthetic-lethal dataset: missing column %q", name)
		}
	}

	acc := make(map[string]*accumulator)
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("synthetic-lethal dataset line %d: %w", line, err)
		}

		field := func(name string) string {
			i := col[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		key := field("sorted_gene_pair")
		if key == "" {
			continue
		}

		gi, err := strconv.ParseFloat(field("mean_norm_gi"), 64)
		if err != nil {
			return nil, fmt.Errorf("synthetic-lethal dataset line %d: bad gi score %q", line, field("mean_norm_gi"))
		}
		fdr, err := strconv.ParseFloat(field("fdr"), 64)
		if err != nil {
			return nil, fmt.Errorf("synthetic-lethal dataset line %d: bad fdr %q", line, field("fdr"))
		}

		a, ok := acc[key]
		if !ok {
			a = &accumulator{
				pair: Pair{
					GeneA:               field("targetA"),
					GeneB:               field("targetB"),
					FDR:                 fdr,
					AEssential:          parseBool(field("targetA__is_common_essential_bagel2")),
					BEssential:          parseBool(field("targetB__is_common_essential_bagel2")),
					ADependencyFraction: parseDependency(field("targetA__n_depmap_dependent_cell_lines")),
					BDependencyFraction: parseDependency(field("targetB__n_depmap_dependent_cell_lines")),
				},
				cellLines:   make(map[string]bool),
				cancerTypes: make(map[string]bool),
			}
			acc[key] = a
		}

		a.giSum += gi
		a.giN++
		if fdr < a.pair.FDR {
			a.pair.FDR = fdr
		}
		if cl := field("cell_line_label"); cl != "" {
			a.cellLines[cl] = true
		}
		if ct := field("cancer_type"); ct != "" {
			a.cancerTypes[ct] = true
		}
	}

	pairs := make([]Pair, 0, len(acc))
	for _, a := range acc {
		p := a.pair
		p.GIScore = a.giSum / float64(a.giN)
		p.ValidatedCellLines = sortedKeys(a.cellLines)
		p.ValidatedCancerTypes = sortedKeys(a.cancerTypes)
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].GeneA != pairs[j].GeneA {
			return pairs[i].GeneA < pairs[j].GeneA
		}
		return pairs[i].GeneB < pairs[j].GeneB
	})

	return &Dataset{pairs: pairs}, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// parseDependency converts an "N/1086" dependency count into a fraction.
// Absent or unparsable values mean no reported dependency, not panel-wide
// dependency.
func parseDependency(s string) float64 {
	if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "nan") {
		return 0
	}
	num, denom, ok := strings.Cut(s, "/")
	if !ok {
		return 0
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(denom), 64)
	if err != nil || d == 0 {
		d = depmapPanelSize
	}
	return n / d
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
