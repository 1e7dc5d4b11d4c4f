// Package genome provides gene identity and genomic coordinate types.
package genome

import "fmt"

// Gene identifies a gene by HUGO symbol and Entrez ID.
// It is a comparable value type: use it directly as a map key and compare
// with ==, never through a formatted string.
type Gene struct {
	Symbol   string // HUGO symbol (e.g., RB1)
	EntrezID int64  // Entrez gene ID (e.g., 5925)
}

// String renders the gene for display. Never parse this back.
func (g Gene) String() string {
	return fmt.Sprintf("%s (%d)", g.Symbol, g.EntrezID)
}

// Less orders genes by symbol, then Entrez ID. Used for deterministic
// tie-breaking in sorted outputs.
func (g Gene) Less(other Gene) bool {
	if g.Symbol != other.Symbol {
		return g.Symbol < other.Symbol
	}
	return g.EntrezID < other.EntrezID
}

// Info holds gene metadata resolved from the reference genome.
// Start and End of 0 mean the coordinate is unknown, not position zero.
type Info struct {
	Gene
	Chromosome string
	Cytoband   string
	Start      int64 // 1-based, 0 = unknown
	End        int64 // 1-based inclusive, 0 = unknown
}

// HasCoordinates reports whether both genomic coordinates are known.
func (i Info) HasCoordinates() bool {
	return i.Start > 0 && i.End > 0
}

// Distance returns the gap in base pairs between two genes on the same
// chromosome, and false when either gene has unknown coordinates or the
// genes are on different chromosomes. Overlapping genes have distance 0.
func Distance(a, b Info) (int64, bool) {
	if !a.HasCoordinates() || !b.HasCoordinates() {
		return 0, false
	}
	if a.Chromosome != b.Chromosome {
		return 0, false
	}
	if a.Start > b.Start {
		a, b = b, a
	}
	if b.Start <= a.End {
		return 0, true
	}
	return b.Start - a.End, true
}
