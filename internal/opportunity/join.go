package opportunity

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/oncodel/codel/internal/genome"
	"github.com/oncodel/codel/internal/slpairs"
)

// EssentialityFilter restricts opportunities by the target gene's
// common-essential flag.
type EssentialityFilter string

const (
	FilterAll              EssentialityFilter = "all"
	FilterEssentialOnly    EssentialityFilter = "essentialOnly"
	FilterNonEssentialOnly EssentialityFilter = "nonEssentialOnly"
)

// ParseEssentialityFilter validates a filter name.
func ParseEssentialityFilter(s string) (EssentialityFilter, error) {
	switch EssentialityFilter(s) {
	case FilterAll, FilterEssentialOnly, FilterNonEssentialOnly:
		return EssentialityFilter(s), nil
	}
	return "", fmt.Errorf("unknown essentiality filter %q", s)
}

// Params are the join filters. Zero thresholds are legal (no filtering).
type Params struct {
	FDRThreshold         float64
	MinDeletionFrequency float64
	Essentiality         EssentialityFilter
	Weights              Weights
}

// DefaultParams mirrors the source analysis defaults: FDR 5%, minimum
// deletion frequency 5%, no essentiality restriction.
func DefaultParams() Params {
	return Params{
		FDRThreshold:         0.05,
		MinDeletionFrequency: 0.05,
		Essentiality:         FilterAll,
		Weights:              DefaultWeights(),
	}
}

// GeneFrequency is one genome-wide deletion-frequency record.
type GeneFrequency struct {
	Gene       genome.Gene
	Chromosome string
	Frequency  float64
}

// Opportunity is a scored, directional target recommendation: DeletedGene
// is lost in tumors, TargetGene is its synthetic-lethal partner to inhibit.
// Opportunities are derived per request and never persisted.
type Opportunity struct {
	DeletedGene       genome.Gene
	TargetGene        string
	DeletionFrequency float64
	GIScore           float64
	FDR               float64
	TherapeuticScore  float64

	EssentialityWeight float64
	ContextWeight      float64

	TargetEssential          bool
	TargetDependencyFraction float64
	HitCount                 int
	ValidatedCancerTypes     []string

	// Provenance.
	StudyID    string
	SourcePair string // sorted "A|B" pair key
}

// Result is the ranked opportunity list with the parameters that produced
// it. An empty Opportunities slice means no pair cleared the filters, which
// is a valid outcome, not an error.
type Result struct {
	StudyID       string
	Params        Params
	Opportunities []Opportunity
}

// Joiner computes opportunity rankings.
type Joiner struct {
	logger *zap.Logger
}

// NewJoiner creates a join engine.
func NewJoiner() *Joiner {
	return &Joiner{logger: zap.NewNop()}
}

// SetLogger sets the logger for join diagnostics.
func (j *Joiner) SetLogger(l *zap.Logger) {
	j.logger = l
}

// Join filters pairs by FDR, emits up to two directional opportunities per
// surviving pair (one per side clearing the deletion-frequency threshold),
// applies the essentiality filter to the target gene, scores, and sorts.
//
// A gene referenced by a pair but absent from freqs is skipped for that
// side: absence of frequency data is not frequency zero.
func (j *Joiner) Join(studyID string, pairs []slpairs.Pair, freqs []GeneFrequency, params Params) Result {
	bySymbol := make(map[string]GeneFrequency, len(freqs))
	for _, f := range freqs {
		if _, ok := bySymbol[f.Gene.Symbol]; !ok {
			bySymbol[f.Gene.Symbol] = f
		}
	}

	var opps []Opportunity
	kept := 0
	for _, p := range pairs {
		if p.FDR > params.FDRThreshold {
			continue
		}
		kept++

		// A deleted, target B.
		if f, ok := bySymbol[p.GeneA]; ok && f.Frequency >= params.MinDeletionFrequency {
			if opp, ok := j.emit(studyID, p, f, p.GeneB, p.BEssential, p.BDependencyFraction, params); ok {
				opps = append(opps, opp)
			}
		}
		// B deleted, target A.
		if f, ok := bySymbol[p.GeneB]; ok && f.Frequency >= params.MinDeletionFrequency {
			if opp, ok := j.emit(studyID, p, f, p.GeneA, p.AEssential, p.ADependencyFraction, params); ok {
				opps = append(opps, opp)
			}
		}
	}

	sortOpportunities(opps)

	j.logger.Info("joined synthetic-lethal pairs",
		zap.String("study", studyID),
		zap.Int("pairsPastFDR", kept),
		zap.Int("opportunities", len(opps)))

	return Result{StudyID: studyID, Params: params, Opportunities: opps}
}

func (j *Joiner) emit(studyID string, p slpairs.Pair, deleted GeneFrequency, target string, targetEssential bool, targetDependency float64, params Params) (Opportunity, bool) {
	switch params.Essentiality {
	case FilterEssentialOnly:
		if !targetEssential {
			return Opportunity{}, false
		}
	case FilterNonEssentialOnly:
		if targetEssential {
			return Opportunity{}, false
		}
	}

	w := params.Weights
	return Opportunity{
		DeletedGene:              deleted.Gene,
		TargetGene:               target,
		DeletionFrequency:        deleted.Frequency,
		GIScore:                  p.GIScore,
		FDR:                      p.FDR,
		TherapeuticScore:         w.Score(deleted.Frequency, p.GIScore, targetEssential, targetDependency, p.HitCount()),
		EssentialityWeight:       w.EssentialityWeight(targetEssential, targetDependency),
		ContextWeight:            w.ContextWeight(p.HitCount()),
		TargetEssential:          targetEssential,
		TargetDependencyFraction: targetDependency,
		HitCount:                 p.HitCount(),
		ValidatedCancerTypes:     p.ValidatedCancerTypes,
		StudyID:                  studyID,
		SourcePair:               p.Key(),
	}, true
}

// sortOpportunities orders by score descending, then deletion frequency
// descending, then deleted-gene identity, then target. The full tie-break
// chain makes repeated runs byte-identical.
func sortOpportunities(opps []Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		a, b := opps[i], opps[j]
		if a.TherapeuticScore != b.TherapeuticScore {
			return a.TherapeuticScore > b.TherapeuticScore
		}
		if a.DeletionFrequency != b.DeletionFrequency {
			return a.DeletionFrequency > b.DeletionFrequency
		}
		if a.DeletedGene != b.DeletedGene {
			return a.DeletedGene.Less(b.DeletedGene)
		}
		return a.TargetGene < b.TargetGene
	})
}
