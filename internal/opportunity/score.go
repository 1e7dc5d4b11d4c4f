// Package opportunity ranks therapeutic opportunities by joining genome-wide
// deletion frequencies with curated synthetic-lethal gene pairs.
package opportunity

// Weights parameterizes the therapeutic score. The defaults are the tuned
// heuristic values from the source screen analysis; they are configuration,
// not derived constants, so keep them adjustable.
type Weights struct {
	// CommonEssential applies when the target gene is flagged common
	// essential across the dependency panel.
	CommonEssential float64 `mapstructure:"common_essential"`
	// BroadDependency applies when the target's dependency fraction
	// exceeds DependencyThreshold.
	BroadDependency float64 `mapstructure:"broad_dependency"`
	// Baseline applies otherwise.
	Baseline float64 `mapstructure:"baseline"`
	// DependencyThreshold separates broad from narrow dependency.
	DependencyThreshold float64 `mapstructure:"dependency_threshold"`
	// ContextBase and ContextSpan define the validation-breadth weight:
	// base + span * validatedLines/ReferenceCellLines, clamped to
	// [base, base+span].
	ContextBase float64 `mapstructure:"context_base"`
	ContextSpan float64 `mapstructure:"context_span"`
	// ReferenceCellLines is the size of the screen's cell-line panel.
	ReferenceCellLines int `mapstructure:"reference_cell_lines"`
}

// DefaultWeights returns the published heuristic weights.
func DefaultWeights() Weights {
	return Weights{
		CommonEssential:     2.0,
		BroadDependency:     1.5,
		Baseline:            1.0,
		DependencyThreshold: 0.5,
		ContextBase:         0.5,
		ContextSpan:         1.5,
		ReferenceCellLines:  27,
	}
}

// EssentialityWeight returns the weight for a target gene given its
// common-essential flag and dependency fraction.
func (w Weights) EssentialityWeight(commonEssential bool, dependencyFraction float64) float64 {
	switch {
	case commonEssential:
		return w.CommonEssential
	case dependencyFraction > w.DependencyThreshold:
		return w.BroadDependency
	default:
		return w.Baseline
	}
}

// ContextWeight returns the validation-breadth weight for a pair validated
// in the given number of reference cell lines.
func (w Weights) ContextWeight(validatedLines int) float64 {
	fraction := 0.0
	if w.ReferenceCellLines > 0 {
		fraction = float64(validatedLines) / float64(w.ReferenceCellLines)
	}
	weight := w.ContextBase + fraction*w.ContextSpan
	if weight < w.ContextBase {
		weight = w.ContextBase
	}
	if max := w.ContextBase + w.ContextSpan; weight > max {
		weight = max
	}
	return weight
}

// Score computes the therapeutic score:
// deletionFrequency x |giScore| x essentialityWeight x contextWeight.
// Higher is a better opportunity. GI scores are negative for synthetic
// lethality; only the magnitude matters here.
func (w Weights) Score(deletionFrequency, giScore float64, targetEssential bool, targetDependencyFraction float64, validatedLines int) float64 {
	gi := giScore
	if gi < 0 {
		gi = -gi
	}
	return deletionFrequency * gi *
		w.EssentialityWeight(targetEssential, targetDependencyFraction) *
		w.ContextWeight(validatedLines)
}
