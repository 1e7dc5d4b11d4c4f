package batch

import "fmt"

// InsufficientSampleError marks a study with too few copy-number samples for
// meaningful statistics. The unit is skipped and recorded in the summary,
// not treated as a run failure.
type InsufficientSampleError struct {
	StudyID string
	Samples int
	Minimum int
}

func (e *InsufficientSampleError) Error() string {
	return fmt.Sprintf("study %s has %d samples, need %d", e.StudyID, e.Samples, e.Minimum)
}
