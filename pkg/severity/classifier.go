package severity

import (
	"fmt"

	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

// Boundaries are the inclusive lower bounds of Elevated, Warning and Critical.
type Boundaries [3]float64

// DefaultBoundaries returns the stock 80/90/95 ladder.
func DefaultBoundaries() Boundaries {
	return Boundaries{80, 90, 95}
}

// FromThresholds extracts the classifier boundaries from thresholds.
func FromThresholds(t model.Thresholds) Boundaries {
	return Boundaries(t.Boundaries())
}

// Validate reports a ConfigurationError unless the boundaries strictly increase.
func (b Boundaries) Validate() error {
	for i := 1; i < len(b); i++ {
		if b[i] <= b[i-1] {
			return &model.ConfigurationError{
				Field:  "thresholds",
				Reason: fmt.Sprintf("tier boundaries must strictly increase, got %v", [3]float64(b)),
			}
		}
	}
	return nil
}

// Classify maps a utilization percentage to a tier. A value equal to a
// boundary belongs to the tier that boundary names.
func Classify(percentUsed float64, b Boundaries) model.Tier {
	tier := model.TierNormal
	for i, lower := range b {
		if percentUsed >= lower {
			tier = model.Tier(i + 1)
		}
	}
	return tier
}
