package diagnosis

import (
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

// Engine turns a tier and a sample into remediation advice.
type Engine struct {
	table Table
}

// NewEngine creates an engine over a validated table.
func NewEngine(table Table) (*Engine, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &Engine{table: table}, nil
}

// NewDefaultEngine creates an engine over the built-in table.
func NewDefaultEngine() *Engine {
	return &Engine{table: DefaultTable()}
}

// Actions returns a copy of the actions for a tier.
func (e *Engine) Actions(tier model.Tier) []string {
	return slices.Clone(e.table[tier])
}

// Diagnose looks up the tier's actions and, independently of the tier, flags
// free space below the absolute floor.
func (e *Engine) Diagnose(tier model.Tier, sample model.MetricSample, lowSpaceFloorGB float64) model.DiagnosisReport {
	report := model.DiagnosisReport{
		Tier:    tier,
		Actions: e.Actions(tier),
	}

	if sample.FreeGB() < lowSpaceFloorGB {
		report.LowSpaceWarning = fmt.Sprintf("only %s free on %s, below the %g GB floor",
			humanize.IBytes(sample.FreeBytes), sample.Path, lowSpaceFloorGB)
	}
	return report
}
