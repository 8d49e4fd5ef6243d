package report

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

// Format renders a stable, human-readable report. Sizes use 1024-based units.
func Format(sample model.MetricSample, tier model.Tier, diag model.DiagnosisReport, timestamp time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Disk Guardian report %s\n", timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Path:     %s\n", sample.Path)
	fmt.Fprintf(&b, "Usage:    %.2f%%\n", truncatePercent(sample.PercentUsed()))
	fmt.Fprintf(&b, "Total:    %s\n", humanize.IBytes(sample.TotalBytes))
	fmt.Fprintf(&b, "Used:     %s\n", humanize.IBytes(sample.UsedBytes))
	fmt.Fprintf(&b, "Free:     %s\n", humanize.IBytes(sample.FreeBytes))
	fmt.Fprintf(&b, "Severity: %s\n", tier)

	if diag.LowSpaceWarning != "" {
		fmt.Fprintf(&b, "Low space: %s\n", diag.LowSpaceWarning)
	}

	if len(diag.Actions) == 0 {
		b.WriteString("Actions:  none required\n")
		return b.String()
	}

	b.WriteString("Actions:\n")
	for i, action := range diag.Actions {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, action)
	}
	return b.String()
}

var (
	usageLine    = regexp.MustCompile(`(?m)^Usage:\s+([0-9]+(?:\.[0-9]+)?)%$`)
	severityLine = regexp.MustCompile(`(?m)^Severity:\s+([A-Z]+)$`)
)

// Summary is the machine-readable headline of a formatted report.
type Summary struct {
	PercentUsed float64
	Tier        model.Tier
}

// ParseSummary recovers the usage percentage and tier from Format output.
func ParseSummary(text string) (Summary, error) {
	m := usageLine.FindStringSubmatch(text)
	if m == nil {
		return Summary{}, fmt.Errorf("report has no usage line")
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Summary{}, fmt.Errorf("parse usage: %w", err)
	}

	m = severityLine.FindStringSubmatch(text)
	if m == nil {
		return Summary{}, fmt.Errorf("report has no severity line")
	}
	tier, err := model.ParseTier(m[1])
	if err != nil {
		return Summary{}, fmt.Errorf("parse severity: %w", err)
	}

	return Summary{PercentUsed: pct, Tier: tier}, nil
}

// truncatePercent cuts pct to two decimals; the printed figure never
// exceeds the one that was classified.
func truncatePercent(pct float64) float64 {
	return math.Floor(pct*100) / 100
}
