package model

import (
	"fmt"
	"strings"
	"time"
)

// BytesPerGB is the 1024-based gigabyte used for every size conversion.
const BytesPerGB = 1024 * 1024 * 1024

// MetricSample is a single disk capacity reading for one path.
type MetricSample struct {
	Path       string `json:"path"`
	TotalBytes uint64 `json:"total_bytes"`
	UsedBytes  uint64 `json:"used_bytes"`
	FreeBytes  uint64 `json:"free_bytes"`
}

// NewMetricSample builds a sample, rejecting zero-capacity readings.
// Used+Free is allowed to differ from Total (reserved blocks).
func NewMetricSample(path string, total, used, free uint64) (MetricSample, error) {
	if total == 0 {
		return MetricSample{}, &SamplingError{Path: path, Err: ErrZeroCapacity}
	}
	return MetricSample{Path: path, TotalBytes: total, UsedBytes: used, FreeBytes: free}, nil
}

// PercentUsed returns used/total as a percentage in [0,100].
func (s MetricSample) PercentUsed() float64 {
	if s.TotalBytes == 0 {
		return 0
	}
	pct := float64(s.UsedBytes) / float64(s.TotalBytes) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// FreeGB returns free capacity in 1024-based gigabytes.
func (s MetricSample) FreeGB() float64 {
	return float64(s.FreeBytes) / BytesPerGB
}

// Tier is an ordered severity classification.
type Tier int

const (
	TierNormal Tier = iota
	TierElevated
	TierWarning
	TierCritical
)

// Tiers lists every tier in ascending severity.
var Tiers = []Tier{TierNormal, TierElevated, TierWarning, TierCritical}

func (t Tier) String() string {
	switch t {
	case TierNormal:
		return "NORMAL"
	case TierElevated:
		return "ELEVATED"
	case TierWarning:
		return "WARNING"
	case TierCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("TIER(%d)", int(t))
	}
}

// ParseTier is the inverse of Tier.String. Matching is case-insensitive.
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers {
		if strings.EqualFold(strings.TrimSpace(s), t.String()) {
			return t, nil
		}
	}
	return TierNormal, fmt.Errorf("unknown tier %q", s)
}

// MarshalText encodes the tier as its label.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier label.
func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DiagnosisReport holds the remediation advice for one sample.
type DiagnosisReport struct {
	Tier            Tier     `json:"tier"`
	Actions         []string `json:"actions,omitempty"`
	LowSpaceWarning string   `json:"low_space_warning,omitempty"`
}

// NeedsAttention reports whether the report carries any advice.
func (r DiagnosisReport) NeedsAttention() bool {
	return len(r.Actions) > 0 || r.LowSpaceWarning != ""
}

// OutcomeStatus is the terminal state of a dispatch.
type OutcomeStatus string

const (
	StatusDelivered        OutcomeStatus = "delivered"
	StatusExhaustedRetries OutcomeStatus = "exhausted_retries"
	StatusSkipped          OutcomeStatus = "skipped" // No alert was required
)

// Reasons attached to failed outcomes.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonCanceled        = "canceled"
)

// Outcome is the result of delivering one report.
type Outcome struct {
	Status   OutcomeStatus `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	Attempts int           `json:"attempts"`
}

// Delivered reports whether the channel accepted the message.
func (o Outcome) Delivered() bool { return o.Status == StatusDelivered }

// Failed reports whether an alert was required but not delivered.
func (o Outcome) Failed() bool { return o.Status == StatusExhaustedRetries }

// JournalEntry is an audit record of one dispatch outcome.
type JournalEntry struct {
	ID        string        `json:"id" db:"id"`
	Path      string        `json:"path" db:"path"`
	Tier      Tier          `json:"tier" db:"tier"`
	Channel   string        `json:"channel" db:"channel"`
	Status    OutcomeStatus `json:"status" db:"status"`
	Reason    string        `json:"reason,omitempty" db:"reason"`
	Attempts  int           `json:"attempts" db:"attempts"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// JournalFilter controls which journal entries are returned.
type JournalFilter struct {
	Path      string        `json:"path,omitempty"`
	Status    OutcomeStatus `json:"status,omitempty"`
	StartTime time.Time     `json:"start_time,omitempty"`
	Limit     int           `json:"limit,omitempty"`
}
