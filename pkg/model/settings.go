package model

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Thresholds are the per-deployment alerting parameters.
type Thresholds struct {
	AlertPercent    float64 `json:"alert_percent" mapstructure:"alert"`
	Elevated        float64 `json:"elevated" mapstructure:"elevated"`
	Warning         float64 `json:"warning" mapstructure:"warning"`
	Critical        float64 `json:"critical" mapstructure:"critical"`
	LowSpaceFloorGB float64 `json:"low_space_floor_gb" mapstructure:"low_space_floor_gb"`
}

// DefaultThresholds returns the stock 80/80/90/95 percent, 5 GB configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AlertPercent:    80,
		Elevated:        80,
		Warning:         90,
		Critical:        95,
		LowSpaceFloorGB: 5,
	}
}

// Boundaries returns the tier lower bounds in ascending order.
func (t Thresholds) Boundaries() [3]float64 {
	return [3]float64{t.Elevated, t.Warning, t.Critical}
}

// Validate checks ranges and boundary ordering.
func (t Thresholds) Validate() error {
	if t.AlertPercent < 0 || t.AlertPercent > 100 {
		return &ConfigurationError{Field: "thresholds.alert", Reason: fmt.Sprintf("%.2f is outside [0,100]", t.AlertPercent)}
	}
	b := t.Boundaries()
	names := [3]string{"thresholds.elevated", "thresholds.warning", "thresholds.critical"}
	for i, v := range b {
		if v <= 0 || v > 100 {
			return &ConfigurationError{Field: names[i], Reason: fmt.Sprintf("%.2f is outside (0,100]", v)}
		}
		if i > 0 && v <= b[i-1] {
			return &ConfigurationError{
				Field:  names[i],
				Reason: fmt.Sprintf("%.2f must be greater than %s (%.2f)", v, names[i-1], b[i-1]),
			}
		}
	}
	if t.LowSpaceFloorGB < 0 {
		return &ConfigurationError{Field: "thresholds.low_space_floor_gb", Reason: "must not be negative"}
	}
	return nil
}

// DispatchPolicy bounds a single delivery.
type DispatchPolicy struct {
	MaxAttempts int
	Timeout     time.Duration
	Credential  string
}

// DefaultDispatchPolicy returns three attempts of ten seconds each.
func DefaultDispatchPolicy(credential string) DispatchPolicy {
	return DispatchPolicy{MaxAttempts: 3, Timeout: 10 * time.Second, Credential: credential}
}

// Validate checks attempt and timeout bounds. Credential shape is checked by
// the dispatcher so that a bad credential is reported as an outcome.
func (p DispatchPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return &ConfigurationError{Field: "dispatch.max_attempts", Reason: "must be at least 1"}
	}
	if p.Timeout <= 0 {
		return &ConfigurationError{Field: "dispatch.timeout", Reason: "must be positive"}
	}
	return nil
}

// WellFormedCredential reports whether a credential can be sent at all.
func WellFormedCredential(credential string) bool {
	if strings.TrimSpace(credential) == "" {
		return false
	}
	for _, r := range credential {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
