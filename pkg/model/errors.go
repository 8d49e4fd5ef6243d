package model

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroCapacity is returned for a sample whose total size is zero.
	ErrZeroCapacity = errors.New("zero total capacity")

	// ErrCycleInFlight is returned when a cycle for the same path is already running.
	ErrCycleInFlight = errors.New("cycle already in flight")
)

// ConfigurationError is a fatal, non-retryable configuration problem.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// SamplingError means no usable reading exists for the path.
type SamplingError struct {
	Path string
	Err  error
}

func (e *SamplingError) Error() string {
	return fmt.Sprintf("sample %s: %v", e.Path, e.Err)
}

func (e *SamplingError) Unwrap() error { return e.Err }

// TransientDeliveryError is a retryable delivery failure.
type TransientDeliveryError struct {
	Attempt    int
	StatusCode int
	Err        error
}

func (e *TransientDeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("attempt %d: %v", e.Attempt, e.Err)
	}
	return fmt.Sprintf("attempt %d: channel returned status %d", e.Attempt, e.StatusCode)
}

func (e *TransientDeliveryError) Unwrap() error { return e.Err }

// AuthenticationError means the channel rejected the credential.
type AuthenticationError struct {
	Attempt    int
	StatusCode int
}

func (e *AuthenticationError) Error() string {
	if e.Attempt == 0 {
		return "credential missing or malformed"
	}
	return fmt.Sprintf("attempt %d: credential rejected with status %d", e.Attempt, e.StatusCode)
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsSamplingError reports whether err is a SamplingError.
func IsSamplingError(err error) bool {
	var se *SamplingError
	return errors.As(err, &se)
}
