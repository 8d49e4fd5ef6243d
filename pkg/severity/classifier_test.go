package severity_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
	"github.com/ogulcanaydogan/disk-guardian/pkg/severity"
)

func TestClassify(t *testing.T) {
	b := severity.DefaultBoundaries()

	tests := []struct {
		pct      float64
		expected model.Tier
	}{
		{0, model.TierNormal},
		{79.99, model.TierNormal},
		{80.00, model.TierElevated},
		{89.5, model.TierElevated},
		{90, model.TierWarning},
		{94.999, model.TierWarning},
		{95, model.TierCritical},
		{100, model.TierCritical},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.3f", tt.pct), func(t *testing.T) {
			assert.Equal(t, tt.expected, severity.Classify(tt.pct, b))
		})
	}
}

func TestClassify_Monotonic(t *testing.T) {
	b := severity.DefaultBoundaries()
	prev := severity.Classify(0, b)
	for i := 1; i <= 10000; i++ {
		pct := float64(i) / 100
		cur := severity.Classify(pct, b)
		require.GreaterOrEqual(t, cur, prev, "classification decreased at %.2f%%", pct)
		prev = cur
	}
}

func TestClassify_CustomBoundaries(t *testing.T) {
	b := severity.Boundaries{50, 70, 85}
	assert.Equal(t, model.TierElevated, severity.Classify(50, b))
	assert.Equal(t, model.TierWarning, severity.Classify(84.9, b))
	assert.Equal(t, model.TierCritical, severity.Classify(85, b))
}

func TestBoundaries_Validate(t *testing.T) {
	require.NoError(t, severity.DefaultBoundaries().Validate())

	err := severity.Boundaries{80, 80, 95}.Validate()
	assert.True(t, model.IsConfigurationError(err))

	err = severity.Boundaries{90, 80, 95}.Validate()
	assert.True(t, model.IsConfigurationError(err))
}

func TestFromThresholds(t *testing.T) {
	b := severity.FromThresholds(model.DefaultThresholds())
	assert.Equal(t, severity.DefaultBoundaries(), b)
}

func BenchmarkClassify(b *testing.B) {
	bounds := severity.DefaultBoundaries()
	for b.Loop() {
		_ = severity.Classify(91.3, bounds)
	}
}
