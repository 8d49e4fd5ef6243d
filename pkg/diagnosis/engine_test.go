package diagnosis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/disk-guardian/pkg/diagnosis"
	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

func sampleWithFree(t *testing.T, totalGB, freeGB uint64) model.MetricSample {
	t.Helper()
	s, err := model.NewMetricSample("/data",
		totalGB*model.BytesPerGB,
		(totalGB-freeGB)*model.BytesPerGB,
		freeGB*model.BytesPerGB,
	)
	require.NoError(t, err)
	return s
}

func TestDiagnose_NormalWithSpace(t *testing.T) {
	e := diagnosis.NewDefaultEngine()
	report := e.Diagnose(model.TierNormal, sampleWithFree(t, 100, 60), 5)

	assert.Equal(t, model.TierNormal, report.Tier)
	assert.Empty(t, report.Actions)
	assert.Empty(t, report.LowSpaceWarning)
	assert.False(t, report.NeedsAttention())
}

func TestDiagnose_LowSpaceAtNormalTier(t *testing.T) {
	e := diagnosis.NewDefaultEngine()
	report := e.Diagnose(model.TierNormal, sampleWithFree(t, 10, 3), 5)

	assert.Empty(t, report.Actions)
	assert.NotEmpty(t, report.LowSpaceWarning)
	assert.Contains(t, report.LowSpaceWarning, "/data")
	assert.Contains(t, report.LowSpaceWarning, "3.0 GiB")
	assert.True(t, report.NeedsAttention())
}

func TestDiagnose_FloorIndependentOfTier(t *testing.T) {
	e := diagnosis.NewDefaultEngine()

	// Large, nearly full disk: critical and under the floor.
	big := e.Diagnose(model.TierCritical, sampleWithFree(t, 4096, 4), 5)
	assert.NotEmpty(t, big.LowSpaceWarning)
	assert.NotEmpty(t, big.Actions)

	// Critical but with plenty of absolute space left.
	roomy := e.Diagnose(model.TierCritical, sampleWithFree(t, 4096, 100), 5)
	assert.Empty(t, roomy.LowSpaceWarning)
}

func TestDiagnose_ActionsNonEmptyAboveNormal(t *testing.T) {
	e := diagnosis.NewDefaultEngine()
	for _, tier := range model.Tiers[1:] {
		report := e.Diagnose(tier, sampleWithFree(t, 100, 50), 5)
		assert.NotEmpty(t, report.Actions, tier.String())
	}
}

func TestDiagnose_Monotonic(t *testing.T) {
	e := diagnosis.NewDefaultEngine()
	s := sampleWithFree(t, 100, 50)

	for i, low := range model.Tiers {
		for _, high := range model.Tiers[i+1:] {
			lowActions := e.Diagnose(low, s, 0).Actions
			highActions := e.Diagnose(high, s, 0).Actions
			require.GreaterOrEqual(t, len(highActions), len(lowActions))
			assert.Equal(t, lowActions, highActions[:len(lowActions)],
				"%s actions must start with %s actions", high, low)
		}
	}
}

func TestDiagnose_ReturnsCopies(t *testing.T) {
	e := diagnosis.NewDefaultEngine()
	s := sampleWithFree(t, 100, 50)

	first := e.Diagnose(model.TierWarning, s, 0)
	first.Actions[0] = "tampered"

	second := e.Diagnose(model.TierWarning, s, 0)
	assert.NotEqual(t, "tampered", second.Actions[0])
}

func TestDefaultTable_Valid(t *testing.T) {
	require.NoError(t, diagnosis.DefaultTable().Validate())
}

func TestTable_Validate_BrokenPrefix(t *testing.T) {
	table := diagnosis.DefaultTable()
	table[model.TierCritical] = []string{"only this"}

	err := table.Validate()
	require.Error(t, err)
	assert.True(t, model.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "CRITICAL")
}

func TestTable_Validate_NormalWithActions(t *testing.T) {
	table := diagnosis.DefaultTable()
	table[model.TierNormal] = []string{"relax"}
	assert.Error(t, table.Validate())
}

func TestNewEngine_RejectsInvalidTable(t *testing.T) {
	table := diagnosis.DefaultTable()
	table[model.TierElevated] = nil
	_, err := diagnosis.NewEngine(table)
	assert.Error(t, err)
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.yaml")
	data := []byte(`
tiers:
  elevated:
    - Clean /var/log
  warning:
    - Clean /var/log
    - Drop old snapshots
  critical:
    - Clean /var/log
    - Drop old snapshots
    - Page the on-call engineer
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	table, err := diagnosis.LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Clean /var/log"}, table[model.TierElevated])
	assert.Len(t, table[model.TierCritical], 3)

	e, err := diagnosis.NewEngine(table)
	require.NoError(t, err)
	assert.Equal(t, "Page the on-call engineer", e.Actions(model.TierCritical)[2])
}

func TestParseTable_UnknownTier(t *testing.T) {
	_, err := diagnosis.ParseTable([]byte("tiers:\n  severe:\n    - panic\n"))
	require.Error(t, err)
	assert.True(t, model.IsConfigurationError(err))
}

func TestParseTable_InvalidYAML(t *testing.T) {
	_, err := diagnosis.ParseTable([]byte("tiers: [broken"))
	assert.Error(t, err)
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := diagnosis.LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
