package diagnosis

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

// Table maps each tier to its remediation actions, most urgent first.
// A tier's list must begin with the full list of the tier below it.
type Table map[model.Tier][]string

var (
	elevatedActions = []string{
		"Rotate and compress application logs; delete archived logs past the retention window",
		"Prune unused container images and build cache (docker system prune)",
	}
	warningActions = append(slices.Clone(elevatedActions),
		"Find the largest directories on the volume (du -xh --max-depth=2 <path> | sort -rh | head)",
		"Clear package manager caches and stale temporary files",
	)
	criticalActions = append(slices.Clone(warningActions),
		"Pause non-essential writers to the volume to avoid write failures",
		"Expand the volume or move data to additional storage now",
	)
)

// DefaultTable returns the built-in action table.
func DefaultTable() Table {
	return Table{
		model.TierNormal:   nil,
		model.TierElevated: slices.Clone(elevatedActions),
		model.TierWarning:  slices.Clone(warningActions),
		model.TierCritical: slices.Clone(criticalActions),
	}
}

// tableFile is the on-disk YAML layout, keyed by tier label.
type tableFile struct {
	Tiers map[string][]string `yaml:"tiers"`
}

// LoadTable reads a YAML action table. Tiers missing from the file keep
// their default actions.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read action table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes a YAML action table and validates it.
func ParseTable(data []byte) (Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &model.ConfigurationError{Field: "diagnosis.table", Reason: err.Error()}
	}

	table := DefaultTable()
	for label, actions := range f.Tiers {
		tier, err := model.ParseTier(label)
		if err != nil {
			return nil, &model.ConfigurationError{Field: "diagnosis.table", Reason: err.Error()}
		}
		table[tier] = actions
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks that Normal has no actions, every other tier has at least
// one, and each tier's list starts with the list of the tier below it.
func (t Table) Validate() error {
	if len(t[model.TierNormal]) != 0 {
		return &model.ConfigurationError{Field: "diagnosis.table", Reason: "NORMAL must not carry actions"}
	}
	for i := 1; i < len(model.Tiers); i++ {
		lower, tier := model.Tiers[i-1], model.Tiers[i]
		actions := t[tier]
		if len(actions) == 0 {
			return &model.ConfigurationError{
				Field:  "diagnosis.table",
				Reason: fmt.Sprintf("%s has no actions", tier),
			}
		}
		if !hasPrefix(actions, t[lower]) {
			return &model.ConfigurationError{
				Field:  "diagnosis.table",
				Reason: fmt.Sprintf("%s actions must start with the %s actions", tier, lower),
			}
		}
	}
	return nil
}

func hasPrefix(list, prefix []string) bool {
	return len(list) >= len(prefix) && slices.Equal(list[:len(prefix)], prefix)
}
