package storage

import (
	"context"

	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

// Journal records dispatch outcomes for auditing. The evaluation cycle only
// writes to it; nothing in a cycle depends on earlier entries.
type Journal interface {
	// Record persists a single outcome entry.
	Record(ctx context.Context, entry *model.JournalEntry) error

	// List returns entries matching the filter, newest first.
	List(ctx context.Context, filter model.JournalFilter) ([]model.JournalEntry, error)

	// CountByStatus returns the number of entries per outcome status.
	CountByStatus(ctx context.Context, filter model.JournalFilter) (map[model.OutcomeStatus]int64, error)

	// Prune keeps the newest keep entries per path and deletes the rest.
	Prune(ctx context.Context, keep int) (int64, error)

	// Close releases resources.
	Close() error
}
