package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

// SQLite implements the Journal interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Cycles for distinct paths write concurrently.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Record(ctx context.Context, entry *model.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dispatch_journal (id, path, tier, channel, status, reason, attempts, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Path, entry.Tier.String(), entry.Channel,
		string(entry.Status), entry.Reason, entry.Attempts, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context, filter model.JournalFilter) ([]model.JournalEntry, error) {
	query := "SELECT id, path, tier, channel, status, reason, attempts, created_at FROM dispatch_journal"
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []model.JournalEntry
	for rows.Next() {
		var (
			e      model.JournalEntry
			tier   string
			status string
		)
		if err := rows.Scan(&e.ID, &e.Path, &tier, &e.Channel, &status,
			&e.Reason, &e.Attempts, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		if e.Tier, err = model.ParseTier(tier); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.Status = model.OutcomeStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLite) CountByStatus(ctx context.Context, filter model.JournalFilter) (map[model.OutcomeStatus]int64, error) {
	query := "SELECT status, COUNT(*) FROM dispatch_journal"
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " GROUP BY status"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count journal: %w", err)
	}
	defer rows.Close()

	result := make(map[model.OutcomeStatus]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan journal count: %w", err)
		}
		result[model.OutcomeStatus(status)] = count
	}
	return result, rows.Err()
}

func (s *SQLite) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("prune journal: keep must not be negative")
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM dispatch_journal WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY path ORDER BY created_at DESC) AS rn
				FROM dispatch_journal
			) WHERE rn > ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}
	return n, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// buildWhereClause constructs a SQL WHERE clause from a JournalFilter.
func buildWhereClause(filter model.JournalFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Path != "" {
		conditions = append(conditions, "path = ?")
		args = append(args, filter.Path)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if !filter.StartTime.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.StartTime)
	}

	return strings.Join(conditions, " AND "), args
}
