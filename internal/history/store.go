// Package history persists a one-row summary of every completed run, so past
// scores stay queryable after result documents are overwritten.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/proctor/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Run is a single recorded scenario run.
type Run struct {
	ID         int64
	RunID      string
	Scenario   string
	Mode       string
	ProjectDir string
	Total      int
	MaxTotal   int
	Percentage float64
	Satisfied  bool
	CreatedAt  time.Time
}

// RunFromDocument builds the history row for a persisted result document.
func RunFromDocument(doc *models.ResultDocument) *Run {
	return &Run{
		RunID:      doc.RunID,
		Scenario:   doc.Scenario,
		Mode:       doc.Mode,
		ProjectDir: doc.ProjectDir,
		Total:      doc.Score.Total,
		MaxTotal:   doc.Score.MaxTotal,
		Percentage: doc.Score.Percentage,
		Satisfied:  doc.AllSatisfied(),
	}
}

// Store manages the SQLite run-history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens the history database at dbPath, creating the file and its
// parent directory if needed.
func NewStore(dbPath string) (*Store, error) {
	// In-memory databases have no parent directory
	if dbPath == ":memory:" {
		return openAndInitStore(dbPath)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	return openAndInitStore(dbPath)
}

func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure SQLite for concurrent appenders. busy_timeout goes first so
	// the remaining pragmas wait on locks instead of failing outright.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000",
	}

	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors,
// which can occur when two runs initialize the same database file at once.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun inserts one history row and sets run.ID from the insert.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	query := `INSERT INTO runs
		(run_id, scenario, mode, project_dir, total, max_total, percentage, satisfied)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.Scenario,
		run.Mode,
		run.ProjectDir,
		run.Total,
		run.MaxTotal,
		run.Percentage,
		run.Satisfied,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	run.ID = id

	return nil
}

// RecentRuns returns recorded runs, most recent first. An empty scenario
// matches every scenario; limit <= 0 means no limit.
func (s *Store) RecentRuns(ctx context.Context, scenario string, limit int) ([]*Run, error) {
	query := `SELECT id, run_id, scenario, mode, project_dir, total, max_total, percentage, satisfied, created_at
		FROM runs`

	args := []interface{}{}
	if scenario != "" {
		query += ` WHERE scenario = ?`
		args = append(args, scenario)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var projectDir sql.NullString
		if err := rows.Scan(
			&run.ID,
			&run.RunID,
			&run.Scenario,
			&run.Mode,
			&projectDir,
			&run.Total,
			&run.MaxTotal,
			&run.Percentage,
			&run.Satisfied,
			&run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if projectDir.Valid {
			run.ProjectDir = projectDir.String
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	return runs, nil
}
