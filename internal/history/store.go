package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one recorded agent invocation.
type Entry struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	Mode       string
	Executable string
	Args       []string
	ExitCode   int
	Aborted    bool
	Error      string
}

// Store manages invocation history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path and applies
// the schema.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("history path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS invocations (
    id          TEXT PRIMARY KEY,
    started_at  INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    mode        TEXT NOT NULL,
    executable  TEXT NOT NULL,
    args        TEXT NOT NULL,
    exit_code   INTEGER NOT NULL,
    aborted     INTEGER NOT NULL DEFAULT 0,
    error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_invocations_started_at ON invocations(started_at);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply history schema: %w", err)
	}
	return nil
}

// Record appends one invocation. A missing ID is generated.
func (s *Store) Record(ctx context.Context, entry Entry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now().UTC()
	}
	args, err := json.Marshal(entry.Args)
	if err != nil {
		return "", fmt.Errorf("encode args: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO invocations (id, started_at, duration_ms, mode, executable, args, exit_code, aborted, error)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		// Unix nanoseconds keep ORDER BY chronological; textual timestamps
		// with variable-width fractions do not sort within a second.
		entry.StartedAt.UTC().UnixNano(),
		entry.Duration.Milliseconds(),
		entry.Mode,
		entry.Executable,
		string(args),
		entry.ExitCode,
		boolToInt(entry.Aborted),
		entry.Error,
	)
	if err != nil {
		return "", fmt.Errorf("insert invocation: %w", err)
	}
	return entry.ID, nil
}

// Recent returns up to limit invocations, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, mode, executable, args, exit_code, aborted, error
         FROM invocations ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			entry      Entry
			startedAt  int64
			durationMS int64
			args       string
			aborted    int
		)
		if err := rows.Scan(&entry.ID, &startedAt, &durationMS, &entry.Mode, &entry.Executable, &args, &entry.ExitCode, &aborted, &entry.Error); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		entry.StartedAt = time.Unix(0, startedAt).UTC()
		entry.Duration = time.Duration(durationMS) * time.Millisecond
		entry.Aborted = aborted != 0
		if args != "" {
			if err := json.Unmarshal([]byte(args), &entry.Args); err != nil {
				return nil, fmt.Errorf("decode args for %s: %w", entry.ID, err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}
	return entries, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
