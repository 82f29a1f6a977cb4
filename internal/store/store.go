package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory trial log. The harness records every
// scenario run into one.
const MemoryPath = ":memory:"

// pragma is a connection setting and the value SQLite reports once applied.
type pragma struct {
	name  string
	value string
	want  string
}

// pragmas configure every connection. In-memory databases report
// journal_mode "memory" no matter what was asked for.
var pragmas = []pragma{
	{name: "journal_mode", value: "WAL", want: "wal"},
	{name: "synchronous", value: "NORMAL", want: "1"},
	{name: "busy_timeout", value: "5000", want: "5000"},
	{name: "foreign_keys", value: "ON", want: "1"},
}

// migration upgrades the schema to version.
type migration struct {
	version int
	stmt    string
}

// migrations run in order for every version above the stored user_version.
var migrations = []migration{
	{version: 1, stmt: `CREATE INDEX IF NOT EXISTS idx_records_tag ON records(tag, session_id)`},
	{version: 2, stmt: `CREATE INDEX IF NOT EXISTS idx_sessions_level ON sessions(level_id, seq)`},
}

// schemaVersion is the user_version of a fully migrated log.
func schemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Store is the trial log. All access goes through one connection because
// SQLite allows a single writer and an in-memory database exists per
// connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the trial log at path, which may be MemoryPath.
// Opening an existing log is idempotent: the schema is created if missing
// and pending migrations are applied.
func Open(path string) (*Store, error) {
	return OpenContext(context.Background(), path)
}

// OpenContext is Open with a context bounding the setup statements.
func OpenContext(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open trial log %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, path: path}
	if err := s.setup(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open trial log %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) setup(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	for _, p := range pragmas {
		stmt := fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return s.migrate(ctx)
}

// migrate applies every migration newer than the stored user_version in a
// single transaction.
func (s *Store) migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if current >= schemaVersion() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.stmt); err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion())); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return tx.Commit()
}

// Close releases the connection. An in-memory log is gone afterwards.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the path the log was opened with.
func (s *Store) Path() string {
	return s.path
}

// DB exposes the connection for ad-hoc analysis and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Query runs a read-only analysis query. Callers close the rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// checkPragmas compares the live settings with the configured ones.
func (s *Store) checkPragmas(ctx context.Context) error {
	var mismatched []string
	for _, p := range pragmas {
		var got string
		if err := s.db.QueryRowContext(ctx, "PRAGMA "+p.name).Scan(&got); err != nil {
			return fmt.Errorf("read %s: %w", p.name, err)
		}
		want := p.want
		if p.name == "journal_mode" && s.path == MemoryPath {
			want = "memory"
		}
		if !strings.EqualFold(got, want) {
			mismatched = append(mismatched, fmt.Sprintf("%s=%s (want %s)", p.name, got, want))
		}
	}
	if len(mismatched) > 0 {
		return fmt.Errorf("pragmas: %s", strings.Join(mismatched, ", "))
	}
	return nil
}
