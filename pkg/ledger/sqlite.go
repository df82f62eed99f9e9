package ledger

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using SQLite, making step results durable
// across process restarts so a resumed run can replay recorded steps.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// SQLiteConfig holds SQLite ledger store configuration.
type SQLiteConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite ledger store instance.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	return &SQLiteStore{
		path: cfg.Path,
	}, nil
}

// Init initializes the database connection, enables WAL mode, and runs
// migrations.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db

	if err := s.migrate(); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}

	return nil
}

// migrate runs the embedded schema migrations.
func (s *SQLiteStore) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, runID, nodeID string, index int) (json.RawMessage, bool, error) {
	if s.db == nil {
		return nil, false, fmt.Errorf("ledger store not initialized")
	}

	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM step_ledger WHERE run_id = ? AND node_id = ? AND step_index = ?`,
		runID, nodeID, index,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read step result: %w", err)
	}

	return json.RawMessage(value), true, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, runID, nodeID string, index int, value json.RawMessage) error {
	if s.db == nil {
		return fmt.Errorf("ledger store not initialized")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO step_ledger (run_id, node_id, step_index, value, recorded_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, node_id, step_index) DO NOTHING`,
		runID, nodeID, index, []byte(value), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record step result: %w", err)
	}
	return nil
}

// Discard implements Store.
func (s *SQLiteStore) Discard(ctx context.Context, runID string) error {
	if s.db == nil {
		return fmt.Errorf("ledger store not initialized")
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM step_ledger WHERE run_id = ?`, runID,
	); err != nil {
		return fmt.Errorf("failed to discard run ledger: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
