// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides routing journal persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/smartnetguru/mokai/internal/logging"
)

// tsLayout is fixed width so timestamps sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	logger = logging.Default(logger).With("component", "store")

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if path == ":memory:" {
		// Each connection to :memory: is its own database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS route_decisions (
			decision_id  TEXT PRIMARY KEY,
			message_id   TEXT NOT NULL,
			message_type TEXT NOT NULL DEFAULT '',
			router       TEXT NOT NULL,
			connector_id TEXT NOT NULL DEFAULT '',
			uri          TEXT NOT NULL,
			unroutable   INTEGER NOT NULL,
			explicit     INTEGER NOT NULL,
			elapsed_ns   INTEGER NOT NULL,
			ts           TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_route_decisions_ts ON route_decisions(ts);
		CREATE INDEX IF NOT EXISTS idx_route_decisions_message ON route_decisions(message_id);
		CREATE INDEX IF NOT EXISTS idx_route_decisions_router ON route_decisions(router, unroutable);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordDecision appends a decision to the journal.
func (s *SQLiteStore) RecordDecision(ctx context.Context, d *Decision) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO route_decisions
			(decision_id, message_id, message_type, router, connector_id, uri, unroutable, explicit, elapsed_ns, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		d.ID,
		d.MessageID,
		d.MessageType,
		d.Router,
		d.ConnectorID,
		d.URI,
		d.Unroutable,
		d.Explicit,
		d.Elapsed.Nanoseconds(),
		d.CreatedAt.UTC().Format(tsLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting decision: %w", err)
	}
	return nil
}

const decisionColumns = `decision_id, message_id, message_type, router, connector_id, uri, unroutable, explicit, elapsed_ns, ts`

// GetDecision returns a single decision by ID.
func (s *SQLiteStore) GetDecision(ctx context.Context, id string) (*Decision, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+decisionColumns+` FROM route_decisions WHERE decision_id = ?`, id)

	d, err := scanDecision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListDecisions returns decisions matching f, newest first.
func (s *SQLiteStore) ListDecisions(ctx context.Context, f DecisionFilter) ([]*Decision, error) {
	var since *string
	if f.Since != nil {
		v := f.Since.UTC().Format(tsLayout)
		since = &v
	}

	query := `
		SELECT ` + decisionColumns + `
		FROM route_decisions
		WHERE (? = '' OR router = ?)
		  AND (? = '' OR message_id = ?)
		  AND (? = 0 OR unroutable = 1)
		  AND (? IS NULL OR ts >= ?)
		ORDER BY ts DESC, rowid DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query,
		f.Router, f.Router,
		f.MessageID, f.MessageID,
		f.UnroutableOnly,
		since, since,
		normalizeLimit(f.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("querying decisions: %w", err)
	}
	defer rows.Close()

	var out []*Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decisions: %w", err)
	}
	return out, nil
}

// CountUnroutable counts unroutable decisions. An empty router counts all.
func (s *SQLiteStore) CountUnroutable(ctx context.Context, router string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM route_decisions WHERE unroutable = 1 AND (? = '' OR router = ?)`,
		router, router,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting unroutable decisions: %w", err)
	}
	return n, nil
}

func scanDecision(scanner interface{ Scan(dest ...any) error }) (*Decision, error) {
	var d Decision
	var elapsed int64
	var ts string

	if err := scanner.Scan(
		&d.ID,
		&d.MessageID,
		&d.MessageType,
		&d.Router,
		&d.ConnectorID,
		&d.URI,
		&d.Unroutable,
		&d.Explicit,
		&elapsed,
		&ts,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning decision: %w", err)
	}

	d.Elapsed = time.Duration(elapsed)
	created, err := time.Parse(tsLayout, ts)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp: %w", err)
	}
	d.CreatedAt = created
	return &d, nil
}
