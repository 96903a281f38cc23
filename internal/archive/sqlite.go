package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/debriefhq/debrief/internal/errs"
	"github.com/debriefhq/debrief/internal/models"

	_ "modernc.org/sqlite"
)

// migrations run in order; each is applied once and recorded.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "001_archives.sql",
		sql: `CREATE TABLE IF NOT EXISTS archives (
			location_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			employee_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			artifact_id TEXT NOT NULL,
			body TEXT NOT NULL,
			confidence REAL NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_archives_employee ON archives(employee_id);`,
	},
}

// SQLiteSink persists formatted artifacts in a local SQLite database using
// modernc.org/sqlite (pure Go, no CGO).
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) the archive database at the given path.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports one concurrent writer; a single connection serializes
	// access through the pool and avoids "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Migrate applies pending schema migrations in order.
func (s *SQLiteSink) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", m.name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", m.name, err)
		}
		if count > 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", m.name); err != nil {
			return fmt.Errorf("record migration %s: %w", m.name, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// Store inserts the document and returns its location.
func (s *SQLiteSink) Store(ctx context.Context, doc Document) (models.ArchiveLocation, error) {
	locationID := ulid.Make().String()

	tags, err := json.Marshal(doc.Tags)
	if err != nil {
		tags = []byte("[]")
	}
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO archives (location_id, title, employee_id, session_id, artifact_id, body, confidence, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		locationID, doc.Title, doc.EmployeeID, doc.SessionID, doc.ArtifactID, doc.Body, doc.Confidence, string(tags), createdAt,
	)
	if err != nil {
		return models.ArchiveLocation{}, fmt.Errorf("store archive: %w", err)
	}

	return models.ArchiveLocation{
		ID:  locationID,
		URL: "debrief://archives/" + locationID,
	}, nil
}

// Get returns one stored archive by location id.
func (s *SQLiteSink) Get(ctx context.Context, locationID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT location_id, title, employee_id, session_id, artifact_id, body, confidence, tags, created_at
		FROM archives WHERE location_id = ?`, locationID)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("archive", locationID)
	}
	if err != nil {
		return nil, fmt.Errorf("get archive: %w", err)
	}
	return rec, nil
}

// List returns stored archives, newest first, optionally filtered by
// employee.
func (s *SQLiteSink) List(ctx context.Context, employeeID string) ([]*Record, error) {
	query := `SELECT location_id, title, employee_id, session_id, artifact_id, body, confidence, tags, created_at
		FROM archives`
	var args []any
	if employeeID != "" {
		query += " WHERE employee_id = ?"
		args = append(args, employeeID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan archive: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	rec := &Record{}
	var tags string
	err := row.Scan(&rec.LocationID, &rec.Title, &rec.EmployeeID, &rec.SessionID, &rec.ArtifactID, &rec.Body, &rec.Confidence, &tags, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
		rec.Tags = nil
	}
	return rec, nil
}
