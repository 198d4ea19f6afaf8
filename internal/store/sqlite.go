package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Kaliakbarb/persona/internal/model"
)

// OpenSQLite opens (or creates) a SQLite database at the given path.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// SQLiteStore implements ArtifactStore on a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ ArtifactStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates the store and initialises the schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// currentSchemaVersion is bumped whenever the schema changes.
// Add a new migration function in the migrations slice below.
const currentSchemaVersion = 1

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema version: %w", err)
		}
		version = 0
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	// migrations is an ordered list of migration functions.
	// Index 0 = migration from v0 to v1, etc.
	migrations := []func() error{
		s.migrateV1, // v0 → v1: initial schema
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](); err != nil {
			return fmt.Errorf("migration v%d→v%d: %w", i, i+1, err)
		}
		if _, err := s.db.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			return fmt.Errorf("update schema version to %d: %w", i+1, err)
		}
	}

	return nil
}

// migrateV1 creates the initial schema (v0 → v1).
func (s *SQLiteStore) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS artifacts (
		id          TEXT PRIMARY KEY,
		subject_key TEXT NOT NULL,
		kind        TEXT NOT NULL,
		payload     TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_artifacts_subject ON artifacts(subject_key, kind, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save inserts a new artifact row. Artifacts are never updated or deleted.
func (s *SQLiteStore) Save(ctx context.Context, a model.Artifact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, subject_key, kind, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, SanitizeKey(a.SubjectKey), a.Kind, a.Payload, a.CreatedAt,
	)
	if err != nil {
		return &model.WriteError{Ref: "artifacts/" + a.ID, Err: err}
	}
	return nil
}

// List returns all artifacts for the subject, most recent first.
func (s *SQLiteStore) List(ctx context.Context, subjectKey string) ([]model.Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_key, kind, payload, created_at
		FROM artifacts WHERE subject_key = ?
		ORDER BY created_at DESC, id DESC`,
		SanitizeKey(subjectKey),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	artifacts := []model.Artifact{}
	for rows.Next() {
		var a model.Artifact
		if err := rows.Scan(&a.ID, &a.SubjectKey, &a.Kind, &a.Payload, &a.CreatedAt); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// GetLatestByKind returns the most recent artifact of the given kind, or
// model.ErrNotFound when none exists.
func (s *SQLiteStore) GetLatestByKind(ctx context.Context, subjectKey, kind string) (*model.Artifact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, subject_key, kind, payload, created_at
		FROM artifacts WHERE subject_key = ? AND kind = ?
		ORDER BY created_at DESC, id DESC LIMIT 1`,
		SanitizeKey(subjectKey), kind,
	)
	var a model.Artifact
	err := row.Scan(&a.ID, &a.SubjectKey, &a.Kind, &a.Payload, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
