package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"basic-cleaning/models"
)

// PostgresStore keeps artifact content and run records in PostgreSQL.
// Resolved artifacts are materialized under a local cache directory.
type PostgresStore struct {
	db       *sql.DB
	cacheDir string
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(ctx context.Context, dsn, cacheDir string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	ps := &PostgresStore{db: db, cacheDir: cacheDir}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS artifacts (
			id          UUID         PRIMARY KEY,
			name        TEXT         NOT NULL,
			version     INTEGER      NOT NULL,
			type        TEXT         NOT NULL DEFAULT '',
			description TEXT         NOT NULL DEFAULT '',
			file_name   TEXT         NOT NULL,
			digest      CHAR(64)     NOT NULL,
			size        BIGINT       NOT NULL DEFAULT 0,
			content     BYTEA        NOT NULL,
			created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			UNIQUE (name, version)
		);

		CREATE TABLE IF NOT EXISTS runs (
			id          UUID         PRIMARY KEY,
			job_type    TEXT         NOT NULL,
			config      JSONB        NOT NULL DEFAULT '{}',
			used        TEXT[]       NOT NULL DEFAULT '{}',
			logged      TEXT[]       NOT NULL DEFAULT '{}',
			status      VARCHAR(16)  NOT NULL,
			error       TEXT         NOT NULL DEFAULT '',
			started_at  TIMESTAMPTZ  NOT NULL,
			finished_at TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS idx_artifacts_name ON artifacts(name);
		CREATE INDEX IF NOT EXISTS idx_runs_job_type  ON runs(job_type);
	`)
	return err
}

func (ps *PostgresStore) StartRun(ctx context.Context, run *models.Run) error {
	config, err := json.Marshal(run.Config)
	if err != nil {
		return fmt.Errorf("postgres: encode run config: %w", err)
	}

	_, err = ps.db.ExecContext(ctx, `
		INSERT INTO runs (id, job_type, config, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID, run.JobType, config, run.Status, run.StartedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert run: %w", err)
	}
	return nil
}

func (ps *PostgresStore) FinishRun(ctx context.Context, run *models.Run) error {
	_, err := ps.db.ExecContext(ctx, `
		UPDATE runs
		SET used = $2, logged = $3, status = $4, error = $5, finished_at = $6
		WHERE id = $1
	`, run.ID, pq.Array(nonNil(run.Used)), pq.Array(nonNil(run.Logged)), run.Status, run.Error, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("postgres: finish run: %w", err)
	}
	return nil
}

func (ps *PostgresStore) UseArtifact(ctx context.Context, run *models.Run, ref string) (string, error) {
	parsed, err := models.ParseArtifactRef(ref)
	if err != nil {
		return "", fmt.Errorf("postgres: %w", err)
	}
	if err := validateName(parsed.Name); err != nil {
		return "", fmt.Errorf("postgres: %w", err)
	}

	query := `
		SELECT id, name, version, type, description, file_name, digest, size, created_at, content
		FROM artifacts
		WHERE name = $1`
	args := []any{parsed.Name}
	if v := parsed.Version(); v >= 0 {
		query += " AND version = $2"
		args = append(args, v)
	}
	query += " ORDER BY version DESC LIMIT 1"

	var (
		a       models.Artifact
		content []byte
	)
	err = ps.db.QueryRowContext(ctx, query, args...).Scan(
		&a.ID, &a.Name, &a.Version, &a.Type, &a.Description,
		&a.File, &a.Digest, &a.Size, &a.CreatedAt, &content,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("postgres: %s: %w", parsed, ErrArtifactNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("postgres: fetch %s: %w", parsed, err)
	}

	dir := filepath.Join(ps.cacheDir, a.Name, fmt.Sprintf("v%d", a.Version))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("postgres: create cache dir: %w", err)
	}
	path := filepath.Join(dir, a.File)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("postgres: materialize %s: %w", a.Ref(), err)
	}

	run.Used = append(run.Used, a.Ref())
	return path, nil
}

func (ps *PostgresStore) LogArtifact(ctx context.Context, run *models.Run, a *models.Artifact) (*models.Artifact, error) {
	if err := validateName(a.Name); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	content, err := os.ReadFile(a.File)
	if err != nil {
		return nil, fmt.Errorf("postgres: read %q: %w", a.File, err)
	}
	digest, size, err := fileDigest(a.File)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// serialize version allocation per artifact name
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, a.Name); err != nil {
		return nil, fmt.Errorf("postgres: lock %q: %w", a.Name, err)
	}

	var latest models.Artifact
	err = tx.QueryRowContext(ctx, `
		SELECT id, name, version, type, description, file_name, digest, size, created_at
		FROM artifacts
		WHERE name = $1
		ORDER BY version DESC
		LIMIT 1
	`, a.Name).Scan(
		&latest.ID, &latest.Name, &latest.Version, &latest.Type, &latest.Description,
		&latest.File, &latest.Digest, &latest.Size, &latest.CreatedAt,
	)
	next := 0
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("postgres: fetch latest %q: %w", a.Name, err)
	case latest.Digest == digest:
		run.Logged = append(run.Logged, latest.Ref())
		return &latest, nil
	default:
		next = latest.Version + 1
	}

	stored := models.Artifact{
		ID:          uuid.NewString(),
		Name:        a.Name,
		Version:     next,
		Type:        a.Type,
		Description: a.Description,
		File:        filepath.Base(a.File),
		Digest:      digest,
		Size:        size,
		CreatedAt:   time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO artifacts (id, name, version, type, description, file_name, digest, size, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, stored.ID, stored.Name, stored.Version, stored.Type, stored.Description,
		stored.File, stored.Digest, stored.Size, content, stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("postgres: insert %s: %w", stored.Ref(), err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("postgres: commit: %w", err)
	}

	run.Logged = append(run.Logged, stored.Ref())
	return &stored, nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
