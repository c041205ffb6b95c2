// Package auditpg is an append-only Postgres sink recording the outcome
// (accepted, or rejected with its error code) of each instruction it is
// handed, for operator visibility; internal/rpcserver hands it every
// submit_proof and revoke_proof call, and no admin, rotation or
// initialization call. It is never read back
// into engine decisions — the KV account store (internal/store) stays
// the sole source of truth. Ported structurally from the teacher's
// pkg/database.Client: connection pooling + embedded SQL migrations.
package auditpg

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Sink is an append-only audit log backed by Postgres.
type Sink struct {
	db     *sql.DB
	logger *log.Logger
}

// Option configures a Sink.
type Option func(*Sink)

// WithLogger overrides the sink's logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Sink) { s.logger = logger }
}

// Open connects to dsn and configures the connection pool.
func Open(dsn string, maxOpenConns, maxIdleConns int, opts ...Option) (*Sink, error) {
	if dsn == "" {
		return nil, fmt.Errorf("auditpg: dsn cannot be empty")
	}

	s := &Sink{logger: log.New(log.Writer(), "[AuditLog] ", log.LstdFlags)}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("auditpg: open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("auditpg: ping database: %w", err)
	}

	s.db = db
	s.logger.Printf("connected to audit database (max_conns=%d)", maxOpenConns)
	return s, nil
}

// Close closes the underlying connection pool.
func (s *Sink) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record is one row appended to the instruction log.
type Record struct {
	Instruction string
	UserAddress string
	Source      int16
	ErrorCode   string // empty if Accepted
	Accepted    bool
}

// Append writes a single instruction outcome to the log. Failures to
// append never roll back the engine's own state transition — the
// audit log is strictly best-effort, observational infrastructure.
func (s *Sink) Append(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO instruction_log (instruction, user_address, source, error_code, accepted)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)`,
		r.Instruction, r.UserAddress, r.Source, r.ErrorCode, r.Accepted,
	)
	if err != nil {
		return fmt.Errorf("auditpg: append record: %w", err)
	}
	return nil
}

// Migration is a single embedded SQL migration file.
type Migration struct {
	Version string
	SQL     string
}

// MigrateUp applies every embedded migration not yet recorded in
// schema_migrations, in filename order.
func (s *Sink) MigrateUp(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("auditpg: create schema_migrations: %w", err)
	}

	migrations, err := s.readMigrations()
	if err != nil {
		return fmt.Errorf("auditpg: read migrations: %w", err)
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("auditpg: read applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("auditpg: apply migration %s: %w", m.Version, err)
		}
		s.logger.Printf("applied migration %s", m.Version)
	}
	return nil
}

func (s *Sink) readMigrations() ([]Migration, error) {
	var out []Migration
	err := fs.WalkDir(migrationsFS, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}
		content, err := migrationsFS.ReadFile(path)
		if err != nil {
			return err
		}
		out = append(out, Migration{
			Version: strings.TrimSuffix(d.Name(), ".sql"),
			SQL:     string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (s *Sink) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (s *Sink) applyMigration(ctx context.Context, m Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT DO NOTHING`, m.Version); err != nil {
		return err
	}
	return tx.Commit()
}
