package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"NewsNotify/internal/domain"
	"NewsNotify/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    fingerprint TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL,
    url TEXT NOT NULL,
    source_name TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL,
    kind TEXT NOT NULL,
    base_url TEXT NOT NULL,
    avatar TEXT,
    selector TEXT,
    is_active BOOLEAN NOT NULL DEFAULT 1,
    needs_translation BOOLEAN NOT NULL DEFAULT 0,
    target_webhook_ids TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS webhooks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL,
    endpoint TEXT NOT NULL,
    service_kind TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_articles_fingerprint ON articles(fingerprint);
CREATE INDEX IF NOT EXISTS idx_articles_source_created ON articles(source_name, created_at);
CREATE INDEX IF NOT EXISTS idx_sources_active ON sources(is_active);
CREATE INDEX IF NOT EXISTS idx_webhooks_active ON webhooks(is_active);
`

// Store persists seen-article fingerprints and the source/webhook
// catalog in a single SQLite database.
//
// SeenStore methods follow a conservative failure policy: storage
// errors are logged here and collapsed to safe defaults instead of
// propagating, so a broken database yields duplicate notifications
// rather than lost ones.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var (
	_ ports.SeenStore = (*Store)(nil)
	_ ports.Catalog   = (*Store)(nil)
)

// Open opens (or creates) the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Per-run inserts race across source goroutines; a single writer
	// connection sidesteps SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Exists reports whether the article fingerprint was persisted before.
func (s *Store) Exists(ctx context.Context, article domain.Article) bool {
	query, args, err := sq.Select("1").
		From("articles").
		Where(sq.Eq{"fingerprint": article.Fingerprint()}).
		Limit(1).
		ToSql()
	if err != nil {
		s.logError("build exists query", err)
		return false
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		s.logError("check article exists", err)
		return false
	}
	return true
}

// FilterNew returns the unseen subsequence of articles, order preserved.
func (s *Store) FilterNew(ctx context.Context, articles []domain.Article) []domain.Article {
	fresh := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if !s.Exists(ctx, article) {
			fresh = append(fresh, article)
		}
	}
	return fresh
}

// Persist inserts the article under its fingerprint. An already stored
// fingerprint is ignored, not an error; the return value reports
// whether a new row was written.
func (s *Store) Persist(ctx context.Context, article domain.Article, sourceName string) bool {
	query, args, err := sq.Insert("articles").
		Options("OR IGNORE").
		Columns("fingerprint", "title", "url", "source_name").
		Values(article.Fingerprint(), article.Title, article.URL, sourceName).
		ToSql()
	if err != nil {
		s.logError("build persist query", err)
		return false
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		s.logError("persist article", err)
		return false
	}
	affected, err := res.RowsAffected()
	if err != nil {
		s.logError("persist article rows", err)
		return false
	}
	return affected > 0
}

// PersistBatch stores each article with Persist semantics and returns
// how many rows were newly inserted. Row failures are logged inside
// Persist and do not abort the batch.
func (s *Store) PersistBatch(ctx context.Context, articles []domain.Article, sourceName string) int {
	saved := 0
	for _, article := range articles {
		if s.Persist(ctx, article, sourceName) {
			saved++
		}
	}
	return saved
}

// Count returns the total stored record count, or the per-source count
// when sourceName is non-empty.
func (s *Store) Count(ctx context.Context, sourceName string) int {
	builder := sq.Select("COUNT(*)").From("articles")
	if sourceName != "" {
		builder = builder.Where(sq.Eq{"source_name": sourceName})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		s.logError("build count query", err)
		return 0
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		s.logError("count articles", err)
		return 0
	}
	return count
}

// Cleanup deletes seen records older than the retention cutoff and
// returns how many rows went away. Best effort: failures are logged,
// never surfaced.
func (s *Store) Cleanup(ctx context.Context, retentionDays int) int {
	query, args, err := sq.Delete("articles").
		Where(sq.Expr("created_at < datetime('now', ?)", fmt.Sprintf("-%d days", retentionDays))).
		ToSql()
	if err != nil {
		s.logError("build cleanup query", err)
		return 0
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		s.logError("cleanup old articles", err)
		return 0
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		s.logError("cleanup rows affected", err)
		return 0
	}
	if s.logger != nil {
		s.logger.Info("removed old articles", "deleted", deleted, "retention_days", retentionDays)
	}
	return int(deleted)
}

func (s *Store) logError(msg string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, "error", err)
	}
}

// isUniqueViolation detects the sqlite unique-constraint extended code.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
