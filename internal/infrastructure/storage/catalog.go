package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"NewsNotify/internal/domain"
)

const (
	sourceColumns  = "id, name, kind, base_url, avatar, selector, is_active, needs_translation, target_webhook_ids, created_at"
	webhookColumns = "id, name, endpoint, service_kind, is_active, created_at"
)

// ListActiveSources returns active sources ordered by creation time.
func (s *Store) ListActiveSources(ctx context.Context) ([]domain.Source, error) {
	query, args, err := sq.Select(sourceColumns).
		From("sources").
		Where(sq.Eq{"is_active": true}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build source query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return sources, nil
}

// CreateSource inserts a new source and returns its id. A duplicate
// name surfaces domain.ErrDuplicateName.
func (s *Store) CreateSource(ctx context.Context, source domain.Source) (int64, error) {
	query, args, err := sq.Insert("sources").
		Columns("name", "kind", "base_url", "avatar", "selector", "is_active", "needs_translation", "target_webhook_ids").
		Values(source.Name, source.Kind, source.BaseURL,
			nullable(source.Avatar), nullable(source.Selector),
			source.Active, source.NeedsTranslation, nullable(source.TargetWebhookIDs)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build source insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("source %q: %w", source.Name, domain.ErrDuplicateName)
	}
	if err != nil {
		return 0, fmt.Errorf("insert source: %w", err)
	}
	return res.LastInsertId()
}

// GetSource loads a single source regardless of its active flag.
func (s *Store) GetSource(ctx context.Context, id int64) (domain.Source, error) {
	query, args, err := sq.Select(sourceColumns).
		From("sources").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Source{}, fmt.Errorf("build source query: %w", err)
	}

	source, err := scanSource(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Source{}, fmt.Errorf("source %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Source{}, fmt.Errorf("get source: %w", err)
	}
	return source, nil
}

// SetSourceActive flips the source's active flag.
func (s *Store) SetSourceActive(ctx context.Context, id int64, active bool) error {
	return s.updateActive(ctx, "sources", id, active)
}

// DeleteSource removes the source row.
func (s *Store) DeleteSource(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "sources", id)
}

// ListActiveTargets returns active webhooks ordered by creation time.
func (s *Store) ListActiveTargets(ctx context.Context) ([]domain.Webhook, error) {
	query, args, err := sq.Select(webhookColumns).
		From("webhooks").
		Where(sq.Eq{"is_active": true}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build webhook query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query webhooks: %w", err)
	}
	defer rows.Close()

	var targets []domain.Webhook
	for rows.Next() {
		target, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		targets = append(targets, target)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhooks: %w", err)
	}
	return targets, nil
}

// CreateTarget inserts a new webhook and returns its id. A duplicate
// name surfaces domain.ErrDuplicateName.
func (s *Store) CreateTarget(ctx context.Context, target domain.Webhook) (int64, error) {
	query, args, err := sq.Insert("webhooks").
		Columns("name", "endpoint", "service_kind", "is_active").
		Values(target.Name, target.Endpoint, target.ServiceKind, target.Active).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build webhook insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("webhook %q: %w", target.Name, domain.ErrDuplicateName)
	}
	if err != nil {
		return 0, fmt.Errorf("insert webhook: %w", err)
	}
	return res.LastInsertId()
}

// GetTarget loads a single webhook regardless of its active flag.
func (s *Store) GetTarget(ctx context.Context, id int64) (domain.Webhook, error) {
	query, args, err := sq.Select(webhookColumns).
		From("webhooks").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Webhook{}, fmt.Errorf("build webhook query: %w", err)
	}

	target, err := scanWebhook(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Webhook{}, fmt.Errorf("webhook %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Webhook{}, fmt.Errorf("get webhook: %w", err)
	}
	return target, nil
}

// SetTargetActive flips the webhook's active flag.
func (s *Store) SetTargetActive(ctx context.Context, id int64, active bool) error {
	return s.updateActive(ctx, "webhooks", id, active)
}

// DeleteTarget removes the webhook row.
func (s *Store) DeleteTarget(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "webhooks", id)
}

func (s *Store) updateActive(ctx context.Context, table string, id int64, active bool) error {
	query, args, err := sq.Update(table).
		Set("is_active", active).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build %s update: %w", table, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s rows: %w", table, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", table, id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) deleteRow(ctx context.Context, table string, id int64) error {
	query, args, err := sq.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build %s delete: %w", table, err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s rows: %w", table, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", table, id, domain.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (domain.Source, error) {
	var (
		source           domain.Source
		avatar, selector sql.NullString
		targetIDs        sql.NullString
		created          sql.NullTime
	)
	err := row.Scan(&source.ID, &source.Name, &source.Kind, &source.BaseURL,
		&avatar, &selector, &source.Active, &source.NeedsTranslation, &targetIDs, &created)
	if err != nil {
		return domain.Source{}, err
	}
	source.Avatar = avatar.String
	source.Selector = selector.String
	source.TargetWebhookIDs = targetIDs.String
	source.CreatedAt = formatTimestamp(created)
	return source, nil
}

func scanWebhook(row rowScanner) (domain.Webhook, error) {
	var (
		target  domain.Webhook
		created sql.NullTime
	)
	err := row.Scan(&target.ID, &target.Name, &target.Endpoint,
		&target.ServiceKind, &target.Active, &created)
	if err != nil {
		return domain.Webhook{}, err
	}
	target.CreatedAt = formatTimestamp(created)
	return target, nil
}

// formatTimestamp renders a stored timestamp the way sqlite wrote it.
func formatTimestamp(value sql.NullTime) string {
	if !value.Valid {
		return ""
	}
	return value.Time.UTC().Format("2006-01-02 15:04:05")
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
