package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/anoncasino/internal/infra/pgutils"
	"github.com/fastprodman/anoncasino/internal/repos/settings"
)

var _ settings.Settings = (*settingsRepo)(nil)

type settingsRepo struct{ db *sql.DB }

func New(db *sql.DB) *settingsRepo {
	return &settingsRepo{db: db}
}

const entryColumns = `key, value, value_type, description, category, is_public, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (settings.Entry, error) {
	var e settings.Entry

	err := row.Scan(&e.Key, &e.Value, &e.Type, &e.Description, &e.Category, &e.IsPublic, &e.UpdatedAt)

	return e, err
}

func (r *settingsRepo) Get(ctx context.Context, key string) (settings.Entry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM settings
		WHERE key = $1
	`, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return settings.Entry{}, settings.ErrSettingNotFound
		}

		return settings.Entry{}, fmt.Errorf("get setting %q: %w", key, err)
	}

	return e, nil
}

func (r *settingsRepo) List(ctx context.Context, publicOnly bool) ([]settings.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM settings
		WHERE is_public OR NOT $1
		ORDER BY category, key
	`, publicOnly)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	var out []settings.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}

		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}

	return out, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, e settings.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, value_type, description, category, is_public)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO UPDATE
		SET value       = EXCLUDED.value,
		    value_type  = EXCLUDED.value_type,
		    description = COALESCE(NULLIF(EXCLUDED.description, ''), settings.description),
		    category    = EXCLUDED.category,
		    is_public   = EXCLUDED.is_public,
		    updated_at  = now()
	`, e.Key, e.Value, string(e.Type), e.Description, e.Category, e.IsPublic)
	if err != nil {
		if pgutils.IsCheckViolation(err) {
			return fmt.Errorf("setting %q has invalid type %q: %w", e.Key, e.Type, err)
		}

		return fmt.Errorf("upsert setting %q: %w", e.Key, err)
	}

	return nil
}

func (r *settingsRepo) InsertMissing(ctx context.Context, entries []settings.Entry) (int, error) {
	added := 0

	err := pgutils.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, e := range entries {
			res, err := tx.Exec(`
				INSERT INTO settings (key, value, value_type, description, category, is_public)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (key) DO NOTHING
			`, e.Key, e.Value, string(e.Type), e.Description, e.Category, e.IsPublic)
			if err != nil {
				return fmt.Errorf("insert setting %q: %w", e.Key, err)
			}

			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}

			added += int(n)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return added, nil
}
