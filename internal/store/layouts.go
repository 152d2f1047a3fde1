package store

import (
	"context"
	"database/sql"

	"branded-email-workers/internal/common/errors"
	"branded-email-workers/internal/models"
)

const (
	selectDefaultLayout = `SELECT id, doc, is_default, is_active, updated_at FROM email_layouts
WHERE is_default AND is_active ORDER BY updated_at DESC LIMIT 1`

	clearOtherDefaultLayouts = `UPDATE email_layouts SET is_default = false WHERE id <> $1 AND is_default`

	upsertLayout = `INSERT INTO email_layouts (id, is_default, is_active, doc, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET is_default = EXCLUDED.is_default, is_active = EXCLUDED.is_active, doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`
)

func scanLayout(row rowScanner) (*models.EmailLayout, error) {
	l := models.DefaultLayout()
	var doc []byte
	if err := row.Scan(&l.ID, &doc, &l.IsDefault, &l.IsActive, &l.UpdatedAt); err != nil {
		return nil, err
	}
	id, def, active, updated := l.ID, l.IsDefault, l.IsActive, l.UpdatedAt
	if err := decodeDoc(doc, &l); err != nil {
		return nil, err
	}
	l.ID, l.IsDefault, l.IsActive, l.UpdatedAt = id, def, active, updated
	return &l, nil
}

// GetDefaultLayout returns the layout flagged both default and active.
func (s *Store) GetDefaultLayout(ctx context.Context) (*models.EmailLayout, error) {
	var cached models.EmailLayout
	if s.cache.get(ctx, "layout", keyDefaultLayout, &cached) {
		return &cached, nil
	}

	l, err := scanLayout(s.db.QueryRow(ctx, selectDefaultLayout))
	if err != nil {
		return nil, s.readErr("email_layouts", err, errors.NewLayoutNotFoundError())
	}
	s.resolveTypography(ctx, &l.Typography)

	s.cache.set(ctx, keyDefaultLayout, l)
	return l, nil
}

// SaveLayout upserts l. Marking it default clears the flag on every other layout.
func (s *Store) SaveLayout(ctx context.Context, l *models.EmailLayout) error {
	if l.Name == "" {
		return errors.NewValidationError("layout name is required")
	}
	ensureID(&l.ID)
	l.UpdatedAt = s.now()

	persisted := *l
	persisted.Typography = l.Typography.Persisted()
	doc, err := encodeDoc(persisted)
	if err != nil {
		return s.writeErr("email_layouts", err)
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if l.IsDefault {
			if _, err := tx.ExecContext(ctx, clearOtherDefaultLayouts, l.ID); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, upsertLayout, l.ID, l.IsDefault, l.IsActive, doc, l.UpdatedAt)
		return err
	})
	if err != nil {
		return s.writeErr("email_layouts", err)
	}

	s.cache.invalidate(ctx, keyDefaultLayout)
	return nil
}
