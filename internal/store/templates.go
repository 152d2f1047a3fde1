package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"branded-email-workers/internal/common/database"
	"branded-email-workers/internal/common/errors"
	"branded-email-workers/internal/common/validation"
	"branded-email-workers/internal/models"
)

const (
	selectTemplateBySlug = `SELECT id, doc, is_active, updated_at FROM email_templates WHERE slug = $1 AND is_active`

	selectTemplateSlug = `SELECT slug FROM email_templates WHERE id = $1`

	upsertTemplate = `INSERT INTO email_templates (id, slug, is_active, doc, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET slug = EXCLUDED.slug, is_active = EXCLUDED.is_active, doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`
)

func scanTemplate(row rowScanner) (*models.EmailTemplate, error) {
	var (
		tpl models.EmailTemplate
		doc []byte
	)
	if err := row.Scan(&tpl.ID, &doc, &tpl.IsActive, &tpl.UpdatedAt); err != nil {
		return nil, err
	}
	id, active, updated := tpl.ID, tpl.IsActive, tpl.UpdatedAt
	if err := decodeDoc(doc, &tpl); err != nil {
		return nil, err
	}
	tpl.ID, tpl.IsActive, tpl.UpdatedAt = id, active, updated
	return &tpl, nil
}

// GetTemplateBySlug returns the active template with slug. Inactive templates
// are never returned.
func (s *Store) GetTemplateBySlug(ctx context.Context, slug string) (*models.EmailTemplate, error) {
	var cached models.EmailTemplate
	if s.cache.get(ctx, "template", templateKey(slug), &cached) {
		return &cached, nil
	}

	tpl, err := scanTemplate(s.db.QueryRow(ctx, selectTemplateBySlug, slug))
	if err != nil {
		return nil, s.readErr("email_templates", err, errors.NewTemplateNotFoundError(slug))
	}
	s.resolveTypography(ctx, &tpl.Typography)

	s.cache.set(ctx, templateKey(slug), tpl)
	return tpl, nil
}

// SaveTemplate inserts or updates tpl by id and drops cached copies under
// both its previous and current slug.
func (s *Store) SaveTemplate(ctx context.Context, tpl *models.EmailTemplate) error {
	if !validation.ValidateSlug(tpl.Slug) {
		return errors.NewValidationError(fmt.Sprintf("slug %q must match ^[a-z0-9-_]+$", tpl.Slug))
	}
	ensureID(&tpl.ID)
	tpl.UpdatedAt = s.now()

	persisted := *tpl
	persisted.Typography = tpl.Typography.Persisted()
	doc, err := encodeDoc(persisted)
	if err != nil {
		return s.writeErr("email_templates", err)
	}

	var previous string
	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, selectTemplateSlug, tpl.ID).Scan(&previous); err != nil && !stderrors.Is(err, sql.ErrNoRows) {
			return err
		}
		_, err := tx.ExecContext(ctx, upsertTemplate, tpl.ID, tpl.Slug, tpl.IsActive, doc, tpl.UpdatedAt)
		return err
	})
	if err != nil {
		if _, ok := database.IsUniqueViolation(err); ok {
			return errors.NewValidationError(fmt.Sprintf("slug %q is already used by another template", tpl.Slug))
		}
		return s.writeErr("email_templates", err)
	}

	keys := []string{templateKey(tpl.Slug)}
	if previous != "" && previous != tpl.Slug {
		keys = append(keys, templateKey(previous))
	}
	s.cache.invalidate(ctx, keys...)
	return nil
}
