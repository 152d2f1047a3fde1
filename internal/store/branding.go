package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"branded-email-workers/internal/common/errors"
	"branded-email-workers/internal/common/validation"
	"branded-email-workers/internal/models"
)

const (
	selectBrandingByID = `SELECT id, doc, is_active, updated_at FROM app_branding WHERE id = $1`

	selectActiveBranding = `SELECT id, doc, is_active, updated_at FROM app_branding
WHERE is_active ORDER BY updated_at DESC LIMIT 1`

	deactivateOtherBrandings = `UPDATE app_branding SET is_active = false WHERE id <> $1 AND is_active`

	upsertBranding = `INSERT INTO app_branding (id, is_active, doc, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET is_active = EXCLUDED.is_active, doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`
)

func scanBranding(row rowScanner) (*models.AppBranding, error) {
	b := models.NewAppBranding()
	var doc []byte
	if err := row.Scan(&b.ID, &doc, &b.IsActive, &b.UpdatedAt); err != nil {
		return nil, err
	}
	id, active, updated := b.ID, b.IsActive, b.UpdatedAt
	if err := decodeDoc(doc, &b); err != nil {
		return nil, err
	}
	b.ID, b.IsActive, b.UpdatedAt = id, active, updated
	return &b, nil
}

func (s *Store) GetBrandingByID(ctx context.Context, id string) (*models.AppBranding, error) {
	b, err := scanBranding(s.db.QueryRow(ctx, selectBrandingByID, id))
	if err != nil {
		return nil, s.readErr("app_branding", err, errors.NewBrandingNotFoundError("id: "+id))
	}
	s.resolveBranding(ctx, b)
	return b, nil
}

// GetActiveBranding returns the most recently updated active branding.
func (s *Store) GetActiveBranding(ctx context.Context) (*models.AppBranding, error) {
	var cached models.AppBranding
	if s.cache.get(ctx, "branding", keyActiveBranding, &cached) {
		return &cached, nil
	}

	b, err := scanBranding(s.db.QueryRow(ctx, selectActiveBranding))
	if err != nil {
		return nil, s.readErr("app_branding", err, errors.NewBrandingNotFoundError("no active branding"))
	}
	s.resolveBranding(ctx, b)

	s.cache.set(ctx, keyActiveBranding, b)
	return b, nil
}

func (s *Store) resolveBranding(ctx context.Context, b *models.AppBranding) {
	if b.LogoID != "" {
		m, err := s.GetMedia(ctx, b.LogoID)
		if err != nil {
			s.logger.Warn("Branding logo could not be resolved", map[string]interface{}{
				"brandingId": b.ID,
				"logoId":     b.LogoID,
				"error":      err.Error(),
			})
		} else {
			b.LogoURL = m.URL
		}
	}
	s.resolveTypography(ctx, &b.EmailTypography)
}

// SaveBranding upserts b. Activating it deactivates every other branding in
// the same transaction.
func (s *Store) SaveBranding(ctx context.Context, b *models.AppBranding) error {
	if err := validateBranding(b); err != nil {
		return err
	}
	ensureID(&b.ID)
	b.UpdatedAt = s.now()

	persisted := *b
	persisted.EmailTypography = b.EmailTypography.Persisted()
	doc, err := encodeDoc(persisted)
	if err != nil {
		return s.writeErr("app_branding", err)
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if b.IsActive {
			if _, err := tx.ExecContext(ctx, deactivateOtherBrandings, b.ID); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, upsertBranding, b.ID, b.IsActive, doc, b.UpdatedAt)
		return err
	})
	if err != nil {
		return s.writeErr("app_branding", err)
	}

	s.cache.invalidate(ctx, keyActiveBranding)
	return nil
}

func validateBranding(b *models.AppBranding) error {
	for _, l := range b.SocialLinks {
		if !slices.Contains(models.SocialPlatforms, l.Platform) {
			return errors.NewValidationError(fmt.Sprintf("unsupported social platform %q", l.Platform))
		}
		if !validation.ValidateURL(l.URL) {
			return errors.NewValidationError(fmt.Sprintf("social link for %s must be an http(s) URL", l.Platform))
		}
	}
	c := b.Colors
	for _, color := range []string{c.Primary, c.Secondary, c.Accent, c.Background, c.Text, c.TextLight} {
		if color != "" && !validation.ValidateHexColor(color) {
			return errors.NewValidationError(fmt.Sprintf("color %q is not a hex value", color))
		}
	}
	return nil
}
