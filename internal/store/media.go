package store

import (
	"context"

	"branded-email-workers/internal/common/errors"
	"branded-email-workers/internal/models"
)

const (
	selectMedia = `SELECT id, url, alt, mime_type FROM media WHERE id = $1`

	upsertMedia = `INSERT INTO media (id, url, alt, mime_type, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET url = EXCLUDED.url, alt = EXCLUDED.alt, mime_type = EXCLUDED.mime_type, updated_at = EXCLUDED.updated_at`
)

func (s *Store) GetMedia(ctx context.Context, id string) (*models.Media, error) {
	var m models.Media
	err := s.db.QueryRow(ctx, selectMedia, id).Scan(&m.ID, &m.URL, &m.Alt, &m.MimeType)
	if err != nil {
		return nil, s.readErr("media", err, nil)
	}
	return &m, nil
}

func (s *Store) SaveMedia(ctx context.Context, m *models.Media) error {
	if m.URL == "" {
		return errors.NewValidationError("media url is required")
	}
	ensureID(&m.ID)

	if _, err := s.db.Exec(ctx, upsertMedia, m.ID, m.URL, m.Alt, m.MimeType, s.now()); err != nil {
		return s.writeErr("media", err)
	}
	// logo urls are resolved into cached brandings
	s.cache.invalidateAll(ctx)
	return nil
}
