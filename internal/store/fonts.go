package store

import (
	"context"

	"branded-email-workers/internal/common/errors"
	"branded-email-workers/internal/models"

	"github.com/lib/pq"
)

const (
	selectFontsByID = `SELECT id, doc, is_active, updated_at FROM typography_fonts WHERE id = ANY($1) AND is_active`

	selectFontsByUsage = `SELECT id, doc, is_active, updated_at FROM typography_fonts
WHERE is_active AND doc->'usage' @> jsonb_build_array($1::text)
ORDER BY doc->>'name'`

	upsertFont = `INSERT INTO typography_fonts (id, is_active, doc, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET is_active = EXCLUDED.is_active, doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`
)

func scanFont(row rowScanner) (models.TypographyFont, error) {
	f := models.NewTypographyFont()
	var doc []byte
	if err := row.Scan(&f.ID, &doc, &f.IsActive, &f.UpdatedAt); err != nil {
		return f, err
	}
	id, active, updated := f.ID, f.IsActive, f.UpdatedAt
	if err := decodeDoc(doc, &f); err != nil {
		return f, err
	}
	f.ID, f.IsActive, f.UpdatedAt = id, active, updated
	return f, nil
}

// GetFonts returns the active fonts among ids, keyed by id.
func (s *Store) GetFonts(ctx context.Context, ids []string) (map[string]models.TypographyFont, error) {
	out := make(map[string]models.TypographyFont, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.db.Query(ctx, selectFontsByID, pq.Array(ids))
	if err != nil {
		return nil, s.readErr("typography_fonts", err, nil)
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanFont(rows)
		if err != nil {
			return nil, s.readErr("typography_fonts", err, nil)
		}
		out[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, s.readErr("typography_fonts", err, nil)
	}
	return out, nil
}

// ListFontsByUsage returns active fonts tagged with usage (email, frontend or admin).
func (s *Store) ListFontsByUsage(ctx context.Context, usage string) ([]models.TypographyFont, error) {
	rows, err := s.db.Query(ctx, selectFontsByUsage, usage)
	if err != nil {
		return nil, s.readErr("typography_fonts", err, nil)
	}
	defer rows.Close()

	fonts := []models.TypographyFont{}
	for rows.Next() {
		f, err := scanFont(rows)
		if err != nil {
			return nil, s.readErr("typography_fonts", err, nil)
		}
		fonts = append(fonts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, s.readErr("typography_fonts", err, nil)
	}
	return fonts, nil
}

func (s *Store) SaveFont(ctx context.Context, f *models.TypographyFont) error {
	if f.FontFamily == "" {
		return errors.NewValidationError("fontFamily is required")
	}
	ensureID(&f.ID)
	f.UpdatedAt = s.now()

	doc, err := encodeDoc(f)
	if err != nil {
		return s.writeErr("typography_fonts", err)
	}
	if _, err := s.db.Exec(ctx, upsertFont, f.ID, f.IsActive, doc, f.UpdatedAt); err != nil {
		return s.writeErr("typography_fonts", err)
	}
	s.cache.invalidateAll(ctx)
	return nil
}

// resolveTypography fills the font pointers of t from its ids. A failed
// lookup leaves them unset and the renderer falls back to web-safe stacks.
func (s *Store) resolveTypography(ctx context.Context, t *models.TypographyOverride) {
	ids := t.FontIDs()
	if len(ids) == 0 {
		return
	}

	fonts, err := s.GetFonts(ctx, ids)
	if err != nil {
		s.logger.Warn("Typography fonts unavailable, using fallbacks", map[string]interface{}{
			"fontIds": ids,
			"error":   err.Error(),
		})
		return
	}

	pick := func(id string) *models.TypographyFont {
		if f, ok := fonts[id]; ok {
			return &f
		}
		return nil
	}
	t.PrimaryFont = pick(t.PrimaryFontID)
	t.SecondaryFont = pick(t.SecondaryFontID)
	t.AccentFont = pick(t.AccentFontID)
}
