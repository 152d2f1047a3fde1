package seed

import (
	"context"
	"fmt"

	"branded-email-workers/internal/models"
)

// Writer is satisfied by *store.Store.
type Writer interface {
	SaveMedia(ctx context.Context, m *models.Media) error
	SaveFont(ctx context.Context, f *models.TypographyFont) error
	SaveBranding(ctx context.Context, b *models.AppBranding) error
	SaveLayout(ctx context.Context, l *models.EmailLayout) error
	SaveGlobalVariable(ctx context.Context, g *models.GlobalVariable) error
	SaveTemplate(ctx context.Context, t *models.EmailTemplate) error
	SaveEmailSettings(ctx context.Context, es *models.EmailSettings) error
}

// Counts is the number of records written per collection.
type Counts struct {
	Media           int `json:"media"`
	Fonts           int `json:"fonts"`
	Branding        int `json:"branding"`
	Layouts         int `json:"layouts"`
	GlobalVariables int `json:"globalVariables"`
	Templates       int `json:"templates"`
	EmailSettings   int `json:"emailSettings"`
}

func (c Counts) Fields() map[string]interface{} {
	return map[string]interface{}{
		"media":           c.Media,
		"fonts":           c.Fonts,
		"branding":        c.Branding,
		"layouts":         c.Layouts,
		"globalVariables": c.GlobalVariables,
		"templates":       c.Templates,
		"emailSettings":   c.EmailSettings,
	}
}

// Apply writes the bundle in dependency order: media and fonts before the
// records that reference them. It stops at the first failed write and
// returns what was written so far. Records are upserted by id, so a rerun
// after fixing the failure is safe.
func Apply(ctx context.Context, w Writer, b *Bundle) (Counts, error) {
	var c Counts

	for i := range b.Media {
		if err := w.SaveMedia(ctx, &b.Media[i]); err != nil {
			return c, fmt.Errorf("media[%d]: %w", i, err)
		}
		c.Media++
	}
	for i := range b.Fonts {
		if err := w.SaveFont(ctx, &b.Fonts[i]); err != nil {
			return c, fmt.Errorf("fonts[%d] %s: %w", i, b.Fonts[i].FontFamily, err)
		}
		c.Fonts++
	}
	for i := range b.Branding {
		if err := w.SaveBranding(ctx, &b.Branding[i]); err != nil {
			return c, fmt.Errorf("branding[%d] %s: %w", i, b.Branding[i].Name, err)
		}
		c.Branding++
	}
	for i := range b.Layouts {
		if err := w.SaveLayout(ctx, &b.Layouts[i]); err != nil {
			return c, fmt.Errorf("layouts[%d] %s: %w", i, b.Layouts[i].Name, err)
		}
		c.Layouts++
	}
	for i := range b.GlobalVariables {
		if err := w.SaveGlobalVariable(ctx, &b.GlobalVariables[i]); err != nil {
			return c, fmt.Errorf("globalVariables[%d] %s: %w", i, b.GlobalVariables[i].Name, err)
		}
		c.GlobalVariables++
	}
	for i := range b.Templates {
		if err := w.SaveTemplate(ctx, &b.Templates[i]); err != nil {
			return c, fmt.Errorf("templates[%d] %s: %w", i, b.Templates[i].Slug, err)
		}
		c.Templates++
	}
	for i := range b.EmailSettings {
		if err := w.SaveEmailSettings(ctx, &b.EmailSettings[i]); err != nil {
			return c, fmt.Errorf("emailSettings[%d] %s: %w", i, b.EmailSettings[i].ProviderName, err)
		}
		c.EmailSettings++
	}
	return c, nil
}
