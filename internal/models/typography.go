// internal/models/typography.go
package models

import "time"

type FontFiles struct {
	WOFF2 string `json:"woff2,omitempty" yaml:"woff2,omitempty"`
	WOFF  string `json:"woff,omitempty" yaml:"woff,omitempty"`
	TTF   string `json:"ttf,omitempty" yaml:"ttf,omitempty"`
}

type FontWeight struct {
	Weight    int    `json:"weight" yaml:"weight"`
	Name      string `json:"name" yaml:"name"`
	IsDefault bool   `json:"isDefault" yaml:"isDefault"`
}

type FontEmailSettings struct {
	LineHeight    float64 `json:"lineHeight" yaml:"lineHeight"`
	LetterSpacing float64 `json:"letterSpacing" yaml:"letterSpacing"`
	EmailFallback string  `json:"emailFallback" yaml:"emailFallback"`
}

// TypographyFont is a font family registered for email, frontend or admin use.
type TypographyFont struct {
	ID               string            `json:"id" yaml:"id"`
	Name             string            `json:"name" yaml:"name"`
	FontFamily       string            `json:"fontFamily" yaml:"fontFamily"`
	DisplayName      string            `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Category         string            `json:"category" yaml:"category"` // primary | secondary | accent | monospace
	Usage            []string          `json:"usage,omitempty" yaml:"usage,omitempty"`
	FontFiles        FontFiles         `json:"fontFiles" yaml:"fontFiles"`
	WebSafeFallbacks string            `json:"webSafeFallbacks" yaml:"webSafeFallbacks"`
	FontWeights      []FontWeight      `json:"fontWeights,omitempty" yaml:"fontWeights,omitempty"`
	EmailSettings    FontEmailSettings `json:"emailSettings" yaml:"emailSettings"`
	IsActive         bool              `json:"isActive" yaml:"isActive"`
	UpdatedAt        time.Time         `json:"updatedAt" yaml:"-"`
}

// NewTypographyFont returns a font populated with collection defaults.
func NewTypographyFont() TypographyFont {
	return TypographyFont{
		Category:         "primary",
		Usage:            []string{"email"},
		WebSafeFallbacks: "Arial, Helvetica, sans-serif",
		EmailSettings: FontEmailSettings{
			LineHeight:    1.4,
			EmailFallback: "Arial, sans-serif",
		},
		IsActive: true,
	}
}

// HasFiles reports whether any webfont URL is set.
func (f *TypographyFont) HasFiles() bool {
	return f.FontFiles.WOFF2 != "" || f.FontFiles.WOFF != "" || f.FontFiles.TTF != ""
}

// TypographyOverride is the typography block shared by templates, layouts and brandings.
// The *Font fields are resolved from the font ids by the store and are not persisted.
type TypographyOverride struct {
	UseCustom        bool    `json:"useCustom" yaml:"useCustom"`
	PrimaryFontID    string  `json:"primaryFontId,omitempty" yaml:"primaryFontId,omitempty"`
	SecondaryFontID  string  `json:"secondaryFontId,omitempty" yaml:"secondaryFontId,omitempty"`
	AccentFontID     string  `json:"accentFontId,omitempty" yaml:"accentFontId,omitempty"`
	HeadingSize      string  `json:"headingSize,omitempty" yaml:"headingSize,omitempty"`
	BodySize         string  `json:"bodySize,omitempty" yaml:"bodySize,omitempty"`
	LineHeight       float64 `json:"lineHeight,omitempty" yaml:"lineHeight,omitempty"`
	ParagraphSpacing int     `json:"paragraphSpacing,omitempty" yaml:"paragraphSpacing,omitempty"`

	PrimaryFont   *TypographyFont `json:"primaryFont,omitempty" yaml:"-"`
	SecondaryFont *TypographyFont `json:"secondaryFont,omitempty" yaml:"-"`
	AccentFont    *TypographyFont `json:"accentFont,omitempty" yaml:"-"`
}

// DefaultTypographyOverride carries the collection default sizes with custom fonts off.
func DefaultTypographyOverride() TypographyOverride {
	return TypographyOverride{
		HeadingSize:      "32",
		BodySize:         "16",
		LineHeight:       1.6,
		ParagraphSpacing: 16,
	}
}

// FontIDs returns the referenced font ids, skipping empty ones.
func (t *TypographyOverride) FontIDs() []string {
	var ids []string
	for _, id := range []string{t.PrimaryFontID, t.SecondaryFontID, t.AccentFontID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Persisted strips the resolved fonts before the override is written.
func (t TypographyOverride) Persisted() TypographyOverride {
	t.PrimaryFont, t.SecondaryFont, t.AccentFont = nil, nil, nil
	return t
}
