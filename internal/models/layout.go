// internal/models/layout.go
package models

import "time"

// Header layout variants.
const (
	HeaderLogoCenter        = "logo-center"
	HeaderLogoLeftNameRight = "logo-left-name-right"
	HeaderLogoOnly          = "logo-only"
	HeaderNameOnly          = "name-only"
	HeaderCustom            = "custom"
)

// Footer layout variants.
const (
	FooterStandard   = "standard"
	FooterMinimal    = "minimal"
	FooterSocialOnly = "social-only"
	FooterCustom     = "custom"
)

type Spacing struct {
	Top    int `json:"top" yaml:"top"`
	Right  int `json:"right" yaml:"right"`
	Bottom int `json:"bottom" yaml:"bottom"`
	Left   int `json:"left" yaml:"left"`
}

type Border struct {
	TopEnabled    bool   `json:"topEnabled" yaml:"topEnabled"`
	BottomEnabled bool   `json:"bottomEnabled" yaml:"bottomEnabled"`
	Width         int    `json:"width" yaml:"width"`
	Color         string `json:"color" yaml:"color"`
	Style         string `json:"style" yaml:"style"` // solid | dashed | dotted
}

type LogoBounds struct {
	MaxWidth  int `json:"maxWidth" yaml:"maxWidth"`
	MaxHeight int `json:"maxHeight" yaml:"maxHeight"`
}

type HeaderConfig struct {
	Enabled         bool       `json:"enabled" yaml:"enabled"`
	Layout          string     `json:"layout" yaml:"layout"`
	BackgroundColor string     `json:"backgroundColor" yaml:"backgroundColor"`
	TextColor       string     `json:"textColor" yaml:"textColor"`
	Padding         Spacing    `json:"padding" yaml:"padding"`
	Border          Border     `json:"border" yaml:"border"`
	Logo            LogoBounds `json:"logo" yaml:"logo"`
	CustomHTML      string     `json:"customHtml,omitempty" yaml:"customHtml,omitempty"`
}

type FooterSections struct {
	ShowSocialLinks bool `json:"showSocialLinks" yaml:"showSocialLinks"`
	ShowContactInfo bool `json:"showContactInfo" yaml:"showContactInfo"`
	ShowLegalLinks  bool `json:"showLegalLinks" yaml:"showLegalLinks"`
	ShowCopyright   bool `json:"showCopyright" yaml:"showCopyright"`
}

type FooterConfig struct {
	Enabled         bool           `json:"enabled" yaml:"enabled"`
	Layout          string         `json:"layout" yaml:"layout"`
	BackgroundColor string         `json:"backgroundColor" yaml:"backgroundColor"`
	TextColor       string         `json:"textColor" yaml:"textColor"`
	Padding         Spacing        `json:"padding" yaml:"padding"`
	Border          Border         `json:"border" yaml:"border"`
	Sections        FooterSections `json:"sections" yaml:"sections"`
	CustomHTML      string         `json:"customHtml,omitempty" yaml:"customHtml,omitempty"`
}

type EmailLayout struct {
	ID         string             `json:"id" yaml:"id"`
	Name       string             `json:"name" yaml:"name"`
	Header     HeaderConfig       `json:"header" yaml:"header"`
	Footer     FooterConfig       `json:"footer" yaml:"footer"`
	Typography TypographyOverride `json:"typography" yaml:"typography"`
	IsDefault  bool               `json:"isDefault" yaml:"isDefault"`
	IsActive   bool               `json:"isActive" yaml:"isActive"`
	UpdatedAt  time.Time          `json:"updatedAt" yaml:"-"`
}

// DefaultLayout returns a layout populated with collection defaults.
// Decoders unmarshal onto it so that omitted fields keep their defaults.
func DefaultLayout() EmailLayout {
	return EmailLayout{
		Name: "Default",
		Header: HeaderConfig{
			Enabled:         true,
			Layout:          HeaderLogoCenter,
			BackgroundColor: "#007bff",
			TextColor:       "#ffffff",
			Padding:         Spacing{Top: 30, Right: 20, Bottom: 30, Left: 20},
			Border:          Border{Width: 1, Color: "#e9ecef", Style: "solid"},
			Logo:            LogoBounds{MaxWidth: 200, MaxHeight: 60},
		},
		Footer: FooterConfig{
			Enabled:         true,
			Layout:          FooterStandard,
			BackgroundColor: "#f8f9fa",
			TextColor:       "#666666",
			Padding:         Spacing{Top: 20, Right: 20, Bottom: 20, Left: 20},
			Border:          Border{TopEnabled: true, Width: 1, Color: "#e9ecef", Style: "solid"},
			Sections: FooterSections{
				ShowSocialLinks: true,
				ShowContactInfo: true,
				ShowLegalLinks:  true,
				ShowCopyright:   true,
			},
		},
		Typography: DefaultTypographyOverride(),
		IsDefault:  true,
		IsActive:   true,
	}
}
