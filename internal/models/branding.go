// internal/models/branding.go
package models

import "time"

type BrandColors struct {
	Primary    string `json:"primary" yaml:"primary"`
	Secondary  string `json:"secondary" yaml:"secondary"`
	Accent     string `json:"accent" yaml:"accent"`
	Background string `json:"background" yaml:"background"`
	Text       string `json:"text" yaml:"text"`
	TextLight  string `json:"textLight" yaml:"textLight"`
}

type ContactInfo struct {
	SupportEmail string `json:"supportEmail,omitempty" yaml:"supportEmail,omitempty"`
	Phone        string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address      string `json:"address,omitempty" yaml:"address,omitempty"`
	Website      string `json:"website,omitempty" yaml:"website,omitempty"`
}

// SocialPlatforms lists the accepted social link platforms.
var SocialPlatforms = []string{"facebook", "twitter", "instagram", "linkedin", "youtube", "tiktok", "discord", "github"}

type SocialLink struct {
	Platform string `json:"platform" yaml:"platform"`
	URL      string `json:"url" yaml:"url"`
}

// BrandingEmailSettings gates the legal links in the footer.
type BrandingEmailSettings struct {
	ShowUnsubscribeLink  bool `json:"showUnsubscribeLink" yaml:"showUnsubscribeLink"`
	ShowPreferencesLink  bool `json:"showPreferencesLink" yaml:"showPreferencesLink"`
	IncludeViewInBrowser bool `json:"includeViewInBrowser" yaml:"includeViewInBrowser"`
}

type AppBranding struct {
	ID              string                `json:"id" yaml:"id"`
	Name            string                `json:"name" yaml:"name"`
	AppName         string                `json:"appName" yaml:"appName"`
	Tagline         string                `json:"tagline,omitempty" yaml:"tagline,omitempty"`
	LogoID          string                `json:"logoId,omitempty" yaml:"logoId,omitempty"`
	LogoURL         string                `json:"logoUrl,omitempty" yaml:"logoUrl,omitempty"`
	Colors          BrandColors           `json:"colors" yaml:"colors"`
	GlobalVariables []BrandingVariable    `json:"globalVariables,omitempty" yaml:"globalVariables,omitempty"`
	Contact         ContactInfo           `json:"contact" yaml:"contact"`
	SocialLinks     []SocialLink          `json:"socialLinks,omitempty" yaml:"socialLinks,omitempty"`
	EmailTypography TypographyOverride    `json:"emailTypography" yaml:"emailTypography"`
	EmailSettings   BrandingEmailSettings `json:"emailSettings" yaml:"emailSettings"`
	IsActive        bool                  `json:"isActive" yaml:"isActive"`
	UpdatedAt       time.Time             `json:"updatedAt" yaml:"-"`
}

// DefaultColors is the palette used when a branding leaves a color unset.
func DefaultColors() BrandColors {
	return BrandColors{
		Primary:    "#007bff",
		Secondary:  "#6c757d",
		Accent:     "#28a745",
		Background: "#ffffff",
		Text:       "#333333",
		TextLight:  "#666666",
	}
}

// NewAppBranding returns a branding populated with collection defaults.
// Decoders unmarshal onto it so that omitted fields keep their defaults.
func NewAppBranding() AppBranding {
	return AppBranding{
		Colors: DefaultColors(),
		EmailSettings: BrandingEmailSettings{
			ShowUnsubscribeLink: true,
			ShowPreferencesLink: true,
		},
		EmailTypography: DefaultTypographyOverride(),
	}
}

// Palette fills empty colors from DefaultColors.
func (b *AppBranding) Palette() BrandColors {
	c, d := b.Colors, DefaultColors()
	if c.Primary == "" {
		c.Primary = d.Primary
	}
	if c.Secondary == "" {
		c.Secondary = d.Secondary
	}
	if c.Accent == "" {
		c.Accent = d.Accent
	}
	if c.Background == "" {
		c.Background = d.Background
	}
	if c.Text == "" {
		c.Text = d.Text
	}
	if c.TextLight == "" {
		c.TextLight = d.TextLight
	}
	return c
}
