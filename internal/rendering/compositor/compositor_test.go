package compositor

import (
	"strings"
	"testing"
	"time"

	"branded-email-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

var clock = WithClock(func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) })

func testBranding() *models.AppBranding {
	b := models.NewAppBranding()
	b.AppName = "Acme"
	b.Tagline = "Rockets for everyone"
	b.LogoURL = "https://cdn.acme.io/logo.png"
	b.Contact = models.ContactInfo{
		SupportEmail: "help@acme.io",
		Phone:        "+1 555 0100",
		Website:      "https://acme.io",
		Address:      "1 Launch Pad\nCape Town",
	}
	b.SocialLinks = []models.SocialLink{{Platform: "github", URL: "https://github.com/acme"}}
	return &b
}

func TestCompose_ShellStructure(t *testing.T) {
	out := Compose("<p>Hello</p>", testBranding(), "Your reset link", nil, clock)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Equal(t, 1, strings.Count(out, "<html"))
	assert.Equal(t, 1, strings.Count(out, "</html>"))
	assert.Contains(t, out, `<meta charset="UTF-8">`)
	assert.Contains(t, out, `<title>Acme</title>`)
	assert.Contains(t, out, `<meta name="description" content="Your reset link">`)
	assert.Contains(t, out, "max-width: 600px;")
	assert.Contains(t, out, "<p>Hello</p>")
	assert.Contains(t, out, "/* Email Typography Styles */")
	assert.Contains(t, out, "<!--[if mso]>")
}

func TestCompose_PreheaderDirectlyAfterBody(t *testing.T) {
	out := Compose("x", testBranding(), "Preview text", nil, clock)
	idx := strings.Index(out, "<body>\n")
	assert.Greater(t, idx, 0)
	rest := out[idx+len("<body>\n"):]
	assert.True(t, strings.HasPrefix(rest, `<div style="display: none; max-height: 0; overflow: hidden;">Preview text</div>`))

	noPre := Compose("x", testBranding(), "", nil, clock)
	assert.NotContains(t, noPre, "display: none")
	assert.NotContains(t, noPre, `name="description"`)
}

func TestCompose_HeaderVariants(t *testing.T) {
	tests := []struct {
		variant  string
		contains []string
		excludes []string
	}{
		{models.HeaderLogoCenter, []string{`<img src="https://cdn.acme.io/logo.png"`, ">Acme</h1>", "Rockets for everyone"}, nil},
		{models.HeaderLogoLeftNameRight, []string{"<table role=\"presentation\"", "text-align: right", "<img src="}, nil},
		{models.HeaderLogoOnly, []string{"<img src="}, []string{">Acme</h1>"}},
		{models.HeaderNameOnly, []string{">Acme</h1>"}, []string{"<img src="}},
		{models.HeaderCustom, []string{"<img src=", ">Acme</h1>"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			layout := models.DefaultLayout()
			layout.Header.Layout = tt.variant
			out := Compose("", testBranding(), "", &layout, clock)
			for _, c := range tt.contains {
				assert.Contains(t, out, c)
			}
			for _, e := range tt.excludes {
				assert.NotContains(t, out, e)
			}
		})
	}
}

func TestCompose_HeaderStyling(t *testing.T) {
	layout := models.DefaultLayout()
	layout.Header.Padding = models.Spacing{Top: 10, Right: 11, Bottom: 12, Left: 13}
	layout.Header.Border = models.Border{BottomEnabled: true, Width: 2, Style: "dashed", Color: "#000000"}
	layout.Header.Logo = models.LogoBounds{MaxWidth: 150, MaxHeight: 40}

	out := Compose("", testBranding(), "", &layout, clock)
	assert.Contains(t, out, "padding: 10px 11px 12px 13px;")
	assert.Contains(t, out, "border-bottom: 2px dashed #000000;")
	assert.Contains(t, out, "max-width: 150px; max-height: 40px;")
}

func TestCompose_HeaderCustomHTMLAndDisabled(t *testing.T) {
	layout := models.DefaultLayout()
	layout.Header.CustomHTML = `<div id="banner">Custom</div>`
	out := Compose("", testBranding(), "", &layout, clock)
	assert.Contains(t, out, `<div id="banner">Custom</div>`)
	assert.NotContains(t, out, ">Acme</h1>")

	layout = models.DefaultLayout()
	layout.Header.Enabled = false
	out = Compose("", testBranding(), "", &layout, clock)
	assert.NotContains(t, out, `class="email-header"`)
}

func TestCompose_FooterSections(t *testing.T) {
	out := Compose("", testBranding(), "", nil, clock, WithLinks(Links{Unsubscribe: "https://acme.io/unsubscribe"}))

	assert.Contains(t, out, "<strong>Follow us:</strong>")
	assert.Contains(t, out, `>Github</a>`)
	assert.Contains(t, out, `<a href="https://acme.io/unsubscribe"`)
	assert.Contains(t, out, `<a href="#" style="color: #666666; text-decoration: none; margin: 0 10px;">Email Preferences</a>`)
	assert.NotContains(t, out, "View in Browser")
	assert.Contains(t, out, `Email: <a href="mailto:help@acme.io"`)
	assert.Contains(t, out, "Phone: +1 555 0100<br>")
	assert.Contains(t, out, "1 Launch Pad<br>Cape Town")
	assert.Contains(t, out, "© 2025 Acme. All rights reserved.")
	assert.Contains(t, out, "border-top: 1px solid #e9ecef;")
}

func TestCompose_FooterVariantsAndToggles(t *testing.T) {
	t.Run("minimal drops social", func(t *testing.T) {
		layout := models.DefaultLayout()
		layout.Footer.Layout = models.FooterMinimal
		out := Compose("", testBranding(), "", &layout, clock)
		assert.NotContains(t, out, "Follow us")
		assert.Contains(t, out, "All rights reserved")
	})

	t.Run("social only", func(t *testing.T) {
		layout := models.DefaultLayout()
		layout.Footer.Layout = models.FooterSocialOnly
		out := Compose("", testBranding(), "", &layout, clock)
		assert.Contains(t, out, "Follow us")
		assert.NotContains(t, out, "All rights reserved")
		assert.NotContains(t, out, "Unsubscribe")
		assert.NotContains(t, out, "mailto:")
	})

	t.Run("section toggles", func(t *testing.T) {
		layout := models.DefaultLayout()
		layout.Footer.Sections.ShowCopyright = false
		layout.Footer.Sections.ShowContactInfo = false
		out := Compose("", testBranding(), "", &layout, clock)
		assert.NotContains(t, out, "All rights reserved")
		assert.NotContains(t, out, "mailto:")
		assert.Contains(t, out, "Unsubscribe")
	})

	t.Run("branding email settings gate legal links", func(t *testing.T) {
		b := testBranding()
		b.EmailSettings = models.BrandingEmailSettings{IncludeViewInBrowser: true}
		out := Compose("", b, "", nil, clock)
		assert.NotContains(t, out, "Unsubscribe")
		assert.NotContains(t, out, "Email Preferences")
		assert.Contains(t, out, "View in Browser")
	})

	t.Run("custom html replaces sections", func(t *testing.T) {
		layout := models.DefaultLayout()
		layout.Footer.CustomHTML = "<p>Legal text</p>"
		out := Compose("", testBranding(), "", &layout, clock)
		assert.Contains(t, out, "<p>Legal text</p>")
		assert.NotContains(t, out, "All rights reserved")
	})

	t.Run("disabled", func(t *testing.T) {
		layout := models.DefaultLayout()
		layout.Footer.Enabled = false
		layout.Footer.Sections = models.FooterSections{
			ShowSocialLinks: true,
			ShowContactInfo: true,
			ShowLegalLinks:  true,
			ShowCopyright:   true,
		}
		b := testBranding()
		b.EmailSettings = models.BrandingEmailSettings{
			ShowUnsubscribeLink:  true,
			ShowPreferencesLink:  true,
			IncludeViewInBrowser: true,
		}

		out := Compose("", b, "", &layout, clock)
		assert.NotContains(t, out, `class="email-footer"`)
		assert.NotContains(t, out, "Follow us:")
		assert.NotContains(t, out, `class="social-links"`)
		assert.NotContains(t, out, `class="footer-contact"`)
		assert.NotContains(t, out, `class="footer-copyright"`)
		assert.NotContains(t, out, "All rights reserved")
		assert.NotContains(t, out, ">Unsubscribe</a>")
		assert.NotContains(t, out, ">Email Preferences</a>")
		assert.NotContains(t, out, ">View in Browser</a>")
	})
}

func TestCompose_PaletteAndTypographyFallback(t *testing.T) {
	b := testBranding()
	b.Colors = models.BrandColors{Primary: "#ff5500"}
	b.EmailTypography = models.TypographyOverride{}

	out := Compose("", b, "", nil, clock)
	assert.Contains(t, out, "background-color: #ff5500;")
	assert.Contains(t, out, "color: #333333;")
	assert.Contains(t, out, "font-family: Arial, sans-serif;")
	assert.Contains(t, out, "line-height: 1.5;")

	tpl := models.TypographyOverride{UseCustom: true, BodySize: "18", LineHeight: 1.8}
	out = Compose("", b, "", nil, clock, WithTypography(tpl))
	assert.Contains(t, out, "font-size: 18px;")
	assert.Contains(t, out, "line-height: 1.8;")
}

func TestCompose_NilBrandingAndLayout(t *testing.T) {
	out := Compose("<p>x</p>", nil, "", nil)
	assert.Contains(t, out, "<title>Email</title>")
	assert.Contains(t, out, ">Your App</h1>")
}
