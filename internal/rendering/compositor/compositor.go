// Package compositor wraps rendered body HTML in the branded 600px email shell.
package compositor

import (
	"fmt"
	"html"
	"strings"
	"time"

	"branded-email-workers/internal/models"
)

// Links are the hrefs used by the footer legal links.
type Links struct {
	Unsubscribe   string
	Preferences   string
	ViewInBrowser string
}

type composeOptions struct {
	typography *models.TypographyOverride
	links      Links
	now        func() time.Time
}

type Option func(*composeOptions)

// WithTypography sets the template-level typography override.
func WithTypography(t models.TypographyOverride) Option {
	return func(o *composeOptions) { o.typography = &t }
}

// WithLinks sets the footer link targets. Empty entries stay "#".
func WithLinks(l Links) Option {
	return func(o *composeOptions) {
		if l.Unsubscribe != "" {
			o.links.Unsubscribe = l.Unsubscribe
		}
		if l.Preferences != "" {
			o.links.Preferences = l.Preferences
		}
		if l.ViewInBrowser != "" {
			o.links.ViewInBrowser = l.ViewInBrowser
		}
	}
}

// WithClock fixes the copyright year.
func WithClock(now func() time.Time) Option {
	return func(o *composeOptions) { o.now = now }
}

// Compose returns a complete HTML document around body. A nil layout uses
// DefaultLayout; a nil branding renders with an empty branding.
func Compose(body string, branding *models.AppBranding, preheader string, layout *models.EmailLayout, opts ...Option) string {
	o := composeOptions{
		links: Links{Unsubscribe: "#", Preferences: "#", ViewInBrowser: "#"},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if branding == nil {
		empty := models.NewAppBranding()
		branding = &empty
	}
	if layout == nil {
		def := models.DefaultLayout()
		layout = &def
	}

	palette := branding.Palette()

	levels := []models.TypographyOverride{}
	if o.typography != nil {
		levels = append(levels, *o.typography)
	}
	levels = append(levels, layout.Typography, branding.EmailTypography)
	typo := ResolveTypography(levels...)
	bodyTypo := mergeTypography(levels...)

	appName := html.EscapeString(firstNonEmpty(branding.AppName, "Email"))

	var b strings.Builder
	b.Grow(len(body) + 8192)

	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", appName)
	if preheader != "" {
		fmt.Fprintf(&b, "<meta name=\"description\" content=\"%s\">\n", html.EscapeString(preheader))
	}

	b.WriteString("<style>\n")
	b.WriteString(shellCSS(palette, bodyTypo))
	b.WriteString(FontFaceCSS(Fonts(typo)))
	b.WriteString(EmailCSS(typo))
	b.WriteString("</style>\n")
	b.WriteString(MSOCSS(typo))
	b.WriteString("\n</head>\n<body>\n")

	if preheader != "" {
		fmt.Fprintf(&b, "<div style=\"display: none; max-height: 0; overflow: hidden;\">%s</div>\n", preheader)
	}

	b.WriteString("<div class=\"email-container\">\n")
	renderHeader(&b, layout.Header, branding, palette)
	fmt.Fprintf(&b, "<div class=\"email-content\" style=\"padding: 30px 20px;\">\n%s\n</div>\n", body)
	renderFooter(&b, layout.Footer, branding, palette, o.links, o.now().Year())
	b.WriteString("</div>\n</body>\n</html>")

	return b.String()
}

func shellCSS(c models.BrandColors, t models.TypographyOverride) string {
	family := "Arial, sans-serif"
	if t.SecondaryFont != nil {
		family = fontStack(t.SecondaryFont, family)
	}
	size := firstNonEmpty(t.BodySize, "16")
	lh := "1.5"
	if t.LineHeight > 0 {
		lh = formatFloat(t.LineHeight)
	}

	return fmt.Sprintf(`body {
  margin: 0;
  padding: 0;
  font-family: %[1]s;
  font-size: %[2]spx;
  line-height: %[3]s;
  color: %[4]s;
  background-color: %[5]s;
}
.email-container {
  max-width: 600px;
  margin: 0 auto;
  background-color: %[5]s;
}
.email-header img {
  max-width: 200px;
  height: auto;
}
.email-content {
  padding: 30px 20px;
}
.button {
  display: inline-block;
  padding: 12px 24px;
  background-color: %[6]s;
  color: #ffffff;
  text-decoration: none;
  border-radius: 4px;
  font-weight: bold;
}
.button:hover {
  background-color: %[7]s;
}
a {
  color: %[6]s;
}
.accent {
  color: %[8]s;
}
.social-links {
  margin: 10px 0;
}
.footer-links {
  margin: 10px 0;
}
.footer-links a {
  color: %[9]s;
  text-decoration: none;
  margin: 0 10px;
}
`, family, size, lh, c.Text, c.Background, c.Primary, c.Secondary, c.Accent, c.TextLight)
}
