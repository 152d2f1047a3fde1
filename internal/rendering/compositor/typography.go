package compositor

import (
	"fmt"
	"strconv"
	"strings"

	"branded-email-workers/internal/models"
)

const (
	emailFontStack    = "Arial, Helvetica, sans-serif"
	webFontStack      = "system-ui, -apple-system, sans-serif"
	msoFallback       = "Arial, sans-serif"
	defaultHeadingPx  = "32"
	defaultBodyPx     = "16"
	defaultLineHeight = 1.6
	defaultParagraph  = 16
)

// ResolveTypography merges typography levels field by field, most specific first.
// Every level but the last contributes only when UseCustom is set; the last
// level (the branding) always contributes. Unset fields fall back to defaults.
func ResolveTypography(levels ...models.TypographyOverride) models.TypographyOverride {
	out := mergeTypography(levels...)
	if out.HeadingSize == "" {
		out.HeadingSize = defaultHeadingPx
	}
	if out.BodySize == "" {
		out.BodySize = defaultBodyPx
	}
	if out.LineHeight == 0 {
		out.LineHeight = defaultLineHeight
	}
	if out.ParagraphSpacing == 0 {
		out.ParagraphSpacing = defaultParagraph
	}
	return out
}

func mergeTypography(levels ...models.TypographyOverride) models.TypographyOverride {
	var out models.TypographyOverride
	for i, l := range levels {
		if !l.UseCustom && i != len(levels)-1 {
			continue
		}
		out.UseCustom = out.UseCustom || l.UseCustom
		if out.PrimaryFont == nil && l.PrimaryFont != nil {
			out.PrimaryFont, out.PrimaryFontID = l.PrimaryFont, l.PrimaryFontID
		}
		if out.SecondaryFont == nil && l.SecondaryFont != nil {
			out.SecondaryFont, out.SecondaryFontID = l.SecondaryFont, l.SecondaryFontID
		}
		if out.AccentFont == nil && l.AccentFont != nil {
			out.AccentFont, out.AccentFontID = l.AccentFont, l.AccentFontID
		}
		if out.HeadingSize == "" {
			out.HeadingSize = l.HeadingSize
		}
		if out.BodySize == "" {
			out.BodySize = l.BodySize
		}
		if out.LineHeight == 0 {
			out.LineHeight = l.LineHeight
		}
		if out.ParagraphSpacing == 0 {
			out.ParagraphSpacing = l.ParagraphSpacing
		}
	}
	return out
}

// Fonts returns the resolved fonts of t, skipping unset ones.
func Fonts(t models.TypographyOverride) []models.TypographyFont {
	var fonts []models.TypographyFont
	for _, f := range []*models.TypographyFont{t.PrimaryFont, t.SecondaryFont, t.AccentFont} {
		if f != nil {
			fonts = append(fonts, *f)
		}
	}
	return fonts
}

// FontFaceCSS emits one @font-face rule per font weight for fonts that ship webfont files.
func FontFaceCSS(fonts []models.TypographyFont) string {
	var b strings.Builder
	for _, font := range fonts {
		if !font.HasFiles() {
			continue
		}
		family := strings.TrimSpace(strings.Split(font.FontFamily, ",")[0])

		var sources []string
		if font.FontFiles.WOFF2 != "" {
			sources = append(sources, fmt.Sprintf("url('%s') format('woff2')", font.FontFiles.WOFF2))
		}
		if font.FontFiles.WOFF != "" {
			sources = append(sources, fmt.Sprintf("url('%s') format('woff')", font.FontFiles.WOFF))
		}
		if font.FontFiles.TTF != "" {
			sources = append(sources, fmt.Sprintf("url('%s') format('truetype')", font.FontFiles.TTF))
		}

		weights := font.FontWeights
		if len(weights) == 0 {
			weights = []models.FontWeight{{Weight: 400, Name: "Regular", IsDefault: true}}
		}
		for _, w := range weights {
			fmt.Fprintf(&b, "\n@font-face {\n  font-family: '%s';\n  src: %s;\n  font-weight: %d;\n  font-display: swap;\n}\n",
				family, strings.Join(sources, ", "), w.Weight)
		}
	}
	return b.String()
}

// EmailCSS emits the heading, body and accent rules with web-safe fallbacks.
func EmailCSS(t models.TypographyOverride) string {
	t = ResolveTypography(t)
	primary := fontStack(t.PrimaryFont, emailFontStack)
	secondary := fontStack(t.SecondaryFont, emailFontStack)
	accent := fontStack(t.AccentFont, emailFontStack)
	lh := formatFloat(t.LineHeight)

	return fmt.Sprintf(`
/* Email Typography Styles */
.email-heading, h1, h2, h3, h4, h5, h6 {
  font-family: %[1]s;
  font-size: %[4]spx;
  line-height: %[6]s;
  margin: 0 0 %[7]dpx 0;
  font-weight: %[8]d;
}

.email-body, p, div, span, td {
  font-family: %[2]s;
  font-size: %[5]spx;
  line-height: %[6]s;
  margin: 0 0 %[7]dpx 0;
  font-weight: %[9]d;
}

.email-accent, .accent {
  font-family: %[3]s;
  font-weight: %[10]d;
}

.email-container {
  font-family: %[2]s;
  font-size: %[5]spx;
  line-height: %[6]s;
}
`,
		primary, secondary, accent,
		t.HeadingSize, t.BodySize, lh, t.ParagraphSpacing,
		defaultWeight(t.PrimaryFont, 700), defaultWeight(t.SecondaryFont, 400), defaultWeight(t.AccentFont, 500),
	)
}

// MSOCSS is the Outlook conditional block. It belongs in <head>, outside <style>.
func MSOCSS(t models.TypographyOverride) string {
	return fmt.Sprintf(`<!--[if mso]>
<style type="text/css">
  .email-heading, h1, h2, h3, h4, h5, h6 { font-family: %s !important; }
  .email-body, p, div, span, td { font-family: %s !important; }
</style>
<![endif]-->`, msoFont(t.PrimaryFont), msoFont(t.SecondaryFont))
}

// WebCSS emits the frontend variant built on CSS custom properties.
func WebCSS(t models.TypographyOverride) string {
	return fmt.Sprintf(`
/* Web Typography Styles */
:root {
  --font-primary: %s;
  --font-secondary: %s;
  --font-accent: %s;
  --font-primary-weight: %d;
  --font-secondary-weight: %d;
  --font-accent-weight: %d;
}

h1, h2, h3, h4, h5, h6, .heading {
  font-family: var(--font-primary);
  font-weight: var(--font-primary-weight);
}

body, p, div, span, .body-text {
  font-family: var(--font-secondary);
  font-weight: var(--font-secondary-weight);
}

.accent, .accent-text {
  font-family: var(--font-accent);
  font-weight: var(--font-accent-weight);
}
`,
		fontStack(t.PrimaryFont, webFontStack), fontStack(t.SecondaryFont, webFontStack), fontStack(t.AccentFont, webFontStack),
		defaultWeight(t.PrimaryFont, 700), defaultWeight(t.SecondaryFont, 400), defaultWeight(t.AccentFont, 500),
	)
}

func fontStack(f *models.TypographyFont, fallback string) string {
	if f == nil || f.FontFamily == "" {
		return fallback
	}
	if f.WebSafeFallbacks == "" {
		return f.FontFamily + ", " + emailFontStack
	}
	return f.FontFamily + ", " + f.WebSafeFallbacks
}

func defaultWeight(f *models.TypographyFont, fallback int) int {
	if f == nil {
		return fallback
	}
	for _, w := range f.FontWeights {
		if w.IsDefault && w.Weight > 0 {
			return w.Weight
		}
	}
	return fallback
}

func msoFont(f *models.TypographyFont) string {
	if f == nil || f.EmailSettings.EmailFallback == "" {
		return msoFallback
	}
	return f.EmailSettings.EmailFallback
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
