package compositor

import (
	"fmt"
	"html"
	"strings"

	"branded-email-workers/internal/models"
)

func renderHeader(b *strings.Builder, h models.HeaderConfig, branding *models.AppBranding, palette models.BrandColors) {
	if !h.Enabled {
		return
	}

	bg := firstNonEmpty(h.BackgroundColor, palette.Primary)
	fg := firstNonEmpty(h.TextColor, "#ffffff")
	wrapper := fmt.Sprintf("padding: %s; background-color: %s; color: %s;%s", padding(h.Padding), bg, fg, borders(h.Border))

	if h.CustomHTML != "" {
		fmt.Fprintf(b, "<div class=\"email-header\" style=\"%s\">\n%s\n</div>\n", wrapper, h.CustomHTML)
		return
	}

	name := html.EscapeString(firstNonEmpty(branding.AppName, "Your App"))
	logo := logoTag(branding, h.Logo, name)
	title := fmt.Sprintf(`<h1 style="margin: 10px 0 0 0; font-size: 24px; color: %s;">%s</h1>`, fg, name)
	tagline := ""
	if branding.Tagline != "" {
		tagline = fmt.Sprintf(`<p style="margin: 5px 0 0 0; opacity: 0.9;">%s</p>`, html.EscapeString(branding.Tagline))
	}

	switch h.Layout {
	case models.HeaderLogoLeftNameRight:
		fmt.Fprintf(b, "<div class=\"email-header\" style=\"%s\">\n", wrapper)
		b.WriteString("<table role=\"presentation\" width=\"100%\" cellpadding=\"0\" cellspacing=\"0\" border=\"0\"><tr>\n")
		fmt.Fprintf(b, "<td style=\"text-align: left; vertical-align: middle;\">%s</td>\n", logo)
		fmt.Fprintf(b, "<td style=\"text-align: right; vertical-align: middle;\">%s%s</td>\n", title, tagline)
		b.WriteString("</tr></table>\n</div>\n")

	case models.HeaderLogoOnly:
		if logo == "" {
			logo = title
		}
		fmt.Fprintf(b, "<div class=\"email-header\" style=\"text-align: center; %s\">\n%s\n</div>\n", wrapper, logo)

	case models.HeaderNameOnly:
		fmt.Fprintf(b, "<div class=\"email-header\" style=\"text-align: center; %s\">\n%s\n%s\n</div>\n", wrapper, title, tagline)

	default:
		// logo-center, and custom without markup
		fmt.Fprintf(b, "<div class=\"email-header\" style=\"text-align: center; %s\">\n", wrapper)
		if logo != "" {
			b.WriteString(logo + "\n")
		}
		b.WriteString(title + "\n")
		if tagline != "" {
			b.WriteString(tagline + "\n")
		}
		b.WriteString("</div>\n")
	}
}

func logoTag(branding *models.AppBranding, bounds models.LogoBounds, alt string) string {
	if branding.LogoURL == "" {
		return ""
	}
	maxW, maxH := bounds.MaxWidth, bounds.MaxHeight
	if maxW == 0 {
		maxW = 200
	}
	if maxH == 0 {
		maxH = 60
	}
	return fmt.Sprintf(`<img src="%s" alt="%s" style="max-width: %dpx; max-height: %dpx; height: auto;" />`,
		html.EscapeString(branding.LogoURL), alt, maxW, maxH)
}

func padding(s models.Spacing) string {
	return fmt.Sprintf("%dpx %dpx %dpx %dpx", s.Top, s.Right, s.Bottom, s.Left)
}

func borders(bd models.Border) string {
	width := bd.Width
	if width == 0 {
		width = 1
	}
	style := firstNonEmpty(bd.Style, "solid")
	color := firstNonEmpty(bd.Color, "#e9ecef")

	var out string
	if bd.TopEnabled {
		out += fmt.Sprintf(" border-top: %dpx %s %s;", width, style, color)
	}
	if bd.BottomEnabled {
		out += fmt.Sprintf(" border-bottom: %dpx %s %s;", width, style, color)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
