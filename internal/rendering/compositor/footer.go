package compositor

import (
	"fmt"
	"html"
	"strings"

	"branded-email-workers/internal/models"
)

// footerSections applies the layout variant mask on top of the section toggles.
func footerSections(f models.FooterConfig) models.FooterSections {
	s := f.Sections
	switch f.Layout {
	case models.FooterMinimal:
		s.ShowSocialLinks = false
	case models.FooterSocialOnly:
		s = models.FooterSections{ShowSocialLinks: true}
	}
	return s
}

func renderFooter(b *strings.Builder, f models.FooterConfig, branding *models.AppBranding, palette models.BrandColors, links Links, year int) {
	if !f.Enabled {
		return
	}

	bg := firstNonEmpty(f.BackgroundColor, "#f8f9fa")
	fg := firstNonEmpty(f.TextColor, palette.TextLight)
	fmt.Fprintf(b, "<div class=\"email-footer\" style=\"padding: %s; background-color: %s; text-align: center; font-size: 14px; color: %s;%s\">\n",
		padding(f.Padding), bg, fg, borders(f.Border))

	if f.CustomHTML != "" {
		b.WriteString(f.CustomHTML + "\n</div>\n")
		return
	}

	sections := footerSections(f)
	appName := html.EscapeString(firstNonEmpty(branding.AppName, "Your App"))

	if sections.ShowSocialLinks && len(branding.SocialLinks) > 0 {
		b.WriteString("<div class=\"social-links\" style=\"margin: 10px 0;\">\n<strong>Follow us:</strong><br>\n")
		for _, l := range branding.SocialLinks {
			fmt.Fprintf(b, "<a href=\"%s\" style=\"color: %s; text-decoration: none; margin: 0 8px;\">%s</a>\n",
				html.EscapeString(firstNonEmpty(l.URL, "#")), palette.Primary, platformLabel(l.Platform))
		}
		b.WriteString("</div>\n")
	}

	if sections.ShowLegalLinks {
		var items []string
		linkStyle := fmt.Sprintf("color: %s; text-decoration: none; margin: 0 10px;", fg)
		if branding.EmailSettings.ShowPreferencesLink {
			items = append(items, fmt.Sprintf(`<a href="%s" style="%s">Email Preferences</a>`, html.EscapeString(links.Preferences), linkStyle))
		}
		if branding.EmailSettings.ShowUnsubscribeLink {
			items = append(items, fmt.Sprintf(`<a href="%s" style="%s">Unsubscribe</a>`, html.EscapeString(links.Unsubscribe), linkStyle))
		}
		if branding.EmailSettings.IncludeViewInBrowser {
			items = append(items, fmt.Sprintf(`<a href="%s" style="%s">View in Browser</a>`, html.EscapeString(links.ViewInBrowser), linkStyle))
		}
		if len(items) > 0 {
			b.WriteString("<div class=\"footer-links\" style=\"margin: 10px 0;\">\n")
			b.WriteString(strings.Join(items, "\n"))
			b.WriteString("\n</div>\n")
		}
	}

	if sections.ShowContactInfo {
		c := branding.Contact
		b.WriteString("<div class=\"footer-contact\" style=\"margin-top: 15px;\">\n")
		fmt.Fprintf(b, "<strong>%s</strong><br>\n", appName)
		if c.SupportEmail != "" {
			e := html.EscapeString(c.SupportEmail)
			fmt.Fprintf(b, "Email: <a href=\"mailto:%s\" style=\"color: %s;\">%s</a><br>\n", e, palette.Primary, e)
		}
		if c.Phone != "" {
			fmt.Fprintf(b, "Phone: %s<br>\n", html.EscapeString(c.Phone))
		}
		if c.Website != "" {
			w := html.EscapeString(c.Website)
			fmt.Fprintf(b, "Website: <a href=\"%s\" style=\"color: %s;\">%s</a><br>\n", w, palette.Primary, w)
		}
		if c.Address != "" {
			fmt.Fprintf(b, "<br>%s\n", strings.ReplaceAll(html.EscapeString(c.Address), "\n", "<br>"))
		}
		b.WriteString("</div>\n")
	}

	if sections.ShowCopyright {
		fmt.Fprintf(b, "<p class=\"footer-copyright\" style=\"margin: 15px 0 0 0; font-size: 12px;\">© %d %s. All rights reserved.</p>\n", year, appName)
	}

	b.WriteString("</div>\n")
}

func platformLabel(p string) string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(p[:1]) + p[1:]
}
