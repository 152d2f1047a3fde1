// Package seed loads branding, layouts, variables, templates and email
// settings from a YAML or JSON bundle and writes them through the store.
package seed

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"branded-email-workers/internal/common/validation"
	"branded-email-workers/internal/models"
	"branded-email-workers/internal/rendering/renderer"

	"gopkg.in/yaml.v3"
)

type Bundle struct {
	Media           []models.Media          `yaml:"media"`
	Fonts           []models.TypographyFont `yaml:"fonts"`
	Branding        []models.AppBranding    `yaml:"branding"`
	Layouts         []models.EmailLayout    `yaml:"layouts"`
	GlobalVariables []models.GlobalVariable `yaml:"globalVariables"`
	Templates       []models.EmailTemplate  `yaml:"templates"`
	EmailSettings   []models.EmailSettings  `yaml:"emailSettings"`
}

type rawBundle struct {
	Media           []yaml.Node `yaml:"media"`
	Fonts           []yaml.Node `yaml:"fonts"`
	Branding        []yaml.Node `yaml:"branding"`
	Layouts         []yaml.Node `yaml:"layouts"`
	GlobalVariables []yaml.Node `yaml:"globalVariables"`
	Templates       []yaml.Node `yaml:"templates"`
	EmailSettings   []yaml.Node `yaml:"emailSettings"`
}

// UnmarshalYAML decodes every record onto its collection defaults so that a
// bundle only has to spell out what differs.
func (b *Bundle) UnmarshalYAML(value *yaml.Node) error {
	var raw rawBundle
	if err := value.Decode(&raw); err != nil {
		return err
	}

	var err error
	if b.Media, err = decodeEach(raw.Media, func() models.Media { return models.Media{} }); err != nil {
		return fmt.Errorf("media: %w", err)
	}
	if b.Fonts, err = decodeEach(raw.Fonts, models.NewTypographyFont); err != nil {
		return fmt.Errorf("fonts: %w", err)
	}
	if b.Branding, err = decodeEach(raw.Branding, models.NewAppBranding); err != nil {
		return fmt.Errorf("branding: %w", err)
	}
	if b.Layouts, err = decodeEach(raw.Layouts, models.DefaultLayout); err != nil {
		return fmt.Errorf("layouts: %w", err)
	}
	if b.GlobalVariables, err = decodeEach(raw.GlobalVariables, newGlobalVariable); err != nil {
		return fmt.Errorf("globalVariables: %w", err)
	}
	if b.Templates, err = decodeEach(raw.Templates, newTemplate); err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	if b.EmailSettings, err = decodeEach(raw.EmailSettings, models.NewEmailSettings); err != nil {
		return fmt.Errorf("emailSettings: %w", err)
	}
	return nil
}

func decodeEach[T any](nodes []yaml.Node, zero func() T) ([]T, error) {
	out := make([]T, 0, len(nodes))
	for i := range nodes {
		v := zero()
		if err := nodes[i].Decode(&v); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func newGlobalVariable() models.GlobalVariable {
	return models.GlobalVariable{Category: models.GlobalCategoryCustom, IsActive: true}
}

func newTemplate() models.EmailTemplate {
	return models.EmailTemplate{
		Category:   models.TemplateCategorySystem,
		Typography: models.DefaultTypographyOverride(),
		IsActive:   true,
	}
}

// LoadFile reads a bundle from a .yaml, .yml or .json file. JSON is decoded
// by the YAML parser so both formats share the same defaults and field names.
func LoadFile(path string) (*Bundle, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("unsupported bundle format %q", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Bundle, error) {
	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}
	return &b, nil
}

// Validate reports every problem in the bundle, not just the first.
func (b *Bundle) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	activeBranding := 0
	for i, br := range b.Branding {
		if br.IsActive {
			activeBranding++
		}
		for _, l := range br.SocialLinks {
			if !slices.Contains(models.SocialPlatforms, l.Platform) {
				add("branding[%d]: unsupported social platform %q", i, l.Platform)
			}
			if !validation.ValidateURL(l.URL) {
				add("branding[%d]: social link for %s must be an http(s) URL", i, l.Platform)
			}
		}
	}
	if activeBranding > 1 {
		add("branding: %d records are active, at most one may be", activeBranding)
	}

	defaults := 0
	for i, l := range b.Layouts {
		if l.Name == "" {
			add("layouts[%d]: name is required", i)
		}
		if l.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		add("layouts: %d records are default, at most one may be", defaults)
	}

	names := make(map[string]bool)
	for i, g := range b.GlobalVariables {
		if !validation.ValidateVariableName(g.Name) {
			add("globalVariables[%d]: name %q must match ^[A-Za-z][A-Za-z0-9_]*$", i, g.Name)
		}
		if names[g.Name] {
			add("globalVariables[%d]: duplicate name %q", i, g.Name)
		}
		names[g.Name] = true
	}

	slugs := make(map[string]bool)
	for i, t := range b.Templates {
		if !validation.ValidateSlug(t.Slug) {
			add("templates[%d]: slug %q must match ^[a-z0-9-_]+$", i, t.Slug)
		}
		if slugs[t.Slug] {
			add("templates[%d]: duplicate slug %q", i, t.Slug)
		}
		slugs[t.Slug] = true
		if t.Subject == "" {
			add("templates[%d]: subject is required", i)
		}
		// previews render from testData, so it must satisfy the template's own schema
		if len(t.TestData) > 0 {
			if res := renderer.ValidateTemplateVariables(&b.Templates[i], t.TestData); !res.Valid {
				add("templates[%d]: testData: %s", i, strings.Join(res.Errors, "; "))
			}
		}
	}

	activeSettings := 0
	for i, es := range b.EmailSettings {
		if es.IsActive {
			activeSettings++
		}
		if !validation.ValidateEmail(es.FromAddress) {
			add("emailSettings[%d]: fromAddress %q is not a valid email", i, es.FromAddress)
		}
	}
	if activeSettings > 1 {
		add("emailSettings: %d records are active, at most one may be", activeSettings)
	}

	for i, f := range b.Fonts {
		if f.FontFamily == "" {
			add("fonts[%d]: fontFamily is required", i)
		}
	}
	for i, m := range b.Media {
		if m.URL == "" {
			add("media[%d]: url is required", i)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid bundle:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}
