// internal/models/template.go
package models

import "time"

// Template categories.
const (
	TemplateCategoryAuth    = "auth"
	TemplateCategoryAccount = "account"
	TemplateCategorySystem  = "system"
)

// VariableSpec declares a placeholder a template expects.
type VariableSpec struct {
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Required     bool   `json:"required" yaml:"required"`
	DefaultValue string `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

type EmailTemplate struct {
	ID          string                 `json:"id" yaml:"id"`
	Name        string                 `json:"name" yaml:"name"`
	Slug        string                 `json:"slug" yaml:"slug"`
	Category    string                 `json:"category" yaml:"category"`
	Subject     string                 `json:"subject" yaml:"subject"`
	Preheader   string                 `json:"preheader,omitempty" yaml:"preheader,omitempty"`
	HTMLContent string                 `json:"htmlContent" yaml:"htmlContent"`
	TextContent string                 `json:"textContent,omitempty" yaml:"textContent,omitempty"`
	Variables   []VariableSpec         `json:"variables,omitempty" yaml:"variables,omitempty"`
	BrandingID  string                 `json:"brandingId,omitempty" yaml:"brandingId,omitempty"`
	Typography  TypographyOverride     `json:"typography" yaml:"typography"`
	IsActive    bool                   `json:"isActive" yaml:"isActive"`
	TestData    map[string]interface{} `json:"testData,omitempty" yaml:"testData,omitempty"`
	UpdatedAt   time.Time              `json:"updatedAt" yaml:"-"`
}

// RequiredVariables returns declared required names in declaration order,
// each name once.
func (t *EmailTemplate) RequiredVariables() []string {
	var out []string
	seen := make(map[string]bool, len(t.Variables))
	for _, v := range t.Variables {
		if v.Required && !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v.Name)
		}
	}
	return out
}

// RenderedEmail is the output of a render and the input of dispatch.
type RenderedEmail struct {
	Subject   string `json:"subject"`
	HTML      string `json:"html"`
	Text      string `json:"text"`
	Preheader string `json:"preheader,omitempty"`
}
