package emailrender

import "branded-email-workers/internal/common/validation"

var inputVariables = []string{"templateSlug", "variables", "brandingId", "systemData"}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"templateSlug"},
		Properties: map[string]validation.Property{
			"templateSlug": {
				Type:        "string",
				Description: "Slug of the active template to render",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(200),
				Pattern:     strPtr(`^[a-z0-9-_]+$`),
			},
			"variables": {
				Type:        "object",
				Description: "Caller data merged over globals and branding values",
			},
			"brandingId": {
				Type:        "string",
				Description: "Branding to render with instead of the template or active one",
				MaxLength:   intPtr(100),
			},
			"systemData": {
				Type:        "object",
				Description: "System variable overrides such as user_name or unsubscribe_url",
			},
		},
		AdditionalProperties: false,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"subject":   {Type: "string", Description: "Rendered subject line"},
			"html":      {Type: "string", Description: "Complete HTML document"},
			"text":      {Type: "string", Description: "Plain-text body"},
			"preheader": {Type: "string", Description: "Rendered preheader"},
		},
		AdditionalProperties: false,
	}
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}
