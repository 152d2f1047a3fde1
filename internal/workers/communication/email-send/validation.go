package emailsend

import "branded-email-workers/internal/common/validation"

var inputVariables = []string{"to", "templateSlug", "variables", "brandingId", "systemData", "configId"}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"to", "templateSlug"},
		Properties: map[string]validation.Property{
			"to": {
				Type:        "string",
				Description: "Recipient address, bare or in Name <addr> form",
				MinLength:   intPtr(3),
				MaxLength:   intPtr(320),
			},
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
			"configId": {
				Type:        "string",
				Description: "Email settings record to send through instead of the active one",
				MaxLength:   intPtr(100),
			},
		},
		AdditionalProperties: false,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"success": {
				Type:        "boolean",
				Description: "Whether the transport accepted the message",
			},
			"messageId": {
				Type:        "string",
				Description: "Message-ID header or provider message id",
			},
			"provider": {
				Type:        "string",
				Description: "Transport used (smtp or ses)",
			},
			"sentAt": {
				Type:        "string",
				Description: "RFC 3339 time the message was accepted",
			},
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
