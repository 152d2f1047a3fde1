package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestValidateInput(t *testing.T) {
	schema := JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"templateSlug": {Type: "string", Pattern: strPtr(`^[a-z0-9-_]+$`), MinLength: intPtr(1)},
			"variables":    {Type: "object"},
			"priority":     {Type: "string", Enum: []string{"low", "high"}},
		},
		Required:             []string{"templateSlug"},
		AdditionalProperties: false,
	}

	tests := []struct {
		name      string
		input     map[string]interface{}
		wantValid bool
		wantField string
		wantCode  string
	}{
		{"valid", map[string]interface{}{"templateSlug": "welcome", "variables": map[string]interface{}{}}, true, "", ""},
		{"missing required", map[string]interface{}{}, false, "templateSlug", CodeRequiredFieldMissing},
		{"extra field", map[string]interface{}{"templateSlug": "x", "other": 1}, false, "other", CodeExtraField},
		{"wrong type", map[string]interface{}{"templateSlug": 12}, false, "templateSlug", CodeInvalidType},
		{"bad pattern", map[string]interface{}{"templateSlug": "Bad Slug"}, false, "templateSlug", CodePatternMismatch},
		{"bad enum", map[string]interface{}{"templateSlug": "x", "priority": "urgent"}, false, "priority", CodeInvalidEnum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateInput(tt.input, schema)
			assert.Equal(t, tt.wantValid, res.Valid)
			if tt.wantValid {
				assert.Empty(t, res.Errors)
				return
			}
			require.NotEmpty(t, res.Errors)
			assert.True(t, res.HasErrors(tt.wantField), "errors: %v", res.GetErrorMessages())
			assert.Equal(t, tt.wantCode, res.GetErrorsForField(tt.wantField)[0].Code)
		})
	}
}

func TestRequiredFieldsMissing_KeepsSchemaOrder(t *testing.T) {
	schema := JSONSchema{
		Type:                 "object",
		Required:             []string{"user_name", "reset_link", "expiry"},
		AdditionalProperties: true,
	}
	res := ValidateInput(map[string]interface{}{"reset_link": "x"}, schema)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"user_name", "expiry"}, res.RequiredFieldsMissing(schema))
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidateEmail("ops@example.com"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.True(t, ValidateRecipient("Ops Team <ops@example.com>"))
	assert.True(t, ValidateURL("https://github.com/acme"))
	assert.False(t, ValidateURL("ftp://example.com"))
	assert.True(t, ValidateSlug("password-reset_v2"))
	assert.False(t, ValidateSlug("Password Reset"))
	assert.True(t, ValidateVariableName("company_name"))
	assert.False(t, ValidateVariableName("1st"))
	assert.True(t, ValidateHexColor("#007bff"))
	assert.False(t, ValidateHexColor("blue"))
}
