package validation

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema defines the structure for worker input/output and template data schemas.
// AdditionalProperties is always emitted: false rejects unknown keys.
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties,omitempty"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties"`
	PatternProperties    map[string]Property `json:"patternProperties,omitempty"`
}

type Property struct {
	Type        string              `json:"type,omitempty"`
	Description string              `json:"description,omitempty"`
	Default     interface{}         `json:"default,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Pattern     *string             `json:"pattern,omitempty"`
	MinLength   *int                `json:"minLength,omitempty"`
	MaxLength   *int                `json:"maxLength,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error codes reported in ValidationError.Code.
const (
	CodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	CodeExtraField           = "EXTRA_FIELD"
	CodeInvalidType          = "INVALID_TYPE"
	CodeMinLength            = "MIN_LENGTH_VIOLATION"
	CodeMaxLength            = "MAX_LENGTH_VIOLATION"
	CodePatternMismatch      = "PATTERN_MISMATCH"
	CodeInvalidEnum          = "INVALID_ENUM_VALUE"
	CodeMinimum              = "MINIMUM_VIOLATION"
	CodeMaximum              = "MAXIMUM_VIOLATION"
	CodeSchemaInvalid        = "SCHEMA_INVALID"
	CodeInvalid              = "INVALID_VALUE"
)

var gojsonschemaCodes = map[string]string{
	"required":                        CodeRequiredFieldMissing,
	"additional_property_not_allowed": CodeExtraField,
	"invalid_type":                    CodeInvalidType,
	"string_gte":                      CodeMinLength,
	"string_lte":                      CodeMaxLength,
	"pattern":                         CodePatternMismatch,
	"enum":                            CodeInvalidEnum,
	"number_gte":                      CodeMinimum,
	"number_lte":                      CodeMaximum,
}

// ValidateInput validates input against the schema using gojsonschema.
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	if input == nil {
		input = map[string]interface{}{}
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(input))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(schema)",
				Message: err.Error(),
				Code:    CodeSchemaInvalid,
			}},
		}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		errs = append(errs, toValidationError(re))
	}

	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errs,
	}
}

func toValidationError(re gojsonschema.ResultError) ValidationError {
	code, ok := gojsonschemaCodes[re.Type()]
	if !ok {
		code = CodeInvalid
	}

	field := re.Field()
	// required and additional-property errors are reported on the parent object
	if prop, ok := re.Details()["property"].(string); ok && (re.Type() == "required" || re.Type() == "additional_property_not_allowed") {
		if field == "(root)" || field == "" {
			field = prop
		} else {
			field = field + "." + prop
		}
	}

	return ValidationError{
		Field:   field,
		Message: re.Description(),
		Code:    code,
	}
}

// RequiredFieldsMissing returns the missing field names in the order the schema lists them.
func (vr *ValidationResult) RequiredFieldsMissing(schema JSONSchema) []string {
	missing := make(map[string]bool)
	for _, e := range vr.Errors {
		if e.Code == CodeRequiredFieldMissing {
			missing[e.Field] = true
		}
	}
	out := make([]string, 0, len(missing))
	for _, name := range schema.Required {
		if missing[name] {
			out = append(out, name)
		}
	}
	return out
}

// GetSchemaFromJSON parses JSON schema from string
func GetSchemaFromJSON(schemaJSON string) (JSONSchema, error) {
	var schema JSONSchema
	err := json.Unmarshal([]byte(schemaJSON), &schema)
	return schema, err
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	urlPattern   = regexp.MustCompile(`^https?://.+`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9-_]+$`)
	varPattern   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateRecipient accepts a bare address or a "Name <addr>" form.
func ValidateRecipient(to string) bool {
	addr, err := mail.ParseAddress(to)
	return err == nil && ValidateEmail(addr.Address)
}

// ValidateURL accepts http and https URLs, as used for social links.
func ValidateURL(url string) bool {
	return urlPattern.MatchString(url)
}

// ValidateSlug checks template slugs: lowercase letters, digits, hyphen and underscore.
func ValidateSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// ValidateVariableName checks global variable names.
func ValidateVariableName(name string) bool {
	return varPattern.MatchString(name)
}

// ValidateHexColor checks #rgb and #rrggbb palette values.
func ValidateHexColor(c string) bool {
	return colorPattern.MatchString(c)
}
