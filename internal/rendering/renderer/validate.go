package renderer

import (
	"strings"

	"branded-email-workers/internal/common/validation"
	"branded-email-workers/internal/models"
)

// ValidationResult is informational; rendering proceeds regardless.
type ValidationResult struct {
	Valid           bool     `json:"valid"`
	MissingRequired []string `json:"missingRequired"`
	Errors          []string `json:"errors"`
}

// TemplateSchema builds the JSON schema for the template's declared variables.
func TemplateSchema(tpl *models.EmailTemplate) validation.JSONSchema {
	props := make(map[string]validation.Property, len(tpl.Variables))
	for _, v := range tpl.Variables {
		props[v.Name] = validation.Property{Description: v.Description}
	}
	return validation.JSONSchema{
		Type:                 "object",
		Properties:           props,
		Required:             tpl.RequiredVariables(),
		AdditionalProperties: true,
	}
}

// ValidateTemplateVariables reports declared required variables absent from variables.
func ValidateTemplateVariables(tpl *models.EmailTemplate, variables map[string]interface{}) ValidationResult {
	res := ValidationResult{MissingRequired: []string{}, Errors: []string{}}
	if tpl == nil {
		res.Valid = true
		return res
	}

	schema := TemplateSchema(tpl)
	vr := validation.ValidateInput(variables, schema)

	res.MissingRequired = vr.RequiredFieldsMissing(schema)
	if len(res.MissingRequired) > 0 {
		res.Errors = append(res.Errors, "Missing required variables: "+strings.Join(res.MissingRequired, ", "))
	}
	for _, e := range vr.Errors {
		if e.Code != validation.CodeRequiredFieldMissing {
			res.Errors = append(res.Errors, e.Field+": "+e.Message)
		}
	}
	res.Valid = len(res.Errors) == 0
	return res
}
