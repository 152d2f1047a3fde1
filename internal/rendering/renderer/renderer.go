// Package renderer substitutes {{name}} placeholders in template strings.
package renderer

import (
	"regexp"

	"branded-email-workers/internal/models"
)

// placeholderPattern matches {{name}} and {{ name }}. The name itself may not
// contain braces or whitespace.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// Report lists the placeholders that did not come from the variable map.
type Report struct {
	// Defaulted are declared variables filled from defaultValue or [name].
	Defaulted []string `json:"defaulted,omitempty"`
	// Unresolved are undeclared placeholders with no value; they render as "".
	Unresolved []string `json:"unresolved,omitempty"`
}

// Render substitutes every placeholder in content in a single pass.
// Substituted values are never re-scanned.
func Render(content string, variables map[string]string, declared []models.VariableSpec) string {
	out, _ := RenderWithReport(content, variables, declared)
	return out
}

// RenderWithReport is Render plus a record of defaulted and unresolved names.
//
// Fill rules for a placeholder name:
//   - present in variables: its value
//   - declared required: defaultValue, else "[name]"
//   - declared optional: defaultValue, else ""
//   - undeclared: "" and reported as unresolved
func RenderWithReport(content string, variables map[string]string, declared []models.VariableSpec) (string, Report) {
	var report Report
	if content == "" {
		return "", report
	}

	specs := make(map[string]models.VariableSpec, len(declared))
	for _, d := range declared {
		specs[d.Name] = d
	}
	seen := make(map[string]bool)

	out := placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]

		if v, ok := variables[name]; ok {
			return v
		}

		spec, isDeclared := specs[name]
		switch {
		case isDeclared && spec.Required:
			note(&report.Defaulted, seen, name)
			if spec.DefaultValue != "" {
				return spec.DefaultValue
			}
			return "[" + name + "]"
		case isDeclared:
			if spec.DefaultValue != "" {
				note(&report.Defaulted, seen, name)
			}
			return spec.DefaultValue
		default:
			note(&report.Unresolved, seen, name)
			return ""
		}
	})

	return out, report
}

func note(list *[]string, seen map[string]bool, name string) {
	if seen[name] {
		return
	}
	seen[name] = true
	*list = append(*list, name)
}
