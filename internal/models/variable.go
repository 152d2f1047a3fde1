// internal/models/variable.go
package models

import "time"

// Global variable categories.
const (
	GlobalCategoryCompany  = "company"
	GlobalCategoryContact  = "contact"
	GlobalCategoryBranding = "branding"
	GlobalCategoryLegal    = "legal"
	GlobalCategorySocial   = "social"
	GlobalCategoryCustom   = "custom"
)

// GlobalVariable is a named value shared by every template.
type GlobalVariable struct {
	ID                string    `json:"id" yaml:"id"`
	Name              string    `json:"name" yaml:"name"`
	DisplayName       string    `json:"displayName" yaml:"displayName"`
	Description       string    `json:"description,omitempty" yaml:"description,omitempty"`
	Value             string    `json:"value" yaml:"value"`
	Category          string    `json:"category" yaml:"category"`
	IsSystemGenerated bool      `json:"isSystemGenerated" yaml:"isSystemGenerated"`
	IsActive          bool      `json:"isActive" yaml:"isActive"`
	UsageExample      string    `json:"usageExample,omitempty" yaml:"usageExample,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt" yaml:"-"`
}

// BrandingVariable is a global value stored inline on a branding record.
type BrandingVariable struct {
	Name              string `json:"name" yaml:"name"`
	Value             string `json:"value" yaml:"value"`
	Description       string `json:"description,omitempty" yaml:"description,omitempty"`
	Category          string `json:"category,omitempty" yaml:"category,omitempty"`
	IsSystemGenerated bool   `json:"isSystemGenerated" yaml:"isSystemGenerated"`
	IsEditable        bool   `json:"isEditable" yaml:"isEditable"`
}
