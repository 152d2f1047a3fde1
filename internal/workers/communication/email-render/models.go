package emailrender

import (
	"context"

	"branded-email-workers/internal/models"
	"branded-email-workers/internal/rendering"
)

type Input struct {
	TemplateSlug string                 `json:"templateSlug"`
	Variables    map[string]interface{} `json:"variables,omitempty"`
	BrandingID   string                 `json:"brandingId,omitempty"`
	SystemData   map[string]interface{} `json:"systemData,omitempty"`
}

type Output struct {
	Subject   string `json:"subject"`
	HTML      string `json:"html"`
	Text      string `json:"text"`
	Preheader string `json:"preheader"`
}

// Renderer is satisfied by *rendering.Service.
type Renderer interface {
	RenderTemplate(ctx context.Context, req rendering.RenderRequest) (*models.RenderedEmail, error)
}
