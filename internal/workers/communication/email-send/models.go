package emailsend

import (
	"context"
	"time"

	"branded-email-workers/internal/common/logger"
	"branded-email-workers/internal/dispatch"
	"branded-email-workers/internal/models"
	"branded-email-workers/internal/rendering"
)

type Input struct {
	To           string                 `json:"to"`
	TemplateSlug string                 `json:"templateSlug"`
	Variables    map[string]interface{} `json:"variables,omitempty"`
	BrandingID   string                 `json:"brandingId,omitempty"`
	SystemData   map[string]interface{} `json:"systemData,omitempty"`
	ConfigID     string                 `json:"configId,omitempty"`
}

type Output struct {
	Success   bool      `json:"success"`
	MessageID string    `json:"messageId,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	SentAt    time.Time `json:"sentAt"`
}

// Renderer is satisfied by *rendering.Service.
type Renderer interface {
	RenderTemplate(ctx context.Context, req rendering.RenderRequest) (*models.RenderedEmail, error)
}

// Sender is satisfied by *dispatch.Dispatcher.
type Sender interface {
	Send(ctx context.Context, msg dispatch.Message) dispatch.Result
}

type ServiceDependencies struct {
	Renderer Renderer
	Sender   Sender
	Logger   logger.Logger
}
