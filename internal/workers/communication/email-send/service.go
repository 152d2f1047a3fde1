package emailsend

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"branded-email-workers/internal/common/errors"
	"branded-email-workers/internal/common/logger"
	"branded-email-workers/internal/common/validation"
	"branded-email-workers/internal/dispatch"
	"branded-email-workers/internal/rendering"
)

// Service renders a template and hands the result to the dispatcher.
type Service struct {
	renderer Renderer
	sender   Sender
	logger   logger.Logger
	now      func() time.Time
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{
		renderer: deps.Renderer,
		sender:   deps.Sender,
		logger:   deps.Logger,
		now:      time.Now,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !validation.ValidateRecipient(input.To) {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid recipient address: %s", input.To))
	}

	rendered, err := s.renderer.RenderTemplate(ctx, rendering.RenderRequest{
		TemplateSlug: input.TemplateSlug,
		Variables:    input.Variables,
		BrandingID:   input.BrandingID,
		SystemData:   input.SystemData,
	})
	if err != nil {
		return nil, err
	}

	res := s.sender.Send(ctx, dispatch.Message{
		To:       input.To,
		Subject:  rendered.Subject,
		HTML:     rendered.HTML,
		Text:     rendered.Text,
		ConfigID: input.ConfigID,
	})
	if !res.Success {
		provider := res.Provider
		if provider == "" {
			provider = "none"
		}
		return nil, errors.NewNotificationSendFailedError(provider, stderrors.New(res.Error)).
			WithMetadata("templateSlug", input.TemplateSlug)
	}

	s.logger.Info("Templated email dispatched", map[string]interface{}{
		"to":           input.To,
		"templateSlug": input.TemplateSlug,
		"messageId":    res.MessageID,
		"provider":     res.Provider,
	})

	return &Output{
		Success:   true,
		MessageID: res.MessageID,
		Provider:  res.Provider,
		SentAt:    s.now().UTC(),
	}, nil
}
