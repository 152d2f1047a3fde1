package dispatch

import (
	"context"
	"fmt"
	"time"

	awsclient "branded-email-workers/internal/common/aws"
	"branded-email-workers/internal/models"
)

// Transport delivers envelopes for one settings record.
type Transport interface {
	Name() string
	Verify(ctx context.Context) error
	Send(ctx context.Context, env Envelope) (messageID string, err error)
}

// Factory builds a transport from a settings record.
type Factory interface {
	Build(ctx context.Context, settings *models.EmailSettings) (Transport, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context, settings *models.EmailSettings) (Transport, error)

func (f FactoryFunc) Build(ctx context.Context, settings *models.EmailSettings) (Transport, error) {
	return f(ctx, settings)
}

type FactoryConfig struct {
	SESRegion string
	Timeout   time.Duration
}

// DefaultFactory builds SMTP or SES transports from stored settings.
type DefaultFactory struct {
	config FactoryConfig
	newSES func(ctx context.Context, region string) (*awsclient.SESClient, error)
}

func NewFactory(cfg FactoryConfig) *DefaultFactory {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &DefaultFactory{config: cfg, newSES: awsclient.NewSESClient}
}

func (f *DefaultFactory) Build(ctx context.Context, settings *models.EmailSettings) (Transport, error) {
	switch settings.Transport {
	case models.TransportSMTP, "":
		return NewSMTPTransport(*settings, f.config.Timeout), nil
	case models.TransportSES:
		region := settings.SESRegion
		if region == "" {
			region = f.config.SESRegion
		}
		client, err := f.newSES(ctx, region)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return NewSESTransport(client), nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", settings.Transport)
	}
}
