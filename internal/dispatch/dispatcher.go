// Package dispatch delivers rendered emails through the configured provider.
package dispatch

import (
	"context"
	"fmt"
	"html"
	"sync"

	"branded-email-workers/internal/common/errors"
	"branded-email-workers/internal/common/logger"
	"branded-email-workers/internal/common/metrics"
	"branded-email-workers/internal/models"
)

// SettingsSource is the read side of the email_settings table.
type SettingsSource interface {
	GetActiveEmailSettings(ctx context.Context) (*models.EmailSettings, error)
	GetEmailSettings(ctx context.Context, id string) (*models.EmailSettings, error)
}

type DispatcherDependencies struct {
	Settings SettingsSource
	Factory  Factory
	Logger   logger.Logger
}

// Result reports one send. Failures are carried in Error, never as a Go error.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Error     string `json:"error,omitempty"`
}

type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Dispatcher holds the transport built from the active settings. Rebuild
// swaps it atomically; a failed rebuild keeps the previous one.
type Dispatcher struct {
	settings SettingsSource
	factory  Factory
	logger   logger.Logger

	mu        sync.RWMutex
	transport Transport
	current   *models.EmailSettings
}

func New(deps DispatcherDependencies) *Dispatcher {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	factory := deps.Factory
	if factory == nil {
		factory = NewFactory(FactoryConfig{})
	}
	return &Dispatcher{
		settings: deps.Settings,
		factory:  factory,
		logger:   log,
	}
}

// Rebuild loads the active settings, builds and verifies a transport and
// makes it current.
func (d *Dispatcher) Rebuild(ctx context.Context) error {
	es, err := d.settings.GetActiveEmailSettings(ctx)
	if err != nil {
		d.logger.Warn("No active email configuration found", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	t, err := d.build(ctx, es)
	if err != nil {
		d.logger.Error("Failed to initialize email transporter", map[string]interface{}{
			"configId": es.ID,
			"provider": es.ProviderName,
			"error":    err.Error(),
		})
		return errors.NewDispatchNotConfiguredError(err.Error())
	}

	d.mu.Lock()
	d.transport, d.current = t, es
	d.mu.Unlock()

	d.logger.Info("Email transporter created and verified", map[string]interface{}{
		"configId":  es.ID,
		"provider":  es.ProviderName,
		"transport": t.Name(),
	})
	return nil
}

// Configured reports whether a verified transport is current.
func (d *Dispatcher) Configured() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.transport != nil
}

func (d *Dispatcher) build(ctx context.Context, es *models.EmailSettings) (Transport, error) {
	t, err := d.factory.Build(ctx, es)
	if err != nil {
		return nil, err
	}
	if err := t.Verify(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (d *Dispatcher) resolve(ctx context.Context, configID string) (Transport, *models.EmailSettings, error) {
	if configID != "" {
		es, err := d.settings.GetEmailSettings(ctx, configID)
		if err != nil {
			return nil, nil, err
		}
		t, err := d.build(ctx, es)
		if err != nil {
			return nil, nil, err
		}
		return t, es, nil
	}

	d.mu.RLock()
	t, es := d.transport, d.current
	d.mu.RUnlock()
	if t != nil {
		return t, es, nil
	}

	if err := d.Rebuild(ctx); err != nil {
		return nil, nil, errors.NewDispatchNotConfiguredError("No email transporter available")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.transport, d.current, nil
}

// Send delivers msg and reports the outcome.
func (d *Dispatcher) Send(ctx context.Context, msg Message) Result {
	t, es, err := d.resolve(ctx, msg.ConfigID)
	if err != nil {
		metrics.EmailDispatchesTotal.WithLabelValues("none", "failed").Inc()
		d.logger.Error("Error sending email", map[string]interface{}{
			"to":       msg.To,
			"configId": msg.ConfigID,
			"error":    err.Error(),
		})
		return Result{Error: err.Error()}
	}

	env := Envelope{
		From:        es.FromHeader(),
		FromAddress: es.FromAddress,
		Message:     msg,
	}

	id, err := t.Send(ctx, env)
	if err != nil {
		metrics.EmailDispatchesTotal.WithLabelValues(t.Name(), "failed").Inc()
		d.logger.Error("Error sending email", map[string]interface{}{
			"to":        msg.To,
			"transport": t.Name(),
			"provider":  es.ProviderName,
			"error":     err.Error(),
		})
		return Result{Provider: t.Name(), Error: err.Error()}
	}

	metrics.EmailDispatchesTotal.WithLabelValues(t.Name(), "success").Inc()
	d.logger.Info("Email sent successfully", map[string]interface{}{
		"to":        msg.To,
		"messageId": id,
		"transport": t.Name(),
	})
	return Result{Success: true, MessageID: id, Provider: t.Name()}
}

// TestConfiguration sends a test email to testEmail through the settings record configID.
func (d *Dispatcher) TestConfiguration(ctx context.Context, configID, testEmail string) TestResult {
	es, err := d.settings.GetEmailSettings(ctx, configID)
	if err != nil {
		d.logger.Error("Error testing email configuration", map[string]interface{}{
			"configId": configID,
			"error":    err.Error(),
		})
		return TestResult{Message: "Failed to test email configuration", Error: err.Error()}
	}

	name := html.EscapeString(es.ProviderName)
	res := d.Send(ctx, Message{
		To:      testEmail,
		Subject: "Test Email from " + es.ProviderName,
		Text: fmt.Sprintf("This is a test email sent from your email configuration: %s\n\n"+
			"If you received this email, your email configuration is working correctly!", es.ProviderName),
		HTML: fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Test Email from %s</h2>
  <p>This is a test email sent from your email configuration: <strong>%s</strong></p>
  <p>If you received this email, your email configuration is working correctly! ✅</p>
  <hr style="margin: 20px 0; border: none; border-top: 1px solid #eee;">
  <p style="font-size: 12px; color: #666;">Sent via %s</p>
</div>`, name, name, html.EscapeString(sentVia(es))),
		ConfigID: configID,
	})

	if !res.Success {
		return TestResult{Message: "Failed to send test email", Error: res.Error}
	}
	return TestResult{Success: true, Message: "Test email sent successfully to " + testEmail}
}

// SendSimpleTest sends a short test email to the active configuration's own from address.
func (d *Dispatcher) SendSimpleTest(ctx context.Context) TestResult {
	es, err := d.settings.GetActiveEmailSettings(ctx)
	if err != nil {
		d.logger.Error("Error sending simple test email", map[string]interface{}{
			"error": err.Error(),
		})
		return TestResult{Message: "Failed to send simple test email", Error: "No active email configuration found"}
	}

	res := d.Send(ctx, Message{
		To:      es.FromAddress,
		Subject: "Simple Test Email",
		Text:    "This is a simple test email to verify your email configuration is working.",
		HTML: fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Simple Test Email</h2>
  <p>This is a simple test email to verify your email configuration is working.</p>
  <p>Configuration: <strong>%s</strong></p>
  <p>✅ If you received this email, everything is working correctly!</p>
</div>`, html.EscapeString(es.ProviderName)),
		ConfigID: es.ID,
	})

	if !res.Success {
		return TestResult{Message: "Failed to send test email", Error: res.Error}
	}
	return TestResult{Success: true, Message: "Test email sent successfully to " + es.FromAddress}
}

func sentVia(es *models.EmailSettings) string {
	if es.Transport == models.TransportSES {
		return "Amazon SES"
	}
	return fmt.Sprintf("%s:%d", es.SMTPHost, es.SMTPPort)
}
