package dispatch

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"branded-email-workers/internal/models"
)

// SMTPTransport sends through one SMTP relay. Port 465 with smtpSecure uses
// implicit TLS; any other port upgrades with STARTTLS when the server offers it.
type SMTPTransport struct {
	settings models.EmailSettings
	timeout  time.Duration
	now      func() time.Time
}

func NewSMTPTransport(settings models.EmailSettings, timeout time.Duration) *SMTPTransport {
	return &SMTPTransport{
		settings: settings,
		timeout:  timeout,
		now:      time.Now,
	}
}

func (t *SMTPTransport) Name() string {
	return models.TransportSMTP
}

func (t *SMTPTransport) addr() string {
	return net.JoinHostPort(t.settings.SMTPHost, strconv.Itoa(t.settings.SMTPPort))
}

func (t *SMTPTransport) implicitTLS() bool {
	return t.settings.SMTPSecure && t.settings.SMTPPort == 465
}

func (t *SMTPTransport) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName: t.settings.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
}

// connect dials, greets and, when possible, upgrades and authenticates.
func (t *SMTPTransport) connect(ctx context.Context) (*smtp.Client, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	var (
		conn net.Conn
		err  error
	)
	if t.implicitTLS() {
		d := &tls.Dialer{Config: t.tlsConfig()}
		conn, err = d.DialContext(ctx, "tcp", t.addr())
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", t.addr())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, t.settings.SMTPHost)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start SMTP session: %w", err)
	}

	if !t.implicitTLS() {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(t.tlsConfig()); err != nil {
				client.Close()
				return nil, fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if t.settings.SMTPUsername != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", t.settings.SMTPUsername, t.settings.SMTPPassword, t.settings.SMTPHost)
			if err := client.Auth(auth); err != nil {
				client.Close()
				return nil, fmt.Errorf("SMTP authentication failed: %w", err)
			}
		}
	}

	return client, nil
}

// Verify opens a session, authenticates and quits.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	client, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Quit()
}

func (t *SMTPTransport) Send(ctx context.Context, env Envelope) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled before sending email: %w", err)
	}

	// RCPT TO takes the bare address; the header keeps the display name
	rcpt, err := mail.ParseAddress(env.To)
	if err != nil {
		return "", fmt.Errorf("invalid recipient %q: %w", env.To, err)
	}
	env.To = rcpt.String()

	messageID := newMessageID(t.settings.SMTPHost)
	raw, err := buildMIME(env, messageID, t.now())
	if err != nil {
		return "", fmt.Errorf("failed to build message: %w", err)
	}

	client, err := t.connect(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	if err := client.Mail(env.FromAddress); err != nil {
		return "", fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(rcpt.Address); err != nil {
		return "", fmt.Errorf("failed to set recipient %s: %w", rcpt.Address, err)
	}

	w, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return "", fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close data writer: %w", err)
	}

	// the relay accepted the data; a failed QUIT does not unsend it
	_ = client.Quit()
	return messageID, nil
}
