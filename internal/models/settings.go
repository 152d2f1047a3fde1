// internal/models/settings.go
package models

import "time"

// Dispatch transports.
const (
	TransportSMTP = "smtp"
	TransportSES  = "ses"
)

// EmailSettings is one configured sending provider.
type EmailSettings struct {
	ID           string    `json:"id" yaml:"id"`
	ProviderName string    `json:"providerName" yaml:"providerName"`
	Transport    string    `json:"transport" yaml:"transport"`
	IsActive     bool      `json:"isActive" yaml:"isActive"`
	SMTPHost     string    `json:"smtpHost,omitempty" yaml:"smtpHost,omitempty"`
	SMTPPort     int       `json:"smtpPort,omitempty" yaml:"smtpPort,omitempty"`
	SMTPSecure   bool      `json:"smtpSecure" yaml:"smtpSecure"`
	SMTPUsername string    `json:"smtpUsername,omitempty" yaml:"smtpUsername,omitempty"`
	SMTPPassword string    `json:"-" yaml:"smtpPassword,omitempty"`
	SESRegion    string    `json:"sesRegion,omitempty" yaml:"sesRegion,omitempty"`
	FromName     string    `json:"fromName,omitempty" yaml:"fromName,omitempty"`
	FromAddress  string    `json:"fromAddress" yaml:"fromAddress"`
	TestEmail    string    `json:"testEmail,omitempty" yaml:"testEmail,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt" yaml:"-"`
}

// NewEmailSettings returns settings populated with collection defaults.
func NewEmailSettings() EmailSettings {
	return EmailSettings{
		Transport:  TransportSMTP,
		SMTPPort:   587,
		SMTPSecure: true,
	}
}

// FromHeader formats the From header as "Name" <addr>, or just the address.
func (s *EmailSettings) FromHeader() string {
	if s.FromName == "" {
		return s.FromAddress
	}
	return `"` + s.FromName + `" <` + s.FromAddress + `>`
}
