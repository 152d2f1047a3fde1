package store

import (
	"context"
	"database/sql"
	"fmt"

	"branded-email-workers/internal/common/errors"
	"branded-email-workers/internal/common/validation"
	"branded-email-workers/internal/models"
)

const (
	selectEmailSettingsByID = `SELECT id, doc, is_active, smtp_password, updated_at FROM email_settings WHERE id = $1`

	selectActiveEmailSettings = `SELECT id, doc, is_active, smtp_password, updated_at FROM email_settings
WHERE is_active ORDER BY updated_at DESC LIMIT 1`

	deactivateOtherEmailSettings = `UPDATE email_settings SET is_active = false WHERE id <> $1 AND is_active`

	upsertEmailSettings = `INSERT INTO email_settings (id, is_active, smtp_password, doc, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET is_active = EXCLUDED.is_active, smtp_password = EXCLUDED.smtp_password, doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`
)

func scanEmailSettings(row rowScanner) (*models.EmailSettings, error) {
	es := models.NewEmailSettings()
	var (
		doc      []byte
		password string
	)
	if err := row.Scan(&es.ID, &doc, &es.IsActive, &password, &es.UpdatedAt); err != nil {
		return nil, err
	}
	id, active, updated := es.ID, es.IsActive, es.UpdatedAt
	if err := decodeDoc(doc, &es); err != nil {
		return nil, err
	}
	es.ID, es.IsActive, es.UpdatedAt = id, active, updated
	es.SMTPPassword = password
	return &es, nil
}

func (s *Store) GetEmailSettings(ctx context.Context, id string) (*models.EmailSettings, error) {
	es, err := scanEmailSettings(s.db.QueryRow(ctx, selectEmailSettingsByID, id))
	if err != nil {
		return nil, s.readErr("email_settings", err, errors.NewEmailConfigNotFoundError("id: "+id))
	}
	return es, nil
}

// GetActiveEmailSettings returns the most recently updated active provider.
func (s *Store) GetActiveEmailSettings(ctx context.Context) (*models.EmailSettings, error) {
	es, err := scanEmailSettings(s.db.QueryRow(ctx, selectActiveEmailSettings))
	if err != nil {
		return nil, s.readErr("email_settings", err, errors.NewEmailConfigNotFoundError("no active email settings"))
	}
	return es, nil
}

// SaveEmailSettings upserts es. The SMTP password lives in its own column and
// never enters the document. Activating es deactivates every other provider.
func (s *Store) SaveEmailSettings(ctx context.Context, es *models.EmailSettings) error {
	if err := validateEmailSettings(es); err != nil {
		return err
	}
	ensureID(&es.ID)
	es.UpdatedAt = s.now()

	doc, err := encodeDoc(es)
	if err != nil {
		return s.writeErr("email_settings", err)
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if es.IsActive {
			if _, err := tx.ExecContext(ctx, deactivateOtherEmailSettings, es.ID); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, upsertEmailSettings, es.ID, es.IsActive, es.SMTPPassword, doc, es.UpdatedAt)
		return err
	})
	if err != nil {
		return s.writeErr("email_settings", err)
	}
	return nil
}

func validateEmailSettings(es *models.EmailSettings) error {
	if es.ProviderName == "" {
		return errors.NewValidationError("providerName is required")
	}
	if !validation.ValidateEmail(es.FromAddress) {
		return errors.NewValidationError(fmt.Sprintf("fromAddress %q is not a valid email", es.FromAddress))
	}
	switch es.Transport {
	case models.TransportSMTP:
		if es.SMTPHost == "" {
			return errors.NewValidationError("smtpHost is required for smtp transport")
		}
		if es.SMTPPort <= 0 || es.SMTPPort > 65535 {
			return errors.NewValidationError("smtpPort must be between 1 and 65535")
		}
	case models.TransportSES:
	default:
		return errors.NewValidationError(fmt.Sprintf("transport must be smtp or ses, got %q", es.Transport))
	}
	return nil
}
