package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"regexp"
	"testing"
	"time"

	"branded-email-workers/internal/common/database"
	"branded-email-workers/internal/common/errors"
	"branded-email-workers/internal/common/logger"
	"branded-email-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var updated = time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T, cache *Cache) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(database.NewPostgresFromDB(db), cache, logger.NewTestLogger(t))
	s.now = func() time.Time { return updated }
	return s, mock
}

func q(query string) string {
	return regexp.QuoteMeta(query)
}

func docRows(id, doc string, active bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "doc", "is_active", "updated_at"}).
		AddRow(id, []byte(doc), active, updated)
}

func TestMigrate(t *testing.T) {
	s, mock := newMockStore(t, nil)
	mock.ExpectExec(q(Schema())).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS email_templates")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTemplateBySlug(t *testing.T) {
	s, mock := newMockStore(t, nil)

	doc := `{"name":"Welcome","slug":"welcome","subject":"Hi {{first_name}}","htmlContent":"<p>x</p>",
		"variables":[{"name":"first_name","required":true}],
		"typography":{"useCustom":true,"primaryFontId":"f-1","headingSize":"28"}}`
	mock.ExpectQuery(q(selectTemplateBySlug)).WithArgs("welcome").WillReturnRows(docRows("tpl-1", doc, true))
	mock.ExpectQuery(q(selectFontsByID)).WithArgs(sqlmock.AnyArg()).
		WillReturnRows(docRows("f-1", `{"name":"Inter","fontFamily":"Inter, sans-serif"}`, true))

	tpl, err := s.GetTemplateBySlug(context.Background(), "welcome")
	require.NoError(t, err)

	assert.Equal(t, "tpl-1", tpl.ID)
	assert.True(t, tpl.IsActive)
	assert.Equal(t, "Hi {{first_name}}", tpl.Subject)
	assert.Equal(t, []string{"first_name"}, tpl.RequiredVariables())
	require.NotNil(t, tpl.Typography.PrimaryFont)
	assert.Equal(t, "Inter, sans-serif", tpl.Typography.PrimaryFont.FontFamily)
	assert.Equal(t, "Arial, Helvetica, sans-serif", tpl.Typography.PrimaryFont.WebSafeFallbacks)
	assert.Nil(t, tpl.Typography.SecondaryFont)
	assert.Equal(t, updated, tpl.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTemplateBySlug_Errors(t *testing.T) {
	t.Run("no rows is not found", func(t *testing.T) {
		s, mock := newMockStore(t, nil)
		mock.ExpectQuery(q(selectTemplateBySlug)).WithArgs("gone").WillReturnError(sql.ErrNoRows)

		_, err := s.GetTemplateBySlug(context.Background(), "gone")
		assert.True(t, errors.HasCode(err, errors.ErrCodeTemplateNotFound))
	})

	t.Run("driver failure is a read failure", func(t *testing.T) {
		s, mock := newMockStore(t, nil)
		mock.ExpectQuery(q(selectTemplateBySlug)).WithArgs("welcome").WillReturnError(stderrors.New("conn reset"))

		_, err := s.GetTemplateBySlug(context.Background(), "welcome")
		assert.True(t, errors.HasCode(err, errors.ErrCodeStoreReadFailed))
	})
}

func TestSaveTemplate(t *testing.T) {
	s, mock := newMockStore(t, nil)
	tpl := &models.EmailTemplate{ID: "tpl-1", Slug: "welcome", Subject: "Hi", IsActive: true}
	tpl.Typography.PrimaryFont = &models.TypographyFont{FontFamily: "Inter"}

	mock.ExpectBegin()
	mock.ExpectQuery(q(selectTemplateSlug)).WithArgs("tpl-1").WillReturnRows(sqlmock.NewRows([]string{"slug"}))
	mock.ExpectExec(q(upsertTemplate)).
		WithArgs("tpl-1", "welcome", true, sqlmock.AnyArg(), updated).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.SaveTemplate(context.Background(), tpl))
	assert.NotNil(t, tpl.Typography.PrimaryFont, "caller's resolved font is left in place")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveTemplate_Validation(t *testing.T) {
	s, _ := newMockStore(t, nil)
	err := s.SaveTemplate(context.Background(), &models.EmailTemplate{Slug: "Bad Slug"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
}

func TestSaveTemplate_DuplicateSlug(t *testing.T) {
	s, mock := newMockStore(t, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(q(selectTemplateSlug)).WithArgs("tpl-2").WillReturnRows(sqlmock.NewRows([]string{"slug"}))
	mock.ExpectExec(q(upsertTemplate)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "email_templates_slug_key"})
	mock.ExpectRollback()

	err := s.SaveTemplate(context.Background(), &models.EmailTemplate{ID: "tpl-2", Slug: "welcome"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveBranding_ResolvesLogoAndDefaults(t *testing.T) {
	s, mock := newMockStore(t, nil)

	doc := `{"name":"Main","appName":"Acme","logoId":"m-1","colors":{"primary":"#ff0000"}}`
	mock.ExpectQuery(q(selectActiveBranding)).WillReturnRows(docRows("b-1", doc, true))
	mock.ExpectQuery(q(selectMedia)).WithArgs("m-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "alt", "mime_type"}).
			AddRow("m-1", "https://cdn.acme.io/logo.png", "Acme", "image/png"))

	b, err := s.GetActiveBranding(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Acme", b.AppName)
	assert.Equal(t, "https://cdn.acme.io/logo.png", b.LogoURL)
	assert.Equal(t, "#ff0000", b.Colors.Primary)
	assert.Equal(t, "#6c757d", b.Colors.Secondary, "omitted colors keep collection defaults")
	assert.True(t, b.EmailSettings.ShowUnsubscribeLink)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBrandingByID_NotFound(t *testing.T) {
	s, mock := newMockStore(t, nil)
	mock.ExpectQuery(q(selectBrandingByID)).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := s.GetBrandingByID(context.Background(), "ghost")
	assert.True(t, errors.HasCode(err, errors.ErrCodeBrandingNotFound))
}

func TestSaveBranding_SingleActive(t *testing.T) {
	t.Run("activating deactivates others in the same transaction", func(t *testing.T) {
		s, mock := newMockStore(t, nil)
		b := models.NewAppBranding()
		b.ID, b.Name, b.AppName, b.IsActive = "b-2", "New", "Acme", true

		mock.ExpectBegin()
		mock.ExpectExec(q(deactivateOtherBrandings)).WithArgs("b-2").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q(upsertBranding)).WithArgs("b-2", true, sqlmock.AnyArg(), updated).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.SaveBranding(context.Background(), &b))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inactive save leaves others alone", func(t *testing.T) {
		s, mock := newMockStore(t, nil)
		b := models.NewAppBranding()
		b.ID = "b-3"

		mock.ExpectBegin()
		mock.ExpectExec(q(upsertBranding)).WithArgs("b-3", false, sqlmock.AnyArg(), updated).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.SaveBranding(context.Background(), &b))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed upsert rolls back", func(t *testing.T) {
		s, mock := newMockStore(t, nil)
		b := models.NewAppBranding()
		b.ID, b.IsActive = "b-4", true

		mock.ExpectBegin()
		mock.ExpectExec(q(deactivateOtherBrandings)).WithArgs("b-4").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q(upsertBranding)).WillReturnError(stderrors.New("disk full"))
		mock.ExpectRollback()

		err := s.SaveBranding(context.Background(), &b)
		assert.True(t, errors.HasCode(err, errors.ErrCodeStoreWriteFailed))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaveBranding_Validation(t *testing.T) {
	s, _ := newMockStore(t, nil)

	b := models.NewAppBranding()
	b.SocialLinks = []models.SocialLink{{Platform: "github", URL: "ftp://github.com/acme"}}
	assert.True(t, errors.HasCode(s.SaveBranding(context.Background(), &b), errors.ErrCodeValidationFailed))

	b.SocialLinks = []models.SocialLink{{Platform: "myspace", URL: "https://myspace.com/acme"}}
	assert.True(t, errors.HasCode(s.SaveBranding(context.Background(), &b), errors.ErrCodeValidationFailed))

	b.SocialLinks = nil
	b.Colors.Primary = "blue"
	assert.True(t, errors.HasCode(s.SaveBranding(context.Background(), &b), errors.ErrCodeValidationFailed))
}

func TestGetDefaultLayout(t *testing.T) {
	s, mock := newMockStore(t, nil)

	doc := `{"name":"Compact","header":{"layout":"name-only"},"footer":{"layout":"minimal"}}`
	mock.ExpectQuery(q(selectDefaultLayout)).WillReturnRows(
		sqlmock.NewRows([]string{"id", "doc", "is_default", "is_active", "updated_at"}).
			AddRow("l-1", []byte(doc), true, true, updated))

	l, err := s.GetDefaultLayout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.HeaderNameOnly, l.Header.Layout)
	assert.True(t, l.Header.Enabled, "omitted flags keep defaults")
	assert.Equal(t, models.FooterMinimal, l.Footer.Layout)
	assert.True(t, l.Footer.Sections.ShowCopyright)
	assert.True(t, l.IsDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLayout_ClearsOtherDefaults(t *testing.T) {
	s, mock := newMockStore(t, nil)
	l := models.DefaultLayout()
	l.ID = "l-2"

	mock.ExpectBegin()
	mock.ExpectExec(q(clearOtherDefaultLayouts)).WithArgs("l-2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(upsertLayout)).WithArgs("l-2", true, true, sqlmock.AnyArg(), updated).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.SaveLayout(context.Background(), &l))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveGlobalVariables(t *testing.T) {
	s, mock := newMockStore(t, nil)

	rows := sqlmock.NewRows([]string{"id", "doc", "is_active", "updated_at"}).
		AddRow("g-1", []byte(`{"name":"company_name","value":"Acme Inc","category":"company"}`), true, updated).
		AddRow("g-2", []byte(`{"name":"current_year","value":"","isSystemGenerated":true}`), true, updated)
	mock.ExpectQuery(q(selectActiveGlobals)).WillReturnRows(rows)

	vars, err := s.ListActiveGlobalVariables(context.Background())
	require.NoError(t, err)
	require.Len(t, vars, 2)
	assert.Equal(t, "Acme Inc", vars[0].Value)
	assert.True(t, vars[1].IsSystemGenerated)
	assert.True(t, vars[1].IsActive)
}

func TestSaveGlobalVariable(t *testing.T) {
	t.Run("fills usage example", func(t *testing.T) {
		s, mock := newMockStore(t, nil)
		g := &models.GlobalVariable{Name: "company_name", Value: "Acme", IsActive: true}

		mock.ExpectExec(q(upsertGlobal)).
			WithArgs(sqlmock.AnyArg(), "company_name", true, sqlmock.AnyArg(), updated).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.SaveGlobalVariable(context.Background(), g))
		assert.NotEmpty(t, g.ID)
		assert.Equal(t, "{{company_name}}", g.UsageExample)
		assert.Equal(t, models.GlobalCategoryCustom, g.Category)
	})

	t.Run("duplicate name", func(t *testing.T) {
		s, mock := newMockStore(t, nil)
		mock.ExpectExec(q(upsertGlobal)).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "global_variables_name_key"})

		err := s.SaveGlobalVariable(context.Background(), &models.GlobalVariable{Name: "company_name"})
		require.Error(t, err)
		std, ok := errors.AsStandardError(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeDuplicateVariable, std.Code)
		assert.Equal(t, "global_variables_name_key", std.Metadata["constraint"])
	})

	t.Run("invalid name", func(t *testing.T) {
		s, _ := newMockStore(t, nil)
		err := s.SaveGlobalVariable(context.Background(), &models.GlobalVariable{Name: "1st-name"})
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
	})
}

func TestListFontsByUsage(t *testing.T) {
	s, mock := newMockStore(t, nil)
	rows := sqlmock.NewRows([]string{"id", "doc", "is_active", "updated_at"}).
		AddRow("f-1", []byte(`{"name":"Inter","fontFamily":"Inter","usage":["email","frontend"]}`), true, updated)
	mock.ExpectQuery(q(selectFontsByUsage)).WithArgs("email").WillReturnRows(rows)

	fonts, err := s.ListFontsByUsage(context.Background(), "email")
	require.NoError(t, err)
	require.Len(t, fonts, 1)
	assert.Equal(t, []string{"email", "frontend"}, fonts[0].Usage)
	assert.Equal(t, "Arial, sans-serif", fonts[0].EmailSettings.EmailFallback)
}

func TestResolveTypography_FontReadFailureFallsBack(t *testing.T) {
	s, mock := newMockStore(t, nil)
	mock.ExpectQuery(q(selectFontsByID)).WillReturnError(stderrors.New("timeout"))

	typo := models.TypographyOverride{PrimaryFontID: "f-1"}
	s.resolveTypography(context.Background(), &typo)
	assert.Nil(t, typo.PrimaryFont)
}

func TestEmailSettings(t *testing.T) {
	cols := []string{"id", "doc", "is_active", "smtp_password", "updated_at"}

	t.Run("active settings carry the password column", func(t *testing.T) {
		s, mock := newMockStore(t, nil)
		doc := `{"providerName":"Postmark","smtpHost":"smtp.postmarkapp.com","smtpUsername":"key","fromAddress":"no-reply@acme.io"}`
		mock.ExpectQuery(q(selectActiveEmailSettings)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow("es-1", []byte(doc), true, "s3cret", updated))

		es, err := s.GetActiveEmailSettings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "s3cret", es.SMTPPassword)
		assert.Equal(t, 587, es.SMTPPort)
		assert.Equal(t, models.TransportSMTP, es.Transport)
		assert.True(t, es.SMTPSecure)
	})

	t.Run("unknown id", func(t *testing.T) {
		s, mock := newMockStore(t, nil)
		mock.ExpectQuery(q(selectEmailSettingsByID)).WithArgs("nope").WillReturnError(sql.ErrNoRows)

		_, err := s.GetEmailSettings(context.Background(), "nope")
		assert.True(t, errors.HasCode(err, errors.ErrCodeEmailConfigNotFound))
	})

	t.Run("save active", func(t *testing.T) {
		s, mock := newMockStore(t, nil)
		es := models.NewEmailSettings()
		es.ID, es.ProviderName, es.SMTPHost, es.FromAddress, es.IsActive = "es-2", "SES relay", "email-smtp.eu-west-1.amazonaws.com", "no-reply@acme.io", true
		es.SMTPPassword = "pw"

		mock.ExpectBegin()
		mock.ExpectExec(q(deactivateOtherEmailSettings)).WithArgs("es-2").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(q(upsertEmailSettings)).WithArgs("es-2", true, "pw", sqlmock.AnyArg(), updated).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.SaveEmailSettings(context.Background(), &es))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("validation", func(t *testing.T) {
		s, _ := newMockStore(t, nil)
		es := models.NewEmailSettings()
		es.ProviderName, es.FromAddress = "x", "no-reply@acme.io"
		assert.True(t, errors.HasCode(s.SaveEmailSettings(context.Background(), &es), errors.ErrCodeValidationFailed), "smtp host required")

		es.Transport = "carrier-pigeon"
		assert.True(t, errors.HasCode(s.SaveEmailSettings(context.Background(), &es), errors.ErrCodeValidationFailed))
	})
}

func TestSaveMedia(t *testing.T) {
	s, mock := newMockStore(t, nil)
	m := &models.Media{URL: "https://cdn.acme.io/logo.png", MimeType: "image/png"}

	mock.ExpectExec(q(upsertMedia)).
		WithArgs(sqlmock.AnyArg(), m.URL, "", "image/png", updated).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SaveMedia(context.Background(), m))
	assert.NotEmpty(t, m.ID)
	assert.True(t, errors.HasCode(s.SaveMedia(context.Background(), &models.Media{}), errors.ErrCodeValidationFailed))
}
