// Package rendering turns a stored template, branding and layout into a ready-to-send email.
package rendering

import (
	"context"
	"html"
	"regexp"
	"strings"
	"time"

	"branded-email-workers/internal/common/errors"
	"branded-email-workers/internal/common/logger"
	"branded-email-workers/internal/common/metrics"
	"branded-email-workers/internal/models"
	"branded-email-workers/internal/rendering/compositor"
	"branded-email-workers/internal/rendering/renderer"
	"branded-email-workers/internal/rendering/variables"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Store is the read side the service needs. Implementations return a
// *errors.StandardError with a *_NOT_FOUND code when nothing matches.
type Store interface {
	GetTemplateBySlug(ctx context.Context, slug string) (*models.EmailTemplate, error)
	GetBrandingByID(ctx context.Context, id string) (*models.AppBranding, error)
	GetActiveBranding(ctx context.Context) (*models.AppBranding, error)
	GetDefaultLayout(ctx context.Context) (*models.EmailLayout, error)
	ListActiveGlobalVariables(ctx context.Context) ([]models.GlobalVariable, error)
}

// Tracer is satisfied by *observability.Observability.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
	RecordRender(ctx context.Context, templateSlug, status string)
}

type ServiceDependencies struct {
	Store    Store
	Resolver *variables.Resolver
	Logger   logger.Logger
	Metrics  metrics.Recorder
	Tracer   Tracer
}

type Config struct {
	PublicURL       string
	DerivePlainText bool
}

// RenderRequest names a template and the caller data for one render.
type RenderRequest struct {
	TemplateSlug string                 `json:"templateSlug"`
	Variables    map[string]interface{} `json:"variables,omitempty"`
	BrandingID   string                 `json:"brandingId,omitempty"`
	SystemData   map[string]interface{} `json:"systemData,omitempty"`
}

type Service struct {
	store    Store
	resolver *variables.Resolver
	logger   logger.Logger
	metrics  metrics.Recorder
	tracer   Tracer
	config   Config
	text     *bluemonday.Policy
}

func NewService(deps ServiceDependencies, cfg Config) *Service {
	resolver := deps.Resolver
	if resolver == nil {
		resolver = variables.NewResolver(variables.WithBaseURL(cfg.PublicURL))
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	rec := deps.Metrics
	if rec == nil {
		rec = metrics.PromRecorder{}
	}

	return &Service{
		store:    deps.Store,
		resolver: resolver,
		logger:   log,
		metrics:  rec,
		tracer:   deps.Tracer,
		config:   cfg,
		text:     bluemonday.StrictPolicy(),
	}
}

// GetTemplate returns the active template with the given slug.
func (s *Service) GetTemplate(ctx context.Context, slug string) (*models.EmailTemplate, error) {
	tpl, err := s.store.GetTemplateBySlug(ctx, slug)
	if err != nil || tpl == nil {
		s.logLookupFailure("Error fetching email template", err, map[string]interface{}{"slug": slug})
		return nil, errors.NewTemplateNotFoundError(slug)
	}
	if !tpl.IsActive {
		return nil, errors.NewTemplateNotFoundError(slug)
	}
	return tpl, nil
}

// GetActiveBranding returns the single active branding.
func (s *Service) GetActiveBranding(ctx context.Context) (*models.AppBranding, error) {
	b, err := s.store.GetActiveBranding(ctx)
	if err != nil || b == nil {
		s.logLookupFailure("Error fetching active app branding", err, nil)
		return nil, errors.NewBrandingNotFoundError("no active branding")
	}
	return b, nil
}

// GetDefaultEmailLayout returns the layout that is both default and active.
func (s *Service) GetDefaultEmailLayout(ctx context.Context) (*models.EmailLayout, error) {
	l, err := s.store.GetDefaultLayout(ctx)
	if err != nil || l == nil || !l.IsDefault || !l.IsActive {
		s.logLookupFailure("Error fetching default email layout", err, nil)
		return nil, errors.NewLayoutNotFoundError()
	}
	return l, nil
}

func (s *Service) logLookupFailure(msg string, err error, fields map[string]interface{}) {
	if err == nil || errors.HasCode(err, errors.ErrCodeTemplateNotFound) ||
		errors.HasCode(err, errors.ErrCodeBrandingNotFound) || errors.HasCode(err, errors.ErrCodeLayoutNotFound) {
		return
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["error"] = err.Error()
	s.logger.Error(msg, fields)
}

// RenderTemplate produces subject, html, text and preheader for req. It either
// returns a complete email or nil and a *errors.StandardError.
func (s *Service) RenderTemplate(ctx context.Context, req RenderRequest) (*models.RenderedEmail, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "rendering.RenderTemplate", attribute.String("template.slug", req.TemplateSlug))
	defer span.End()

	out, err := s.render(ctx, req)

	status := "success"
	if err != nil {
		status = "failed"
		if std, ok := errors.AsStandardError(err); ok {
			span.SetAttributes(attribute.String("error.code", string(std.Code)))
		}
		span.RecordError(err)
		s.logger.Error("Error rendering email template", map[string]interface{}{
			"templateSlug": req.TemplateSlug,
			"brandingId":   req.BrandingID,
			"error":        err.Error(),
		})
	}
	s.metrics.RenderCompleted(status, time.Since(start).Seconds())
	if s.tracer != nil {
		s.tracer.RecordRender(ctx, req.TemplateSlug, status)
	}

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) render(ctx context.Context, req RenderRequest) (*models.RenderedEmail, error) {
	tpl, err := s.GetTemplate(ctx, req.TemplateSlug)
	if err != nil {
		return nil, err
	}

	branding, err := s.resolveBranding(ctx, req.BrandingID, tpl.BrandingID)
	if err != nil {
		return nil, err
	}

	// a missing layout renders with the built-in default shell
	layout, _ := s.GetDefaultEmailLayout(ctx)

	globals, err := s.store.ListActiveGlobalVariables(ctx)
	if err != nil {
		return nil, errors.NewStoreReadFailedError("global_variables", err)
	}

	vars := s.resolver.ResolveWithGlobals(globals, branding, req.Variables, req.SystemData)

	subject := renderer.Render(tpl.Subject, vars, tpl.Variables)
	text := renderer.Render(tpl.TextContent, vars, tpl.Variables)
	body, report := renderer.RenderWithReport(tpl.HTMLContent, vars, tpl.Variables)
	preheader := renderer.Render(tpl.Preheader, vars, tpl.Variables)

	if len(report.Unresolved) > 0 || len(report.Defaulted) > 0 {
		s.logger.Debug("Template placeholders filled without caller values", map[string]interface{}{
			"templateSlug": tpl.Slug,
			"defaulted":    report.Defaulted,
			"unresolved":   report.Unresolved,
		})
	}

	htmlOut := compositor.Compose(body, branding, preheader, layout,
		compositor.WithTypography(tpl.Typography),
		compositor.WithLinks(compositor.Links{Unsubscribe: vars["unsubscribe_url"]}),
	)

	if text == "" && s.config.DerivePlainText {
		text = s.PlainText(body)
	}

	return &models.RenderedEmail{
		Subject:   subject,
		HTML:      htmlOut,
		Text:      text,
		Preheader: preheader,
	}, nil
}

// resolveBranding prefers the explicit id, then the template's branding, then the active one.
func (s *Service) resolveBranding(ctx context.Context, requested, templateBranding string) (*models.AppBranding, error) {
	for _, id := range []string{requested, templateBranding} {
		if id == "" {
			continue
		}
		b, err := s.store.GetBrandingByID(ctx, id)
		if err != nil || b == nil {
			s.logLookupFailure("Error fetching app branding", err, map[string]interface{}{"brandingId": id})
			return nil, errors.NewBrandingNotFoundError("id: " + id)
		}
		return b, nil
	}
	return s.GetActiveBranding(ctx)
}

// ValidateTemplateVariables reports required variables missing from variables.
func (s *Service) ValidateTemplateVariables(ctx context.Context, slug string, vars map[string]interface{}) (renderer.ValidationResult, error) {
	tpl, err := s.GetTemplate(ctx, slug)
	if err != nil {
		return renderer.ValidationResult{}, err
	}
	return renderer.ValidateTemplateVariables(tpl, vars), nil
}

// PreviewTemplate renders slug with the registry sample values overlaid by the template's test data.
func (s *Service) PreviewTemplate(ctx context.Context, slug, brandingID string) (*models.RenderedEmail, error) {
	tpl, err := s.GetTemplate(ctx, slug)
	if err != nil {
		return nil, err
	}

	vars := make(map[string]interface{}, len(tpl.TestData)+len(variables.SystemVariables))
	for k, v := range variables.SampleValues() {
		vars[k] = v
	}
	for k, v := range tpl.TestData {
		vars[k] = v
	}

	return s.RenderTemplate(ctx, RenderRequest{
		TemplateSlug: slug,
		Variables:    vars,
		BrandingID:   brandingID,
		SystemData:   vars,
	})
}

// TypographyStylesheet returns the web stylesheet for the active branding's
// email typography: @font-face rules followed by the custom-property styles.
func (s *Service) TypographyStylesheet(ctx context.Context) (string, error) {
	b, err := s.GetActiveBranding(ctx)
	if err != nil {
		return "", err
	}
	t := compositor.ResolveTypography(b.EmailTypography)
	return compositor.FontFaceCSS(compositor.Fonts(t)) + compositor.WebCSS(t), nil
}

var (
	blockBreak = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|li|tr|table)>`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// PlainText strips markup from body, keeping block boundaries as line breaks.
func (s *Service) PlainText(body string) string {
	marked := blockBreak.ReplaceAllStringFunc(body, func(m string) string { return m + "\n" })
	stripped := html.UnescapeString(s.text.Sanitize(marked))

	lines := strings.Split(stripped, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.StartSpan(ctx, name, attrs...)
}
