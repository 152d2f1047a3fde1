// Package api exposes rendering previews, variable catalogs and the
// email configuration test endpoints over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"branded-email-workers/internal/common/logger"
	"branded-email-workers/internal/common/metrics"
	"branded-email-workers/internal/dispatch"
	"branded-email-workers/internal/models"
	"branded-email-workers/internal/rendering"
	"branded-email-workers/internal/rendering/renderer"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Renderer is satisfied by *rendering.Service.
type Renderer interface {
	RenderTemplate(ctx context.Context, req rendering.RenderRequest) (*models.RenderedEmail, error)
	ValidateTemplateVariables(ctx context.Context, slug string, vars map[string]interface{}) (renderer.ValidationResult, error)
	PreviewTemplate(ctx context.Context, slug, brandingID string) (*models.RenderedEmail, error)
	TypographyStylesheet(ctx context.Context) (string, error)
}

// Dispatcher is satisfied by *dispatch.Dispatcher.
type Dispatcher interface {
	TestConfiguration(ctx context.Context, configID, testEmail string) dispatch.TestResult
	SendSimpleTest(ctx context.Context) dispatch.TestResult
}

// Pinger is a readiness dependency such as the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Renderer   Renderer
	Dispatcher Dispatcher
	Ready      []Pinger
	Logger     logger.Logger
}

type Server struct {
	renderer   Renderer
	dispatcher Dispatcher
	ready      []Pinger
	logger     logger.Logger
}

func NewServer(deps Dependencies) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Server{
		renderer:   deps.Renderer,
		dispatcher: deps.Dispatcher,
		ready:      deps.Ready,
		logger:     log,
	}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Get("/ready", s.readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/test-email", s.testEmail)
		r.Post("/test-email-simple", s.testEmailSimple)
		r.Get("/system-variables", s.systemVariables)
		r.Get("/typography.css", s.typographyStylesheet)

		r.Route("/email-templates/{slug}", func(r chi.Router) {
			r.Post("/render", s.renderTemplate)
			r.Post("/validate", s.validateTemplate)
			r.Get("/preview", s.previewTemplate)
		})
	})

	return r
}

// requestLogger logs each request and counts it by route pattern.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()

			s.logger.Info("HTTP request", map[string]interface{}{
				"method":     r.Method,
				"route":      route,
				"status":     status,
				"bytes":      ww.BytesWritten(),
				"durationMs": time.Since(start).Milliseconds(),
				"requestId":  middleware.GetReqID(r.Context()),
			})
		}()

		next.ServeHTTP(ww, r)
	})
}

// NewHTTPServer wraps the routes with the configured timeouts.
func NewHTTPServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}
}
