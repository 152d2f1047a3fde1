package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"branded-email-workers/internal/common/errors"
	"branded-email-workers/internal/rendering"
	"branded-email-workers/internal/rendering/variables"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type testEmailRequest struct {
	ConfigID  string `json:"configId"`
	TestEmail string `json:"testEmail"`
}

type renderRequest struct {
	Variables  map[string]interface{} `json:"variables"`
	BrandingID string                 `json:"brandingId"`
	SystemData map[string]interface{} `json:"systemData"`
}

type validateRequest struct {
	Variables map[string]interface{} `json:"variables"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

// decodeBody reads an optional JSON body into dst. An empty body is not an error.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if stderrors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	for _, p := range s.ready {
		if err := p.Ping(r.Context()); err != nil {
			s.logger.Warn("Readiness check failed", map[string]interface{}{
				"error": err.Error(),
			})
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) testEmail(w http.ResponseWriter, r *http.Request) {
	var req testEmailRequest
	if err := decodeBody(r, &req); err != nil {
		s.logger.Error("Error in test-email API", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if req.ConfigID == "" || req.TestEmail == "" {
		writeError(w, http.StatusBadRequest, "Configuration ID and test email are required")
		return
	}

	res := s.dispatcher.TestConfiguration(r.Context(), req.ConfigID, req.TestEmail)
	s.writeTestResult(w, res.Success, res.Message, res.Error)
}

func (s *Server) testEmailSimple(w http.ResponseWriter, r *http.Request) {
	res := s.dispatcher.SendSimpleTest(r.Context())
	s.writeTestResult(w, res.Success, res.Message, res.Error)
}

func (s *Server) writeTestResult(w http.ResponseWriter, success bool, message, errMsg string) {
	if success {
		writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: message})
		return
	}
	if errMsg == "" {
		errMsg = message
	}
	writeError(w, http.StatusBadRequest, errMsg)
}

func (s *Server) systemVariables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": variables.Categories(),
		"variables":  variables.ByCategory(),
		"sampleData": variables.SampleData(),
	})
}

func (s *Server) typographyStylesheet(w http.ResponseWriter, r *http.Request) {
	css, err := s.renderer.TypographyStylesheet(r.Context())
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, css)
}

func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	out, err := s.renderer.RenderTemplate(r.Context(), rendering.RenderRequest{
		TemplateSlug: chi.URLParam(r, "slug"),
		Variables:    req.Variables,
		BrandingID:   req.BrandingID,
		SystemData:   req.SystemData,
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "Template could not be rendered")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) validateTemplate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	res, err := s.renderer.ValidateTemplateVariables(r.Context(), chi.URLParam(r, "slug"), req.Variables)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) previewTemplate(w http.ResponseWriter, r *http.Request) {
	out, err := s.renderer.PreviewTemplate(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("brandingId"))
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out.HTML)
}

func (s *Server) writeLookupError(w http.ResponseWriter, err error) {
	if std, ok := errors.AsStandardError(err); ok {
		status := http.StatusInternalServerError
		switch std.Code {
		case errors.ErrCodeTemplateNotFound, errors.ErrCodeBrandingNotFound:
			status = http.StatusNotFound
		case errors.ErrCodeValidationFailed:
			status = http.StatusBadRequest
		}
		writeJSON(w, status, std)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
