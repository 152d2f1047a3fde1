package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_Error(t *testing.T) {
	err := NewTemplateNotFoundError("welcome")
	assert.Equal(t, "StandardError[TEMPLATE_NOT_FOUND]: Template not found or inactive", err.Error())
	assert.Equal(t, "slug: welcome", err.Details)
	assert.False(t, err.Retryable)
	assert.False(t, err.Timestamp.IsZero())
}

func TestAsStandardError_Wrapped(t *testing.T) {
	base := NewBrandingNotFoundError("id: b-1")
	wrapped := fmt.Errorf("render: %w", base)

	got, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeBrandingNotFound, got.Code)
	assert.True(t, HasCode(wrapped, ErrCodeBrandingNotFound))
	assert.False(t, HasCode(wrapped, ErrCodeTemplateNotFound))
	assert.False(t, HasCode(stderrors.New("plain"), ErrCodeTemplateNotFound))
}

func TestStandardError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewStoreReadFailedError("email_templates", cause)
	assert.ErrorIs(t, err, cause)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"template missing", NewTemplateNotFoundError("x"), "TEMPLATE_NOT_FOUND", 0},
		{"store read classed as not found", NewStoreReadFailedError("email_templates", stderrors.New("x")), "TEMPLATE_NOT_FOUND", 0},
		{"send failure retried", NewNotificationSendFailedError("smtp", stderrors.New("x")), "NOTIFICATION_SEND_FAILED", 3},
		{"smtp mapped to send failure", NewSMTPError(stderrors.New("x")), "NOTIFICATION_SEND_FAILED", 3},
		{"unknown falls back to code", NewInternalError(stderrors.New("x")), "INTERNAL_ERROR", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			vars := bpmn.ToErrorVariables()
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
			assert.Equal(t, tt.wantCode, vars["errorCode"])
		})
	}
}

func TestDecide(t *testing.T) {
	assert.Equal(t, ActionRetry, Decide(NewNotificationSendFailedError("ses", stderrors.New("x")), 3))
	assert.Equal(t, ActionThrow, Decide(NewNotificationSendFailedError("ses", stderrors.New("x")), 0))
	assert.Equal(t, ActionThrow, Decide(NewTemplateNotFoundError("x"), 3))
}

func TestNormalize(t *testing.T) {
	std := NewValidationError("bad")
	assert.Same(t, std, Normalize(std))

	n := Normalize(stderrors.New("surprise"))
	assert.Equal(t, ErrCodeInternal, n.Code)
	assert.Equal(t, "surprise", n.Details)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "RENDERING", GetErrorCategory(ErrCodeTemplateNotFound))
	assert.Equal(t, "RENDERING", GetErrorCategory(ErrCodeBrandingNotFound))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeStoreReadFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDuplicateVariable))
	assert.Equal(t, "DISPATCH", GetErrorCategory(ErrCodeSMTPError))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestWithMetadata(t *testing.T) {
	err := NewDuplicateVariableError("company_name").WithMetadata("constraint", "global_variables_name_key")
	assert.Equal(t, "global_variables_name_key", err.Metadata["constraint"])
}
