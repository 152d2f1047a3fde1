// Package errors provides standardized error handling for the rendering pipeline and BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeTemplateNotFound         ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateValidationFailed ErrorCode = "TEMPLATE_VALIDATION_FAILED"
	ErrCodeBrandingNotFound         ErrorCode = "BRANDING_NOT_FOUND"
	ErrCodeLayoutNotFound           ErrorCode = "LAYOUT_NOT_FOUND"

	ErrCodeStoreReadFailed          ErrorCode = "STORE_READ_FAILED"
	ErrCodeStoreWriteFailed         ErrorCode = "STORE_WRITE_FAILED"
	ErrCodeDuplicateVariable        ErrorCode = "DUPLICATE_VARIABLE"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeEmailConfigNotFound    ErrorCode = "EMAIL_CONFIG_NOT_FOUND"
	ErrCodeDispatchNotConfigured  ErrorCode = "DISPATCH_NOT_CONFIGURED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeSMTPError              ErrorCode = "SMTP_ERROR"

	ErrCodeBrokerUnavailable ErrorCode = "BROKER_UNAVAILABLE"

	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError extracts a StandardError from an error chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewTemplateNotFoundError is returned when no active template matches the slug.
func NewTemplateNotFoundError(slug string) *StandardError {
	return newError(ErrCodeTemplateNotFound, "Template not found or inactive", fmt.Sprintf("slug: %s", slug), false, nil)
}

// NewTemplateValidationFailedError is returned when caller data fails template validation.
func NewTemplateValidationFailedError(details string) *StandardError {
	return newError(ErrCodeTemplateValidationFailed, "Data validation failed for template", details, false, nil)
}

// NewBrandingNotFoundError is returned when no branding can be resolved for a render.
func NewBrandingNotFoundError(details string) *StandardError {
	return newError(ErrCodeBrandingNotFound, "No branding configuration found", details, false, nil)
}

// NewLayoutNotFoundError is returned when no default active layout exists.
func NewLayoutNotFoundError() *StandardError {
	return newError(ErrCodeLayoutNotFound, "No default email layout found", "", false, nil)
}

// NewStoreReadFailedError wraps a failed collection read. Reads are not retried.
func NewStoreReadFailedError(collection string, err error) *StandardError {
	return newError(ErrCodeStoreReadFailed, "Failed to read from store", fmt.Sprintf("collection: %s, error: %v", collection, err), false, err)
}

// NewStoreWriteFailedError wraps a failed write or transaction.
func NewStoreWriteFailedError(collection string, err error) *StandardError {
	return newError(ErrCodeStoreWriteFailed, "Failed to write to store", fmt.Sprintf("collection: %s, error: %v", collection, err), true, err)
}

// NewDuplicateVariableError is returned when a global variable name is already taken.
func NewDuplicateVariableError(name string) *StandardError {
	return newError(ErrCodeDuplicateVariable, "Global variable name already exists", fmt.Sprintf("name: %s", name), false, nil)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

// NewCacheUnavailableError reports a cache failure. Callers fall back to the store.
func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Cache unavailable", err.Error(), true, err)
}

// NewEmailConfigNotFoundError is returned when an email settings record is missing.
func NewEmailConfigNotFoundError(details string) *StandardError {
	return newError(ErrCodeEmailConfigNotFound, "Email configuration not found", details, false, nil)
}

// NewDispatchNotConfiguredError is returned when no transport can be built.
func NewDispatchNotConfiguredError(details string) *StandardError {
	return newError(ErrCodeDispatchNotConfigured, "No email transporter available", details, false, nil)
}

// NewNotificationSendFailedError wraps a transport failure.
func NewNotificationSendFailedError(transport string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Failed to send email", fmt.Sprintf("transport: %s, error: %v", transport, err), true, err)
}

// NewSMTPError wraps a low-level SMTP conversation failure.
func NewSMTPError(err error) *StandardError {
	return newError(ErrCodeSMTPError, "Failed to send email via SMTP", err.Error(), true, err)
}

// NewBrokerUnavailableError wraps a failed call to the workflow broker.
func NewBrokerUnavailableError(operation string, err error) *StandardError {
	return newError(ErrCodeBrokerUnavailable, "Workflow broker unavailable", fmt.Sprintf("operation: %s, error: %v", operation, err), true, err)
}

// NewValidationError is returned for malformed input.
func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Input validation failed", details, false, nil)
}

// NewInternalError wraps anything unexpected.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeTemplateNotFound:         "TEMPLATE_NOT_FOUND",
	ErrCodeTemplateValidationFailed: "TEMPLATE_VALIDATION_FAILED",
	ErrCodeBrandingNotFound:         "BRANDING_NOT_FOUND",
	ErrCodeLayoutNotFound:           "LAYOUT_NOT_FOUND",
	ErrCodeStoreReadFailed:          "TEMPLATE_NOT_FOUND",
	ErrCodeStoreWriteFailed:         "STORE_WRITE_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeEmailConfigNotFound:      "EMAIL_CONFIG_NOT_FOUND",
	ErrCodeDispatchNotConfigured:    "EMAIL_CONFIG_NOT_FOUND",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeSMTPError:                "NOTIFICATION_SEND_FAILED",
	ErrCodeValidationFailed:         "VALIDATION_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeStoreWriteFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeSMTPError,
		ErrCodeBrokerUnavailable:
		return 3

	case ErrCodeCacheUnavailable:
		return 1

	default:
		// render failures and business errors are not retried
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TEMPLATE"), strings.Contains(codeStr, "BRANDING"), strings.Contains(codeStr, "LAYOUT"):
		return "RENDERING"
	case strings.Contains(codeStr, "STORE"), strings.Contains(codeStr, "DATABASE"), strings.Contains(codeStr, "DUPLICATE"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "NOTIFICATION"), strings.Contains(codeStr, "SMTP"), strings.Contains(codeStr, "DISPATCH"), strings.Contains(codeStr, "EMAIL_CONFIG"):
		return "DISPATCH"
	case strings.Contains(codeStr, "BROKER"):
		return "BROKER"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
