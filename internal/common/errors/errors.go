// Package errors provides standardized error handling for the HTTP API and BPMN workflow integration.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeMalformedColor        ErrorCode = "MALFORMED_COLOR"
	ErrCodeSlideNotFound         ErrorCode = "SLIDE_NOT_FOUND"
	ErrCodePresentationNotFound  ErrorCode = "PRESENTATION_NOT_FOUND"
	ErrCodeRenderFailed          ErrorCode = "RENDER_FAILED"
	ErrCodeTemplateUnavailable   ErrorCode = "TEMPLATE_UNAVAILABLE"
	ErrCodePreviewFailed         ErrorCode = "PREVIEW_FAILED"
	ErrCodeContentGeneration     ErrorCode = "CONTENT_GENERATION_FAILED"
	ErrCodeContentGenerationTime ErrorCode = "CONTENT_GENERATION_TIMEOUT"
	ErrCodeCircuitOpen           ErrorCode = "CIRCUIT_OPEN"

	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
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
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// HTTPStatus maps the error code to the status returned by the API.
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeInvalidInput, ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodePresentationNotFound, ErrCodeSlideNotFound:
		return http.StatusNotFound
	case ErrCodeMalformedColor:
		return http.StatusUnprocessableEntity
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeCircuitOpen, ErrCodeStoreUnavailable, ErrCodeContentGenerationTime:
		return http.StatusServiceUnavailable
	case ErrCodeContentGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
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

// NewInvalidInputError creates a non-retryable request error.
func NewInvalidInputError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable schema validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   fmt.Sprintf("Invalid request data: %s", details),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPresentationNotFoundError creates a non-retryable lookup error.
func NewPresentationNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodePresentationNotFound,
		Message:   "Presentation not found",
		Details:   fmt.Sprintf("presentationId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewTemplateUnavailableError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateUnavailable,
		Message:   "Presentation template could not be loaded",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewPreviewFailedError(slide int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePreviewFailed,
		Message:   "Slide preview could not be rendered",
		Details:   fmt.Sprintf("slide: %d, error: %s", slide, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewContentGenerationError creates a retryable upstream generation error.
func NewContentGenerationError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContentGeneration,
		Message:   fmt.Sprintf("Content generation via '%s' failed", provider),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewContentGenerationTimeoutError creates a retryable timeout error.
func NewContentGenerationTimeoutError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeContentGenerationTime,
		Message:   fmt.Sprintf("Content generation via '%s' timed out", provider),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewCircuitOpenError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCircuitOpen,
		Message:   "Service temporarily unavailable - too many failures",
		Details:   fmt.Sprintf("breaker: %s", name),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewRateLimitedError(scope string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Rate limit exceeded",
		Details:   fmt.Sprintf("scope: %s", scope),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable storage backend error.
func NewStoreUnavailableError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Presentation store unavailable",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:          "INVALID_INPUT",
	ErrCodeValidationFailed:      "VALIDATION_FAILED",
	ErrCodeMalformedColor:        "MALFORMED_COLOR",
	ErrCodeSlideNotFound:         "SLIDE_NOT_FOUND",
	ErrCodePresentationNotFound:  "PRESENTATION_NOT_FOUND",
	ErrCodeRenderFailed:          "RENDER_FAILED",
	ErrCodeTemplateUnavailable:   "TEMPLATE_UNAVAILABLE",
	ErrCodeContentGeneration:     "CONTENT_GENERATION_FAILED",
	ErrCodeContentGenerationTime: "CONTENT_GENERATION_TIMEOUT",
	ErrCodeCircuitOpen:           "CIRCUIT_OPEN",
	ErrCodeStoreUnavailable:      "STORE_UNAVAILABLE",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeContentGeneration,
		ErrCodeStoreUnavailable,
		ErrCodeTemplateUnavailable:
		return 3

	case ErrCodeContentGenerationTime,
		ErrCodeCircuitOpen:
		return 2

	default:
		return 0 // Business errors: no retry
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

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
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
	case strings.Contains(codeStr, "RENDER") || strings.Contains(codeStr, "TEMPLATE") ||
		strings.Contains(codeStr, "PREVIEW") || strings.Contains(codeStr, "COLOR"):
		return "RENDER"
	case strings.Contains(codeStr, "SLIDE") || strings.Contains(codeStr, "PRESENTATION"):
		return "DECK"
	case strings.Contains(codeStr, "CONTENT") || strings.Contains(codeStr, "CIRCUIT"):
		return "CONTENT"
	case strings.Contains(codeStr, "STORE") || strings.Contains(codeStr, "RATE"):
		return "INFRASTRUCTURE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
