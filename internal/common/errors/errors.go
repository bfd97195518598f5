// Package errors provides the error taxonomy shared by the search pipeline,
// the HTTP API and the Zeebe job handlers.
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
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"

	ErrCodeUploadFailed ErrorCode = "RESOLUTION_UPLOAD_FAILED"
	ErrCodeInvalidInput ErrorCode = "RESOLUTION_INVALID_INPUT"

	ErrCodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"

	ErrCodeProviderFailed ErrorCode = "PROVIDER_FAILED"
	ErrCodeSearchFailed   ErrorCode = "SEARCH_FAILED"

	ErrCodeDealsRefreshFailed ErrorCode = "DEALS_REFRESH_FAILED"
	ErrCodeDealsStoreFailed   ErrorCode = "DEALS_STORE_FAILED"

	ErrCodeVibeFailed ErrorCode = "VIBE_GENERATION_FAILED"

	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// Resolution failure reasons carried in StandardError.Metadata["reason"].
const (
	ReasonUploadFailed = "upload_failed"
	ReasonInvalidInput = "invalid_input"
)

// UserMessage is the only text shown to end users for unexpected failures.
const UserMessage = "Something went wrong while finding deals. Please try again in a moment."

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Err       error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("StandardError[%s]: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	e := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Err:       cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
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

// NewConfigurationError reports a missing credential or setting. Fatal at startup.
func NewConfigurationError(setting string) *StandardError {
	e := newError(ErrCodeConfiguration, "Required configuration is missing", nil, false)
	e.Details = fmt.Sprintf("setting: %s", setting)
	e.Metadata = map[string]interface{}{"setting": setting}
	return e
}

// NewUploadFailedError wraps an object storage failure while staging inline bytes.
func NewUploadFailedError(err error) *StandardError {
	e := newError(ErrCodeUploadFailed, "Image upload failed", err, false)
	e.Metadata = map[string]interface{}{"reason": ReasonUploadFailed}
	return e
}

// NewInvalidInputError reports an empty or undecodable image payload or a bad URL.
func NewInvalidInputError(details string) *StandardError {
	e := newError(ErrCodeInvalidInput, "Image input is invalid", nil, false)
	e.Details = details
	e.Metadata = map[string]interface{}{"reason": ReasonInvalidInput}
	return e
}

// NewExtractionError reports a transport failure fetching a product page.
func NewExtractionError(pageURL string, err error) *StandardError {
	e := newError(ErrCodeExtractionFailed, "Product page could not be fetched", err, true)
	e.Metadata = map[string]interface{}{"pageUrl": pageURL}
	return e
}

// NewProviderError reports a failed call to an external search provider.
// Provider calls are never retried.
func NewProviderError(provider string, err error) *StandardError {
	e := newError(ErrCodeProviderFailed, fmt.Sprintf("Search provider '%s' request failed", provider), err, false)
	e.Metadata = map[string]interface{}{"provider": provider}
	return e
}

// NewSearchError is the umbrella error returned by a search. Its message is
// always UserMessage; the cause stays reachable through Unwrap.
func NewSearchError(cause error) *StandardError {
	return newError(ErrCodeSearchFailed, UserMessage, cause, false)
}

func NewDealsRefreshError(err error) *StandardError {
	return newError(ErrCodeDealsRefreshFailed, "Daily deals refresh failed", err, false)
}

func NewDealsStoreError(op string, err error) *StandardError {
	e := newError(ErrCodeDealsStoreFailed, "Daily deals storage operation failed", err, true)
	e.Metadata = map[string]interface{}{"operation": op}
	return e
}

func NewVibeError(err error) *StandardError {
	return newError(ErrCodeVibeFailed, "Product summary generation failed", err, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err, true)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns how many job retries a code is allowed.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeExtractionFailed:
		return 2
	case ErrCodeExternalService:
		return 3
	default:
		// Provider-backed operations and business errors are not retried.
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if reason := ResolutionReason(stdErr); reason != "" {
		vars["resolutionReason"] = reason
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
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

// HasCode reports whether any StandardError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var se *StandardError
		if !stderrors.As(err, &se) {
			return false
		}
		if se.Code == code {
			return true
		}
		err = se.Err
	}
	return false
}

// ResolutionReason returns "upload_failed" or "invalid_input" when err's chain
// contains a resolution failure, and "" otherwise.
func ResolutionReason(err error) string {
	switch {
	case HasCode(err, ErrCodeUploadFailed):
		return ReasonUploadFailed
	case HasCode(err, ErrCodeInvalidInput):
		return ReasonInvalidInput
	default:
		return ""
	}
}

// AsStandard returns the outermost StandardError in err's chain or wraps err
// as an internal error.
func AsStandard(err error) *StandardError {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se
	}
	return newError(ErrCodeInternal, "Unexpected error", err, false)
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "RESOLUTION"):
		return "RESOLUTION"
	case strings.Contains(codeStr, "EXTRACTION"):
		return "EXTRACTION"
	case strings.Contains(codeStr, "PROVIDER") || strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "DEALS"):
		return "DEALS"
	case strings.Contains(codeStr, "VIBE"):
		return "AI"
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	default:
		return "OTHER"
	}
}
