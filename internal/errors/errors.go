package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Error kinds surfaced by the checkout and webhook paths
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrSignature        = new(ErrCodeSignature, "signature verification failed")
	ErrProvider         = new(ErrCodeProvider, "payment provider error")
	ErrHandler          = new(ErrCodeHandler, "webhook handler error")
	ErrSink             = new(ErrCodeSink, "notification sink error")
	ErrRateLimited      = new(ErrCodeRateLimited, "rate limit exceeded")
	ErrHTTPClient       = new(ErrCodeHTTPClient, "http client error")
	ErrSystem           = new(ErrCodeSystemError, "system error")
	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrHTTPClient:       http.StatusInternalServerError,
		ErrNotFound:         http.StatusNotFound,
		ErrValidation:       http.StatusBadRequest,
		ErrInvalidOperation: http.StatusBadRequest,
		ErrSignature:        http.StatusBadRequest,
		ErrProvider:         http.StatusBadGateway,
		ErrHandler:          http.StatusInternalServerError,
		ErrSink:             http.StatusInternalServerError,
		ErrRateLimited:      http.StatusTooManyRequests,
		ErrSystem:           http.StatusInternalServerError,
	}
)

const (
	ErrCodeHTTPClient       = "http_client_error"
	ErrCodeSystemError      = "system_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeValidation       = "validation_error"
	ErrCodeInvalidOperation = "invalid_operation"
	ErrCodeSignature        = "signature_error"
	ErrCodeProvider         = "provider_error"
	ErrCodeHandler          = "handler_error"
	ErrCodeSink             = "sink_error"
	ErrCodeRateLimited      = "rate_limited"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

// New creates a new InternalError outside the predefined kinds
func New(code string, message string) *InternalError {
	return new(code, message)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsSignature checks if an error is a webhook authenticity failure
func IsSignature(err error) bool {
	return errors.Is(err, ErrSignature)
}

// IsProvider checks if an error came from the payment provider
func IsProvider(err error) bool {
	return errors.Is(err, ErrProvider)
}

// IsHandler checks if an error was raised by a webhook handler after verification
func IsHandler(err error) bool {
	return errors.Is(err, ErrHandler)
}

// IsSink checks if an error was raised by a notification sink
func IsSink(err error) bool {
	return errors.Is(err, ErrSink)
}

// IsHTTPClient checks if an error is an http client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
