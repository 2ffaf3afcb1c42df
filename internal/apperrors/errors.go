package apperrors

import (
	"fmt"
	"net/http"
)

// Error is the structured error type used across vectorkit's engine, HTTP
// API, and RPC API.
type Error struct {
	// Code is the wire error code (e.g. "ERR_101_DATASET_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Kind classifies the error for status-code mapping.
	Kind Kind

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// RequestID, when set, is echoed back on the wire alongside the error.
	RequestID string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code, enabling
// errors.Is() to work with *Error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error. Returns the error for
// method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithRequestID attaches the originating request id. Returns the error for
// method chaining.
func (e *Error) WithRequestID(id string) *Error {
	e.RequestID = id
	return e
}

// New creates a new *Error with the given code and message. Kind, severity,
// and retryable flag are derived from the code.
func New(code string, message string, cause error) *Error {
	k := kindFromCode(code)
	return &Error{
		Code:      code,
		Message:   message,
		Kind:      k,
		Severity:  severityFromKind(k),
		Cause:     cause,
		Retryable: retryableFromKind(k),
	}
}

// Wrap creates an *Error from an existing error, using err's message as the
// Error message. Returns nil if err is nil.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NotFound creates a not-found error for the given resource kind.
func NotFound(code string, message string, cause error) *Error {
	return New(code, message, cause)
}

// AlreadyExists creates an already-exists error.
func AlreadyExists(message string, cause error) *Error {
	return New(CodeDatasetExists, message, cause)
}

// InvalidDimensions creates a dimension-mismatch validation error.
func InvalidDimensions(message string) *Error {
	return New(CodeInvalidDimensions, message, nil)
}

// InvalidFilter creates a metadata-filter validation error.
func InvalidFilter(message string, cause error) *Error {
	return New(CodeInvalidFilter, message, cause)
}

// InvalidSearchParameters creates a search-parameter validation error.
func InvalidSearchParameters(message string) *Error {
	return New(CodeInvalidSearchParams, message, nil)
}

// Validation creates a generic request-validation error.
func Validation(message string) *Error {
	return New(CodeValidation, message, nil)
}

// Unauthenticated creates an authentication error.
func Unauthenticated(message string) *Error {
	return New(CodeUnauthenticated, message, nil)
}

// PermissionDenied creates an authorization error.
func PermissionDenied(message string) *Error {
	return New(CodePermissionDenied, message, nil)
}

// RateLimitExceeded creates a rate-limit error, annotated with the seconds
// the caller should wait before retrying.
func RateLimitExceeded(message string, retryAfterSeconds int) *Error {
	e := New(CodeRateLimitExceeded, message, nil)
	return e.WithDetail("retry_after_seconds", fmt.Sprintf("%d", retryAfterSeconds))
}

// StorageError creates a storage-engine error.
func StorageError(message string, cause error) *Error {
	return New(CodeStorageError, message, cause)
}

// BackupError creates a backup/restore error.
func BackupError(message string, cause error) *Error {
	return New(CodeBackupError, message, cause)
}

// IndexingError creates an index-build/search error.
func IndexingError(message string, cause error) *Error {
	return New(CodeIndexingError, message, cause)
}

// ServiceUnavailable creates a transient availability error.
func ServiceUnavailable(message string, cause error) *Error {
	return New(CodeServiceUnavailable, message, cause)
}

// Internal creates a catch-all internal error.
func Internal(message string, cause error) *Error {
	return New(CodeInternal, message, cause)
}

// HTTPStatus maps the error's Kind to an HTTP status code per the wire
// contract's error table.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	case KindInvalidDimensions, KindInvalidFilter, KindValidation:
		return http.StatusBadRequest
	case KindInvalidSearchParameters:
		return http.StatusUnprocessableEntity
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindRateLimitExceeded:
		return http.StatusTooManyRequests
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindStorageError, KindBackupError, KindIndexingError, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCodeName maps the error's Kind to a gRPC status code name per the
// wire contract's error table. Returned as the codes.Code constant name
// rather than importing google.golang.org/grpc/codes directly here, so
// this package stays free of the grpc dependency; internal/rpcapi converts
// the name to a codes.Code when writing the response.
func (e *Error) GRPCCodeName() string {
	switch e.Kind {
	case KindNotFound:
		return "NOT_FOUND"
	case KindAlreadyExists:
		return "ALREADY_EXISTS"
	case KindInvalidDimensions, KindInvalidFilter, KindInvalidSearchParameters, KindValidation:
		return "INVALID_ARGUMENT"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindPermissionDenied:
		return "PERMISSION_DENIED"
	case KindRateLimitExceeded:
		return "RESOURCE_EXHAUSTED"
	case KindServiceUnavailable:
		return "UNAVAILABLE"
	case KindStorageError, KindBackupError, KindIndexingError:
		return "INTERNAL"
	case KindInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if ae, ok := err.(*Error); ok {
		return ae.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if ae, ok := err.(*Error); ok {
		return ae.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the wire error code from err. Returns empty string if
// err is not an *Error.
func GetCode(err error) string {
	if ae, ok := err.(*Error); ok {
		return ae.Code
	}
	return ""
}

// GetKind extracts the Kind from err. Returns empty string if err is not
// an *Error.
func GetKind(err error) Kind {
	if ae, ok := err.(*Error); ok {
		return ae.Kind
	}
	return ""
}
