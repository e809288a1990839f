// internal/api/error_codes.go
package api

import (
	"net/http"

	apperrors "github.com/clinicflow/roteiros/internal/errors"
)

// API error codes
const (
	ErrorBadRequest      = "BAD_REQUEST"
	ErrorNotFound        = "NOT_FOUND"
	ErrorInternalError   = "INTERNAL_ERROR"
	ErrorConflict        = "CONFLICT"
	ErrorRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrorPayloadTooLarge = "PAYLOAD_TOO_LARGE"

	ErrorScriptNotFound   = "SCRIPT_NOT_FOUND"
	ErrorScriptInvalid    = "SCRIPT_INVALID"
	ErrorExportFailed     = "EXPORT_FAILED"
	ErrorLLMUnavailable   = "LLM_UNAVAILABLE"
	ErrorLLMConfigInvalid = "LLM_CONFIG_INVALID"
	ErrorStorageFailed    = "STORAGE_ERROR"
	ErrorGatewayTimeout   = "TIMEOUT"
)

// statusForError maps an application error type to an HTTP status and API code.
func statusForError(errType apperrors.ErrorType) (int, string) {
	switch errType {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest, ErrorScriptInvalid
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound, ErrorScriptNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict, ErrorConflict
	case apperrors.ErrorTypeTooLarge:
		return http.StatusRequestEntityTooLarge, ErrorPayloadTooLarge
	case apperrors.ErrorTypeRateLimited:
		return http.StatusTooManyRequests, ErrorRateLimited
	case apperrors.ErrorTypeLLMUnavailable:
		return http.StatusServiceUnavailable, ErrorLLMUnavailable
	case apperrors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout, ErrorGatewayTimeout
	case apperrors.ErrorTypeStorage:
		return http.StatusInternalServerError, ErrorStorageFailed
	default:
		return http.StatusInternalServerError, ErrorInternalError
	}
}
