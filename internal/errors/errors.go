// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an AppError.
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation_error"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeError          ErrorType = "processing_error"
	ErrorTypeConflict       ErrorType = "conflict"
	ErrorTypeTimeout        ErrorType = "timeout"
	ErrorTypeRateLimited    ErrorType = "rate_limited"
	ErrorTypeTooLarge       ErrorType = "payload_too_large"
	ErrorTypeLLMUnavailable ErrorType = "llm_unavailable"
	ErrorTypeStorage        ErrorType = "storage_error"
)

// AppError carries a type, a message and an optional cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with the code for its type.
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

func NewProcessingError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeError, message, originalError)
}

func NewConflictError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeConflict, message, originalError)
}

func NewTimeoutError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeTimeout, message, originalError)
}

func NewTooLargeError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeTooLarge, message, originalError)
}

// NewLLMUnavailableError is returned when no provider is configured or the
// provider call fails.
func NewLLMUnavailableError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeLLMUnavailable, message, originalError)
}

func NewStorageError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeStorage, message, originalError)
}

// TypeOf returns the type of the first AppError in the chain, or "" if none.
func TypeOf(err error) ErrorType {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type
	}
	return ""
}

func IsValidationError(err error) bool {
	return TypeOf(err) == ErrorTypeValidation
}

func IsNotFoundError(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}

func IsConflictError(err error) bool {
	return TypeOf(err) == ErrorTypeConflict
}

func IsLLMUnavailableError(err error) bool {
	return TypeOf(err) == ErrorTypeLLMUnavailable
}

func IsStorageError(err error) bool {
	return TypeOf(err) == ErrorTypeStorage
}

func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeError:
		return "PROCESSING_ERROR"
	case ErrorTypeConflict:
		return "CONFLICT"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	case ErrorTypeRateLimited:
		return "RATE_LIMITED"
	case ErrorTypeTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case ErrorTypeLLMUnavailable:
		return "LLM_UNAVAILABLE"
	case ErrorTypeStorage:
		return "STORAGE_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError adds context to err. An AppError keeps its type and code.
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
			Code:    appError.Code,
		}
	}

	return NewAppError(errType, message, err)
}
