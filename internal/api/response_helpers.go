// internal/api/response_helpers.go
package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/clinicflow/roteiros/internal/errors"
	"github.com/clinicflow/roteiros/internal/models"
	"github.com/clinicflow/roteiros/internal/utils"
	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ResponseHelper writes envelopes and maps errors to statuses.
type ResponseHelper struct{}

func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	rh.write(c, http.StatusOK, data, message...)
}

func (rh *ResponseHelper) Created(c *gin.Context, data interface{}, message ...string) {
	rh.write(c, http.StatusCreated, data, message...)
}

func (rh *ResponseHelper) write(c *gin.Context, status int, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString(requestIDKey),
	}
	if len(message) > 0 {
		response.Message = message[0]
	}
	c.JSON(status, response)
}

// sensitiveMarkers hide messages that may echo credentials.
var sensitiveMarkers = []string{"api_key", "apikey", "secret", "token", "authorization", "bearer"}

func sanitizeErrorMessage(message string) string {
	lower := strings.ToLower(message)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lower, marker) {
			return "An internal error occurred"
		}
	}
	return message
}

func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string, details ...string) {
	apiError := &APIError{
		Code:    errorCode,
		Message: sanitizeErrorMessage(message),
	}
	if len(details) > 0 && details[0] != "" {
		apiError.Details = sanitizeErrorMessage(details[0])
	}

	c.AbortWithStatusJSON(statusCode, &APIResponse{
		Success:   false,
		Error:     apiError,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString(requestIDKey),
	})
}

func (rh *ResponseHelper) BadRequest(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusBadRequest, ErrorBadRequest, message, details...)
}

func (rh *ResponseHelper) NotFound(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusNotFound, ErrorNotFound, message, details...)
}

func (rh *ResponseHelper) InternalError(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusInternalServerError, ErrorInternalError, message, details...)
}

// HandleError maps err to a status through its AppError type. Server-side
// failures are logged and their cause is not echoed to the client.
func (rh *ResponseHelper) HandleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		utils.GetLogger().Error("unhandled error", map[string]interface{}{
			"path":       c.FullPath(),
			"request_id": c.GetString(requestIDKey),
			"error":      err,
		})
		rh.InternalError(c, "internal error")
		return
	}

	status, code := statusForError(appErr.Type)
	if status >= http.StatusInternalServerError {
		utils.GetLogger().Error("request failed", map[string]interface{}{
			"path":       c.FullPath(),
			"request_id": c.GetString(requestIDKey),
			"type":       string(appErr.Type),
			"error":      err,
		})
		rh.Error(c, status, code, appErr.Message)
		return
	}

	details := ""
	if appErr.Err != nil {
		details = appErr.Err.Error()
	}
	rh.Error(c, status, code, appErr.Message, details)
}

// bindError answers a failed JSON bind, distinguishing an oversized body.
func (rh *ResponseHelper) bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		rh.Error(c, http.StatusRequestEntityTooLarge, ErrorPayloadTooLarge,
			"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
		return
	}
	rh.BadRequest(c, "invalid request body", err.Error())
}

var exportContentTypes = map[string]string{
	"json":     "application/json; charset=utf-8",
	"markdown": "text/markdown; charset=utf-8",
	"txt":      "text/plain; charset=utf-8",
	"yaml":     "application/yaml; charset=utf-8",
}

// ExportResponse sends an export as a file download.
func (rh *ResponseHelper) ExportResponse(c *gin.Context, result *models.ExportResult) {
	contentType, ok := exportContentTypes[result.Format]
	if !ok {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(result.FilePath)+`"`)
	c.Header("X-Export-Size", strconv.FormatInt(result.FileSize, 10))
	c.Data(http.StatusOK, contentType, []byte(result.Content))
}
