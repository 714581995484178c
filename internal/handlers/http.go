package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/abrezinsky/rfidkiosk/internal/errors"
	"github.com/abrezinsky/rfidkiosk/internal/kiosk"
	"github.com/abrezinsky/rfidkiosk/internal/services"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeReaderOffline  = "READER_OFFLINE"
	ErrCodeUnavailable    = "UNAVAILABLE"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error with custom message and code
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error with custom message
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// Validation creates a 400 error for rejected input
func Validation(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: message}
}

// Unauthorized creates a 401 error with custom message
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// ReaderOffline creates a 503 error for actions that need the reader link
func ReaderOffline(message string) *APIError {
	return &APIError{Status: http.StatusServiceUnavailable, Code: ErrCodeReaderOffline, Message: message}
}

// InternalError creates a 500 error, logs the original error
func InternalError(err error) *APIError {
	slog.Error("Internal error", "error", err)
	return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondSuccess writes a 200 OK with a message
func respondSuccess(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, MessageResponse{Message: message})
}

// respondAccepted writes a 202 with a message
func respondAccepted(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusAccepted, MessageResponse{Message: message})
}

// respondError writes an error response
func respondError(w http.ResponseWriter, err error) {
	apiErr := ToAPIError(err)
	respondJSON(w, apiErr.Status, apiErr)
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// parseIntQuery parses an optional integer query parameter, returning def when absent
func parseIntQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, BadRequest("Invalid " + name + " parameter")
	}
	return n, nil
}

// ToAPIError converts service and controller errors to API errors
func ToAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case errors.ErrValidation:
			return Validation(appErr.Message)
		case errors.ErrNotConnected:
			return ReaderOffline(appErr.Message)
		case errors.ErrNotFound:
			return NotFound(appErr.Message)
		default:
			return InternalError(err)
		}
	}

	if stderrors.Is(err, kiosk.ErrStopped) || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return &APIError{Status: http.StatusServiceUnavailable, Code: ErrCodeUnavailable, Message: "Kiosk is not running"}
	}

	var svcErr *services.ServiceError
	if stderrors.As(err, &svcErr) {
		return BadRequest(svcErr.Message)
	}
	var limitErr *services.InvalidLimitError
	if stderrors.As(err, &limitErr) {
		return BadRequest(limitErr.Error())
	}

	return InternalError(err)
}
