package api

import (
	"encoding/json"
	"net/http"
	"strings"

	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
	"github.com/maksimkurb/fbx-go/src/internal/log"
)

// ErrorCode represents standard API error codes.
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates malformed or invalid request data.
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"

	// ErrCodeInternalError indicates an internal server error.
	ErrCodeInternalError ErrorCode = "internal_error"

	// ErrCodeAuthRequired indicates the application is not registered on the box.
	ErrCodeAuthRequired ErrorCode = "auth_required"

	// ErrCodeForbidden indicates the app token lacks a permission.
	ErrCodeForbidden ErrorCode = "forbidden"

	// ErrCodeBoxError indicates the box rejected the request.
	ErrCodeBoxError ErrorCode = "box_error"

	// ErrCodeBoxUnreachable indicates the box could not be reached.
	ErrCodeBoxUnreachable ErrorCode = "box_unreachable"
)

// APIError represents a structured API error response.
type APIError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError for JSON responses.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// NewAPIError creates a new APIError with the given code and message.
func NewAPIError(code ErrorCode, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

// WithDetails adds details to an APIError.
func (e APIError) WithDetails(details map[string]interface{}) APIError {
	e.Details = details
	return e
}

// WriteError writes an error response to the HTTP response writer.
func WriteError(w http.ResponseWriter, statusCode int, err APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: err})
}

// WriteInvalidRequest writes a 400 Bad Request error.
func WriteInvalidRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, NewAPIError(ErrCodeInvalidRequest, message))
}

// WriteNotFound writes a 404 Not Found error.
func WriteNotFound(w http.ResponseWriter, resource string) {
	WriteError(w, http.StatusNotFound, NewAPIError(ErrCodeNotFound, resource+" not found"))
}

// WriteForbidden writes a 403 Forbidden error.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// WriteInternalError writes a 500 Internal Server Error.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// WriteBoxError maps a client error to a gateway response.
func WriteBoxError(w http.ResponseWriter, err error) {
	var details map[string]interface{}
	if boxCode := fbxerrors.BoxCodeOf(err); boxCode != "" {
		details = map[string]interface{}{"box_code": boxCode}
	}

	switch fbxerrors.CodeOf(err) {
	case fbxerrors.ErrCodeAuthRequired, fbxerrors.ErrCodeInvalidSession,
		fbxerrors.ErrCodeRegistrationPending, fbxerrors.ErrCodeRegistrationDenied,
		fbxerrors.ErrCodeRegistrationTimedOut:
		WriteError(w, http.StatusUnauthorized, NewAPIError(ErrCodeAuthRequired, err.Error()).WithDetails(details))
	case fbxerrors.ErrCodeInsufficientPermissions:
		WriteError(w, http.StatusForbidden, NewAPIError(ErrCodeForbidden, err.Error()).WithDetails(details))
	case fbxerrors.ErrCodeAPI:
		if isNotFound(fbxerrors.BoxCodeOf(err)) || fbxerrors.HTTPStatusOf(err) == http.StatusNotFound {
			WriteError(w, http.StatusNotFound, NewAPIError(ErrCodeNotFound, err.Error()).WithDetails(details))
			return
		}
		WriteError(w, http.StatusBadGateway, NewAPIError(ErrCodeBoxError, err.Error()).WithDetails(details))
	case fbxerrors.ErrCodeTransport:
		WriteError(w, http.StatusBadGateway, NewAPIError(ErrCodeBoxUnreachable, err.Error()))
	case fbxerrors.ErrCodeValidation:
		WriteInvalidRequest(w, err.Error())
	default:
		log.Errorf("Gateway request failed: %v", err)
		WriteInternalError(w, err.Error())
	}
}

func isNotFound(boxCode string) bool {
	return boxCode == "noent" || strings.HasSuffix(boxCode, "not_found")
}
