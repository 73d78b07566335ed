// Package errors provides the error taxonomy shared by the box client.
//
// Every failure surfaced to callers is an *Error carrying an ErrorCode.
// Failures reported by the box itself also carry the box's error_code and
// msg verbatim in BoxCode and BoxMsg. Use errors.Is against the exported
// sentinels to branch on the kind of failure:
//
//	if errors.Is(err, fbxerrors.ErrRegistrationPending) {
//	    // keep polling
//	}
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a category of error that can occur in the client.
type ErrorCode string

const (
	// ErrCodeRegistrationPending means the user has not yet answered the
	// authorization request on the box front panel. Keep polling.
	ErrCodeRegistrationPending ErrorCode = "REGISTRATION_PENDING"

	// ErrCodeRegistrationDenied means the user refused the application.
	// The application must register again.
	ErrCodeRegistrationDenied ErrorCode = "REGISTRATION_DENIED"

	// ErrCodeRegistrationTimedOut means nobody answered the authorization
	// request in time. The application must register again.
	ErrCodeRegistrationTimedOut ErrorCode = "REGISTRATION_TIMED_OUT"

	// ErrCodeRegistrationInFlight rejects a registration or poll that
	// duplicates one already running.
	ErrCodeRegistrationInFlight ErrorCode = "REGISTRATION_IN_FLIGHT"

	// ErrCodeAuthRequired indicates a missing, unknown or revoked app token.
	ErrCodeAuthRequired ErrorCode = "AUTH_REQUIRED"

	// ErrCodeInvalidSession indicates an expired or garbage session token.
	ErrCodeInvalidSession ErrorCode = "INVALID_SESSION"

	// ErrCodeInsufficientPermissions indicates the app lacks the right to
	// call the endpoint.
	ErrCodeInsufficientPermissions ErrorCode = "INSUFFICIENT_PERMISSIONS"

	// ErrCodeAPI indicates any other failure reported by the box.
	ErrCodeAPI ErrorCode = "API_ERROR"

	// ErrCodeTransport indicates a network, TLS or timeout failure.
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"

	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeValidation indicates a validation error.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. They match any *Error with the same code.
var (
	ErrRegistrationPending     = New(ErrCodeRegistrationPending, "registration pending")
	ErrRegistrationDenied      = New(ErrCodeRegistrationDenied, "registration denied")
	ErrRegistrationTimedOut    = New(ErrCodeRegistrationTimedOut, "registration timed out")
	ErrRegistrationInFlight    = New(ErrCodeRegistrationInFlight, "registration already in progress")
	ErrAuthRequired            = New(ErrCodeAuthRequired, "authentication required")
	ErrInvalidSession          = New(ErrCodeInvalidSession, "invalid session")
	ErrInsufficientPermissions = New(ErrCodeInsufficientPermissions, "insufficient permissions")
	ErrAPI                     = New(ErrCodeAPI, "box error")
	ErrTransport               = New(ErrCodeTransport, "transport error")
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	// BoxCode is the error_code field of the box response, if any.
	BoxCode string
	// BoxMsg is the msg field of the box response, if any.
	BoxMsg string
	// HTTPStatus is the status of a non-envelope answer that failed.
	HTTPStatus int
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.BoxCode != "" {
		if e.BoxMsg != "" {
			msg = fmt.Sprintf("%s (%s: %s)", msg, e.BoxCode, e.BoxMsg)
		} else {
			msg = fmt.Sprintf("%s (%s)", msg, e.BoxCode)
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code. A target with a
// BoxCode only matches errors carrying the same box code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Code != t.Code {
		return false
	}
	return t.BoxCode == "" || t.BoxCode == e.BoxCode
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// FromBox creates an error of the given kind carrying the box's error_code
// and msg verbatim.
func FromBox(code ErrorCode, boxCode, boxMsg string) *Error {
	return &Error{
		Code:    code,
		Message: boxFailureMessage(code),
		BoxCode: boxCode,
		BoxMsg:  boxMsg,
	}
}

func boxFailureMessage(code ErrorCode) string {
	switch code {
	case ErrCodeAuthRequired:
		return "box rejected the app token"
	case ErrCodeInvalidSession:
		return "box rejected the session"
	case ErrCodeInsufficientPermissions:
		return "app lacks the required permission"
	case ErrCodeRegistrationPending:
		return "app token is waiting for approval"
	default:
		return "box reported an error"
	}
}

// NewAPIError creates an error for a box-reported failure with no more
// specific kind.
func NewAPIError(boxCode, boxMsg string) *Error {
	return FromBox(ErrCodeAPI, boxCode, boxMsg)
}

// NewHTTPStatusError creates an API_ERROR for a raw answer whose HTTP
// status is not 2xx.
func NewHTTPStatusError(status int) *Error {
	return &Error{
		Code:       ErrCodeAPI,
		Message:    fmt.Sprintf("box answered HTTP %d %s", status, http.StatusText(status)),
		HTTPStatus: status,
	}
}

// NewTransportError creates a network/TLS/timeout error.
func NewTransportError(message string, cause error) *Error {
	return Wrap(ErrCodeTransport, message, cause)
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return Wrap(ErrCodeValidation, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}

// CodeOf returns the code of the first *Error in err's chain, or an empty
// code when there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// BoxCodeOf returns the box error_code carried by err, if any.
func BoxCodeOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.BoxCode
	}
	return ""
}

// HTTPStatusOf returns the HTTP status carried by err, or 0.
func HTTPStatusOf(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.HTTPStatus
	}
	return 0
}
