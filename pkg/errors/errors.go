package errors

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches another *AppError carrying the same code and message, so the
// package-level sentinels work with errors.Is after wrapping.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New builds an error with no cause. Wrap keeps cause for errors.Is/As and
// logging; the cause never reaches an HTTP response body.
func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// InvalidArg is a malformed request: bad path status, empty body (400).
func InvalidArg(msg string) error { return New(CodeInvalidArgument, msg) }

// NotFound is an unknown user or request id (404).
func NotFound(msg string) error { return New(CodeNotFound, msg) }

// AlreadyExists is a second request between the same pair (409).
func AlreadyExists(msg string) error { return New(CodeAlreadyExists, msg) }

// Unauthorized is a missing, unknown or expired session (401). Clients
// treat it as "log in again" whatever else the error carries.
func Unauthorized(msg string) error { return New(CodeUnauthenticated, msg) }

// Forbidden is an authenticated caller acting outside a connection (403).
func Forbidden(msg string) error { return New(CodePermissionDenied, msg) }

func Internal(msg string) error { return New(CodeInternal, msg) }

// FailedPrecondition is a valid call made in the wrong state, such as
// reviewing a request twice (409).
func FailedPrecondition(msg string) error { return New(CodeFailedPrecondition, msg) }

// TransportFailure is a client-side failure to reach the server or to read
// its answer. It is retryable.
func TransportFailure(msg string, cause error) error {
	return Wrap(CodeTransportFailure, msg, cause)
}

// CodeOf returns the code of the outermost *AppError in err's chain, or
// CodeUnknown.
func CodeOf(err error) Code {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// HasCode reports whether any *AppError in err's chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// IsUnauthorized reports whether err means the session is no longer valid.
// It takes precedence over every other classification.
func IsUnauthorized(err error) bool {
	return HasCode(err, CodeUnauthenticated)
}

// IsTransportFailure reports whether err is a retryable remote failure.
func IsTransportFailure(err error) bool {
	return !IsUnauthorized(err) && HasCode(err, CodeTransportFailure)
}
