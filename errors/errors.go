package errors

import (
	stderrors "errors"
	"fmt"
)

const (
	RequestTimeout        = "Request timeout"
	InvalidCredentials    = "Email or password is incorrect."
	UserNotFound          = "No account found with this email."
	WrongPassword         = "Incorrect password."
	InvalidEmailFormat    = "Invalid email format."
	TooManyAttempts       = "Too many attempts. Try again later."
	EmailAlreadyExist     = "An account with this email already exists."
	LoginFailed           = "Login failed. Please try again."
	InvalidRequestFormat  = "Invalid request format"
	EmptyStayDates        = "Start and end dates are required"
	InvalidStayDateFormat = "Dates must use the YYYY-MM-DD format"
	EndDateNotAfterStart  = "End date must be after start date"
)

// Identity provider error codes, carried verbatim in IdentityError.Code.
const (
	CodeInvalidLoginCredentials = "INVALID_LOGIN_CREDENTIALS"
	CodeEmailNotFound           = "EMAIL_NOT_FOUND"
	CodeInvalidPassword         = "INVALID_PASSWORD"
	CodeInvalidEmail            = "INVALID_EMAIL"
	CodeEmailExists             = "EMAIL_EXISTS"
	CodeTooManyAttempts         = "TOO_MANY_ATTEMPTS_TRY_LATER"
)

// TimeoutError signals that a request exceeded the configured deadline.
type TimeoutError struct {
	Path string
}

func (e *TimeoutError) Error() string {
	return RequestTimeout
}

// RequestFailedError signals a non-success HTTP status from the backend.
// Message carries the backend body's "message" field when one was present,
// otherwise a status-coded default.
type RequestFailedError struct {
	StatusCode int
	Message    string
}

func (e *RequestFailedError) Error() string {
	return e.Message
}

func NewRequestFailed(statusCode int, message string) *RequestFailedError {
	if message == "" {
		message = fmt.Sprintf("HTTP Error: %d", statusCode)
	}
	return &RequestFailedError{StatusCode: statusCode, Message: message}
}

// TransportError signals a network-level failure below the HTTP layer.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IdentityError carries an opaque error code from the identity provider.
// Its message is the human-readable translation of known codes.
type IdentityError struct {
	Code string
}

func (e *IdentityError) Error() string {
	return TranslateIdentityCode(e.Code)
}

// TranslateIdentityCode maps identity provider error codes to the messages
// shown to users. Unknown codes fall back to a generic login failure.
func TranslateIdentityCode(code string) string {
	switch code {
	case CodeInvalidLoginCredentials:
		return InvalidCredentials
	case CodeEmailNotFound:
		return UserNotFound
	case CodeInvalidPassword:
		return WrongPassword
	case CodeInvalidEmail:
		return InvalidEmailFormat
	case CodeEmailExists:
		return EmailAlreadyExist
	case CodeTooManyAttempts:
		return TooManyAttempts
	default:
		return LoginFailed
	}
}

func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return stderrors.As(err, &timeoutErr)
}

func IsRequestFailed(err error) bool {
	var requestErr *RequestFailedError
	return stderrors.As(err, &requestErr)
}

func IsTransport(err error) bool {
	var transportErr *TransportError
	return stderrors.As(err, &transportErr)
}

func IsIdentity(err error) bool {
	var identityErr *IdentityError
	return stderrors.As(err, &identityErr)
}
