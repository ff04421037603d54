package service

import "errors"

// Stable error codes surfaced to form clients.
const (
	CodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	CodeInvalidPassword = "INVALID_PASSWORD"
	CodeProfileNotFound = "PROFILE_NOT_FOUND"
	CodeGenericError    = "GENERIC_ERROR"
)

// CodeError is an expected auth failure carrying one of the codes above.
type CodeError struct {
	code string
}

func (e *CodeError) Error() string { return e.code }

// Code returns the stable error code
func (e *CodeError) Code() string { return e.code }

var (
	ErrAccountNotFound = &CodeError{CodeAccountNotFound}
	ErrInvalidPassword = &CodeError{CodeInvalidPassword}
	ErrProfileNotFound = &CodeError{CodeProfileNotFound}
	ErrGeneric         = &CodeError{CodeGenericError}
)

// Token and signup errors carry user-facing messages rather than codes.
var (
	ErrInvalidToken      = errors.New("Invalid token!")
	ErrTokenExpired      = errors.New("The token has expired.")
	ErrEmailExists       = errors.New("email already registered")
	ErrUsernameExhausted = errors.New("Failed to allocate unique username")
)

// ErrorCode maps any error to the code reported to the client. Unexpected
// errors collapse to GENERIC_ERROR.
func ErrorCode(err error) string {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return CodeGenericError
}
