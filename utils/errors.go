package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError carries the error taxonomy used across handlers. Kind decides the
// HTTP status a handler boundary responds with.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindAuthorization
	KindExternalService
	KindSignature
	KindConflict
	KindInternal
)

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func AuthorizationError(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Message: message}
}

func ExternalServiceError(message string, err error) *AppError {
	return &AppError{Kind: KindExternalService, Message: message, Err: err}
}

func SignatureError(message string) *AppError {
	return &AppError{Kind: KindSignature, Message: message}
}

func ConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// StatusCode maps an error to its HTTP status. Unknown errors are 500.
func StatusCode(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation, KindSignature:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
