package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrMethodNotAllow = errors.New("method not allowed")

	ErrConfigFileReadFailed = errors.New("failed to read config file")
	ErrConfigParseFailed    = errors.New("failed to parse config file")
	ErrConfigInvalidFormat  = errors.New("invalid config value")

	ErrInvalidGzipRequest = errors.New("invalid gzip request body")
	ErrPayloadTooLarge    = errors.New("Payload is too large")
)

// ValidationError reports a malformed, missing, out-of-range or duplicate field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) HTTPCode() int { return http.StatusBadRequest }

// NotFoundError reports a referenced id that does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) HTTPCode() int { return http.StatusNotFound }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DomainStateError reports an operation the record's current state does not allow.
type DomainStateError struct {
	Message string
}

func (e *DomainStateError) Error() string { return e.Message }

func (e *DomainStateError) HTTPCode() int { return http.StatusBadRequest }

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

func DomainState(format string, args ...any) error {
	return &DomainStateError{Message: fmt.Sprintf(format, args...)}
}

// HTTPCode returns the status code an error should surface with. Errors that
// are not one of the domain kinds map to 500.
func HTTPCode(err error) int {
	var coded interface{ HTTPCode() int }
	if errors.As(err, &coded) {
		return coded.HTTPCode()
	}
	return http.StatusInternalServerError
}

// IsDomain reports whether err is one of the client-facing error kinds.
func IsDomain(err error) bool {
	var (
		v *ValidationError
		n *NotFoundError
		d *DomainStateError
	)
	return errors.As(err, &v) || errors.As(err, &n) || errors.As(err, &d)
}
