// Package response builds the uniform envelope every endpoint returns and
// projects stored records into their public shapes.
package response

import (
	"net/http"
	"time"

	"taskhub/internal/domain/errors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the body of every response.
type Envelope struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Now is the clock used for envelope timestamps.
var Now = func() time.Time { return time.Now().UTC() }

func Make(status, message string, data any, code int) (Envelope, int) {
	return Envelope{
		Status:    status,
		Message:   message,
		Data:      data,
		Timestamp: Now(),
	}, code
}

func Success(message string, data any, code int) (Envelope, int) {
	if code == 0 {
		code = http.StatusOK
	}
	return Make(StatusSuccess, message, data, code)
}

func NotFound(message string) (Envelope, int) {
	if message == "" {
		message = "Resource not found"
	}
	return Make(StatusError, message, nil, http.StatusNotFound)
}

func BadRequest(message string) (Envelope, int) {
	if message == "" {
		message = "Bad request"
	}
	return Make(StatusError, message, nil, http.StatusBadRequest)
}

func InternalError(message string) (Envelope, int) {
	if message == "" {
		message = "Internal server error"
	}
	return Make(StatusError, message, nil, http.StatusInternalServerError)
}

// FromError renders a domain error with its own message and code. Anything
// else becomes a generic 500.
func FromError(err error) (Envelope, int) {
	if !errors.IsDomain(err) {
		return InternalError("")
	}
	return Make(StatusError, err.Error(), nil, errors.HTTPCode(err))
}
