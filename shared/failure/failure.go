package failure

import (
	"errors"
	"net/http"
	"strings"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Coded is implemented by domain errors that carry their own HTTP status.
type Coded interface {
	StatusCode() int
}

// Kinded is implemented by domain errors that name their kind for API clients.
type Kinded interface {
	Kind() string
}

// Detailed is implemented by domain errors that expose structured context for the caller.
type Detailed interface {
	Details() map[string]any
}

// Error returns the error code and message in a formatted string.
func (e *Failure) Error() string {
	return e.Message
}

func (e *Failure) StatusCode() int {
	return e.Code
}

// Kind derives a snake_case name from the status text, e.g. "not_found".
func (e *Failure) Kind() string {
	return kindFromStatus(e.Code)
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		}
	}

	return nil
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: entityName,
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// GetCode returns the status of the outermost coded error in the chain.
func GetCode(err error) int {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.StatusCode()
	}

	return http.StatusInternalServerError
}

// GetKind returns the kind of the outermost error that names one, falling back to the status.
func GetKind(err error) string {
	var kinded Kinded
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}

	return kindFromStatus(GetCode(err))
}

// IsCoded reports whether any error in the chain carries its own status.
func IsCoded(err error) bool {
	var coded Coded

	return errors.As(err, &coded)
}

func kindFromStatus(code int) string {
	return strings.ReplaceAll(strings.ToLower(http.StatusText(code)), " ", "_")
}

// GetDetails returns the structured details of an error, or nil when it has none.
func GetDetails(err error) map[string]any {
	var detailed Detailed
	if errors.As(err, &detailed) {
		return detailed.Details()
	}

	return nil
}
