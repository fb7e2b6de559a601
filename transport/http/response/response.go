package response

import (
	"cowork/shared/constant"
	"cowork/shared/failure"
	"cowork/shared/logger"
	"encoding/json"
	"net/http"
)

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

type Error struct {
	Error   *string        `json:"error,omitempty"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

// fallback is written when a payload cannot be encoded.
var fallback = []byte(`{"error":"Internal Server Error","code":"internal_server_error"}`)

func WithMessage(writer http.ResponseWriter, code int, message string) {
	write(writer, code, Message{Message: &message})
}

// WithJSON wraps payload in the data envelope.
func WithJSON(writer http.ResponseWriter, code int, payload any) {
	write(writer, code, Data[any]{Data: &payload})
}

// WithError sends the error's status, kind and details. Errors that carry no
// status of their own are internal and their text is not exposed.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)

	message := http.StatusText(code)
	if failure.IsCoded(err) {
		message = err.Error()
	}

	write(writer, code, Error{
		Error:   &message,
		Code:    failure.GetKind(err),
		Details: failure.GetDetails(err),
	})
}

func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

func write(writer http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		code, body = http.StatusInternalServerError, fallback
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)

	if _, err = writer.Write(body); err != nil {
		logger.ErrorWithStack(err)
	}
}
