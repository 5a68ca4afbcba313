package ai

import (
	"errors"
	"fmt"
)

// Kind классифицирует ошибку конвейера генерации маршрута.
type Kind string

const (
	KindInvalidRequest       Kind = "invalid_request"
	KindUpstreamTransport    Kind = "upstream_transport"
	KindUpstreamEnvelope     Kind = "upstream_envelope"
	KindMalformedOutput      Kind = "malformed_output"
	KindStreamingUnsupported Kind = "streaming_unsupported"
)

// Error is a failure converted to a taxonomy kind at the stage that detected it.
type Error struct {
	Kind    Kind
	Message string
	// Status is the upstream HTTP status, when there was one.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// InvalidRequest создает ошибку валидации входного запроса.
func InvalidRequest(message string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: message}
}

// StreamingUnsupported создает ошибку окружения без поддержки flush.
func StreamingUnsupported() *Error {
	return &Error{Kind: KindStreamingUnsupported, Message: "streaming is not supported by the server"}
}

// KindOf возвращает тип ошибки или пустую строку для ошибок вне таксономии.
func KindOf(err error) Kind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return ""
}
