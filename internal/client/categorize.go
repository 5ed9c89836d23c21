package client

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories FetchWeather reports in
// place of a result. Values are stable and double as metric labels.
type ErrorKind string

const (
	KindInvalidInput         ErrorKind = "invalid_input"
	KindConfigurationMissing ErrorKind = "configuration_missing"
	KindNetwork              ErrorKind = "network_error"
	KindProtocol             ErrorKind = "protocol_error"
	KindDataProcessing       ErrorKind = "data_processing_error"
	KindUnknown              ErrorKind = "unknown"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrNetwork              = errors.New("network error")
	ErrProtocol             = errors.New("protocol error")
	ErrDataProcessing       = errors.New("data processing error")
)

// ProtocolError reports a non-2xx upstream response. It matches ErrProtocol
// with errors.Is.
type ProtocolError struct {
	StatusCode int
	Status     string
}

func (e *ProtocolError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s: HTTP %s", ErrProtocol, e.Status)
	}
	return fmt.Sprintf("%s: HTTP %d", ErrProtocol, e.StatusCode)
}

func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

// KindOf maps an error to its ErrorKind. Returns "" for nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrConfigurationMissing):
		return KindConfigurationMissing
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrProtocol):
		return KindProtocol
	case errors.Is(err, ErrDataProcessing):
		return KindDataProcessing
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindNetwork
	}
	return KindUnknown
}

// StatusCode returns the upstream HTTP status carried by a protocol error.
func StatusCode(err error) (int, bool) {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.StatusCode, true
	}
	return 0, false
}
