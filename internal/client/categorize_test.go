package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"invalid input", fmt.Errorf("%w: city name cannot be empty", ErrInvalidInput), KindInvalidInput},
		{"configuration missing", ErrConfigurationMissing, KindConfigurationMissing},
		{"network", fmt.Errorf("%w: %w", ErrNetwork, errors.New("connection refused")), KindNetwork},
		{"network wrapping cancel", fmt.Errorf("%w: %w", ErrNetwork, context.Canceled), KindNetwork},
		{"protocol", &ProtocolError{StatusCode: 404}, KindProtocol},
		{"wrapped protocol", fmt.Errorf("fetch: %w", &ProtocolError{StatusCode: 500}), KindProtocol},
		{"data processing", fmt.Errorf("%w: unexpected end of JSON input", ErrDataProcessing), KindDataProcessing},
		{"bare deadline", context.DeadlineExceeded, KindNetwork},
		{"foreign", errors.New("something else"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	code, ok := StatusCode(fmt.Errorf("wrapped: %w", &ProtocolError{StatusCode: 404, Status: "404 Not Found"}))
	if !ok || code != 404 {
		t.Errorf("StatusCode() = (%d, %v), want (404, true)", code, ok)
	}
	if _, ok := StatusCode(ErrNetwork); ok {
		t.Error("StatusCode(ErrNetwork) ok = true, want false")
	}
}

func TestProtocolError_Error(t *testing.T) {
	if got := (&ProtocolError{StatusCode: 503}).Error(); got != "protocol error: HTTP 503" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&ProtocolError{StatusCode: 404, Status: "404 Not Found"}).Error(); got != "protocol error: HTTP 404 Not Found" {
		t.Errorf("Error() = %q", got)
	}
}
