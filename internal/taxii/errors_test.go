package taxii

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorMessage(t *testing.T) {
	tests := []struct {
		required []string
		expected string
	}{
		{[]string{"Server URL"}, "Server URL is required"},
		{[]string{"API Root URL", "Collection ID"}, "API Root URL and Collection ID are required"},
		{[]string{"API Root URL", "Collection ID", "Object ID"}, "API Root URL, Collection ID, and Object ID are required"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			err := &ValidationError{Required: tt.required}
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", &ValidationError{Required: []string{"Server URL"}}, http.StatusBadRequest},
		{"upstream", &UpstreamError{StatusCode: 404, StatusText: "Not Found"}, http.StatusNotFound},
		{"wrapped upstream", fmt.Errorf("call: %w", &UpstreamError{StatusCode: 401}), http.StatusUnauthorized},
		{"transport", &TransportError{Err: errors.New("connection refused")}, http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusCode(tt.err))
		})
	}
}

func TestUpstreamErrorMessage(t *testing.T) {
	err := &UpstreamError{StatusCode: 404, StatusText: "Not Found"}
	assert.Equal(t, "TAXII server returned an error: 404 Not Found", err.Error())
}

func TestTransportErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &TransportError{Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause.Error(), err.Error())
}
