package taxii

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ValidationError reports required inputs that were missing or empty.
// No network activity happens once a ValidationError is returned.
type ValidationError struct {
	Required []string // labels of every field the operation requires
	Missing  []string // labels of the fields that were absent
}

func (e *ValidationError) Error() string {
	return joinLabels(e.Required) + verbFor(e.Required) + " required"
}

// UpstreamError is a non-2xx response from the remote TAXII server.
type UpstreamError struct {
	StatusCode int
	StatusText string
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("TAXII server returned an error: %d %s", e.StatusCode, e.StatusText)
}

// TransportError means the outbound call never produced a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusCode maps an error to the HTTP status the proxy answers with.
func StatusCode(err error) int {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.StatusCode
	}

	return http.StatusInternalServerError
}

func joinLabels(labels []string) string {
	switch len(labels) {
	case 0:
		return "Fields"
	case 1:
		return labels[0]
	case 2:
		return labels[0] + " and " + labels[1]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + ", and " + labels[len(labels)-1]
	}
}

func verbFor(labels []string) string {
	if len(labels) == 1 {
		return " is"
	}
	return " are"
}
