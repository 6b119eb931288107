package taxii

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/taxiiproxy/internal/metrics"
)

var deleteSuccess = json.RawMessage(`{"success":true}`)

// Result is the normalized outcome of a proxy operation: the HTTP status to
// answer with and the JSON body.
type Result struct {
	StatusCode int
	Body       any
}

// ErrorBody is the JSON body of every failed proxy operation.
type ErrorBody struct {
	Message string `json:"message"`
}

// Dispatcher runs proxy operations: validate, build, one outbound call, normalize.
// It holds no per-call state and is safe for concurrent use.
type Dispatcher struct {
	client *Client
	logger arbor.ILogger
}

// NewDispatcher creates a dispatcher on top of client.
func NewDispatcher(client *Client, logger arbor.ILogger) *Dispatcher {
	return &Dispatcher{
		client: client,
		logger: logger,
	}
}

// Do runs op and returns the raw JSON success body, or a typed error.
func (d *Dispatcher) Do(ctx context.Context, op Operation, req *ProxyRequest) (json.RawMessage, error) {
	built, err := Build(op, req)
	if err != nil {
		metrics.CountFailure(string(op), errorKind(err))
		return nil, err
	}

	start := time.Now()
	resp, err := d.client.Execute(ctx, built)
	if err != nil {
		var upstreamErr *UpstreamError
		if errors.As(err, &upstreamErr) {
			metrics.ObserveUpstream(string(op), upstreamErr.StatusCode, time.Since(start))
		}
		metrics.CountFailure(string(op), errorKind(err))
		return nil, err
	}
	metrics.ObserveUpstream(string(op), resp.StatusCode, time.Since(start))

	if op == OpDeleteObject {
		return deleteSuccess, nil
	}

	var body json.RawMessage
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		metrics.CountFailure(string(op), "internal")
		return nil, fmt.Errorf("invalid JSON from TAXII server: %w", err)
	}
	return body, nil
}

// Dispatch runs op and always returns a Result; errors never escape.
func (d *Dispatcher) Dispatch(ctx context.Context, op Operation, req *ProxyRequest) *Result {
	body, err := d.Do(ctx, op, req)
	if err != nil {
		if d.logger != nil {
			d.logger.Debug().
				Err(err).
				Str("operation", string(op)).
				Int("status", StatusCode(err)).
				Msg("Proxy operation failed")
		}
		return ErrorResult(err)
	}
	return &Result{StatusCode: http.StatusOK, Body: body}
}

// ErrorResult maps err onto the error envelope and its status code.
func ErrorResult(err error) *Result {
	return &Result{
		StatusCode: StatusCode(err),
		Body:       ErrorBody{Message: err.Error()},
	}
}

func errorKind(err error) string {
	var validationErr *ValidationError
	var upstreamErr *UpstreamError
	var transportErr *TransportError
	switch {
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &upstreamErr):
		return "upstream"
	case errors.As(err, &transportErr):
		return "transport"
	default:
		return "internal"
	}
}
