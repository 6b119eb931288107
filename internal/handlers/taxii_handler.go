package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/taxiiproxy/internal/taxii"
)

// Dispatcher runs one proxy operation. *taxii.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, op taxii.Operation, req *taxii.ProxyRequest) *taxii.Result
}

// TAXIIHandler exposes one POST endpoint per TAXII operation.
type TAXIIHandler struct {
	dispatcher   Dispatcher
	logger       arbor.ILogger
	maxBodyBytes int64
}

func NewTAXIIHandler(dispatcher Dispatcher, logger arbor.ILogger, maxBodyBytes int64) *TAXIIHandler {
	return &TAXIIHandler{
		dispatcher:   dispatcher,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// Handler returns the http.HandlerFunc for op.
func (h *TAXIIHandler) Handler(op taxii.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !RequireMethod(w, r, http.MethodPost) {
			return
		}

		req, err := h.decode(w, r)
		if err != nil {
			h.logger.Warn().
				Err(err).
				Str("operation", string(op)).
				Msg("Failed to decode proxy request")
			WriteResult(w, taxii.ErrorResult(err))
			return
		}

		result := h.dispatcher.Dispatch(r.Context(), op, req)
		if err := WriteResult(w, result); err != nil {
			h.logger.Error().Err(err).Str("operation", string(op)).Msg("Failed to write response")
		}
	}
}

func (h *TAXIIHandler) decode(w http.ResponseWriter, r *http.Request) (*taxii.ProxyRequest, error) {
	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var req taxii.ProxyRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return &req, nil
}
