package common

import (
	"github.com/google/uuid"
)

// NewRequestID generates a unique id for an inbound HTTP request
// Format: req_<uuid>
func NewRequestID() string {
	return "req_" + uuid.New().String()
}
