package model

import (
	"encoding/json"
	"fmt"
)

// CreateRequest represents request for POST /create
type CreateRequest struct {
	Validity     uint32 `json:"validity"`
	CurrentBlock uint64 `json:"current_block"`
	RoundPubkey  string `json:"round_pubkey"`
}

// Validate validates CreateRequest parameters.
func (r *CreateRequest) Validate() error {
	if r.Validity == 0 {
		return fmt.Errorf("validity must be greater than zero")
	}
	if r.RoundPubkey == "" {
		return fmt.Errorf("round_pubkey is required")
	}
	return nil
}

// CreateResponse represents response for POST /create
type CreateResponse struct {
	Username string          `json:"username"`
	Payload  json.RawMessage `json:"payload"`
	QR       string          `json:"qr,omitempty"`
	// State is echoed for client-side backup in single-tenant deployments
	State []byte `json:"state,omitempty"`
}
