package model

import (
	"encoding/json"
	"fmt"
)

// ExecuteRequest represents request for POST /execute.
// Either runtime_call carries a pre-encoded inner call, or amount/to are set
// and the service builds a transfer call from them.
type ExecuteRequest struct {
	RuntimeCall  []byte `json:"runtime_call,omitempty"`
	CurrentBlock uint64 `json:"current_block"`
	Amount       uint64 `json:"amount,omitempty"`
	To           string `json:"to,omitempty"`
}

// Validate validates ExecuteRequest parameters.
func (r *ExecuteRequest) Validate() error {
	if len(r.RuntimeCall) == 0 && r.To == "" {
		return fmt.Errorf("either runtime_call or to/amount is required")
	}
	return nil
}

// ExecuteResponse represents response for POST /execute
type ExecuteResponse struct {
	Username string          `json:"username"`
	Payload  json.RawMessage `json:"payload"`
}
