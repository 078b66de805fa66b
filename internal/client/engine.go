package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tide-labs/timevault-api/internal/engine"
)

// EngineClient is a client for the external timevault engine service
type EngineClient struct {
	baseURL string
	client  *http.Client
}

// NewEngineClient creates a new engine client
func NewEngineClient(baseURL string) *EngineClient {
	return &EngineClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// createRequest is the engine /create wire request
type createRequest struct {
	Username    string   `json:"username"`
	Seed        string   `json:"seed"`
	AuxKey      string   `json:"aux_key"` // base64
	Schedule    []uint64 `json:"schedule"`
	RoundPubkey string   `json:"round_pubkey"` // hex
}

// createResponse is the engine /create wire response
type createResponse struct {
	Payload json.RawMessage `json:"payload"`
	State   string          `json:"state"` // base64
}

// executeRequest is the engine /prepare-execute wire request
type executeRequest struct {
	Username     string `json:"username"`
	Seed         string `json:"seed"`
	TargetHeight uint64 `json:"target_height"`
	State        string `json:"state"`        // base64
	RuntimeCall  string `json:"runtime_call"` // base64
}

// executeResponse is the engine /prepare-execute wire response
type executeResponse struct {
	Payload json.RawMessage `json:"payload"`
}

// engineFault is the engine's error body on non-200 responses
type engineFault struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Create asks the engine to build a wallet over the block schedule.
func (c *EngineClient) Create(ctx context.Context, username, seed string, auxKey [32]byte, schedule []uint64, roundPubkey []byte) (json.RawMessage, []byte, error) {
	var resp createResponse
	err := c.post(ctx, "/create", createRequest{
		Username:    username,
		Seed:        seed,
		AuxKey:      base64.StdEncoding.EncodeToString(auxKey[:]),
		Schedule:    schedule,
		RoundPubkey: hex.EncodeToString(roundPubkey),
	}, &resp)
	if err != nil {
		return nil, nil, err
	}

	state, err := base64.StdEncoding.DecodeString(resp.State)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode engine wallet state: %w", err)
	}
	return resp.Payload, state, nil
}

// PrepareExecute asks the engine to sign innerCall for targetHeight.
func (c *EngineClient) PrepareExecute(ctx context.Context, username, seed string, targetHeight uint64, state []byte, innerCall []byte) (json.RawMessage, error) {
	var resp executeResponse
	err := c.post(ctx, "/prepare-execute", executeRequest{
		Username:     username,
		Seed:         seed,
		TargetHeight: targetHeight,
		State:        base64.StdEncoding.EncodeToString(state),
		RuntimeCall:  base64.StdEncoding.EncodeToString(innerCall),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

// post sends a JSON request and decodes either the success body into out or
// the engine fault into a typed engine.Error.
func (c *EngineClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal engine request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var fault engineFault
		if err := json.NewDecoder(resp.Body).Decode(&fault); err != nil {
			return fmt.Errorf("engine returned status %d", resp.StatusCode)
		}
		// unknown kinds still translate to the generic engine message
		return &engine.Error{Kind: engine.ErrorKind(fault.Kind)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode engine response: %w", err)
	}
	return nil
}
