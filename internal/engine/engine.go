// Package engine defines the boundary to the external timevault engine, the
// collaborator that performs the actual Merkle-proof/time-lock cryptography.
// This service never inspects wallet state or signed payloads; it only moves
// them between the engine and the store.
package engine

import (
	"context"
	"encoding/json"
)

// Engine is the external wallet-construction collaborator.
type Engine interface {
	// Create builds a new wallet for the identity over the given block
	// schedule, returning the signed creation payload and the wallet state
	// to persist.
	Create(ctx context.Context, username, seed string, auxKey [32]byte, schedule []uint64, roundPubkey []byte) (payload json.RawMessage, state []byte, err error)

	// PrepareExecute produces the signed payload authorizing innerCall at
	// targetHeight for an existing wallet.
	PrepareExecute(ctx context.Context, username, seed string, targetHeight uint64, state []byte, innerCall []byte) (payload json.RawMessage, err error)
}
