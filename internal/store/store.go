// Package store persists one opaque wallet-state blob per username. Two
// backends satisfy the same contract: a single-file store for
// single-tenant/dev deployments and a mongo collection partitioned by
// username for multi-instance ones.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no wallet state exists for the
// username. It is not a storage fault.
var ErrNotFound = errors.New("no wallet state for user")

// Store is the wallet-state persistence contract. Write is an upsert: after
// it returns, exactly one record exists for the username and Load returns
// that record.
type Store interface {
	Write(ctx context.Context, username string, state []byte) error
	Load(ctx context.Context, username string) ([]byte, error)
}
