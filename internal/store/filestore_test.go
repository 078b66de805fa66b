package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "wallet.tvw"))
	require.NoError(t, err)
	return s
}

func TestNewFileStoreRejectsWrongExtension(t *testing.T) {
	_, err := NewFileStore("wallet.json")
	assert.Error(t, err)
}

func TestFileStoreRoundTrip(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	state := []byte("opaque wallet state")
	require.NoError(t, s.Write(ctx, "alice", state))

	loaded, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestFileStoreLoadMissing(t *testing.T) {
	s := newTestFileStore(t)

	_, err := s.Load(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreUpsert(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "alice", []byte("first")))
	require.NoError(t, s.Write(ctx, "alice", []byte("second")))

	loaded, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), loaded)
}

func TestFileStoreOtherUser(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "alice", []byte("state")))

	// single-wallet file: bob has no wallet here
	_, err := s.Load(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreCorruptFile(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, os.WriteFile(s.Path(), []byte("not json"), 0600))

	_, err := s.Load(context.Background(), "alice")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
