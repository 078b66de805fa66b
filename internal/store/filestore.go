package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// walletFile is the on-disk structure of the .tvw file.
type walletFile struct {
	Username string `json:"username"`
	State    string `json:"state"` // base64-encoded wallet state blob
}

// FileStore keeps a single wallet in one JSON file. It holds exactly one
// wallet system-wide regardless of username, so it is only suitable for
// single-tenant or development use; Load still checks that the stored record
// belongs to the requested username.
type FileStore struct {
	filePath string
	mu       sync.Mutex
}

// NewFileStore creates a FileStore at filePath. The file must have the .tvw
// extension; it is created on first Write.
func NewFileStore(filePath string) (*FileStore, error) {
	if !strings.HasSuffix(filePath, ".tvw") {
		return nil, fmt.Errorf("file must have .tvw extension")
	}
	return &FileStore{filePath: filePath}, nil
}

// Write serializes the wallet state and replaces the file contents. The
// write goes through a temp file and rename so a crash mid-write never
// leaves a truncated wallet behind.
func (s *FileStore) Write(_ context.Context, username string, state []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fileData, err := json.MarshalIndent(walletFile{
		Username: username,
		State:    base64.StdEncoding.EncodeToString(state),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal wallet file: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, fileData, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

// Load reads and decodes the wallet state for username. Returns ErrNotFound
// when the file does not exist, is empty, or holds another user's wallet.
func (s *FileStore) Load(_ context.Context, username string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fileInfo, err := os.Stat(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if fileInfo.Size() == 0 {
		return nil, ErrNotFound
	}

	fileData, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var wf walletFile
	if err := json.Unmarshal(fileData, &wf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet file: %w", err)
	}
	if wf.Username != username {
		return nil, ErrNotFound
	}

	state, err := base64.StdEncoding.DecodeString(wf.State)
	if err != nil {
		return nil, fmt.Errorf("failed to decode wallet state: %w", err)
	}
	return state, nil
}

// Path returns the wallet file path.
func (s *FileStore) Path() string {
	return filepath.Clean(s.filePath)
}
