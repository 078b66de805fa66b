// One-off: copy the file-backend wallet record into the mongo backend.
// Usage: WALLET_FILE_PATH=wallet.tvw MONGO_URI=... AUX_KEY=... go run ./cmd/store_migrate
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tide-labs/timevault-api/internal/config"
	"github.com/tide-labs/timevault-api/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Init(); err != nil {
		return err
	}

	fileStore, err := store.NewFileStore(config.GetWalletFilePath())
	if err != nil {
		return err
	}

	// The file backend holds one wallet; its owner comes via env since the
	// file is keyed implicitly.
	username := os.Getenv("MIGRATE_USERNAME")
	if username == "" {
		return fmt.Errorf("MIGRATE_USERNAME not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	state, err := fileStore.Load(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to load wallet from %s: %w", fileStore.Path(), err)
	}

	mongoStore, err := store.NewMongoStore(ctx, config.GetMongoURI(), config.GetMongoDatabase(), config.GetMongoCollection())
	if err != nil {
		return err
	}

	if err := mongoStore.Write(ctx, username, state); err != nil {
		return fmt.Errorf("failed to write wallet for %q: %w", username, err)
	}

	fmt.Printf("migrated wallet for %q (%d bytes)\n", username, len(state))
	return nil
}
