// @title        Timevault API
// @version      1.0
// @description  HTTP API for creating and executing time-locked wallets
// @BasePath     /
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/tide-labs/timevault-api/internal/api"
	"github.com/tide-labs/timevault-api/internal/client"
	"github.com/tide-labs/timevault-api/internal/config"
	"github.com/tide-labs/timevault-api/internal/handler"
	"github.com/tide-labs/timevault-api/internal/session"
	"github.com/tide-labs/timevault-api/internal/store"

	_ "github.com/tide-labs/timevault-api/docs"

	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := config.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := config.PromptForSalt(); err != nil {
		log.Fatal().Err(err).Msg("failed to obtain server salt")
	}

	walletStore, err := buildStore(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up wallet store")
	}

	sessions, err := session.NewCarrier(config.GetSalt())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up session carrier")
	}

	eng := client.NewEngineClient(config.GetEngineURL())

	// file backend is single-tenant dev mode: echo the state so the client
	// can keep its own backup
	echoState := config.GetStoreBackend() == config.BackendFile

	walletHandler, err := handler.NewWalletHandler(sessions, walletStore, eng, echoState, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up wallet handler")
	}

	router := api.SetupRouter(walletHandler, log)

	addr := ":" + config.GetPort()
	log.Info().Str("addr", addr).Str("backend", config.GetStoreBackend()).Msg("starting server")
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func buildStore(log zerolog.Logger) (store.Store, error) {
	switch config.GetStoreBackend() {
	case config.BackendMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return store.NewMongoStore(ctx, config.GetMongoURI(), config.GetMongoDatabase(), config.GetMongoCollection())
	default:
		log.Warn().Msg("file backend holds a single wallet; use the mongo backend for multi-tenant deployments")
		return store.NewFileStore(config.GetWalletFilePath())
	}
}
