package api

import (
	"net/http"

	"github.com/tide-labs/timevault-api/internal/config"
	"github.com/tide-labs/timevault-api/internal/handler"

	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(walletHandler *handler.WalletHandler, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Wallet endpoints
	mux.HandleFunc("/login", walletHandler.Login)
	mux.HandleFunc("/create", walletHandler.Create)
	mux.HandleFunc("/execute", walletHandler.Execute)

	cors := NewCORSMiddleware(config.GetAllowedOrigins())
	return cors.Handler(RequestLogger(log)(mux))
}
