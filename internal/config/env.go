package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Storage backend identifiers for StoreBackend.
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
)

// Config contains all configuration parameters for the application.
// Note: Salt may be prompted at runtime when not set - use GetSalt()
type Config struct {
	Port            string `envconfig:"PORT" default:"8080"`
	Salt            string `envconfig:"SALT"`
	AuxKey          string `envconfig:"AUX_KEY" required:"true"`
	StoreBackend    string `envconfig:"STORE_BACKEND" default:"file"`
	WalletFilePath  string `envconfig:"WALLET_FILE_PATH" default:"wallet.tvw"`
	MongoURI        string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase   string `envconfig:"MONGO_DATABASE" default:"TimevaultDB"`
	MongoCollection string `envconfig:"MONGO_COLLECTION" default:"wallets"`
	EngineURL       string `envconfig:"ENGINE_URL" default:"http://localhost:9000"`
	AllowedOrigins  string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	cfg = &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	switch cfg.StoreBackend {
	case BackendFile, BackendMongo:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q: must be %q or %q", cfg.StoreBackend, BackendFile, BackendMongo)
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetSalt returns the server-side salt. Empty until Init (and, if the env
// var was unset, PromptForSalt) has run.
func GetSalt() string {
	return Get().Salt
}

// GetAuxKey returns the raw auxiliary key material (comma-separated bytes)
func GetAuxKey() string {
	return Get().AuxKey
}

// GetStoreBackend returns the selected storage backend name
func GetStoreBackend() string {
	return Get().StoreBackend
}

// GetWalletFilePath returns path to the .tvw wallet file (file backend)
func GetWalletFilePath() string {
	return Get().WalletFilePath
}

// GetMongoURI returns the document store connection URI
func GetMongoURI() string {
	return Get().MongoURI
}

// GetMongoDatabase returns the document store database name
func GetMongoDatabase() string {
	return Get().MongoDatabase
}

// GetMongoCollection returns the document store collection name
func GetMongoCollection() string {
	return Get().MongoCollection
}

// GetEngineURL returns the external engine base URL
func GetEngineURL() string {
	return Get().EngineURL
}

// GetAllowedOrigins returns the CORS origin list from configuration
func GetAllowedOrigins() []string {
	parts := strings.Split(Get().AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// PromptForSalt prompts for the server-side salt in the terminal when the
// SALT env var is not set. The salt is read without echoing (hidden input)
// and kept in memory only. Call this at startup before the server begins
// handling requests.
func PromptForSalt() error {
	if Get().Salt != "" {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("SALT not set and stdin is not a terminal: set SALT or run interactively")
	}
	fmt.Fprint(os.Stderr, "Enter server salt: ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to read salt: %w", err)
	}
	if len(raw) == 0 {
		return errors.New("salt cannot be empty")
	}

	cfg.Salt = string(raw)
	clear(raw)
	return nil
}
