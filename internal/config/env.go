package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config contains all configuration parameters for the application.
type Config struct {
	Port                string        `envconfig:"PORT" default:"8080"`
	SolanaRPCURL        string        `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	SolanaCommitment    string        `envconfig:"SOLANA_COMMITMENT" default:"confirmed"`
	RequestTimeout      time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	RPCClientPoolSize   int           `envconfig:"RPC_CLIENT_POOL_SIZE" default:"16"`
	LogDevelopment      bool          `envconfig:"LOG_DEVELOPMENT" default:"false"`
	TokenAccountAddress string        `envconfig:"TOKEN_ACCOUNT_ADDRESS"`
}

// cfg is the global configuration instance
var cfg *Config

// Load reads the configuration and validates the result.
func Load() (*Config, error) {
	c, err := Read()
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Read reads an optional .env file, then environment variables.
// Callers that override fields afterwards must call Validate themselves.
func Read() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return c, nil
}

// Validate checks values envconfig cannot check by itself
func (c *Config) Validate() error {
	if _, err := ParseCommitment(c.SolanaCommitment); err != nil {
		return err
	}
	if c.RequestTimeout < 0 {
		return errors.New("REQUEST_TIMEOUT must not be negative")
	}
	if c.RPCClientPoolSize <= 0 {
		return errors.New("RPC_CLIENT_POOL_SIZE must be positive")
	}
	return nil
}

// Commitment returns the parsed commitment level. Validate must have passed.
func (c *Config) Commitment() rpc.CommitmentType {
	commitment, _ := ParseCommitment(c.SolanaCommitment)
	return commitment
}

// ParseCommitment maps a commitment name to the RPC commitment type
func ParseCommitment(s string) (rpc.CommitmentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "processed":
		return rpc.CommitmentProcessed, nil
	case "confirmed", "":
		return rpc.CommitmentConfirmed, nil
	case "finalized":
		return rpc.CommitmentFinalized, nil
	default:
		return "", fmt.Errorf("unknown commitment %q: use processed, confirmed or finalized", s)
	}
}

// Init loads configuration from environment variables.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
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

// GetSolanaRPCURL returns Solana RPC URL from configuration
func GetSolanaRPCURL() string {
	return Get().SolanaRPCURL
}
