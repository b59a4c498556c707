package config

import (
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

// unsetEnv clears keys for the duration of the test; envconfig treats
// a set-but-empty variable as a value, not as missing.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "SOLANA_RPC_URL", "SOLANA_COMMITMENT", "REQUEST_TIMEOUT", "RPC_CLIENT_POOL_SIZE")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.SolanaRPCURL != "https://api.mainnet-beta.solana.com" {
		t.Errorf("SolanaRPCURL = %q", c.SolanaRPCURL)
	}
	if c.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v, want 15s", c.RequestTimeout)
	}
	if c.RPCClientPoolSize != 16 {
		t.Errorf("RPCClientPoolSize = %d, want 16", c.RPCClientPoolSize)
	}
	if c.Commitment() != rpc.CommitmentConfirmed {
		t.Errorf("Commitment() = %q, want confirmed", c.Commitment())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "http://127.0.0.1:8899")
	t.Setenv("SOLANA_COMMITMENT", "finalized")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("TOKEN_ACCOUNT_ADDRESS", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.SolanaRPCURL != "http://127.0.0.1:8899" {
		t.Errorf("SolanaRPCURL = %q", c.SolanaRPCURL)
	}
	if c.Commitment() != rpc.CommitmentFinalized {
		t.Errorf("Commitment() = %q, want finalized", c.Commitment())
	}
	if c.RequestTimeout != 3*time.Second {
		t.Errorf("RequestTimeout = %v, want 3s", c.RequestTimeout)
	}
	if c.TokenAccountAddress != "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v" {
		t.Errorf("TokenAccountAddress = %q", c.TokenAccountAddress)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown commitment", key: "SOLANA_COMMITMENT", value: "max"},
		{name: "zero pool size", key: "RPC_CLIENT_POOL_SIZE", value: "0"},
		{name: "negative timeout", key: "REQUEST_TIMEOUT", value: "-1s"},
		{name: "unparsable timeout", key: "REQUEST_TIMEOUT", value: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q expected error", tt.key, tt.value)
			}
		})
	}
}

func TestParseCommitment(t *testing.T) {
	tests := []struct {
		in      string
		want    rpc.CommitmentType
		wantErr bool
	}{
		{in: "processed", want: rpc.CommitmentProcessed},
		{in: "Confirmed", want: rpc.CommitmentConfirmed},
		{in: "", want: rpc.CommitmentConfirmed},
		{in: " finalized ", want: rpc.CommitmentFinalized},
		{in: "recent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCommitment(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCommitment(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCommitment(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGetPanicsBeforeInit(t *testing.T) {
	saved := cfg
	cfg = nil
	defer func() { cfg = saved }()

	defer func() {
		if recover() == nil {
			t.Error("Get() expected panic before Init()")
		}
	}()
	Get()
}

func TestReadSkipsValidation(t *testing.T) {
	t.Setenv("SOLANA_COMMITMENT", "max")

	c, err := Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if err := c.Validate(); err == nil {
		t.Error("Validate() accepted commitment \"max\"")
	}

	c.SolanaCommitment = "finalized"
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() after override error = %v", err)
	}
}
