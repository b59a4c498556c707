// token-balance prints the balance of one SPL token account.
//
// Usage:
//
//	token-balance [flags] [address]
//
// The address and RPC endpoint fall back to TOKEN_ACCOUNT_ADDRESS and SOLANA_RPC_URL.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AlexZinkM/token-balance/internal/client"
	"github.com/AlexZinkM/token-balance/internal/config"
	"github.com/AlexZinkM/token-balance/internal/logger"
	"github.com/AlexZinkM/token-balance/internal/model"
	"github.com/AlexZinkM/token-balance/solana"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// Exit codes
const (
	exitOK        = 0
	exitFailure   = 1 // config or unexpected errors
	exitUsage     = 2 // bad flags, invalid address or endpoint
	exitAccount   = 3 // account missing or not a token account
	exitTransport = 4 // network, timeout or cancel; retrying may help
	exitMalformed = 5 // endpoint answered something we cannot read
)

// Delay pattern between attempts: 100ms, 400ms, 1s, 2s, 5s x N
var retryDelays = []time.Duration{
	100 * time.Millisecond,
	400 * time.Millisecond,
	1 * time.Second,
	2 * time.Second,
	5 * time.Second,
}

type balanceFetcher interface {
	Fetch(ctx context.Context, address, endpoint string) (*model.TokenBalance, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Read()
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitFailure
	}

	fs := flag.NewFlagSet("token-balance", flag.ContinueOnError)
	fs.SetOutput(stderr)
	address := fs.String("address", cfg.TokenAccountAddress, "token account address (base58)")
	endpoint := fs.String("endpoint", cfg.SolanaRPCURL, "Solana RPC endpoint URL")
	commitment := fs.String("commitment", cfg.SolanaCommitment, "commitment level: processed, confirmed or finalized")
	timeout := fs.Duration("timeout", cfg.RequestTimeout, "timeout for each RPC request (0 = none)")
	retries := fs.Int("retries", 0, "retries on transport errors, with backoff")
	asJSON := fs.Bool("json", false, "print the balance as JSON")
	verbose := fs.Bool("v", false, "log fetch details to stderr")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(stderr, "error: expected at most one address argument")
		return exitUsage
	}
	if fs.NArg() == 1 {
		*address = fs.Arg(0)
	}
	// tolerate addresses pasted with a trailing newline
	*address = strings.TrimSpace(*address)

	c, err := config.ParseCommitment(*commitment)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitUsage
	}
	cfg.SolanaCommitment = *commitment
	cfg.RequestTimeout = *timeout
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitUsage
	}

	log := logger.NewNopLogger()
	if *verbose {
		l, err := logger.NewLogger(cfg.LogDevelopment || isTerminal(stderr))
		if err != nil {
			fmt.Fprintln(stderr, "error: failed to create logger:", err)
			return exitFailure
		}
		defer l.Sync()
		log = l
	}

	pool, err := client.NewPool(cfg.RPCClientPoolSize)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitFailure
	}
	fetcher := solana.NewFetcher(
		solana.PoolDialer(pool),
		solana.WithCommitment(c),
		solana.WithTimeout(*timeout),
		solana.WithLogger(log),
	)

	balance, err := fetchWithRetry(ctx, fetcher, *address, *endpoint, *retries, log)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(model.NewTokenBalanceResponse(balance)); err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return exitFailure
		}
		return exitOK
	}

	fmt.Fprintf(stdout, "Token Balance: %s\n", balance.UIAmountString)
	return exitOK
}

// fetchWithRetry retries only retryable (transport) failures, up to retries extra attempts.
func fetchWithRetry(ctx context.Context, f balanceFetcher, address, endpoint string, retries int, log *logger.Logger) (*model.TokenBalance, error) {
	for attempt := 0; ; attempt++ {
		balance, err := f.Fetch(ctx, address, endpoint)
		if err == nil {
			return balance, nil
		}

		var fe *solana.FetchError
		if attempt >= retries || !errors.As(err, &fe) || !fe.Retryable() {
			return nil, err
		}

		delay := retryDelays[min(attempt, len(retryDelays)-1)]
		log.Warn("retrying after transport error",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(delay):
		}
	}
}

// exitCode maps a fetch failure to the process exit code
func exitCode(err error) int {
	switch solana.KindOf(err) {
	case solana.KindInvalidAddress, solana.KindInvalidEndpoint:
		return exitUsage
	case solana.KindNotFound, solana.KindNotATokenAccount:
		return exitAccount
	case solana.KindTransport, solana.KindCancelled:
		return exitTransport
	case solana.KindMalformedResponse:
		return exitMalformed
	default:
		return exitFailure
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
