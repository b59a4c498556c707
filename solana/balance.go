package solana

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexZinkM/token-balance/internal/client"
	"github.com/AlexZinkM/token-balance/internal/common"
	"github.com/AlexZinkM/token-balance/internal/logger"
	"github.com/AlexZinkM/token-balance/internal/metrics"
	"github.com/AlexZinkM/token-balance/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// BalanceRPC is the part of the Solana RPC client the fetcher needs.
// *rpc.Client satisfies it.
type BalanceRPC interface {
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error)
}

// DialFunc returns the RPC client for an endpoint
type DialFunc func(endpoint string) BalanceRPC

// PoolDialer adapts a client pool to a DialFunc
func PoolDialer(pool *client.Pool) DialFunc {
	return func(endpoint string) BalanceRPC {
		return pool.Get(endpoint)
	}
}

// Observer receives the outcome of every fetch
type Observer interface {
	ObserveFetch(outcome string, d time.Duration)
}

// Fetcher resolves SPL token account balances.
// It is safe for concurrent use as long as its DialFunc is.
type Fetcher struct {
	dial       DialFunc
	commitment rpc.CommitmentType
	timeout    time.Duration
	log        *logger.Logger
	observer   Observer
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithCommitment sets the commitment the node reads state at (default confirmed)
func WithCommitment(c rpc.CommitmentType) Option {
	return func(f *Fetcher) { f.commitment = c }
}

// WithTimeout bounds each fetch; zero leaves only the caller's context
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithLogger sets the logger for fetch outcomes (default no-op)
func WithLogger(l *logger.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// WithObserver reports every fetch outcome and duration to o
func WithObserver(o Observer) Option {
	return func(f *Fetcher) { f.observer = o }
}

// NewFetcher creates a fetcher that obtains RPC clients from dial
func NewFetcher(dial DialFunc, opts ...Option) *Fetcher {
	f := &Fetcher{
		dial:       dial,
		commitment: rpc.CommitmentConfirmed,
		log:        logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch gets the token balance of the account at address from the node at endpoint.
// It sends at most one request. Every failure is a *FetchError; an invalid
// address or endpoint fails before any network access.
func (f *Fetcher) Fetch(ctx context.Context, address, endpoint string) (*model.TokenBalance, error) {
	start := time.Now()
	balance, err := f.fetch(ctx, address, endpoint)
	elapsed := time.Since(start)

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = KindOf(err).String()
		f.log.Warn("token balance fetch failed",
			zap.String("address", address),
			zap.String("endpoint", endpoint),
			zap.String("kind", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	} else {
		f.log.Debug("token balance fetched",
			zap.String("address", balance.Address),
			zap.String("endpoint", endpoint),
			zap.String("uiAmount", balance.UIAmountString),
			zap.Uint64("slot", balance.Slot),
			zap.Duration("elapsed", elapsed),
		)
	}
	if f.observer != nil {
		f.observer.ObserveFetch(outcome, elapsed)
	}

	return balance, err
}

func (f *Fetcher) fetch(ctx context.Context, address, endpoint string) (*model.TokenBalance, error) {
	account, err := common.ParseAddress(address)
	if err != nil {
		return nil, &FetchError{Kind: KindInvalidAddress, Address: address, Endpoint: endpoint, Err: err}
	}
	if err := common.ValidateEndpoint(endpoint); err != nil {
		return nil, &FetchError{Kind: KindInvalidEndpoint, Address: address, Endpoint: endpoint, Err: err}
	}

	callCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	out, err := f.dial(endpoint).GetTokenAccountBalance(callCtx, account, f.commitment)
	if err != nil {
		return nil, &FetchError{
			Kind:     classify(ctx, err),
			Address:  address,
			Endpoint: endpoint,
			Err:      fmt.Errorf("failed to get token account balance: %w", err),
		}
	}

	balance, err := normalize(account, out)
	if err != nil {
		return nil, &FetchError{Kind: KindMalformedResponse, Address: address, Endpoint: endpoint, Err: err}
	}
	return balance, nil
}

// normalize converts the RPC result into a TokenBalance
func normalize(account solana.PublicKey, out *rpc.GetTokenAccountBalanceResult) (*model.TokenBalance, error) {
	if out == nil || out.Value == nil {
		return nil, fmt.Errorf("response has no token amount")
	}

	amount, err := common.ParseAmount(out.Value.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token balance amount: %w", err)
	}

	// The node's string wins: Token-2022 scaled amounts may differ from amount/10^decimals
	uiAmount := out.Value.UiAmountString
	if uiAmount == "" {
		uiAmount = common.FormatAmount(amount, out.Value.Decimals)
	}

	return &model.TokenBalance{
		Address:        account.String(),
		Amount:         amount,
		Decimals:       out.Value.Decimals,
		UIAmountString: uiAmount,
		Slot:           out.Context.Slot,
	}, nil
}
