// Token balance HTTP API.
//
// @title        Token Balance API
// @version      1.0
// @description  Reads SPL token account balances from a Solana RPC node
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/AlexZinkM/token-balance/docs"
	"github.com/AlexZinkM/token-balance/internal/api"
	"github.com/AlexZinkM/token-balance/internal/client"
	"github.com/AlexZinkM/token-balance/internal/config"
	"github.com/AlexZinkM/token-balance/internal/handler"
	"github.com/AlexZinkM/token-balance/internal/logger"
	"github.com/AlexZinkM/token-balance/internal/metrics"
	"github.com/AlexZinkM/token-balance/solana"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.Get()

	log, err := logger.NewLogger(cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	pool, err := client.NewPool(cfg.RPCClientPoolSize)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	fetcher := solana.NewFetcher(
		solana.PoolDialer(pool),
		solana.WithCommitment(cfg.Commitment()),
		solana.WithTimeout(cfg.RequestTimeout),
		solana.WithLogger(log),
		solana.WithObserver(metrics.New(reg)),
	)

	solanaHandler, err := handler.NewSolanaHandler(fetcher, config.GetSolanaRPCURL(), log)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           api.SetupRouter(solanaHandler, reg, log),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout(cfg.RequestTimeout),
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", server.Addr),
			zap.String("rpc", cfg.SolanaRPCURL),
			zap.String("commitment", string(cfg.Commitment())),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// writeTimeout leaves room for the response on top of the fetch timeout.
// Without a fetch timeout there is no write deadline either.
func writeTimeout(fetchTimeout time.Duration) time.Duration {
	if fetchTimeout <= 0 {
		return 0
	}
	return fetchTimeout + 5*time.Second
}
