package api

import (
	"net/http"

	"github.com/AlexZinkM/token-balance/internal/handler"
	"github.com/AlexZinkM/token-balance/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(solanaHandler *handler.SolanaHandler, gatherer prometheus.Gatherer, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Solana endpoints
	mux.HandleFunc("/solana/token-balance", solanaHandler.GetTokenBalance)

	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return withRequestLogging(mux, log)
}
