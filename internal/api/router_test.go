package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AlexZinkM/token-balance/internal/handler"
	"github.com/AlexZinkM/token-balance/internal/logger"
	"github.com/AlexZinkM/token-balance/internal/metrics"
	"github.com/AlexZinkM/token-balance/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, address, endpoint string) (*model.TokenBalance, error) {
	return &model.TokenBalance{Address: address, Amount: 100, Decimals: 2, UIAmountString: "1"}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h, err := handler.NewSolanaHandler(stubFetcher{}, "http://127.0.0.1:8899", nil)
	if err != nil {
		t.Fatalf("NewSolanaHandler() error = %v", err)
	}
	reg := prometheus.NewRegistry()
	metrics.New(reg).ObserveFetch(metrics.OutcomeOK, time.Millisecond)

	srv := httptest.NewServer(SetupRouter(h, reg, logger.NewNopLogger()))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouterRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{path: "/healthz", wantStatus: http.StatusOK, wantBody: "ok"},
		{path: "/solana/token-balance?address=EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", wantStatus: http.StatusOK, wantBody: `"uiAmountString":"1"`},
		{path: "/metrics", wantStatus: http.StatusOK, wantBody: `token_balance_fetch_total{outcome="ok"} 1`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tt.path, err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(string(body), tt.wantBody) {
				t.Errorf("body %q does not contain %q", body, tt.wantBody)
			}
			if resp.Header.Get(requestIDHeader) == "" {
				t.Error("missing request ID header")
			}
		})
	}
}

func TestRouterKeepsIncomingRequestID(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, want abc-123", got)
	}
}

func TestRequestLoggingAttachesRequestLogger(t *testing.T) {
	base := logger.NewNopLogger()
	var got *logger.Logger
	h := withRequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = logger.FromContext(r.Context(), nil)
	}), base)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if got == nil {
		t.Fatal("handler saw no request logger in its context")
	}
	if got == base {
		t.Error("request logger is the base logger, want one tagged with the request ID")
	}
}
