package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/token-balance/internal/logger"
	"github.com/AlexZinkM/token-balance/internal/model"
	"github.com/AlexZinkM/token-balance/solana"

	"go.uber.org/zap"
)

// statusClientClosedRequest is the de facto status for a request the client abandoned
const statusClientClosedRequest = 499

// BalanceFetcher fetches a token account balance from an RPC endpoint
type BalanceFetcher interface {
	Fetch(ctx context.Context, address, endpoint string) (*model.TokenBalance, error)
}

// SolanaHandler serves token balance lookups against one configured RPC endpoint
type SolanaHandler struct {
	fetcher  BalanceFetcher
	endpoint string
	log      *logger.Logger
}

// NewSolanaHandler creates a new SolanaHandler
func NewSolanaHandler(fetcher BalanceFetcher, endpoint string, log *logger.Logger) (*SolanaHandler, error) {
	if fetcher == nil {
		return nil, errors.New("balance fetcher not set")
	}
	if endpoint == "" {
		return nil, errors.New("SOLANA_RPC_URL not set")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SolanaHandler{
		fetcher:  fetcher,
		endpoint: endpoint,
		log:      log,
	}, nil
}

// GetTokenBalance handles GET /solana/token-balance
// @Summary      Get token account balance
// @Description  Gets the SPL token balance of a token account from the configured Solana RPC node
// @Tags         solana
// @Produce      json
// @Param        address  query     string  true   "Token account address (base58)"
// @Param        qr       query     bool    false  "Include a QR code of the address"
// @Success      200  {object}  model.TokenBalanceResponse
// @Failure      400  {object}  model.ErrorResponse
// @Failure      404  {object}  model.ErrorResponse
// @Failure      422  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Failure      503  {object}  model.ErrorResponse
// @Failure      504  {object}  model.ErrorResponse
// @Router       /solana/token-balance [get]
func (h *SolanaHandler) GetTokenBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	address := r.URL.Query().Get("address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "address query parameter is required", solana.KindInvalidAddress.String())
		return
	}

	balance, err := h.fetcher.Fetch(r.Context(), address, h.endpoint)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			logger.FromContext(r.Context(), h.log).Error("token balance lookup failed", zap.String("address", address), zap.Int("status", status), zap.Error(err))
		}
		writeJSON(w, status, model.ErrorResponse{
			Error:     err.Error(),
			Code:      solana.KindOf(err).String(),
			Retryable: isRetryable(err),
		})
		return
	}

	resp := model.NewTokenBalanceResponse(balance)
	if r.URL.Query().Get("qr") == "true" {
		qr, err := solana.AddressQRCode(balance.Address)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error(), "qr")
			return
		}
		resp.QR = qr
	}

	writeJSON(w, http.StatusOK, resp)
}

// statusForError maps a fetch failure to an HTTP status
func statusForError(err error) int {
	var fe *solana.FetchError
	if !errors.As(err, &fe) {
		return http.StatusInternalServerError
	}

	switch fe.Kind {
	case solana.KindInvalidAddress:
		return http.StatusBadRequest
	case solana.KindNotFound:
		return http.StatusNotFound
	case solana.KindNotATokenAccount:
		return http.StatusUnprocessableEntity
	case solana.KindMalformedResponse:
		return http.StatusBadGateway
	case solana.KindTransport:
		if fe.Timeout() {
			return http.StatusGatewayTimeout
		}
		return http.StatusServiceUnavailable
	case solana.KindCancelled:
		return statusClientClosedRequest
	default:
		// an invalid configured endpoint is our fault, not the client's
		return http.StatusInternalServerError
	}
}

func isRetryable(err error) bool {
	var fe *solana.FetchError
	return errors.As(err, &fe) && fe.Retryable()
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
