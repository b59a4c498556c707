package model

import "strconv"

// TokenBalance is the normalized result of a getTokenAccountBalance call
type TokenBalance struct {
	Address        string // base58 token account address that was queried
	Amount         uint64 // raw amount in base units
	Decimals       uint8
	UIAmountString string // Amount scaled by Decimals, as reported by the node
	Slot           uint64 // slot the node read the balance at
}

// TokenBalanceResponse represents response for GET /solana/token-balance
type TokenBalanceResponse struct {
	Address        string `json:"address"`
	Amount         string `json:"amount"`
	Decimals       uint8  `json:"decimals"`
	UIAmountString string `json:"uiAmountString"`
	Slot           uint64 `json:"slot"`
	QR             string `json:"QR,omitempty"` // base64 PNG of the address
}

// NewTokenBalanceResponse maps a fetched balance to its JSON form
func NewTokenBalanceResponse(b *TokenBalance) TokenBalanceResponse {
	return TokenBalanceResponse{
		Address:        b.Address,
		Amount:         strconv.FormatUint(b.Amount, 10),
		Decimals:       b.Decimals,
		UIAmountString: b.UIAmountString,
		Slot:           b.Slot,
	}
}
