package common

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders raw / 10^decimals without float precision loss.
// Trailing fractional zeros are trimmed, the same way the node renders uiAmountString.
// Example: FormatAmount(1500000, 6) = "1.5"
func FormatAmount(raw uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals)).String()
}

// ParseAmount parses a raw token amount as returned by RPC ("amount" field, integer as text)
func ParseAmount(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return n, nil
}
