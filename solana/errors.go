package solana

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// Kind classifies why a balance fetch failed
type Kind int

const (
	KindInvalidAddress Kind = iota + 1
	KindInvalidEndpoint
	KindNotFound
	KindNotATokenAccount
	KindTransport
	KindMalformedResponse
	KindCancelled
)

var (
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidEndpoint   = errors.New("invalid endpoint")
	ErrNotFound          = errors.New("account not found")
	ErrNotATokenAccount  = errors.New("account is not a token account")
	ErrTransport         = errors.New("transport failure")
	ErrMalformedResponse = errors.New("malformed response")
	ErrCancelled         = errors.New("request cancelled")
)

var kindInfo = map[Kind]struct {
	name     string
	sentinel error
}{
	KindInvalidAddress:    {"invalid_address", ErrInvalidAddress},
	KindInvalidEndpoint:   {"invalid_endpoint", ErrInvalidEndpoint},
	KindNotFound:          {"not_found", ErrNotFound},
	KindNotATokenAccount:  {"not_a_token_account", ErrNotATokenAccount},
	KindTransport:         {"transport", ErrTransport},
	KindMalformedResponse: {"malformed_response", ErrMalformedResponse},
	KindCancelled:         {"cancelled", ErrCancelled},
}

// String returns the snake_case name used in logs, metrics and API error codes
func (k Kind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// FetchError is returned by Fetcher.Fetch for every failure.
// errors.Is(err, ErrNotFound) and friends match on Kind.
type FetchError struct {
	Kind     Kind
	Address  string
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	msg := kindInfo[e.Kind].sentinel
	if msg == nil {
		msg = errors.New(e.Kind.String())
	}
	if e.Err == nil {
		return fmt.Sprintf("token account %s: %v", e.Address, msg)
	}
	return fmt.Sprintf("token account %s: %v: %v", e.Address, msg, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind
func (e *FetchError) Is(target error) bool {
	info, ok := kindInfo[e.Kind]
	return ok && info.sentinel == target
}

// Retryable reports whether the caller may retry with backoff.
// Only transport failures qualify; nothing here retries internally.
func (e *FetchError) Retryable() bool {
	return e.Kind == KindTransport
}

// Timeout reports whether the failure was a deadline or network timeout
func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// KindOf returns the kind of a *FetchError anywhere in err's chain, or 0
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// classify maps an error from the RPC client to a Kind.
// ctx is the caller's context, used to tell a cancel from a timeout.
func classify(ctx context.Context, err error) Kind {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return KindCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransport
	}

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return classifyRPCError(rpcErr)
	}

	var httpErr *jsonrpc.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Code == http.StatusNotFound {
			return KindNotFound
		}
		return KindTransport
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return KindTransport
	}

	// Some client versions only surface the node message as text
	if isAccountNotFoundMessage(err.Error()) {
		return KindNotFound
	}
	if isNotTokenAccountMessage(err.Error()) {
		return KindNotATokenAccount
	}

	// Anything else failed while decoding the response body
	return KindMalformedResponse
}

// JSON-RPC 2.0 codes the node uses for requests it could not understand
const (
	rpcCodeParseError     = -32700
	rpcCodeInvalidRequest = -32600
	rpcCodeMethodNotFound = -32601
	rpcCodeInvalidParams  = -32602
)

func classifyRPCError(rpcErr *jsonrpc.RPCError) Kind {
	switch {
	case isAccountNotFoundMessage(rpcErr.Message):
		return KindNotFound
	case isNotTokenAccountMessage(rpcErr.Message):
		return KindNotATokenAccount
	}

	switch rpcErr.Code {
	case rpcCodeParseError, rpcCodeInvalidRequest, rpcCodeMethodNotFound:
		// the endpoint does not speak the expected API version
		return KindMalformedResponse
	case rpcCodeInvalidParams:
		// the node rejected the account itself; asking again gives the same answer
		if isBadMintMessage(rpcErr.Message) {
			return KindNotATokenAccount
		}
		return KindMalformedResponse
	default:
		// node-side failures (unhealthy node, rate limits, slot skipped) are transient
		return KindTransport
	}
}

// isAccountNotFoundMessage checks if a node message says the account doesn't exist
func isAccountNotFoundMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "could not find account") ||
		strings.Contains(msg, "account not found")
}

func isNotTokenAccountMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "not a token account")
}

// isBadMintMessage matches token accounts whose mint is gone or unreadable
func isBadMintMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "mint") || strings.Contains(msg, "could not be unpacked")
}
