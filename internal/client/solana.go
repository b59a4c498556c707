package client

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

const defaultPoolSize = 16

// Pool keeps one Solana RPC client per endpoint URL.
// All clients share a single http.Client, so keep-alive connections are reused
// across fetches. Pool is safe for concurrent use.
type Pool struct {
	mu         sync.Mutex
	clients    *simplelru.LRU[string, *rpc.Client]
	httpClient *http.Client
}

// NewPool creates a pool holding at most size clients.
// Least recently used endpoints are dropped when the pool is full.
func NewPool(size int) (*Pool, error) {
	if size <= 0 {
		size = defaultPoolSize
	}
	clients, err := simplelru.NewLRU[string, *rpc.Client](size, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create client pool: %w", err)
	}
	return &Pool{
		clients:    clients,
		httpClient: newHTTPClient(),
	}, nil
}

// Get returns the client for endpoint, creating it on first use
func (p *Pool) Get(endpoint string) *rpc.Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients.Get(endpoint); ok {
		return c
	}

	rpcClient := jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
		HTTPClient: p.httpClient,
	})
	c := rpc.NewWithCustomRPCClient(rpcClient)
	p.clients.Add(endpoint, c)
	return c
}

// Len returns the number of cached clients
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clients.Len()
}

// newHTTPClient has no overall Timeout: request lifetime is bounded by the caller's context.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
