package provider

import (
	"sync"
	"time"

	"github.com/bote-dev/bote/pkg/debug"
)

// Cache hands out a shared upstream client, rebuilt lazily whenever the
// credential changes. Exchanges already streaming with a previous
// client keep it until they finish; only idle connections are dropped
// on rebuild.
type Cache struct {
	baseURL string
	timeout time.Duration

	mu         sync.Mutex
	credential string
	client     *Client
}

// NewCache creates an empty cache. No client is built until the first
// For call.
func NewCache(baseURL string, timeout time.Duration) *Cache {
	return &Cache{baseURL: baseURL, timeout: timeout}
}

// For returns a client authorized with credential, reusing the cached
// one when the credential is unchanged.
func (c *Cache) For(credential string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil && c.credential == credential {
		return c.client
	}

	if c.client != nil {
		debug.Log("provider", "credential changed, rebuilding upstream client")
		c.client.Close()
	}
	c.client = NewClient(c.baseURL, credential, c.timeout)
	c.credential = credential
	return c.client
}

// Invalidate drops the cached client so the next For call rebuilds it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		c.client.Close()
		c.client = nil
		c.credential = ""
	}
}
