package nlp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/soundprediction/claimgraph/pkg/types"
)

// CachingClient reuses completions for byte-identical requests.
// Only successful responses are cached.
type CachingClient struct {
	client Client
	cache  *gocache.Cache
}

// NewCachingClient creates a cache in front of client. Entries expire after ttl.
func NewCachingClient(client Client, ttl time.Duration) *CachingClient {
	return &CachingClient{
		client: client,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

// Chat implements Client
func (c *CachingClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	key := cacheKey("chat", messages)
	if resp, ok := c.get(key); ok {
		return resp, nil
	}
	resp, err := c.client.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, *resp)
	return resp, nil
}

// ChatWithStructuredOutput implements Client
func (c *CachingClient) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	key := cacheKey("structured", messages)
	if resp, ok := c.get(key); ok {
		return resp, nil
	}
	resp, err := c.client.ChatWithStructuredOutput(ctx, messages, schema)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, *resp)
	return resp, nil
}

// Close implements Client
func (c *CachingClient) Close() error {
	c.cache.Flush()
	return c.client.Close()
}

// get returns a copy so callers can't mutate cached entries. Cached responses
// report no token usage since nothing was spent.
func (c *CachingClient) get(key string) (*types.Response, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	resp := val.(types.Response)
	resp.TokensUsed = nil
	return &resp, true
}

// cacheKey hashes the request mode and messages.
func cacheKey(mode string, messages []types.Message) string {
	h := sha256.New()
	h.Write([]byte(mode))
	for _, m := range messages {
		h.Write([]byte{0})
		h.Write([]byte(m.Role))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
	}
	return "claimgraph:v1:" + hex.EncodeToString(h.Sum(nil))
}
