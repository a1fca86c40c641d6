package nlp

import (
	"context"
	"fmt"

	"github.com/soundprediction/claimgraph/pkg/types"
	"golang.org/x/time/rate"
)

// RateLimitClient caps the request rate sent to the wrapped Client.
// A request never fails because of the limiter; it waits for a token or
// for ctx to end.
type RateLimitClient struct {
	client  Client
	limiter *rate.Limiter
}

// NewRateLimitClient creates a client allowing requestsPerSecond with the given burst.
func NewRateLimitClient(client Client, requestsPerSecond float64, burst int) *RateLimitClient {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Chat implements Client
func (c *RateLimitClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return c.client.Chat(ctx, messages)
}

// ChatWithStructuredOutput implements Client
func (c *RateLimitClient) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return c.client.ChatWithStructuredOutput(ctx, messages, schema)
}

// Close implements Client
func (c *RateLimitClient) Close() error {
	return c.client.Close()
}
