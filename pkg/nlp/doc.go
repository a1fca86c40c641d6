// Package nlp provides completion clients for language model interactions.
//
// This package defines the Client interface and an implementation for OpenAI and
// OpenAI-compatible APIs (Ollama, vLLM, LM Studio, etc.).
//
// # Client Wrappers
//
// The package provides several wrapper clients that compose around any Client:
//   - CircuitBreakerClient: stop calling a failing service and alert when it trips
//   - RateLimitClient: cap the request rate sent to the service
//   - CachingClient: reuse completions for identical requests
//   - TokenTrackingClient: persist token usage to Parquet files
//
// None of the wrappers retry. A failed request is returned to the caller, which
// decides whether to degrade.
//
// # Usage
//
//	client, err := nlp.NewOpenAIClient(apiKey, nlp.Config{Model: "gpt-4o-mini"})
//	limited := nlp.NewRateLimitClient(client, 2, 4)
//	response, err := limited.Chat(ctx, []types.Message{nlp.NewUserMessage("hello")})
//
// # Error Handling
//
// The package defines specific error types for common failure modes:
//   - RateLimitError: API rate limit exceeded
//   - RefusalError: Model refused to generate content
//   - EmptyResponseError: Model returned empty response
//
// These errors support errors.Is() for type checking.
package nlp
