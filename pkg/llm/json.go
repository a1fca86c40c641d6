package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	"github.com/soundprediction/claimgraph/pkg/nlp"
	"github.com/soundprediction/claimgraph/pkg/types"
)

var (
	// ErrNoJSONObject indicates the response contained no {...} span.
	ErrNoJSONObject = errors.New("no JSON object found in response")

	// ErrMalformedJSON indicates the span could not be decoded, even after repair.
	ErrMalformedJSON = errors.New("malformed JSON in response")
)

// ParseResult is the outcome of decoding a completion.
// Value is the zero value of T whenever OK is false.
type ParseResult[T any] struct {
	Value    T
	OK       bool
	Repaired bool
	Err      error
}

// ParseJSON decodes the outermost JSON object of a completion into T. When
// strict decoding fails it runs the span through jsonrepair and tries once more.
func ParseJSON[T any](raw string) ParseResult[T] {
	span, ok := ExtractJSONObject(raw)
	if !ok {
		return ParseResult[T]{Err: ErrNoJSONObject}
	}

	var value T
	err := json.Unmarshal([]byte(span), &value)
	if err == nil {
		return ParseResult[T]{Value: value, OK: true}
	}

	repaired, repairErr := jsonrepair.JSONRepair(span)
	if repairErr != nil {
		return ParseResult[T]{Err: fmt.Errorf("%w: %v", ErrMalformedJSON, err)}
	}

	var fixed T
	if err := json.Unmarshal([]byte(repaired), &fixed); err != nil {
		return ParseResult[T]{Err: fmt.Errorf("%w: %v", ErrMalformedJSON, err)}
	}
	return ParseResult[T]{Value: fixed, OK: true, Repaired: true}
}

// GenerateJSON sends messages as a structured-output request and decodes the
// reply into T. A failed request is reported the same way as a failed parse.
func GenerateJSON[T any](ctx context.Context, client nlp.Client, messages []types.Message) ParseResult[T] {
	var zero T
	resp, err := client.ChatWithStructuredOutput(ctx, messages, zero)
	if err != nil {
		return ParseResult[T]{Err: fmt.Errorf("completion request failed: %w", err)}
	}
	if resp == nil || resp.Content == "" {
		return ParseResult[T]{Err: nlp.NewEmptyResponseError("completion returned no content")}
	}
	return ParseJSON[T](resp.Content)
}
