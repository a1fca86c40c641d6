package nlp_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/soundprediction/claimgraph/pkg/nlp"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitError(t *testing.T) {
	t.Run("default message", func(t *testing.T) {
		err := nlp.NewRateLimitError()
		assert.Equal(t, "rate limit exceeded. Please try again later", err.Error())
	})

	t.Run("custom message", func(t *testing.T) {
		customMessage := "Custom rate limit message"
		err := nlp.NewRateLimitError(customMessage)
		assert.Equal(t, customMessage, err.Error())
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("chat: %w", nlp.NewRateLimitError("slow down"))
		assert.True(t, errors.Is(err, &nlp.RateLimitError{}))
		assert.True(t, errors.Is(err, nlp.ErrRateLimit))
		assert.False(t, errors.Is(err, nlp.ErrRefusal))
	})
}

func TestRefusalError(t *testing.T) {
	message := "The LLM refused to respond to this prompt."
	err := nlp.NewRefusalError(message)
	assert.Equal(t, message, err.Error())
	assert.ErrorIs(t, fmt.Errorf("x: %w", err), nlp.ErrRefusal)
}

func TestEmptyResponseError(t *testing.T) {
	message := "The LLM returned an empty response."
	err := nlp.NewEmptyResponseError(message)
	assert.Equal(t, message, err.Error())
	assert.ErrorIs(t, err, &nlp.EmptyResponseError{})
	assert.ErrorIs(t, err, nlp.ErrEmptyResponse)
}

func TestCommonErrors(t *testing.T) {
	assert.Contains(t, nlp.ErrRateLimit.Error(), "rate limit")
	assert.Contains(t, nlp.ErrRefusal.Error(), "refused")
	assert.Contains(t, nlp.ErrEmptyResponse.Error(), "empty")
	assert.Contains(t, nlp.ErrCircuitOpen.Error(), "circuit")
}
