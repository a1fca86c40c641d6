package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/soundprediction/claimgraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestParseJSON(t *testing.T) {
	want := payload{Name: "x", Items: []string{"a", "b"}}

	tests := []struct {
		name     string
		raw      string
		repaired bool
	}{
		{name: "plain", raw: `{"name":"x","items":["a","b"]}`},
		{name: "json fence", raw: "```json\n{\"name\":\"x\",\"items\":[\"a\",\"b\"]}\n```"},
		{name: "bare fence", raw: "```\n{\"name\":\"x\",\"items\":[\"a\",\"b\"]}\n```"},
		{name: "prose wrapped", raw: "Sure! Here is the result:\n{\"name\":\"x\",\"items\":[\"a\",\"b\"]}\nLet me know."},
		{name: "think block", raw: "<think>maybe {\"name\":\"y\"}</think>{\"name\":\"x\",\"items\":[\"a\",\"b\"]}"},
		{name: "trailing commas", raw: `{"name":"x","items":["a","b",],}`, repaired: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseJSON[payload](tt.raw)
			require.True(t, res.OK, "err: %v", res.Err)
			assert.NoError(t, res.Err)
			assert.Equal(t, want, res.Value)
			assert.Equal(t, tt.repaired, res.Repaired)
		})
	}
}

func TestParseJSONDegrades(t *testing.T) {
	t.Run("no braces", func(t *testing.T) {
		res := ParseJSON[payload]("I could not find anything.")
		assert.False(t, res.OK)
		assert.ErrorIs(t, res.Err, ErrNoJSONObject)
		assert.Equal(t, payload{}, res.Value)
	})

	t.Run("empty", func(t *testing.T) {
		res := ParseJSON[payload]("")
		assert.False(t, res.OK)
		assert.ErrorIs(t, res.Err, ErrNoJSONObject)
	})

	t.Run("wrong shape", func(t *testing.T) {
		res := ParseJSON[payload](`{"name":"x","items":"not-a-list"}`)
		assert.False(t, res.OK)
		assert.ErrorIs(t, res.Err, ErrMalformedJSON)
		assert.Equal(t, payload{}, res.Value)
	})
}

func TestExtractJSONObject(t *testing.T) {
	span, ok := ExtractJSONObject("prefix {\"a\":{\"b\":1}} suffix")
	require.True(t, ok)
	assert.Equal(t, `{"a":{"b":1}}`, span)

	_, ok = ExtractJSONObject("} backwards {")
	assert.False(t, ok)
}

func TestRemoveThinkTags(t *testing.T) {
	assert.Equal(t, "answer", RemoveThinkTags("<think>\nreasoning\n</think>answer"))
	assert.Equal(t, "no tags", RemoveThinkTags("no tags"))
}

type scriptedClient struct {
	content string
	err     error
	calls   int
}

func (c *scriptedClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	return c.ChatWithStructuredOutput(ctx, messages, nil)
}

func (c *scriptedClient) ChatWithStructuredOutput(_ context.Context, _ []types.Message, _ any) (*types.Response, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &types.Response{Content: c.content}, nil
}

func (c *scriptedClient) Close() error { return nil }

func TestGenerateJSON(t *testing.T) {
	ctx := context.Background()
	msgs := []types.Message{{Role: "user", Content: "go"}}

	t.Run("success", func(t *testing.T) {
		client := &scriptedClient{content: `{"name":"x"}`}
		res := GenerateJSON[payload](ctx, client, msgs)
		require.True(t, res.OK)
		assert.Equal(t, "x", res.Value.Name)
		assert.Equal(t, 1, client.calls)
	})

	t.Run("request error", func(t *testing.T) {
		client := &scriptedClient{err: errors.New("boom")}
		res := GenerateJSON[payload](ctx, client, msgs)
		assert.False(t, res.OK)
		assert.ErrorContains(t, res.Err, "boom")
		assert.Equal(t, 1, client.calls)
	})

	t.Run("empty content", func(t *testing.T) {
		client := &scriptedClient{}
		res := GenerateJSON[payload](ctx, client, msgs)
		assert.False(t, res.OK)
		assert.Error(t, res.Err)
	})
}
