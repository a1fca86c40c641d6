// Package llm turns raw language-model completions into typed values.
//
// Completions are routinely wrapped in prose, fenced in markdown, prefixed with
// <think> blocks or slightly malformed. ParseJSON never fails loudly: it returns a
// ParseResult whose OK flag tells the caller whether to use the value or degrade to
// an empty result.
package llm
