package llm

import (
	"regexp"
	"strings"
)

var thinkTagPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// RemoveThinkTags removes <think> tags and everything in between them from a string.
func RemoveThinkTags(input string) string {
	return thinkTagPattern.ReplaceAllString(input, "")
}

// StripCodeFences returns the body of the first markdown code block, or the
// input unchanged when there is none.
func StripCodeFences(response string) string {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "```")
	if start == -1 {
		return response
	}
	body := response[start+3:]
	// Drop the info string ("json", "JSON", ...).
	if nl := strings.IndexByte(body, '\n'); nl != -1 && !strings.Contains(body[:nl], "{") {
		body = body[nl+1:]
	}
	if end := strings.Index(body, "```"); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// ExtractJSONObject returns the outermost {...} span of the response after think
// tags and code fences are removed. ok is false when no object boundaries exist.
func ExtractJSONObject(response string) (span string, ok bool) {
	response = StripCodeFences(RemoveThinkTags(response))

	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return "", false
	}
	return response[jsonStart : jsonEnd+1], true
}
