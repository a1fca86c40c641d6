package prompts

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/soundprediction/claimgraph/pkg/nlp"
	"github.com/soundprediction/claimgraph/pkg/types"
)

// Context keys understood by the prompt functions.
const (
	KeySchema         = "schema"
	KeyChunkText      = "chunk_text"
	KeyProjectContext = "project_context"
	KeyItems          = "items"
	KeyProposition    = "proposition"
	KeyCandidates     = "candidates"
	KeyEvidence       = "evidence"
	KeyLogger         = "logger"
)

// PromptFunction is a function that generates prompt messages from context.
type PromptFunction func(context map[string]any) ([]types.Message, error)

// PromptVersion represents a versioned prompt function.
type PromptVersion interface {
	Call(context map[string]any) ([]types.Message, error)
}

// promptVersionImpl implements PromptVersion.
type promptVersionImpl struct {
	fn PromptFunction
}

// Call executes the prompt function with the given context.
func (p *promptVersionImpl) Call(context map[string]any) ([]types.Message, error) {
	messages, err := p.fn(context)
	if err != nil {
		return nil, err
	}

	for i, msg := range messages {
		if msg.Role == nlp.RoleSystem {
			messages[i].Content += "\nDo not escape unicode characters.\n"
		}
	}

	return messages, nil
}

// NewPromptVersion creates a new PromptVersion from a function.
func NewPromptVersion(fn PromptFunction) PromptVersion {
	return &promptVersionImpl{fn: fn}
}

// Library groups every prompt the pipeline sends.
type Library interface {
	ExtractClaims() PromptVersion
	DedupeEntities() PromptVersion
	DedupeClaims() PromptVersion
	PairwiseContradictions() PromptVersion
	FallbackContradictions() PromptVersion
}

// LibraryImpl is the default Library.
type LibraryImpl struct {
	*ExtractVersions
	*DedupeVersions
	*ContradictionVersions
}

// NewLibrary returns the default prompt library.
func NewLibrary() *LibraryImpl {
	return &LibraryImpl{
		ExtractVersions:       NewExtractVersions(),
		DedupeVersions:        NewDedupeVersions(),
		ContradictionVersions: NewContradictionVersions(),
	}
}

var _ Library = (*LibraryImpl)(nil)

// ToPromptJSON serializes data to JSON for use in prompts. HTML characters
// and non-ASCII text are left as-is.
func ToPromptJSON(data any, indent int) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// ToPromptTSV renders a header and rows as tab-separated values.
func ToPromptTSV(header []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'

	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, row := range rows {
		clean := make([]string, len(row))
		for i, cell := range row {
			clean[i] = strings.ReplaceAll(cell, "\n", " ")
		}
		if err := w.Write(clean); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func contextString(context map[string]any, key string) string {
	if v, ok := context[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func contextLogger(context map[string]any) *slog.Logger {
	if logger, ok := context[KeyLogger].(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// debugPrompts reports whether full prompts and responses should be logged.
func debugPrompts() bool {
	return os.Getenv("DEBUG_LLM_PROMPTS") == "true"
}

// logPrompts logs system and user prompts at debug level when DEBUG_LLM_PROMPTS=true.
func logPrompts(logger *slog.Logger, sysPrompt, userPrompt string) {
	if !debugPrompts() {
		return
	}
	logger.Debug("generated prompts", "system", sysPrompt, "user", userPrompt)
}

// LogResponse logs a completion at debug level when DEBUG_LLM_PROMPTS=true.
func LogResponse(logger *slog.Logger, response *types.Response) {
	if !debugPrompts() || response == nil {
		return
	}
	logger.Debug("llm response", "content", response.Content, "model", response.Model)
}

func messages(context map[string]any, sysPrompt, userPrompt string) []types.Message {
	logPrompts(contextLogger(context), sysPrompt, userPrompt)
	return []types.Message{
		nlp.NewSystemMessage(sysPrompt),
		nlp.NewUserMessage(userPrompt),
	}
}
