package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorHandlerFormatting(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, slog.LevelDebug, false))

	log.WithGroup("graph").Info("node created", "label", "Claim", "text", "two words")
	line := strings.TrimSpace(buf.String())

	assert.Contains(t, line, "INFO  node created")
	assert.Contains(t, line, "graph.label=Claim")
	assert.Contains(t, line, `graph.text="two words"`)
	assert.NotContains(t, line, "\033[")
}

func TestColorHandlerColors(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, slog.LevelInfo, true))

	log.Info("Persisting entities")
	log.Error("boom")

	out := buf.String()
	assert.Contains(t, out, colorGreen+"Persisting entities"+colorReset)
	assert.Contains(t, out, colorRed+"ERROR"+colorReset)
}

func TestColorHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, slog.LevelWarn, false))

	log.Info("dropped")
	log.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
