package core

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogHelpers_WriteKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() { SetLogOutput(os.Stderr) })

	LogWarn("value out of range, clamped", "field", "metalness", "value", 1.5)

	line := buf.String()
	assert.Contains(t, line, "value out of range, clamped")
	assert.Contains(t, line, "field=metalness")
	assert.Contains(t, line, "value=1.5")
	assert.NotContains(t, line, "%!")
}

func TestLogHelpers_RespectLevel(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	previous := GetLogLevel()
	t.Cleanup(func() {
		SetLogOutput(os.Stderr)
		SetLogLevel(previous)
	})

	SetLogLevel(InfoLevel)
	LogDebug("hidden", "k", 1)
	assert.Empty(t, buf.String())

	SetLogLevel(DebugLevel)
	LogDebug("shown", "k", 1)
	assert.Contains(t, buf.String(), "k=1")
}
