package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineLoggerWritesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo).With("stock")

	logger.Info("stock adjusted", map[string]interface{}{
		"product_id": 4,
		"action":     "decrease",
		"err":        errors.New("boom now"),
	})

	line := buf.String()
	assert.Contains(t, line, "level=INFO")
	assert.Contains(t, line, "component=stock")
	assert.Contains(t, line, `msg="stock adjusted"`)
	assert.Less(t, strings.Index(line, "action="), strings.Index(line, "product_id="))
	assert.Contains(t, line, `err="boom now"`)
}

func TestLineLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelWarn)

	logger.Debug("hidden", nil)
	logger.Info("hidden", nil)
	assert.Empty(t, buf.String())

	logger.Error("shown", nil)
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelSilent, ParseLevel("off"))
	assert.Equal(t, LevelInfo, ParseLevel("whatever"))
}
