package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false, "")

	log.Debug("hidden")
	log.Info("goal created", "goal_id", "g-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "goal created", line["msg"])
	assert.Equal(t, "g-1", line["goal_id"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewDevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true, "")

	log.Debug("visible", "user_id", "u-1")
	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "user_id=u-1")
}
