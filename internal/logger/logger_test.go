package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_RedactsCredentialKeys(t *testing.T) {
	log, logs := NewObserved()

	log.Info("provider ready", "provider", "openai", "api_key", "sk-live-123", "session_token", "abc")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "openai", fields["provider"])
	assert.Equal(t, "[REDACTED]", fields["api_key"])
	assert.Equal(t, "[REDACTED]", fields["session_token"])
}

func TestLogger_WithKeepsFields(t *testing.T) {
	log, logs := NewObserved()

	log.With("request_id", "r-1").Warn("slow call", "elapsed_ms", 1200)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "r-1", fields["request_id"])
	assert.EqualValues(t, 1200, fields["elapsed_ms"])
}

func TestLogger_OddKeyValuesDoNotPanic(t *testing.T) {
	log, logs := NewObserved()

	assert.NotPanics(t, func() { log.Debug("dangling", "only-key") })
	assert.NotEmpty(t, logs.FilterMessage("dangling").All())
}
