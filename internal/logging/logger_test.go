package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "rid-42")
	assert.Equal(t, "rid-42", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))
}

func TestNewLogger_TagsRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	l := NewLogger(WithRequestID(context.Background(), "rid-7"))
	l.LogError("projects.create", errors.New("boom"))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "rid-7", line["request_id"])
	assert.Equal(t, "projects.create", line["operation"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "error", line["level"])
}

func TestNewLogger_UnknownRequest(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	NewLogger(context.Background()).LogInfof("seed", "inserted %d rows", 3)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "unknown", line["request_id"])
	assert.Equal(t, "inserted 3 rows", line["message"])
}

func TestInit_FallsBackToInfo(t *testing.T) {
	prev := log.Logger
	defer func() { log.Logger = prev }()

	logger := Init("studio", "production", "nonsense")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger = Init("studio", "production", "DEBUG")
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}
