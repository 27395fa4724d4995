package deepgramapi

import (
	"context"
	"os"
	"testing"
	"time"

	"mockinterview/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectDefaults(t *testing.T) {
	dg := Connect(DeepgramConnectProps{Logger: logger.Nop(), APIKey: "test"})

	opts := dg.options()
	assert.Equal(t, "nova-2", opts.Model)
	assert.Equal(t, "ko", opts.Language)
	assert.True(t, opts.Punctuate)
	assert.True(t, opts.SmartFormat)
}

func TestConnectOverrides(t *testing.T) {
	dg := Connect(DeepgramConnectProps{Logger: logger.Nop(), APIKey: "test", Model: "nova-3", Language: "multi"})

	opts := dg.options()
	assert.Equal(t, "nova-3", opts.Model)
	assert.Equal(t, "multi", opts.Language)
}

func TestTranscribeLive(t *testing.T) {
	apiKey := os.Getenv("DEEPGRAM_API_KEY")
	path := os.Getenv("DEEPGRAM_SAMPLE_AUDIO")
	if apiKey == "" || path == "" {
		t.Skip("DEEPGRAM_API_KEY or DEEPGRAM_SAMPLE_AUDIO not set, skipping test")
	}

	audio, err := os.ReadFile(path)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	text, err := Connect(DeepgramConnectProps{Logger: logger.Nop(), APIKey: apiKey}).Transcribe(ctx, audio)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}
