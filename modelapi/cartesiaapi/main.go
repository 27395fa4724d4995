package cartesiaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mockinterview/httpmiddleware"
	"mockinterview/logger"
	"mockinterview/modelapi"
	"mockinterview/speech"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const DefaultURL = "https://api.cartesia.ai/tts/bytes"

type CartesiaConnectProps struct {
	Logger     *logger.LogMiddleware
	APIKey     string
	URL        string
	MaxWorkers int
}

type Cartesia struct {
	logger    *logger.LogMiddleware
	apiKey    string
	url       string
	semaphore *semaphore.Weighted
}

type VoiceConfig struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type OutputFormat struct {
	Container  string `json:"container"`
	BitRate    int    `json:"bit_rate"`
	SampleRate int    `json:"sample_rate"`
}

type TTSRequest struct {
	ModelID      string       `json:"model_id"`
	Transcript   string       `json:"transcript"`
	Voice        VoiceConfig  `json:"voice"`
	OutputFormat OutputFormat `json:"output_format"`
	Language     string       `json:"language"`
	Speed        float64      `json:"speed,omitempty"`
}

func Connect(ctx context.Context, args CartesiaConnectProps) *Cartesia {
	tracer := otel.Tracer("cartesiaapi/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	maxWorkers := args.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 10
	}
	url := args.URL
	if url == "" {
		url = DefaultURL
	}

	span.SetAttributes(attribute.Int("maxWorkers", maxWorkers))
	args.Logger.Logger(ctx).Info("[CartesiaAPI] Connecting Cartesia client", zap.String("url", url))

	return &Cartesia{
		logger:    args.Logger,
		apiKey:    args.APIKey,
		url:       url,
		semaphore: semaphore.NewWeighted(int64(maxWorkers)),
	}
}

// GenerateSpeech treats req.Voice as a Cartesia voice id.
func (c *Cartesia) GenerateSpeech(ctx context.Context, req speech.Request) ([]byte, error) {
	tracer := otel.Tracer("cartesiaapi/GenerateSpeech")
	ctx, span := tracer.Start(ctx, "GenerateSpeech")
	defer span.End()
	span.SetAttributes(attribute.String("voice", req.Voice))

	logger := c.logger.Logger(ctx)

	if err := c.semaphore.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer c.semaphore.Release(1)

	jsonData, err := json.Marshal(ttsRequest(req))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	respBody, err := httpmiddleware.HttpRequest(ctx, httpmiddleware.HttpRequestStruct{
		Method: "POST",
		Url:    c.url,
		Body:   bytes.NewBuffer(jsonData),
		Headers: map[string]string{
			"X-API-Key":        c.apiKey,
			"Cartesia-Version": modelapi.CARTESIA_API_VERSION,
			"Content-Type":     "application/json",
		},
	})
	if err != nil {
		span.RecordError(err)
		logger.Error("[CartesiaAPI] Failed to generate speech", zap.Error(err))
		return nil, err
	}

	logger.Info("[CartesiaAPI] Successfully generated speech", zap.Int("audioSize", len(respBody)))
	return respBody, nil
}

func ttsRequest(req speech.Request) TTSRequest {
	language := req.LanguageCode
	if i := strings.IndexByte(language, '-'); i > 0 {
		language = language[:i]
	}

	return TTSRequest{
		ModelID:    modelapi.CARTESIA_TTS_MODEL,
		Transcript: req.Text,
		Voice: VoiceConfig{
			Mode: "id",
			ID:   req.Voice,
		},
		OutputFormat: OutputFormat{
			Container:  req.Encoding,
			BitRate:    128000,
			SampleRate: req.SampleRateHertz,
		},
		Language: language,
		Speed:    req.SpeakingRate,
	}
}
