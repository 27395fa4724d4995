package openaiapi

import (
	"context"
	"fmt"
	"io"

	"mockinterview/logger"
	"mockinterview/modelapi"
	"mockinterview/speech"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

type OpenAI struct {
	logger    *logger.LogMiddleware
	semaphore *semaphore.Weighted
	client    *openai.Client
	model     string
}

type OpenAIConnectProps struct {
	Logger *logger.LogMiddleware
	APIKey string
	// BaseURL points the client at any OpenAI-compatible speech endpoint (DeepInfra, a local
	// Kokoro server). Empty uses api.openai.com.
	BaseURL    string
	Model      string
	MaxWorkers int
}

func Connect(ctx context.Context, args OpenAIConnectProps) *OpenAI {
	tracer := otel.Tracer("openaiapi/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	maxWorkers := args.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 10
	}
	model := args.Model
	if model == "" {
		model = modelapi.OPENAI_TTS_MODEL
	}

	span.SetAttributes(
		attribute.Int("maxWorkers", maxWorkers),
		attribute.String("model", model),
	)

	opts := []option.RequestOption{
		option.WithAPIKey(args.APIKey),
		option.WithMaxRetries(0),
	}
	if args.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(args.BaseURL))
	}
	client := openai.NewClient(opts...)

	args.Logger.Logger(ctx).Info("[OpenAIAPI] Connected speech client", zap.String("model", model))

	return &OpenAI{
		logger:    args.Logger,
		semaphore: semaphore.NewWeighted(int64(maxWorkers)),
		client:    &client,
		model:     model,
	}
}

func (d *OpenAI) GenerateSpeech(ctx context.Context, req speech.Request) ([]byte, error) {
	tracer := otel.Tracer("openaiapi/GenerateSpeech")
	ctx, span := tracer.Start(ctx, "GenerateSpeech")
	defer span.End()
	span.SetAttributes(
		attribute.String("voice", req.Voice),
		attribute.Int("text.length", len(req.Text)),
	)

	if err := d.semaphore.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer d.semaphore.Release(1)

	d.logger.Logger(ctx).Info("[OpenAIAPI] Generating speech", zap.String("voice", req.Voice))

	res, err := d.client.Audio.Speech.New(ctx, d.speechParams(req))
	if err != nil {
		span.RecordError(err)
		d.logger.Logger(ctx).Error("[OpenAIAPI] Speech request failed", zap.Error(err))
		return nil, err
	}
	defer res.Body.Close()

	audioBytes, err := io.ReadAll(res.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("could not read speech response: %w", err)
	}

	return audioBytes, nil
}

func (d *OpenAI) speechParams(req speech.Request) openai.AudioSpeechNewParams {
	voice := req.Voice
	if voice == "" {
		voice = modelapi.OPENAI_DEFAULT_VOICE
	}

	params := openai.AudioSpeechNewParams{
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
		Model:          openai.SpeechModel(d.model),
		Input:          req.Text,
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
	}
	if req.SpeakingRate > 0 {
		params.Speed = openai.Float(req.SpeakingRate)
	}
	if d.model == modelapi.OPENAI_TTS_MODEL {
		params.Instructions = openai.String(modelapi.STYLE_INSTRUCTION)
	}
	return params
}
