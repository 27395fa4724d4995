package deepgramapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"mockinterview/logger"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/pkg/client/listen"
	"go.uber.org/zap"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultModel    = "nova-2"
	DefaultLanguage = "ko"
)

var ErrNoTranscript = errors.New("no transcription found in response")

type DeepgramConnectProps struct {
	Logger   *logger.LogMiddleware
	APIKey   string
	Model    string
	Language string
}

type DeepgramAPI struct {
	logger   *logger.LogMiddleware
	dg       *api.Client
	model    string
	language string
}

// Connect builds a REST client. An empty APIKey falls back to DEEPGRAM_API_KEY from the environment.
func Connect(args DeepgramConnectProps) *DeepgramAPI {
	var c = client.NewRESTWithDefaults()
	if args.APIKey != "" {
		c = client.NewREST(args.APIKey, &interfaces.ClientOptions{})
	}

	model := args.Model
	if model == "" {
		model = DefaultModel
	}
	language := args.Language
	if language == "" {
		language = DefaultLanguage
	}

	return &DeepgramAPI{logger: args.Logger, dg: api.New(c), model: model, language: language}
}

func (d *DeepgramAPI) options() *interfaces.PreRecordedTranscriptionOptions {
	return &interfaces.PreRecordedTranscriptionOptions{
		Punctuate:   true,
		Diarize:     false,
		Language:    d.language,
		Utterances:  true,
		SmartFormat: true,
		Model:       d.model,
	}
}

// Transcribe turns a spoken answer into text.
func (d *DeepgramAPI) Transcribe(ctx context.Context, audioData []byte) (string, error) {
	tracer := otel.Tracer("deepgramapi")
	ctx, span := tracer.Start(ctx, "Transcribe")
	defer span.End()

	span.SetAttributes(attribute.Int("audio.data.size", len(audioData)))

	logger := d.logger.Logger(ctx)

	span.AddEvent("Calling Deepgram API")
	res, err := d.dg.FromStream(ctx, bytes.NewReader(audioData), d.options())
	if err != nil {
		logger.Error("[DeepgramAPI] Deepgram transcription failed", zap.Error(err))
		span.RecordError(err)
		span.AddEvent("Deepgram API call failed")
		return "", fmt.Errorf("deepgram transcription failed: %w", err)
	}

	if res != nil && res.Results != nil && len(res.Results.Channels) > 0 {
		channel := res.Results.Channels[0]
		if len(channel.Alternatives) > 0 {
			transcription := strings.TrimSpace(channel.Alternatives[0].Transcript)
			if transcription != "" {
				logger.Info("[DeepgramAPI] Successfully transcribed audio",
					zap.Int("transcription.length", len(transcription)))
				span.AddEvent("Transcription successful", trace.WithAttributes(attribute.Int("transcription.length", len(transcription))))
				return transcription, nil
			}
		}
	}

	logger.Warn("[DeepgramAPI] No transcription found in response")
	span.AddEvent("No transcription found in Deepgram response")
	return "", ErrNoTranscript
}
