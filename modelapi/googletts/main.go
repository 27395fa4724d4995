package googletts

import (
	"context"
	"fmt"

	"mockinterview/logger"
	"mockinterview/modelapi"
	"mockinterview/speech"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"google.golang.org/api/option"
)

type synthesizeClient interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
}

type GoogleTTSConnectProps struct {
	Logger *logger.LogMiddleware
	// CredentialsFile is a service account key. Empty uses application default credentials.
	CredentialsFile string
	MaxWorkers      int
}

type GoogleTTS struct {
	logger    *logger.LogMiddleware
	client    synthesizeClient
	semaphore *semaphore.Weighted
}

func Connect(ctx context.Context, args GoogleTTSConnectProps) (*GoogleTTS, error) {
	tracer := otel.Tracer("googletts/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	var opts []option.ClientOption
	if args.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(args.CredentialsFile))
	}

	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		span.RecordError(err)
		args.Logger.Logger(ctx).Error("[GoogleTTS] Could not create Text-to-Speech client", zap.Error(err))
		return nil, fmt.Errorf("could not create text-to-speech client: %w", err)
	}

	args.Logger.Logger(ctx).Info("[GoogleTTS] Connected Text-to-Speech client")
	return newGoogleTTS(args.Logger, client, args.MaxWorkers), nil
}

func newGoogleTTS(log *logger.LogMiddleware, client synthesizeClient, maxWorkers int) *GoogleTTS {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}
	return &GoogleTTS{
		logger:    log,
		client:    client,
		semaphore: semaphore.NewWeighted(int64(maxWorkers)),
	}
}

func (g *GoogleTTS) GenerateSpeech(ctx context.Context, req speech.Request) ([]byte, error) {
	tracer := otel.Tracer("googletts/GenerateSpeech")
	ctx, span := tracer.Start(ctx, "GenerateSpeech")
	defer span.End()
	span.SetAttributes(
		attribute.String("voice", req.Voice),
		attribute.Int("text.length", len(req.Text)),
	)

	if err := g.semaphore.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer g.semaphore.Release(1)

	resp, err := g.client.SynthesizeSpeech(ctx, synthesizeRequest(req))
	if err != nil {
		span.RecordError(err)
		g.logger.Logger(ctx).Error("[GoogleTTS] SynthesizeSpeech failed", zap.Error(err), zap.String("voice", req.Voice))
		return nil, err
	}

	g.logger.Logger(ctx).Info("[GoogleTTS] Successfully generated speech", zap.Int("audioSize", len(resp.AudioContent)))
	return resp.AudioContent, nil
}

func synthesizeRequest(req speech.Request) *texttospeechpb.SynthesizeSpeechRequest {
	voice := req.Voice
	if voice == "" {
		voice = modelapi.GOOGLE_KOREAN_VOICE
	}
	languageCode := req.LanguageCode
	if languageCode == "" {
		languageCode = speech.LanguageCode
	}

	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: req.Text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: languageCode,
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_MP3,
			SampleRateHertz: int32(req.SampleRateHertz),
			SpeakingRate:    req.SpeakingRate,
		},
	}
}
