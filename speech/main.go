// Package speech turns interviewer text into base64 MP3 audio, memoized per text and voice.
package speech

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"mockinterview/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

const (
	LanguageCode      = "ko-KR"
	SampleRateHertz   = 24000
	EncodingMP3       = "mp3"
	DefaultSpeechRate = 1.0
)

// Request is what a backend receives on a cache miss.
type Request struct {
	Text            string
	Voice           string
	LanguageCode    string
	Encoding        string
	SampleRateHertz int
	SpeakingRate    float64
}

// Backend performs the actual synthesis call and returns raw audio bytes.
type Backend interface {
	GenerateSpeech(ctx context.Context, req Request) ([]byte, error)
}

// SynthesisError wraps any backend failure.
type SynthesisError struct {
	Voice string
	Err   error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech synthesis failed (voice %s): %v", e.Voice, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

type SynthesizerProps struct {
	Logger       *logger.LogMiddleware
	Backend      Backend
	Store        Store
	DefaultVoice string
}

type Synthesizer struct {
	logger       *logger.LogMiddleware
	backend      Backend
	store        Store
	defaultVoice string
}

func New(args SynthesizerProps) *Synthesizer {
	return &Synthesizer{
		logger:       args.Logger,
		backend:      args.Backend,
		store:        args.Store,
		defaultVoice: args.DefaultVoice,
	}
}

// Fingerprint is the cache key for a text and voice pair.
func Fingerprint(text, voice string) string {
	h := sha256.New()
	h.Write([]byte(norm.NFC.String(text)))
	h.Write([]byte{0})
	h.Write([]byte(voice))
	return hex.EncodeToString(h.Sum(nil))
}

// Synthesize returns base64-encoded MP3 for text. An empty voice selects the default voice and a
// non-positive rate selects 1.0. Identical text and voice never reach the backend twice while the
// entry stays in the store.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voice string, rate float64) (string, error) {
	tracer := otel.Tracer("speech/Synthesize")
	ctx, span := tracer.Start(ctx, "Synthesize")
	defer span.End()

	if voice == "" {
		voice = s.defaultVoice
	}
	if rate <= 0 {
		rate = DefaultSpeechRate
	}

	key := Fingerprint(text, voice)
	span.SetAttributes(
		attribute.String("speech.voice", voice),
		attribute.Int("speech.text.length", len(text)),
	)

	if audio, ok := s.store.Get(key); ok {
		span.AddEvent("CacheHit")
		s.logger.Logger(ctx).Debug("[Speech] Cache hit", zap.String("voice", voice))
		return audio, nil
	}

	raw, err := s.backend.GenerateSpeech(ctx, Request{
		Text:            text,
		Voice:           voice,
		LanguageCode:    LanguageCode,
		Encoding:        EncodingMP3,
		SampleRateHertz: SampleRateHertz,
		SpeakingRate:    rate,
	})
	if err == nil && len(raw) == 0 {
		err = fmt.Errorf("backend returned no audio")
	}
	if err != nil {
		span.RecordError(err)
		s.logger.Logger(ctx).Error("[Speech] Could not synthesize speech", zap.Error(err), zap.String("voice", voice))
		return "", &SynthesisError{Voice: voice, Err: err}
	}

	audio := base64.StdEncoding.EncodeToString(raw)
	s.store.Add(key, audio)

	s.logger.Logger(ctx).Info("[Speech] Synthesized speech",
		zap.String("voice", voice),
		zap.Int("audioSize", len(raw)),
		zap.Int("cacheEntries", s.store.Len()))

	return audio, nil
}

// ClearCache drops every memoized entry.
func (s *Synthesizer) ClearCache() {
	s.store.Purge()
}

// DefaultVoice is the voice used when callers pass none.
func (s *Synthesizer) DefaultVoice() string {
	return s.defaultVoice
}
