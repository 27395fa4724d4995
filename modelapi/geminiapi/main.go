package geminiapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mockinterview/interview"
	"mockinterview/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"google.golang.org/genai"
)

const jsonMIMEType = "application/json"

var errEmptyResponse = errors.New("gemini returned no text")

type GeminiConnectProps struct {
	Logger     *logger.LogMiddleware
	APIKey     string
	MaxWorkers int
}

type Gemini struct {
	logger    *logger.LogMiddleware
	client    *genai.Client
	semaphore *semaphore.Weighted
}

func Connect(ctx context.Context, args GeminiConnectProps) (*Gemini, error) {
	tracer := otel.Tracer("geminiapi/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()
	args.Logger.Logger(ctx).Info("[GeminiAPI] Connecting Gemini API client")

	maxWorkers := args.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 200
	}
	span.SetAttributes(attribute.Int("maxWorkers", maxWorkers))

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  args.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		span.RecordError(err)
		args.Logger.Logger(ctx).Error("[GeminiAPI] Could not create Gemini client", zap.Error(err))
		return nil, fmt.Errorf("could not create gemini client: %w", err)
	}

	return &Gemini{
		logger:    args.Logger,
		client:    client,
		semaphore: semaphore.NewWeighted(int64(maxWorkers)),
	}, nil
}

// PersonaModel binds a model name and sampling settings to one persona.
type PersonaModel struct {
	gemini      *Gemini
	model       string
	temperature float32
	jsonOutput  bool
}

// Persona returns a generator for one persona. jsonOutput asks the model for an
// application/json response, which is how the mentor and analyst personas are served.
func (g *Gemini) Persona(model string, temperature float64, jsonOutput bool) *PersonaModel {
	return &PersonaModel{
		gemini:      g,
		model:       model,
		temperature: float32(temperature),
		jsonOutput:  jsonOutput,
	}
}

// Generate sends the prompt once and returns the concatenated text parts.
func (p *PersonaModel) Generate(ctx context.Context, prompt interview.PersonaPrompt) (string, error) {
	tracer := otel.Tracer("geminiapi/Generate")
	ctx, span := tracer.Start(ctx, "Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("persona", string(prompt.Persona)),
		attribute.String("model", p.model),
		attribute.Int("prompt.length", len(prompt.Text)),
	)

	g := p.gemini
	if err := g.semaphore.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer g.semaphore.Release(1)

	g.logger.Logger(ctx).Info("[GeminiAPI] Generating content",
		zap.String("persona", string(prompt.Persona)),
		zap.String("model", p.model))

	resp, err := g.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt.Text), generateConfig(p.temperature, p.jsonOutput))
	if err != nil {
		span.RecordError(err)
		g.logger.Logger(ctx).Error("[GeminiAPI] Error generating LLM content", zap.Error(err))
		return "", err
	}

	text, err := responseText(resp)
	if err != nil {
		span.AddEvent("EmptyResponse")
		g.logger.Logger(ctx).Warn("[GeminiAPI] Received empty or invalid LLM response")
		return "", err
	}

	span.AddEvent("LLM generation successful")
	return text, nil
}

func generateConfig(temperature float32, jsonOutput bool) *genai.GenerateContentConfig {
	thinkingBudget := int32(0)

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
		SafetySettings: []*genai.SafetySetting{
			{
				Category:  genai.HarmCategoryHarassment,
				Threshold: genai.HarmBlockThresholdBlockNone,
			},
			{
				Category:  genai.HarmCategoryHateSpeech,
				Threshold: genai.HarmBlockThresholdBlockNone,
			},
			{
				Category:  genai.HarmCategorySexuallyExplicit,
				Threshold: genai.HarmBlockThresholdBlockNone,
			},
			{
				Category:  genai.HarmCategoryDangerousContent,
				Threshold: genai.HarmBlockThresholdBlockNone,
			},
		},
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}
	if jsonOutput {
		config.ResponseMIMEType = jsonMIMEType
	}
	return config
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", errEmptyResponse
	}
	return sb.String(), nil
}
