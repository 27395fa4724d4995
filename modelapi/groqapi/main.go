package groqapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mockinterview/httpmiddleware"
	"mockinterview/interview"
	"mockinterview/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	ASSISTANT = "assistant"
	SYSTEM    = "system"
	USER      = "user"
)

const (
	DefaultURL       = "https://api.groq.com/openai/v1/chat/completions"
	DefaultMaxTokens = 2048
)

var errNoChoices = errors.New("groq returned no choices")

type ChatCompletionInputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatRequestInput struct {
	Model          string                       `json:"model"`
	Messages       []ChatCompletionInputMessage `json:"messages"`
	MaxTokens      int                          `json:"max_tokens"`
	Temperature    float64                      `json:"temperature"`
	ResponseFormat *ResponseFormat              `json:"response_format,omitempty"`
}

type GroqResponse struct {
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type GroqConnectProps struct {
	Logger     *logger.LogMiddleware
	APIKey     string
	URL        string
	MaxWorkers int
}

type Groq struct {
	logger    *logger.LogMiddleware
	apiKey    string
	url       string
	semaphore *semaphore.Weighted
}

func Connect(ctx context.Context, args GroqConnectProps) *Groq {
	tracer := otel.Tracer("groqapi/Connect")
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

	span.SetAttributes(
		attribute.Int("maxWorkers", maxWorkers),
		attribute.String("api.url", url),
	)
	args.Logger.Logger(ctx).Info("[Groq-API] Connecting Groq API client", zap.String("url", url))

	return &Groq{
		logger:    args.Logger,
		apiKey:    args.APIKey,
		url:       url,
		semaphore: semaphore.NewWeighted(int64(maxWorkers)),
	}
}

// MakeAPIRequest sends one chat completion request. Failures are returned to the caller as-is.
func (o *Groq) MakeAPIRequest(ctx context.Context, input ChatRequestInput) (*GroqResponse, error) {
	tracer := otel.Tracer("groqapi/MakeAPIRequest")
	ctx, span := tracer.Start(ctx, "MakeAPIRequest")
	defer span.End()

	span.SetAttributes(
		attribute.String("api.url", o.url),
		attribute.Int("request.max_tokens", input.MaxTokens),
		attribute.String("request.model", input.Model),
	)

	jsonData, err := json.Marshal(input)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("could not generate request body: %w", err)
	}

	if err := o.semaphore.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer o.semaphore.Release(1)

	respBody, err := httpmiddleware.HttpRequest(ctx, httpmiddleware.HttpRequestStruct{
		Method: "POST",
		Url:    o.url,
		Body:   bytes.NewBuffer(jsonData),
		Headers: map[string]string{
			"authorization": "Bearer " + o.apiKey,
			"content-type":  "application/json",
		},
	})
	if err != nil {
		span.RecordError(err)
		o.logger.Logger(ctx).Error("[Groq-API] Could not make request to Groq", zap.Error(err))
		return nil, err
	}

	var messageResponse GroqResponse
	if err := json.Unmarshal(respBody, &messageResponse); err != nil {
		span.RecordError(err)
		o.logger.Logger(ctx).Error("[Groq-API] Could not parse Groq response",
			zap.Error(err),
			zap.Int("response.length", len(respBody)))
		return nil, fmt.Errorf("could not parse groq response: %w", err)
	}
	if len(messageResponse.Choices) == 0 {
		return nil, errNoChoices
	}

	span.AddEvent("Request successful")
	return &messageResponse, nil
}

// PersonaModel binds a Groq model and sampling settings to one persona.
type PersonaModel struct {
	groq        *Groq
	model       string
	temperature float64
	jsonOutput  bool
}

func (o *Groq) Persona(model string, temperature float64, jsonOutput bool) *PersonaModel {
	return &PersonaModel{groq: o, model: model, temperature: temperature, jsonOutput: jsonOutput}
}

func (p *PersonaModel) Generate(ctx context.Context, prompt interview.PersonaPrompt) (string, error) {
	tracer := otel.Tracer("groqapi/Generate")
	ctx, span := tracer.Start(ctx, "Generate")
	defer span.End()
	span.SetAttributes(attribute.String("persona", string(prompt.Persona)))

	input := ChatRequestInput{
		Model:       p.model,
		MaxTokens:   DefaultMaxTokens,
		Temperature: p.temperature,
		Messages: []ChatCompletionInputMessage{
			{Role: USER, Content: prompt.Text},
		},
	}
	if p.jsonOutput {
		input.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	resp, err := p.groq.MakeAPIRequest(ctx, input)
	if err != nil {
		return "", err
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("no response received")
	}
	return content, nil
}
