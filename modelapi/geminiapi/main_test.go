package geminiapi

import (
	"context"
	"os"
	"testing"
	"time"

	"mockinterview/interview"
	"mockinterview/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGenerateConfig(t *testing.T) {
	plain := generateConfig(0.7, false)
	require.NotNil(t, plain.Temperature)
	assert.InDelta(t, 0.7, *plain.Temperature, 0.0001)
	assert.Empty(t, plain.ResponseMIMEType)
	require.NotNil(t, plain.ThinkingConfig.ThinkingBudget)
	assert.Equal(t, int32(0), *plain.ThinkingConfig.ThinkingBudget)
	assert.Len(t, plain.SafetySettings, 4)

	structured := generateConfig(0.4, true)
	assert.Equal(t, "application/json", structured.ResponseMIMEType)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "생각 중", Thought: true},
				{Text: "데이터베이스 설계는 "},
				{Text: "어떻게 하셨나요?"},
			}},
		}},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "데이터베이스 설계는 어떻게 하셨나요?", text)
}

func TestResponseTextEmpty(t *testing.T) {
	cases := map[string]*genai.GenerateContentResponse{
		"nil":           nil,
		"no candidates": {},
		"nil content":   {Candidates: []*genai.Candidate{{}}},
		"no parts":      {Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := responseText(resp)
			assert.ErrorIs(t, err, errEmptyResponse)
		})
	}
}

func TestGenerateLive(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY environment variable not set, skipping test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gemini, err := Connect(ctx, GeminiConnectProps{Logger: logger.Nop(), APIKey: apiKey})
	require.NoError(t, err)

	mentor := gemini.Persona("gemini-2.5-flash", 0.4, true)
	raw, err := mentor.Generate(ctx, interview.Mentor("자기소개 해주세요.", "백엔드 개발자입니다.", nil))
	require.NoError(t, err)

	feedback := interview.NormalizeMentor(raw)
	assert.NotEmpty(t, feedback.Feedback)
	assert.NotEmpty(t, feedback.Tips)
}
