package groqapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"mockinterview/httpmiddleware"
	"mockinterview/interview"
	"mockinterview/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroq(t *testing.T, handler http.HandlerFunc) *Groq {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return Connect(context.Background(), GroqConnectProps{
		Logger: logger.Nop(),
		APIKey: "test-key",
		URL:    server.URL,
	})
}

func TestPersonaGenerate(t *testing.T) {
	groq := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var input ChatRequestInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, "moonshotai/kimi-k2-instruct", input.Model)
		assert.InDelta(t, 0.7, input.Temperature, 0.0001)
		assert.Nil(t, input.ResponseFormat)
		require.Len(t, input.Messages, 1)
		assert.Equal(t, USER, input.Messages[0].Role)
		assert.Contains(t, input.Messages[0].Content, "지원자의 답변: Redis를 썼습니다.")

		json.NewEncoder(w).Encode(GroqResponse{Choices: []Choice{{
			Message: Message{Role: ASSISTANT, Content: "캐시 무효화는 어떻게 하셨나요?"},
		}}})
	})

	interviewer := groq.Persona("moonshotai/kimi-k2-instruct", 0.7, false)
	prompt := interview.Interviewer("Redis를 썼습니다.", interview.ProjectContext{Title: "채팅"}, nil)

	out, err := interviewer.Generate(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(t, "캐시 무효화는 어떻게 하셨나요?", out)
}

func TestPersonaGenerateJSONMode(t *testing.T) {
	groq := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		var input ChatRequestInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		require.NotNil(t, input.ResponseFormat)
		assert.Equal(t, "json_object", input.ResponseFormat.Type)

		json.NewEncoder(w).Encode(GroqResponse{Choices: []Choice{{
			Message: Message{Content: `{"feedback":"F","tips":["A"]}`},
		}}})
	})

	out, err := groq.Persona("m", 0.4, true).Generate(context.Background(), interview.Mentor("Q", "A", nil))
	require.NoError(t, err)
	assert.Equal(t, `{"feedback":"F","tips":["A"]}`, out)
}

func TestGenerateDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	groq := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := groq.Persona("m", 0.7, false).Generate(context.Background(), interview.PersonaPrompt{Text: "hi"})

	var statusErr *httpmiddleware.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateNoChoices(t *testing.T) {
	groq := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model":"m","choices":[]}`))
	})

	_, err := groq.Persona("m", 0.7, false).Generate(context.Background(), interview.PersonaPrompt{Text: "hi"})
	assert.ErrorIs(t, err, errNoChoices)
}

func TestGenerateUnparseableBody(t *testing.T) {
	groq := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway</html>`))
	})

	_, err := groq.Persona("m", 0.7, false).Generate(context.Background(), interview.PersonaPrompt{Text: "hi"})
	assert.Error(t, err)
}

func TestGenerateLive(t *testing.T) {
	apiKey := os.Getenv("GROQ_SECRET_KEY")
	if apiKey == "" {
		t.Skip("GROQ_SECRET_KEY environment variable not set, skipping test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	groq := Connect(ctx, GroqConnectProps{Logger: logger.Nop(), APIKey: apiKey})
	prompt := interview.Interviewer("저는 Spring Boot로 REST API를 만들었습니다.", interview.ProjectContext{Title: "쇼핑몰"}, nil)

	response, err := groq.Persona("moonshotai/kimi-k2-instruct", 0.7, false).Generate(ctx, prompt)
	require.NoError(t, err)
	assert.NotEmpty(t, response)
}
