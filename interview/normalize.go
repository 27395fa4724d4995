package interview

import (
	"encoding/json"
	"errors"
	"strings"
)

const missingFeedback = "피드백을 생성할 수 없습니다."

// FallbackTips is substituted whenever mentor output has no usable tips.
var FallbackTips = []string{
	"답변을 더 구체적으로 말씀해 주세요.",
	"기술적 용어를 정확히 사용하세요.",
	"경험을 구조화해서 설명하세요 (STAR 기법).",
}

var errEmptyQuestion = errors.New("model returned an empty question")

// NormalizeQuestion trims interviewer output. The model is trusted to return a single question.
func NormalizeQuestion(raw string) (string, error) {
	question := strings.TrimSpace(raw)
	if question == "" {
		return "", errEmptyQuestion
	}
	return question, nil
}

type mentorPayload struct {
	Feedback *string  `json:"feedback"`
	Tips     []string `json:"tips"`
}

// NormalizeMentor decodes mentor output. It never fails: undecodable output becomes a
// FeedbackFallback carrying the raw text.
func NormalizeMentor(raw string) MentorFeedback {
	trimmed := strings.TrimSpace(raw)

	var payload mentorPayload
	if err := json.Unmarshal([]byte(StripCodeFence(trimmed)), &payload); err != nil {
		return MentorFeedback{
			Kind:     FeedbackFallback,
			Feedback: orDefault(trimmed, missingFeedback),
			Tips:     fallbackTips(),
		}
	}

	feedback := missingFeedback
	if payload.Feedback != nil && strings.TrimSpace(*payload.Feedback) != "" {
		feedback = *payload.Feedback
	}
	tips := payload.Tips
	if len(tips) == 0 {
		tips = fallbackTips()
	}
	return MentorFeedback{Kind: FeedbackParsed, Feedback: feedback, Tips: tips}
}

// StripCodeFence removes a leading ``` fence (with or without a language tag) and a trailing one.
func StripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		tag := text[:idx]
		if !strings.ContainsAny(tag, " {[") {
			text = text[idx+1:]
		}
	} else {
		text = strings.TrimLeft(text, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func fallbackTips() []string {
	tips := make([]string, len(FallbackTips))
	copy(tips, FallbackTips)
	return tips
}
