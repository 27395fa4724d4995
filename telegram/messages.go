package telegram

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"mockinterview/database/postgres"
	"mockinterview/httpmiddleware"
	"mockinterview/interview"
)

const (
	maxAnswerLength = 2000

	msgHelp = "모의 면접 봇입니다.\n" +
		"/start - 최근 프로젝트로 면접 시작\n" +
		"/mentor - 마지막 답변에 대한 멘토 피드백\n" +
		"/reset - 진행 중인 면접 종료\n" +
		"답변은 텍스트나 음성 메시지로 보내주세요."
	msgReset            = "면접을 종료했습니다. /start 로 다시 시작할 수 있습니다."
	msgNotStarted       = "진행 중인 면접이 없습니다. /start 로 면접을 시작해주세요."
	msgNothingToReview  = "피드백을 받을 답변이 아직 없습니다. 먼저 질문에 답변해주세요."
	msgVoiceUnsupported = "음성 답변은 지원하지 않습니다. 텍스트로 답변해주세요."
	msgEmptyTranscript  = "음성을 인식하지 못했습니다. 다시 말씀해 주세요."
	msgNotLinked        = "연결된 계정이 없습니다. 웹에서 텔레그램 계정을 먼저 연동해주세요."
	msgNoProject        = "등록된 프로젝트가 없습니다. 먼저 프로젝트를 생성해주세요."
	msgGeneration       = "질문을 생성하지 못했습니다. 잠시 후 다시 시도해주세요."
	msgSynthesis        = "음성을 생성하지 못했습니다. 잠시 후 다시 시도해주세요."
	msgTranscription    = "음성 인식에 실패했습니다. 잠시 후 다시 시도해주세요."
	msgEmptyAnswer      = "답변이 비어 있습니다."
	msgInternal         = "오류가 발생했습니다. 잠시 후 다시 시도해주세요."
)

var (
	errEmptyAnswer   = errors.New("answer is empty")
	errAnswerTooLong = errors.New("answer is too long")
)

type transcriptionError struct {
	err error
}

func (e *transcriptionError) Error() string { return "transcription failed: " + e.err.Error() }
func (e *transcriptionError) Unwrap() error { return e.err }

func validateAnswer(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return errEmptyAnswer
	}
	if utf8.RuneCountInString(answer) > maxAnswerLength {
		return errAnswerTooLong
	}
	return nil
}

// userMessage maps a failure to the text shown in the chat.
func userMessage(err error) string {
	var upstream *interview.UpstreamError
	var transcription *transcriptionError

	switch {
	case errors.Is(err, postgres.ErrUserNotFound):
		return msgNotLinked
	case errors.Is(err, interview.ErrNoProject):
		return msgNoProject
	case errors.Is(err, errEmptyAnswer):
		return msgEmptyAnswer
	case errors.Is(err, errAnswerTooLong):
		return fmt.Sprintf("답변은 최대 %d자까지 입력할 수 있습니다.", maxAnswerLength)
	case errors.As(err, &upstream):
		if upstream.Kind == interview.UpstreamSynthesis {
			return msgSynthesis
		}
		return msgGeneration
	case errors.As(err, &transcription):
		return msgTranscription
	default:
		return msgInternal
	}
}

// decodeAudio turns a base64 audio data URI back into MP3 bytes.
func decodeAudio(dataURI string) ([]byte, error) {
	_, payload, found := strings.Cut(dataURI, ";base64,")
	if !found {
		return nil, errors.New("audio is not a base64 data URI")
	}
	audio, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("could not decode audio: %w", err)
	}
	return audio, nil
}

func formatFeedback(feedback *interview.MentorFeedback) string {
	var sb strings.Builder
	sb.WriteString("📝 피드백\n")
	sb.WriteString(feedback.Feedback)
	if len(feedback.Tips) > 0 {
		sb.WriteString("\n\n💡 개선 팁\n")
		for i, tip := range feedback.Tips {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, tip)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (t *Telegram) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := t.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, &transcriptionError{err: fmt.Errorf("could not resolve voice file: %w", err)}
	}

	audio, err := httpmiddleware.HttpRequest(ctx, httpmiddleware.HttpRequestStruct{
		Method: http.MethodGet,
		Url:    url,
	})
	if err != nil {
		return nil, &transcriptionError{err: fmt.Errorf("could not download voice file: %w", err)}
	}
	return audio, nil
}
