package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"mockinterview/analysis"
	"mockinterview/database/postgres"
	"mockinterview/interview"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	msgNoProject         = "사용자에게 프로젝트가 없습니다. 먼저 프로젝트를 생성해주세요."
	msgProjectNotFound   = "프로젝트를 찾을 수 없습니다."
	msgUnauthorized      = "인증 정보가 유효하지 않습니다."
	msgNoDomain          = "사용자의 도메인이 설정되지 않았습니다. 먼저 설문조사를 완료해주세요."
	msgNoAnalysisProject = "분석할 프로젝트가 없습니다. 먼저 프로젝트를 등록해주세요."
	msgInvalidBody       = "요청 본문을 해석할 수 없습니다."
	msgInternal          = "서버 내부 오류가 발생했습니다."
)

var errEmptyAudio = errors.New("audio body is empty")

// errProjectNotFound marks a project that disappeared between /interview/start and a later turn.
var errProjectNotFound = errors.New("interview project not found")

// transcriptionError marks a failure of the speech-to-text backend.
type transcriptionError struct {
	err error
}

func (e *transcriptionError) Error() string { return "transcription failed: " + e.err.Error() }
func (e *transcriptionError) Unwrap() error { return e.err }

// decodeError marks a body that is not valid JSON for the endpoint.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "invalid request body: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

type errorResponse struct {
	Detail any `json:"detail"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HTTPStatus maps an error to the status code and client-facing detail.
func HTTPStatus(err error) (int, any) {
	var upstream *interview.UpstreamError
	var validationErrs validator.ValidationErrors
	var jobNotFound *analysis.JobNotFoundError
	var analysisFailed *analysis.FailedError
	var transcription *transcriptionError
	var decode *decodeError

	switch {
	case errors.Is(err, errMissingIdentity), errors.Is(err, postgres.ErrUserNotFound):
		return http.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, errProjectNotFound):
		return http.StatusBadRequest, msgProjectNotFound
	case errors.Is(err, interview.ErrNoProject):
		return http.StatusBadRequest, msgNoProject
	case errors.As(err, &upstream):
		switch upstream.Kind {
		case interview.UpstreamSynthesis:
			return http.StatusBadGateway, "TTS 서비스 오류: " + upstream.Err.Error()
		default:
			return http.StatusBadGateway, "LLM 서비스 오류: " + upstream.Err.Error()
		}
	case errors.As(err, &validationErrs):
		return http.StatusUnprocessableEntity, validationDetail(validationErrs)
	case errors.Is(err, errEmptyAudio):
		return http.StatusUnprocessableEntity, "음성 데이터가 비어 있습니다."
	case errors.As(err, &decode):
		return http.StatusUnprocessableEntity, msgInvalidBody
	case errors.As(err, &transcription):
		return http.StatusBadGateway, "STT 서비스 오류: " + transcription.err.Error()
	case errors.Is(err, analysis.ErrNoDomain):
		return http.StatusBadRequest, msgNoDomain
	case errors.Is(err, analysis.ErrNoProject):
		return http.StatusBadRequest, msgNoAnalysisProject
	case errors.As(err, &jobNotFound):
		return http.StatusNotFound, fmt.Sprintf("%s 도메인에 매칭되는 채용공고를 찾을 수 없습니다.", jobNotFound.Domain)
	case errors.As(err, &analysisFailed):
		return http.StatusBadGateway, "포트폴리오 분석 중 오류가 발생했습니다: " + analysisFailed.Err.Error()
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func validationDetail(errs validator.ValidationErrors) []fieldError {
	details := make([]fieldError, 0, len(errs))
	for _, e := range errs {
		details = append(details, fieldError{
			Field:   jsonFieldPath(e.Namespace()),
			Message: validationMessage(e),
		})
	}
	return details
}

// jsonFieldPath drops the struct name from a validator namespace.
func jsonFieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "필수 항목입니다."
	case "min":
		return fmt.Sprintf("최소 %s자 이상이어야 합니다.", e.Param())
	case "max":
		return fmt.Sprintf("최대 %s자까지 입력할 수 있습니다.", e.Param())
	case "oneof":
		return fmt.Sprintf("다음 중 하나여야 합니다: %s", e.Param())
	default:
		return fmt.Sprintf("%s 검증에 실패했습니다.", e.Tag())
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := HTTPStatus(err)

	log := s.logger.Logger(r.Context()).With(
		zap.Error(err),
		zap.Int("status", status),
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID(r.Context())),
	)
	if status >= http.StatusInternalServerError {
		log.Error("[API] Request failed")
	} else {
		log.Warn("[API] Request rejected")
	}

	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
