package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mockinterview/interview"
)

const maxRequestBodySize = 1 << 20 // 1MB

type interviewerRequest struct {
	UserAnswer          string           `json:"user_answer" validate:"required,min=1,max=2000"`
	ConversationHistory []interview.Turn `json:"conversation_history" validate:"dive"`
}

type mentorRequest struct {
	InterviewerQuestion string           `json:"interviewer_question" validate:"required,min=1"`
	UserAnswer          string           `json:"user_answer" validate:"required,min=1,max=2000"`
	ConversationHistory []interview.Turn `json:"conversation_history" validate:"dive"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	result, err := s.sessions.Start(r.Context(), *user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleInterviewer(w http.ResponseWriter, r *http.Request) {
	var req interviewerRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user := currentUser(r.Context())
	reply, err := s.sessions.InterviewerTurn(r.Context(), *user, req.UserAnswer, req.ConversationHistory)
	if errors.Is(err, interview.ErrNoProject) {
		err = fmt.Errorf("%w: %w", errProjectNotFound, err)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleMentor(w http.ResponseWriter, r *http.Request) {
	var req mentorRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	feedback, err := s.sessions.MentorTurn(r.Context(), req.InterviewerQuestion, req.UserAnswer, req.ConversationHistory)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feedback)
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBodySize)
	defer r.Body.Close()

	audio, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, &decodeError{err: err})
		return
	}
	if len(audio) == 0 {
		s.writeError(w, r, errEmptyAudio)
		return
	}

	text, err := s.transcriber.Transcribe(r.Context(), audio)
	if err != nil {
		s.writeError(w, r, &transcriptionError{err: err})
		return
	}
	writeJSON(w, http.StatusOK, transcribeResponse{Text: text})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	result, err := s.analyzer.Analyze(r.Context(), *user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &decodeError{err: err}
	}
	if err := s.validator.Struct(dst); err != nil {
		return fmt.Errorf("request validation: %w", err)
	}
	return nil
}
