// Package api exposes the interview pipeline over HTTP.
package api

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"mockinterview/analysis"
	"mockinterview/interview"
	"mockinterview/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxAudioBodySize = 10 << 20 // 10MB

// UserStore resolves the authenticated user id to a profile.
type UserStore interface {
	UserProfile(ctx context.Context, userID int64) (*interview.UserProfile, error)
}

// Sessions runs the interview flows.
type Sessions interface {
	Start(ctx context.Context, user interview.UserProfile) (*interview.StartResult, error)
	InterviewerTurn(ctx context.Context, user interview.UserProfile, answer string, history []interview.Turn) (*interview.InterviewerReply, error)
	MentorTurn(ctx context.Context, question, answer string, history []interview.Turn) (*interview.MentorFeedback, error)
}

type PortfolioAnalyzer interface {
	Analyze(ctx context.Context, user interview.UserProfile) (*analysis.Result, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type ServerProps struct {
	Logger   *logger.LogMiddleware
	Users    UserStore
	Sessions Sessions
	Analyzer PortfolioAnalyzer
	// Transcriber is optional; without it /interview/transcribe is not mounted.
	Transcriber Transcriber
}

type Server struct {
	logger      *logger.LogMiddleware
	users       UserStore
	sessions    Sessions
	analyzer    PortfolioAnalyzer
	transcriber Transcriber
	validator   *validator.Validate
}

func NewServer(args ServerProps) *Server {
	return &Server{
		logger:      args.Logger,
		users:       args.Users,
		sessions:    args.Sessions,
		analyzer:    args.Analyzer,
		transcriber: args.Transcriber,
		validator:   newValidator(),
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Handler returns the traced router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(requestLoggerMiddleware(s.logger))

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.userMiddleware)

		r.Route("/interview", func(r chi.Router) {
			r.Post("/start", s.handleStart)
			r.Post("/chat/interviewer", s.handleInterviewer)
			r.Post("/chat/mentor", s.handleMentor)
			if s.transcriber != nil {
				r.Post("/transcribe", s.handleTranscribe)
			}
		})

		if s.analyzer != nil {
			r.Post("/analysis/portfolio", s.handlePortfolio)
		}
	})

	return otelhttp.NewHandler(r, "mockinterview")
}
