package interview

import (
	"context"
	"fmt"

	"mockinterview/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const audioDataURIPrefix = "data:audio/mp3;base64,"

// Generator produces raw model text for one persona prompt.
type Generator interface {
	Generate(ctx context.Context, prompt PersonaPrompt) (string, error)
}

// Speaker converts text to base64 audio. An empty voice selects the default voice.
type Speaker interface {
	Synthesize(ctx context.Context, text, voice string, rate float64) (string, error)
}

// ProjectResolver finds the user's most recent project. It returns nil, nil when there is none.
type ProjectResolver interface {
	LatestProject(ctx context.Context, userID int64) (*Project, error)
}

type SessionProps struct {
	Logger      *logger.LogMiddleware
	Projects    ProjectResolver
	Interviewer Generator
	Mentor      Generator
	Speech      Speaker
}

// Session sequences the interview flows. It holds no per-request state and is safe for
// concurrent use.
type Session struct {
	logger      *logger.LogMiddleware
	projects    ProjectResolver
	interviewer Generator
	mentor      Generator
	speech      Speaker
}

func NewSession(args SessionProps) *Session {
	return &Session{
		logger:      args.Logger,
		projects:    args.Projects,
		interviewer: args.Interviewer,
		mentor:      args.Mentor,
		speech:      args.Speech,
	}
}

// Start greets the user and introduces their most recent project.
func (s *Session) Start(ctx context.Context, user UserProfile) (*StartResult, error) {
	tracer := otel.Tracer("interview/Start")
	ctx, span := tracer.Start(ctx, "Start")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", user.ID))

	project, err := s.latestProject(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	greeting := Greeting(user.Name, user.Domain, project.Title)

	audio, err := s.speak(ctx, greeting)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.Logger(ctx).Info("[Interview] Session started",
		zap.Int64("user_id", user.ID),
		zap.Int64("project_id", project.ID))

	return &StartResult{
		Message: greeting,
		Audio:   audio,
		Project: ProjectSummary{
			ID:         project.ID,
			Title:      project.Title,
			SkillsUsed: project.SkillsUsed,
		},
	}, nil
}

// InterviewerTurn asks the next follow-up question for answer, spoken aloud.
func (s *Session) InterviewerTurn(ctx context.Context, user UserProfile, answer string, history []Turn) (*InterviewerReply, error) {
	tracer := otel.Tracer("interview/InterviewerTurn")
	ctx, span := tracer.Start(ctx, "InterviewerTurn")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("user.id", user.ID),
		attribute.Int("history.length", len(history)),
	)

	project, err := s.latestProject(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	prompt := Interviewer(answer, project.Context(), history)

	raw, err := s.interviewer.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		s.logger.Logger(ctx).Error("[Interview] Interviewer generation failed", zap.Error(err))
		return nil, generationFailure(err)
	}

	question, err := NormalizeQuestion(raw)
	if err != nil {
		span.RecordError(err)
		return nil, generationFailure(err)
	}

	audio, err := s.speak(ctx, question)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &InterviewerReply{Message: question, Audio: audio}, nil
}

// MentorTurn returns coaching feedback on one question/answer pair. It has no audio stage.
func (s *Session) MentorTurn(ctx context.Context, question, answer string, history []Turn) (*MentorFeedback, error) {
	tracer := otel.Tracer("interview/MentorTurn")
	ctx, span := tracer.Start(ctx, "MentorTurn")
	defer span.End()
	span.SetAttributes(attribute.Int("history.length", len(history)))

	prompt := Mentor(question, answer, history)

	raw, err := s.mentor.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		s.logger.Logger(ctx).Error("[Interview] Mentor generation failed", zap.Error(err))
		return nil, generationFailure(err)
	}

	feedback := NormalizeMentor(raw)
	if feedback.Kind == FeedbackFallback {
		span.AddEvent("MentorFallback")
		s.logger.Logger(ctx).Warn("[Interview] Mentor output was not valid JSON, using fallback",
			zap.Int("raw.length", len(raw)))
	}
	span.SetAttributes(attribute.String("mentor.kind", feedback.Kind.String()))

	return &feedback, nil
}

func (s *Session) latestProject(ctx context.Context, userID int64) (*Project, error) {
	project, err := s.projects.LatestProject(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not load latest project: %w", err)
	}
	if project == nil {
		return nil, ErrNoProject
	}
	return project, nil
}

func (s *Session) speak(ctx context.Context, text string) (string, error) {
	audio, err := s.speech.Synthesize(ctx, text, "", 0)
	if err != nil {
		s.logger.Logger(ctx).Error("[Interview] Speech synthesis failed", zap.Error(err))
		return "", synthesisFailure(err)
	}
	return audioDataURIPrefix + audio, nil
}
