package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"mockinterview/interview"
	"mockinterview/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Repository supplies the records an analysis compares. Both lookups return nil, nil when
// nothing matches.
type Repository interface {
	LatestProject(ctx context.Context, userID int64) (*interview.Project, error)
	JobForDomain(ctx context.Context, domain string) (*Job, error)
}

type AnalyzerProps struct {
	Logger     *logger.LogMiddleware
	Repository Repository
	Generator  interview.Generator
	Programs   []Program
}

type Analyzer struct {
	logger     *logger.LogMiddleware
	repository Repository
	generator  interview.Generator
	programs   []Program
}

func NewAnalyzer(args AnalyzerProps) *Analyzer {
	return &Analyzer{
		logger:     args.Logger,
		repository: args.Repository,
		generator:  args.Generator,
		programs:   args.Programs,
	}
}

// Analyze compares the user's most recent project against the first job in their domain.
func (a *Analyzer) Analyze(ctx context.Context, user interview.UserProfile) (*Result, error) {
	tracer := otel.Tracer("analysis/Analyze")
	ctx, span := tracer.Start(ctx, "Analyze")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", user.ID))

	if strings.TrimSpace(user.Domain) == "" {
		return nil, ErrNoDomain
	}

	project, err := a.repository.LatestProject(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("could not load latest project: %w", err)
	}
	if project == nil {
		return nil, ErrNoProject
	}

	job, err := a.repository.JobForDomain(ctx, user.Domain)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("could not load job for domain: %w", err)
	}
	if job == nil {
		return nil, &JobNotFoundError{Domain: user.Domain}
	}

	span.SetAttributes(
		attribute.Int64("project.id", project.ID),
		attribute.Int64("job.id", job.ID),
	)

	raw, err := a.generator.Generate(ctx, PortfolioAnalysis(user, project.Context(), *job, a.programs))
	if err != nil {
		span.RecordError(err)
		a.logger.Logger(ctx).Error("[Analysis] Generation failed", zap.Error(err))
		return nil, &FailedError{Err: err}
	}

	result, err := a.decode(raw)
	if err != nil {
		span.RecordError(err)
		a.logger.Logger(ctx).Error("[Analysis] Could not use model output", zap.Error(err), zap.Int("raw.length", len(raw)))
		return nil, &FailedError{Err: err}
	}

	result.AnalyzedProject = project.Title
	result.AnalyzedJob = job.Company + " - " + job.Title

	a.logger.Logger(ctx).Info("[Analysis] Portfolio analyzed",
		zap.Int64("user_id", user.ID),
		zap.Int("overall_score", result.OverallScore),
		zap.Int("recommended_programs", len(result.RecommendedPrograms)))

	return result, nil
}

type rawRecommendation struct {
	Name   string `json:"program_name"`
	Reason string `json:"recommendation_reason"`
}

type rawResult struct {
	SkillMatch          string              `json:"skill_match"`
	FitEvaluation       string              `json:"fit_evaluation"`
	MissingCompetencies []string            `json:"missing_competencies"`
	OverallScore        float64             `json:"overall_score"` // schema allows 85.0
	RecommendedPrograms []rawRecommendation `json:"recommended_programs"`
}

func (a *Analyzer) decode(raw string) (*Result, error) {
	body := interview.StripCodeFence(strings.TrimSpace(raw))
	if err := validateResult(body); err != nil {
		return nil, err
	}

	var parsed rawResult
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("could not decode analysis output: %w", err)
	}

	result := &Result{
		SkillMatch:          parsed.SkillMatch,
		FitEvaluation:       parsed.FitEvaluation,
		MissingCompetencies: parsed.MissingCompetencies,
		OverallScore:        int(math.Round(parsed.OverallScore)),
		RecommendedPrograms: []RecommendedProgram{},
	}
	if result.MissingCompetencies == nil {
		result.MissingCompetencies = []string{}
	}

	// Recommendations are resolved against the catalog; unknown names are dropped.
	for _, rec := range parsed.RecommendedPrograms {
		if program, ok := a.program(rec.Name); ok {
			result.RecommendedPrograms = append(result.RecommendedPrograms, RecommendedProgram{Program: program, Reason: rec.Reason})
		}
	}
	return result, nil
}

func (a *Analyzer) program(name string) (Program, bool) {
	for _, p := range a.programs {
		if p.Name == name {
			return p, true
		}
	}
	return Program{}, false
}
