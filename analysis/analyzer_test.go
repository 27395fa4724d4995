package analysis

import (
	"context"
	"errors"
	"testing"

	"mockinterview/interview"
	"mockinterview/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	project    *interview.Project
	job        *Job
	projectErr error
	jobErr     error
	jobDomain  string
}

func (f *fakeRepository) LatestProject(ctx context.Context, userID int64) (*interview.Project, error) {
	return f.project, f.projectErr
}

func (f *fakeRepository) JobForDomain(ctx context.Context, domain string) (*Job, error) {
	f.jobDomain = domain
	return f.job, f.jobErr
}

type fakeGenerator struct {
	reply  string
	err    error
	prompt interview.PersonaPrompt
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt interview.PersonaPrompt) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.reply, f.err
}

var catalog = []Program{
	{Name: "클라우드 부트캠프", Domain: "백엔드", Skills: "AWS, Kubernetes", Link: "https://example.com/cloud"},
	{Name: "데이터 엔지니어링", Domain: "데이터", Skills: "Spark, Airflow"},
}

func newTestAnalyzer(repo *fakeRepository, gen *fakeGenerator) *Analyzer {
	return NewAnalyzer(AnalyzerProps{
		Logger:     logger.Nop(),
		Repository: repo,
		Generator:  gen,
		Programs:   catalog,
	})
}

func defaultRepo() *fakeRepository {
	return &fakeRepository{
		project: &interview.Project{ID: 3, UserID: 1, Title: "쇼핑몰 백엔드", SkillsUsed: "Spring Boot"},
		job:     &Job{ID: 9, Company: "토스", Title: "서버 개발자", Description: "결제 시스템", Domain: "백엔드", SkillsRequired: "Kotlin, AWS"},
	}
}

var analysisUser = interview.UserProfile{ID: 1, Name: "김철수", Domain: "백엔드", Skills: "Java"}

func TestAnalyze(t *testing.T) {
	repo := defaultRepo()
	gen := &fakeGenerator{reply: "```json\n" + `{
		"skill_match": "Java 경험은 있으나 Kotlin 경험 부족",
		"fit_evaluation": "결제 도메인 경험이 부족합니다",
		"missing_competencies": ["Kotlin", "AWS"],
		"overall_score": 62,
		"recommended_programs": [
			{"program_name": "클라우드 부트캠프", "recommendation_reason": "AWS 역량 보완"},
			{"program_name": "없는 프로그램", "recommendation_reason": "환각"}
		]
	}` + "\n```"}

	result, err := newTestAnalyzer(repo, gen).Analyze(context.Background(), analysisUser)
	require.NoError(t, err)

	assert.Equal(t, "백엔드", repo.jobDomain)
	assert.Equal(t, interview.PersonaAnalyst, gen.prompt.Persona)
	assert.Contains(t, gen.prompt.Text, "결제 시스템")
	assert.Contains(t, gen.prompt.Text, "클라우드 부트캠프")

	assert.Equal(t, 62, result.OverallScore)
	assert.Equal(t, []string{"Kotlin", "AWS"}, result.MissingCompetencies)
	require.Len(t, result.RecommendedPrograms, 1)
	assert.Equal(t, catalog[0], result.RecommendedPrograms[0].Program)
	assert.Equal(t, "AWS 역량 보완", result.RecommendedPrograms[0].Reason)
	assert.Equal(t, "쇼핑몰 백엔드", result.AnalyzedProject)
	assert.Equal(t, "토스 - 서버 개발자", result.AnalyzedJob)
}

func TestAnalyzeWithoutDomain(t *testing.T) {
	gen := &fakeGenerator{}
	user := analysisUser
	user.Domain = "  "

	_, err := newTestAnalyzer(defaultRepo(), gen).Analyze(context.Background(), user)
	assert.ErrorIs(t, err, ErrNoDomain)
	assert.Equal(t, 0, gen.calls)
}

func TestAnalyzeWithoutProject(t *testing.T) {
	repo := defaultRepo()
	repo.project = nil
	gen := &fakeGenerator{}

	_, err := newTestAnalyzer(repo, gen).Analyze(context.Background(), analysisUser)
	assert.ErrorIs(t, err, ErrNoProject)
	assert.Equal(t, 0, gen.calls)
}

func TestAnalyzeWithoutJob(t *testing.T) {
	repo := defaultRepo()
	repo.job = nil

	_, err := newTestAnalyzer(repo, &fakeGenerator{}).Analyze(context.Background(), analysisUser)

	var notFound *JobNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "백엔드", notFound.Domain)
}

func TestAnalyzeRepositoryError(t *testing.T) {
	repo := defaultRepo()
	repo.jobErr = errors.New("db down")

	_, err := newTestAnalyzer(repo, &fakeGenerator{}).Analyze(context.Background(), analysisUser)
	require.Error(t, err)
	var failed *FailedError
	assert.False(t, errors.As(err, &failed))
}

func TestAnalyzeGenerationError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota")}

	_, err := newTestAnalyzer(defaultRepo(), gen).Analyze(context.Background(), analysisUser)

	var failed *FailedError
	require.ErrorAs(t, err, &failed)
	assert.EqualError(t, failed.Err, "quota")
}

func TestAnalyzeRejectsMalformedOutput(t *testing.T) {
	replies := map[string]string{
		"not json":        "죄송합니다. 분석할 수 없습니다.",
		"missing score":   `{"skill_match":"a","fit_evaluation":"b","missing_competencies":[]}`,
		"score too large": `{"skill_match":"a","fit_evaluation":"b","missing_competencies":[],"overall_score":150}`,
		"score is string": `{"skill_match":"a","fit_evaluation":"b","missing_competencies":[],"overall_score":"85"}`,
	}
	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			_, err := newTestAnalyzer(defaultRepo(), &fakeGenerator{reply: reply}).Analyze(context.Background(), analysisUser)
			var failed *FailedError
			assert.ErrorAs(t, err, &failed)
		})
	}
}

func TestAnalyzeSchemaViolationsAreListed(t *testing.T) {
	err := validateResult(`{"skill_match":"a","fit_evaluation":"b","missing_competencies":[],"overall_score":150}`)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Errors, 1)
	assert.Equal(t, "overall_score", validationErr.Errors[0].Field)
}

func TestAnalyzeWithoutRecommendations(t *testing.T) {
	gen := &fakeGenerator{reply: `{"skill_match":"a","fit_evaluation":"b","missing_competencies":null,"overall_score":90}`}

	_, err := newTestAnalyzer(defaultRepo(), gen).Analyze(context.Background(), analysisUser)
	// null is not an array
	var failed *FailedError
	require.ErrorAs(t, err, &failed)

	gen.reply = `{"skill_match":"a","fit_evaluation":"b","missing_competencies":[],"overall_score":90}`
	result, err := newTestAnalyzer(defaultRepo(), gen).Analyze(context.Background(), analysisUser)
	require.NoError(t, err)
	assert.Empty(t, result.RecommendedPrograms)
	assert.NotNil(t, result.RecommendedPrograms)
	assert.Equal(t, []string{}, result.MissingCompetencies)
}

func TestAnalyzeAcceptsWholeFloatScore(t *testing.T) {
	gen := &fakeGenerator{reply: `{"skill_match":"a","fit_evaluation":"b","missing_competencies":[],"overall_score":85.0}`}

	result, err := newTestAnalyzer(defaultRepo(), gen).Analyze(context.Background(), analysisUser)
	require.NoError(t, err)
	assert.Equal(t, 85, result.OverallScore)

	gen.reply = `{"skill_match":"a","fit_evaluation":"b","missing_competencies":[],"overall_score":85.5}`
	_, err = newTestAnalyzer(defaultRepo(), gen).Analyze(context.Background(), analysisUser)
	var failed *FailedError
	require.ErrorAs(t, err, &failed)
}
