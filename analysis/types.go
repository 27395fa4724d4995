// Package analysis scores how well a user's latest project fits a job opening in their domain.
package analysis

import (
	"errors"
	"fmt"
)

// Job is a job opening used as the comparison target.
type Job struct {
	ID             int64
	Company        string
	Title          string
	Description    string
	Domain         string
	SkillsRequired string
}

// Program is one entry of the training program catalog.
type Program struct {
	Name      string `yaml:"program_name" json:"program_name"`
	Domain    string `yaml:"domain" json:"domain"`
	StartDate string `yaml:"start_date" json:"start_date"`
	DueDate   string `yaml:"due_date" json:"due_date"`
	Skills    string `yaml:"program_skills" json:"program_skills"`
	Content   string `yaml:"program_content" json:"program_content"`
	Link      string `yaml:"program_link" json:"program_link"`
	Category  string `yaml:"program_category" json:"program_category"`
}

type RecommendedProgram struct {
	Program
	Reason string `json:"recommendation_reason"`
}

type Result struct {
	SkillMatch          string               `json:"skill_match"`
	FitEvaluation       string               `json:"fit_evaluation"`
	MissingCompetencies []string             `json:"missing_competencies"`
	OverallScore        int                  `json:"overall_score"`
	RecommendedPrograms []RecommendedProgram `json:"recommended_programs"`
	AnalyzedProject     string               `json:"analyzed_project,omitempty"`
	AnalyzedJob         string               `json:"analyzed_job,omitempty"`
}

var (
	ErrNoDomain  = errors.New("user has no domain")
	ErrNoProject = errors.New("user has no project to analyze")
)

// JobNotFoundError is returned when no opening matches the user's domain.
type JobNotFoundError struct {
	Domain string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("no job found for domain %q", e.Domain)
}

// FailedError wraps a generation failure or an unusable model response.
type FailedError struct {
	Err error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("portfolio analysis failed: %v", e.Err)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}
