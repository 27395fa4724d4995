// Package interview runs the mock-interview flows: opening greeting, interviewer follow-up
// questions and mentor feedback.
package interview

import "time"

// Role tags the speaker of a Turn.
type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleUser        Role = "user"
	RoleMentor      Role = "mentor"
)

// Turn is one utterance of the conversation. Callers own the slice; the pipeline only reads it.
type Turn struct {
	Role    Role   `json:"role" validate:"required,oneof=interviewer user mentor"`
	Content string `json:"content"`
}

// UserProfile is the subset of the user record the pipeline needs.
type UserProfile struct {
	ID          int64
	Name        string
	Domain      string
	SurveyText  string
	SelfSummary string
	Skills      string
}

// Project is a persisted project record.
type Project struct {
	ID         int64
	UserID     int64
	Title      string
	Content    string
	SkillsUsed string
	Results    string
	CreatedAt  time.Time
}

// ProjectContext is the read-only view of a project used by prompts.
type ProjectContext struct {
	Title      string
	Content    string
	SkillsUsed string
	Results    string
}

func (p *Project) Context() ProjectContext {
	return ProjectContext{
		Title:      p.Title,
		Content:    p.Content,
		SkillsUsed: p.SkillsUsed,
		Results:    p.Results,
	}
}

// ProjectSummary is returned to the client when a session starts.
type ProjectSummary struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	SkillsUsed string `json:"skills_used"`
}

type StartResult struct {
	Message string         `json:"message"`
	Audio   string         `json:"audio"`
	Project ProjectSummary `json:"project"`
}

type InterviewerReply struct {
	Message string `json:"message"`
	Audio   string `json:"audio"`
}

// FeedbackKind records whether mentor output was decoded or substituted.
type FeedbackKind int

const (
	FeedbackParsed FeedbackKind = iota
	FeedbackFallback
)

func (k FeedbackKind) String() string {
	switch k {
	case FeedbackParsed:
		return "parsed"
	case FeedbackFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// MentorFeedback carries the same two fields whichever way it was produced.
type MentorFeedback struct {
	Kind     FeedbackKind `json:"-"`
	Feedback string       `json:"feedback"`
	Tips     []string     `json:"tips"`
}
