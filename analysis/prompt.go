package analysis

import (
	"encoding/json"
	"fmt"

	"mockinterview/interview"
)

const noPrograms = "No training programs available at the moment."

const analysisTemplate = `Role: You are an expert HR consultant and technical recruiter.

Task: Assess how well the candidate's profile and project experience fit the job opening below.

=== CANDIDATE PROFILE ===
[Self Summary]
%[1]s

[Survey / Career Interests]
%[2]s

[Candidate Skills]
%[3]s

=== PROJECT EXPERIENCE ===
[Project Title]
%[4]s

[Project Content]
%[5]s

[Project Tech Stack]
%[6]s

=== JOB OPENING ===
[Company / Position]
%[7]s - %[8]s

[Job Description]
%[9]s

[Required Skills]
%[10]s

=== AVAILABLE TRAINING PROGRAMS (JSON) ===
%[11]s

---

Instructions:
1. Skill match: compare the candidate skills and project tech stack against the required skills. Name matched skills and call out missing ones.
2. Fit evaluation: judge whether the project content and self summary line up with the responsibilities in the job description.
3. Missing competencies: list the competencies the candidate lacks for this role.
4. Overall score: an integer fit score from 0 to 100.
5. Recommended programs: recommend a program from the list only if its skills cover at least one missing competency. Use the exact program_name and give a recommendation_reason.

Output a single JSON object, with every text value written in Korean:
{"skill_match": "...", "fit_evaluation": "...", "missing_competencies": ["..."], "overall_score": 0, "recommended_programs": [{"program_name": "...", "recommendation_reason": "..."}]}
`

// PortfolioAnalysis renders the analyst prompt comparing a profile and project against a job.
func PortfolioAnalysis(user interview.UserProfile, project interview.ProjectContext, job Job, programs []Program) interview.PersonaPrompt {
	return interview.PersonaPrompt{
		Persona: interview.PersonaAnalyst,
		Text: fmt.Sprintf(analysisTemplate,
			orNA(user.SelfSummary),
			orNA(user.SurveyText),
			orNA(user.Skills),
			orNA(project.Title),
			orNA(project.Content),
			orNA(project.SkillsUsed),
			job.Company,
			job.Title,
			orNA(job.Description),
			orNA(job.SkillsRequired),
			renderPrograms(programs),
		),
	}
}

func renderPrograms(programs []Program) string {
	if len(programs) == 0 {
		return noPrograms
	}
	data, err := json.MarshalIndent(programs, "", "  ")
	if err != nil {
		return noPrograms
	}
	return string(data)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
