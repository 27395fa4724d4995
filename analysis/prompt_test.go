package analysis

import (
	"testing"

	"mockinterview/interview"

	"github.com/stretchr/testify/assert"
)

func TestPortfolioAnalysisPrompt(t *testing.T) {
	user := interview.UserProfile{Name: "김철수", Domain: "백엔드", Skills: "Java, Spring"}
	project := interview.ProjectContext{Title: "쇼핑몰 백엔드", SkillsUsed: "Spring Boot, MySQL"}
	job := Job{Company: "토스", Title: "서버 개발자", SkillsRequired: "Kotlin, Spring"}
	programs := []Program{{Name: "코틀린 부트캠프", Skills: "Kotlin"}}

	prompt := PortfolioAnalysis(user, project, job, programs)

	assert.Equal(t, interview.PersonaAnalyst, prompt.Persona)
	assert.Contains(t, prompt.Text, "쇼핑몰 백엔드")
	assert.Contains(t, prompt.Text, "Spring Boot, MySQL")
	assert.Contains(t, prompt.Text, "토스 - 서버 개발자")
	assert.Contains(t, prompt.Text, "Kotlin, Spring")
	assert.Contains(t, prompt.Text, `"program_name": "코틀린 부트캠프"`)
	assert.Contains(t, prompt.Text, "[Self Summary]\nN/A")
	assert.NotContains(t, prompt.Text, "%!")
}

func TestPortfolioAnalysisPromptWithoutPrograms(t *testing.T) {
	prompt := PortfolioAnalysis(interview.UserProfile{}, interview.ProjectContext{Title: "T"}, Job{}, nil)
	assert.Contains(t, prompt.Text, noPrograms)
}
