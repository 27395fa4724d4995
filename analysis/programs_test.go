package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"mockinterview/interview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
programs:
  - program_name: 클라우드 부트캠프
    domain: 백엔드
    start_date: "2025-03-01"
    due_date: "2025-05-31"
    program_skills: AWS, Kubernetes
    program_content: 클라우드 인프라 실습
    program_link: https://example.com/cloud
    program_category: 교육
  - program_name: 데이터 엔지니어링
    domain: 데이터
    program_skills: Spark
`

func TestLoadPrograms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

	programs, err := LoadPrograms(path)
	require.NoError(t, err)
	require.Len(t, programs, 2)
	assert.Equal(t, Program{
		Name:      "클라우드 부트캠프",
		Domain:    "백엔드",
		StartDate: "2025-03-01",
		DueDate:   "2025-05-31",
		Skills:    "AWS, Kubernetes",
		Content:   "클라우드 인프라 실습",
		Link:      "https://example.com/cloud",
		Category:  "교육",
	}, programs[0])
}

func TestLoadProgramsEmptyPath(t *testing.T) {
	programs, err := LoadPrograms("")
	require.NoError(t, err)
	assert.Empty(t, programs)
}

func TestLoadProgramsMissingFile(t *testing.T) {
	_, err := LoadPrograms(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseProgramsRejectsBadCatalogs(t *testing.T) {
	cases := map[string]string{
		"unnamed":   "programs:\n  - domain: 백엔드\n",
		"duplicate": "programs:\n  - program_name: A\n  - program_name: A\n",
		"not yaml":  "programs: [",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parsePrograms([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestPortfolioAnalysisPrompt(t *testing.T) {
	prompt := PortfolioAnalysis(
		interview.UserProfile{SelfSummary: "꼼꼼한 개발자"},
		interview.ProjectContext{Title: "채팅 서버", SkillsUsed: "Go"},
		Job{Company: "당근", Title: "백엔드 엔지니어", SkillsRequired: "Go, Kafka"},
		nil,
	)

	assert.Equal(t, interview.PersonaAnalyst, prompt.Persona)
	assert.Contains(t, prompt.Text, "꼼꼼한 개발자")
	assert.Contains(t, prompt.Text, "[Survey / Career Interests]\nN/A")
	assert.Contains(t, prompt.Text, "당근 - 백엔드 엔지니어")
	assert.Contains(t, prompt.Text, "Go, Kafka")
	assert.Contains(t, prompt.Text, noPrograms)
	assert.Contains(t, prompt.Text, `"overall_score"`)
}
