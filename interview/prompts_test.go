package interview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGreeting(t *testing.T) {
	got := Greeting("김철수", "백엔드", "주문 관리 시스템")
	assert.Equal(t, "안녕하세요 김철수님, 백엔드 직무 면접관입니다. 제출하신 주문 관리 시스템 프로젝트에 대해 간략히 설명해 주세요.", got)
}

func TestGreetingDefaultsDomain(t *testing.T) {
	got := Greeting("김철수", "", "주문 관리 시스템")
	assert.Contains(t, got, "개발 직무 면접관입니다")
}

func TestInterviewerPromptContainsAnswerAndTitle(t *testing.T) {
	project := ProjectContext{
		Title:      "실시간 채팅 서버",
		SkillsUsed: "Go, Redis",
		Content:    "웹소켓 기반 채팅",
		Results:    "동시 접속 1만명",
	}
	answers := []string{
		"저는 Spring Boot로 REST API를 만들었습니다.",
		"Redis pub/sub으로 메시지를 분산했습니다.",
		"100% 테스트 커버리지 {json} %s",
	}

	for _, answer := range answers {
		t.Run(answer, func(t *testing.T) {
			prompt := Interviewer(answer, project, nil)
			assert.Equal(t, PersonaInterviewer, prompt.Persona)
			assert.Contains(t, prompt.Text, "지원자의 답변: "+answer)
			assert.Contains(t, prompt.Text, "- 제목: 실시간 채팅 서버")
			assert.Contains(t, prompt.Text, "실시간 채팅 서버의 Go, Redis에 대한 엄격한 기술 면접관")
			assert.Contains(t, prompt.Text, "- 결과: 동시 접속 1만명")
		})
	}
}

func TestInterviewerPromptEmptyProjectFields(t *testing.T) {
	prompt := Interviewer("답변", ProjectContext{Title: "프로젝트X"}, nil)
	assert.Contains(t, prompt.Text, "- 사용 기술: N/A")
	assert.Contains(t, prompt.Text, "- 설명: N/A")
	assert.Contains(t, prompt.Text, "프로젝트X의 기술 스택에 대한")
	assert.Contains(t, prompt.Text, "이전 대화:\n없음\n")
}

func TestInterviewerPromptRendersHistory(t *testing.T) {
	history := []Turn{
		{Role: RoleInterviewer, Content: "프로젝트를 설명해 주세요."},
		{Role: RoleUser, Content: "채팅 서버를 만들었습니다."},
		{Role: RoleMentor, Content: "좋은 시작입니다."},
	}
	prompt := Interviewer("Redis를 썼습니다.", ProjectContext{Title: "채팅"}, history)

	expected := "면접관: 프로젝트를 설명해 주세요.\n지원자: 채팅 서버를 만들었습니다.\n지원자: 좋은 시작입니다.\n"
	assert.Contains(t, prompt.Text, expected)

	// History order is preserved.
	first := strings.Index(prompt.Text, "프로젝트를 설명해 주세요.")
	second := strings.Index(prompt.Text, "채팅 서버를 만들었습니다.")
	assert.Less(t, first, second)
}

func TestMentorPrompt(t *testing.T) {
	prompt := Mentor("트랜잭션 격리 수준은?", "READ COMMITTED를 썼습니다.", nil)

	assert.Equal(t, PersonaMentor, prompt.Persona)
	assert.Contains(t, prompt.Text, "면접관 질문: 트랜잭션 격리 수준은?")
	assert.Contains(t, prompt.Text, "지원자 답변: READ COMMITTED를 썼습니다.")
	assert.Contains(t, prompt.Text, `"feedback"`)
	assert.Contains(t, prompt.Text, `"tips"`)
	assert.Contains(t, prompt.Text, "JSON 형식만 출력하고")
	assert.Contains(t, prompt.Text, "마크다운(예: **, __)을 절대 사용하지 마세요")
	for _, step := range []string{"1. 질문 의도 파악", "2. 답변 평가", "3. 개선 방향", "4. 실용적 팁"} {
		assert.Contains(t, prompt.Text, step)
	}
}

func TestRenderHistoryEmpty(t *testing.T) {
	assert.Equal(t, "없음", renderHistory(nil))
	assert.Equal(t, "없음", renderHistory([]Turn{}))
}
