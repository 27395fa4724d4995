package interview

import (
	"fmt"
	"strings"
)

// Persona identifies which model profile a prompt targets.
type Persona string

const (
	PersonaInterviewer Persona = "interviewer"
	PersonaMentor      Persona = "mentor"
	PersonaAnalyst     Persona = "analyst"
)

// PersonaPrompt is a rendered prompt for a single generation call.
type PersonaPrompt struct {
	Persona Persona
	Text    string
}

const defaultDomain = "개발"

// Greeting renders the fixed opening line of a session.
func Greeting(userName, domain, projectTitle string) string {
	if strings.TrimSpace(domain) == "" {
		domain = defaultDomain
	}
	return fmt.Sprintf("안녕하세요 %s님, %s 직무 면접관입니다. 제출하신 %s 프로젝트에 대해 간략히 설명해 주세요.", userName, domain, projectTitle)
}

const interviewerTemplate = `
당신은 %[1]s의 %[2]s에 대한 엄격한 기술 면접관입니다.

역할:
- 지원자의 기술 역량을 깊이 있게 검증
- 모호한 답변에 대해 구체적인 설명 요구
- 프로젝트의 기술 스택에 대한 심층 질문
- 기술적 의사결정의 근거 확인

프로젝트 정보:
- 제목: %[3]s
- 사용 기술: %[4]s
- 설명: %[5]s
- 결과: %[6]s

규칙:
1. 한국어로 질문
2. 한 번에 하나의 질문만
3. 이전 답변을 기반으로 심화 질문
4. 기술 스택의 깊이 있는 이해도 확인
5. 압박감을 주되, 존중하는 태도 유지

이전 대화:
%[7]s

지원자의 답변: %[8]s

위 답변을 분석하고, 기술적 깊이를 평가할 수 있는 날카로운 후속 질문을 하나 생성하세요. 질문만 출력하고, 다른 설명은 포함하지 마세요.
`

// Interviewer renders the prompt for the next interviewer question.
func Interviewer(answer string, project ProjectContext, history []Turn) PersonaPrompt {
	text := fmt.Sprintf(interviewerTemplate,
		orDefault(project.Title, "프로젝트"),
		orDefault(project.SkillsUsed, "기술 스택"),
		orDefault(project.Title, "N/A"),
		orDefault(project.SkillsUsed, "N/A"),
		orDefault(project.Content, "N/A"),
		orDefault(project.Results, "N/A"),
		renderHistory(history),
		answer,
	)
	return PersonaPrompt{Persona: PersonaInterviewer, Text: text}
}

const mentorTemplate = `
당신은 따뜻하고 경험 많은 기술 멘토입니다.

역할:
- 면접 답변의 강점과 개선점 분석
- 구체적이고 실행 가능한 조언 제공
- 자신감 향상과 기술적 성장 지원
- STAR 기법 등 면접 스킬 코칭

분석 프레임워크:
1. 질문 의도 파악 - 면접관이 무엇을 확인하려 했나?
2. 답변 평가 - 명확성, 구체성, 기술적 정확성
3. 개선 방향 - 어떻게 더 나은 답변을 할 수 있나?
4. 실용적 팁 - 구체적인 개선 방법

규칙:
1. 한국어로 피드백
2. 긍정적이고 건설적인 톤
3. 구체적인 예시 제공
4. 3-5개의 actionable tips
5. 격려와 함께 솔직한 평가
6. 텍스트에 강조를 위한 마크다운(예: **, __)을 절대 사용하지 마세요. 모든 답변은 순수 텍스트로만 작성하세요.

이전 대화:
%[1]s

면접관 질문: %[2]s
지원자 답변: %[3]s

위 답변을 분석하고, 다음 JSON 형식으로 피드백을 제공하세요:
{
  "feedback": "종합 피드백 (2-3문장)",
  "tips": ["실행 가능한 팁 1", "팁 2", "팁 3"]
}

JSON 형식만 출력하고, 다른 텍스트는 포함하지 마세요.
`

// Mentor renders the prompt for feedback on one question/answer pair.
func Mentor(question, answer string, history []Turn) PersonaPrompt {
	text := fmt.Sprintf(mentorTemplate, renderHistory(history), question, answer)
	return PersonaPrompt{Persona: PersonaMentor, Text: text}
}

// renderHistory writes one "<label>: <content>" line per turn. Only interviewer turns are labelled
// as the interviewer; every other role is the candidate.
func renderHistory(history []Turn) string {
	if len(history) == 0 {
		return "없음"
	}
	var sb strings.Builder
	for _, turn := range history {
		label := "지원자"
		if turn.Role == RoleInterviewer {
			label = "면접관"
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
