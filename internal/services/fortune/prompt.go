package fortune

import (
	"fmt"
	"strings"

	"golf-fortune-engine/internal/models"
)

// PromptFormat selects the response shape requested from the model.
type PromptFormat string

const (
	// PromptFormatJSON asks for a JSON object keyed by section.
	PromptFormatJSON PromptFormat = "json"
	// PromptFormatText asks for sectioned free text under Korean headers.
	PromptFormatText PromptFormat = "text"
)

// DefaultSentences is the per-section length asked of the model.
const DefaultSentences = "3-4"

// PromptOptions tunes prompt construction.
type PromptOptions struct {
	Format    PromptFormat
	Sentences string
}

func (o PromptOptions) sentences() string {
	if strings.TrimSpace(o.Sentences) == "" {
		return DefaultSentences
	}
	return o.Sentences
}

// SystemPrompt returns the persona instruction.
func SystemPrompt(opts PromptOptions) string {
	return fmt.Sprintf(`당신은 1000년 넘게 골프를 쳐온 골신 할아버지입니다. 사주와 골프를 결합한 운세를 제공합니다. `+
		`골신 할아버지의 말투로 친근하지만, 구체적이고 과감한 점지를 해주세요. `+
		`"자네", "~라네", "~구먼", "~걸세" 같은 말투를 쓰세요. `+
		`각 운세 섹션은 반드시 %s문장으로 작성하고, 기승전결 구조로 논리적 설명을 해주세요.`, opts.sentences())
}

// BuildPrompt creates the system and user prompts for one request.
func BuildPrompt(input models.UserInput, analysis models.ElementAnalysis, opts PromptOptions) (string, string) {
	tier := input.Tier()
	profile := fmt.Sprintf(`=== 사용자 정보 ===
- 이름: %s
- 생년월일: %s
- 생시: %s
- 성별: %s
- 핸디캡: %d (%s 레벨)

=== 오행 분석 결과 ===
- 오행: %s (%s)
- 성격: %s
- 골프 스타일: %s
- 강점: %s
- 약점: %s
- 행운의 색: %s
- 추천: %s
- 행운의 숫자: %d, %d`,
		input.Name, input.BirthDate, input.BirthTime, input.Gender, input.Handicap, tier.Label(),
		analysis.Element, analysis.ElementName,
		analysis.Personality, analysis.GolfStyle,
		strings.Join(analysis.Strengths[:], ", "),
		strings.Join(analysis.Weaknesses[:], ", "),
		strings.Join(analysis.LuckyColors[:], ", "),
		strings.Join(analysis.Recommendations[:], " / "),
		analysis.LuckyNumbers[0], analysis.LuckyNumbers[1],
	)

	rules := fmt.Sprintf(`=== 작성 규칙 ===
- 각 섹션은 %s문장으로 써줘
- "올해", "이번 해" 같은 말로 써줘
- 핸디 20 이상이면 퍼팅, 웨지 같은 숏게임 위주로 설명해줘
- 정확한 숫자나 수치는 말하지 마
- 쉬운 말로, 구어체로 써줘 (전문용어 금지)
- 인사말과 마무리에는 %s의 이름을 꼭 불러줘`, opts.sentences(), input.Name)

	var shape string
	if opts.Format == PromptFormatText {
		shape = textShape(input)
	} else {
		shape = jsonShape(analysis)
	}

	return SystemPrompt(opts), profile + "\n\n" + rules + "\n\n" + shape
}

func jsonShape(analysis models.ElementAnalysis) string {
	keys := make([]string, 0, len(models.SectionKeys())+3)
	for _, key := range models.SectionKeys() {
		keys = append(keys, string(key))
	}
	keys = append(keys, "luckyClub", "luckyHole", "luckyItem")

	return fmt.Sprintf(`올해 골프 운세를 JSON으로 작성해줘.

JSON 키: %s

- summary: "한마디로 %s이라네"로 시작
- finalAdvice: "허허"로 시작
- luckyClub: 드라이버/아이언/웨지/퍼터 중 하나 또는 구체적인 클럽 모델
- luckyHole: "숫자번홀" 형식 (예: %d번홀)
- luckyItem: "색상+아이템+이모지" 형식`,
		strings.Join(keys, ", "), analysis.Personality, analysis.LuckyNumbers[0])
}

func textShape(input models.UserInput) string {
	var b strings.Builder
	b.WriteString("골신 할아버지 톤으로 다음 형식에 맞춰 운세를 작성해줘. 제목은 그대로 써줘.\n\n")
	for _, key := range models.SectionKeys() {
		fmt.Fprintf(&b, "[%s]\n", key.Title())
		switch key {
		case models.SectionGreeting:
			fmt.Fprintf(&b, "좋네… 자네 %s의 운세를 보자고 했지?\n\n", input.Name)
		case models.SectionFinal:
			b.WriteString("허허, 그러니 너무 조급해 말고… [간단한 조언 한 문장]\n\n")
		default:
			b.WriteString("[내용]\n\n")
		}
	}
	b.WriteString("행운의 클럽: [클럽]\n행운의 홀: [숫자]번홀\n행운의 아이템: [색상+아이템+이모지]")
	return b.String()
}
