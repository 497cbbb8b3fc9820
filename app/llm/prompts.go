package llm

import (
	"fmt"
	"strings"
)

// summaryPromptTemplate produces the citizen-facing structured summary.
// The output contract (300-400 characters, bold lead, bullet points,
// closing line) is what the review UI and reader site render directly.
const summaryPromptTemplate = `당신은 지역 뉴스 큐레이터입니다. 다음 기사를 지역 시민 관점에서 요약해주세요.

요약 형식:
1. **핵심 내용** (무엇이, 언제, 어디서) - 첫 문장에 굵게 표시
2. **주요 포인트** 2~3개 - 불릿 포인트로 정리
3. **시민에게 도움되는 팁** - 있다면 추가 (방문 정보, 신청 방법 등)

규칙:
- 300~400자 내외로 작성
- 친근하고 읽기 쉽게 작성
- 이모지 적절히 사용 (1~2개)
- 마지막에 "자세한 내용은 원문에서 확인하세요." 추가

기사 제목: {title}
기사 본문:
{content}`

const categoryPromptTemplate = `다음 기사가 어떤 카테고리에 해당하는지 판단해주세요.

카테고리 목록:
{categories}

기사 제목: {title}
기사 내용 일부: {content}

해당 카테고리의 slug만 답변해주세요 (예: news)`

// CategoryOption is one entry of the closed category set the classifier
// may answer with.
type CategoryOption struct {
	Slug string
	Name string
}

func buildSummaryPrompt(title, content string) string {
	prompt := strings.Replace(summaryPromptTemplate, "{title}", title, 1)
	return strings.Replace(prompt, "{content}", truncateRunes(content, summaryContentLimit), 1)
}

func buildCategoryPrompt(title, content string, categories []CategoryOption) string {
	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		lines = append(lines, fmt.Sprintf("- %s: %s", c.Slug, c.Name))
	}

	prompt := strings.Replace(categoryPromptTemplate, "{categories}", strings.Join(lines, "\n"), 1)
	prompt = strings.Replace(prompt, "{title}", title, 1)
	return strings.Replace(prompt, "{content}", truncateRunes(content, categoryContentLimit), 1)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
