package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-infographic-kit/pkg/domain"

	"github.com/shouni/go-utils/text"
)

// selectorContentLimit はテンプレート選定に渡す本文の最大文字数です。
const selectorContentLimit = 2000

// BuildSelectorPrompt はテンプレート候補から2〜3件を選ばせるプロンプトを構築します。
func BuildSelectorPrompt(mode domain.AnalysisMode, content, manifestRaw string, candidates []domain.AssetEntry) string {
	var sb strings.Builder

	sb.WriteString("You are selecting brand template backgrounds for one infographic.\n\n")
	sb.WriteString("## CONTENT\n")
	sb.WriteString(fmt.Sprintf("Mode: %s\n", mode))
	sb.WriteString(text.Truncate(content, selectorContentLimit, "..."))
	sb.WriteString("\n\n")

	sb.WriteString("## SELECTION GUIDANCE\n")
	if mode.IsPoster() {
		sb.WriteString("- Prefer bold, dynamic, high-impact backgrounds with generous open space for a large headline.\n")
		sb.WriteString("- Festive or emotional content benefits from vivid color fields over dense layouts.\n")
	} else {
		sb.WriteString("- Prefer clean, structured backgrounds that leave room for sections, data and charts.\n")
		sb.WriteString("- Avoid busy imagery that would compete with key points and numbers.\n")
	}
	sb.WriteString("\n")

	if note := firstUsageLine(manifestRaw); note != "" {
		sb.WriteString("## BRAND NOTE\n")
		sb.WriteString(note)
		sb.WriteString("\n\n")
	}

	sb.WriteString("## CANDIDATE TEMPLATES\n")
	for i, c := range candidates {
		desc := c.Description
		if desc == "" {
			desc = "(no description)"
		}
		sb.WriteString(fmt.Sprintf("%d. %s :: %s\n", i+1, c.RelativePath, desc))
	}
	sb.WriteString("\n")

	sb.WriteString("## OUTPUT\n")
	sb.WriteString("Choose the 2-3 templates that best fit the content. ")
	sb.WriteString("Write one exact template path per line, best first. Use the paths exactly as listed. No other text.\n")
	return sb.String()
}

// firstUsageLine はマニフェストの Usage guidance 最初のルールを返します。
func firstUsageLine(raw string) string {
	in := false
	for _, line := range strings.Split(raw, "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "Usage guidance:") {
			in = true
			continue
		}
		if in && strings.HasPrefix(t, "-") {
			return strings.TrimSpace(strings.TrimPrefix(t, "-"))
		}
		if in && strings.HasSuffix(t, ":") {
			return ""
		}
	}
	return ""
}
