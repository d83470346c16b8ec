package prompts

import (
	"fmt"

	"github.com/shouni/go-infographic-kit/pkg/domain"

	"github.com/shouni/go-utils/text"
	"google.golang.org/genai"
)

// routerInputLimit は分類に渡す本文の最大文字数です。
const routerInputLimit = 4000

// RouterModeField は分類応答のフィールド名です。
const RouterModeField = "mode"

// BuildRouterPrompt は3値分類のプロンプトを構築します。
func BuildRouterPrompt(input string) string {
	input = text.Truncate(input, routerInputLimit, "")
	return fmt.Sprintf(`Classify the user's request for an infographic generator into exactly one mode.

- %s: the user supplies a document or notes and wants the whole thing summarized.
- %s: the user asks a question or wants a specific aspect analyzed.
- %s: the user wants a poster, banner, greeting card or slogan visual rather than a document summary.

Return JSON: {"%s": "<one of the three modes>"}

REQUEST:
"""
%s
"""`,
		domain.ModeAutoSummary, domain.ModeTargetedAnalysis, domain.ModeCreativeGeneration,
		RouterModeField, input)
}

// RouterSchema は分類応答を3値の列挙に制約するスキーマです。
func RouterSchema() *genai.Schema {
	modes := domain.AllModes()
	enum := make([]string, len(modes))
	for i, m := range modes {
		enum[i] = string(m)
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			RouterModeField: {Type: genai.TypeString, Enum: enum},
		},
		Required: []string{RouterModeField},
	}
}
