// Package intent は入力を解析モードに分類します。
package intent

import (
	"regexp"
	"strings"

	"github.com/shouni/go-infographic-kit/pkg/domain"
)

// MaxCreativeTokens は創作キーワード判定を行う最大トークン数です。
const MaxCreativeTokens = 25

// Rule は決定的な分類ルールです。判定できない場合は false を返します。
type Rule struct {
	Name  string
	Match func(in domain.DocumentInput) (domain.AnalysisMode, bool)
}

// DefaultRules は評価順に並んだ組み込みルールです。
var DefaultRules = []Rule{
	{Name: "override", Match: matchOverride},
	{Name: "file", Match: matchFile},
	{Name: "distinct-context", Match: matchDistinctContext},
	{Name: "question", Match: matchQuestion},
	{Name: "creative", Match: matchCreative},
}

var (
	interrogativeRegex = regexp.MustCompile(`(?i)^(what|why|how|when|where|who|whom|whose|which|is|are|was|were|can|could|should|would|will|does|did|has|have)\b`)
	interrogativeZh    = []string{"什么", "为什么", "为何", "如何", "怎么", "怎样", "哪", "谁", "是否", "能否", "可否", "何时", "多少"}

	creativeRegex = regexp.MustCompile(`(?i)(poster|banner|flyer|greeting|celebrat|congratulat|happy|holiday|festival|new year|christmas|birthday|anniversary|wedding|invitation|slogan|海报|横幅|宣传|祝福|贺卡|新年|春节|节日|快乐|生日|周年|庆祝|邀请|口号)`)
)

func matchOverride(in domain.DocumentInput) (domain.AnalysisMode, bool) {
	if in.PreferredModeOverride.Valid() {
		return in.PreferredModeOverride, true
	}
	return "", false
}

func matchFile(in domain.DocumentInput) (domain.AnalysisMode, bool) {
	if !in.IsFile() {
		return "", false
	}
	if strings.TrimSpace(in.UserContext) != "" {
		return domain.ModeTargetedAnalysis, true
	}
	return domain.ModeAutoSummary, true
}

func matchDistinctContext(in domain.DocumentInput) (domain.AnalysisMode, bool) {
	content := strings.TrimSpace(in.Content)
	context := strings.TrimSpace(in.UserContext)
	if content != "" && context != "" && content != context {
		return domain.ModeTargetedAnalysis, true
	}
	return "", false
}

func matchQuestion(in domain.DocumentInput) (domain.AnalysisMode, bool) {
	if IsQuestion(CombinedText(in)) {
		return domain.ModeTargetedAnalysis, true
	}
	return "", false
}

func matchCreative(in domain.DocumentInput) (domain.AnalysisMode, bool) {
	if IsCreative(CombinedText(in)) {
		return domain.ModeCreativeGeneration, true
	}
	return "", false
}

// CombinedText は本文とコンテキストを結合した判定用テキストを返します。
func CombinedText(in domain.DocumentInput) string {
	content := strings.TrimSpace(in.Content)
	context := strings.TrimSpace(in.UserContext)
	switch {
	case content == "":
		return context
	case context == "" || context == content:
		return content
	default:
		return content + "\n" + context
	}
}

// IsQuestion は疑問符を含むか、疑問詞で始まるかを判定します。
func IsQuestion(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if strings.ContainsAny(text, "?？") {
		return true
	}
	if interrogativeRegex.MatchString(text) {
		return true
	}
	for _, w := range interrogativeZh {
		if strings.HasPrefix(text, w) {
			return true
		}
	}
	return false
}

// IsCreative は短いテキストが創作キーワードを含むかを判定します。
func IsCreative(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 || len(fields) > MaxCreativeTokens {
		return false
	}
	return creativeRegex.MatchString(text)
}
