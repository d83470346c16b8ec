package prompts

import (
	"github.com/shouni/go-infographic-kit/pkg/domain"
)

// AutoSummaryKeyPoints は要約モードで要求する要点の固定件数です。
const AutoSummaryKeyPoints = 5

// TemplateData は解析プロンプトのテンプレートに渡すデータ構造です。
type TemplateData struct {
	Content           string
	Focus             string
	HasFocus          bool
	IsFile            bool
	KeyPointCount     int
	LanguageDirective string
}

// NewTemplateData は入力と出力言語からテンプレートデータを組み立てます。
func NewTemplateData(in domain.DocumentInput, lang domain.Language) TemplateData {
	data := TemplateData{
		IsFile:            in.IsFile(),
		Focus:             sanitizeInline(in.UserContext),
		KeyPointCount:     AutoSummaryKeyPoints,
		LanguageDirective: LanguageDirective(lang),
	}
	data.HasFocus = data.Focus != ""
	if !in.IsFile() {
		data.Content = in.Content
	}
	return data
}

// LanguageDirective は出力言語の指示文を返します。
func LanguageDirective(lang domain.Language) string {
	if lang.Normalize() == domain.LanguageChinese {
		return "Write every output field in Simplified Chinese (简体中文)."
	}
	return "Write every output field in English."
}
