package domain

import (
	"strings"

	"github.com/shouni/go-utils/text"
)

const (
	MaxTitleLength            = 100
	MaxSummaryLength          = 300
	MaxKeyPointTitleLength    = 100
	MaxKeyPointDescriptionLen = 500

	// DefaultTitle はタイトル欠落時の既定値です。
	DefaultTitle = "Untitled"
)

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Sanitize は各テキスト項目に長さと改行の規則を適用したコピーを返します。
// 2回適用しても結果は変わりません。
func (r AnalysisResult) Sanitize() AnalysisResult {
	out := AnalysisResult{
		Mode:               r.Mode,
		Title:              singleLine(r.Title, MaxTitleLength),
		Summary:            singleLine(r.Summary, MaxSummaryLength),
		CustomVisualPrompt: strings.TrimSpace(r.CustomVisualPrompt),
	}
	if out.Title == "" {
		out.Title = DefaultTitle
	}

	out.KeyPoints = make([]KeyPoint, 0, len(r.KeyPoints))
	for _, kp := range r.KeyPoints {
		clean := KeyPoint{
			Title:       singleLine(kp.Title, MaxKeyPointTitleLength),
			Description: text.Truncate(strings.TrimSpace(kp.Description), MaxKeyPointDescriptionLen, ""),
			Category:    strings.TrimSpace(kp.Category),
		}
		if clean.Title == "" && clean.Description == "" {
			continue
		}
		out.KeyPoints = append(out.KeyPoints, clean)
	}
	return out
}

// singleLine は改行を空白に置換し、前後の空白を除去してから最大長で切り詰めます。
func singleLine(s string, max int) string {
	s = strings.TrimSpace(newlineReplacer.Replace(s))
	return text.Truncate(s, max, "")
}
