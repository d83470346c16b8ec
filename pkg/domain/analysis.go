package domain

import (
	"fmt"
	"strings"
)

// AnalysisMode は解析モードを表し、Analyst の指示テンプレートと後段のプロンプト形状を決定します。
type AnalysisMode string

const (
	// ModeAutoSummary はドキュメント全体の要約モードです。
	ModeAutoSummary AnalysisMode = "AUTO_SUMMARY"
	// ModeTargetedAnalysis はユーザーの質問・焦点に基づく解析モードです。
	ModeTargetedAnalysis AnalysisMode = "TARGETED_ANALYSIS"
	// ModeCreativeGeneration はポスターや挨拶などの創作モードです。
	ModeCreativeGeneration AnalysisMode = "CREATIVE_GENERATION"
)

// AllModes は有効なモードを宣言順に返します。
func AllModes() []AnalysisMode {
	return []AnalysisMode{ModeAutoSummary, ModeTargetedAnalysis, ModeCreativeGeneration}
}

// Valid はモードが定義済みの値かどうかを返します。
func (m AnalysisMode) Valid() bool {
	switch m {
	case ModeAutoSummary, ModeTargetedAnalysis, ModeCreativeGeneration:
		return true
	}
	return false
}

// IsPoster は出力がポスター形状（セクション構成ではない）かどうかを返します。
func (m AnalysisMode) IsPoster() bool {
	return m == ModeCreativeGeneration
}

// ParseMode は大文字小文字を無視して文字列をモードに変換します。
func ParseMode(s string) (AnalysisMode, error) {
	m := AnalysisMode(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("不明な解析モードです: %q", s)
	}
	return m, nil
}

// Language は出力言語です。
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"
)

// Normalize は未知の値を英語にフォールバックさせます。
func (l Language) Normalize() Language {
	switch strings.ToLower(strings.TrimSpace(string(l))) {
	case "zh", "zh-cn", "zh-hans", "cn":
		return LanguageChinese
	default:
		return LanguageEnglish
	}
}

// InputKind は入力の種類です。
type InputKind string

const (
	InputText InputKind = "text"
	InputFile InputKind = "file"
)

// DocumentInput はリクエストごとの入力です。
type DocumentInput struct {
	Kind InputKind `json:"kind"`
	// Content はテキスト本文、またはファイルの場合は base64 データです。
	Content               string       `json:"content"`
	MimeType              string       `json:"mimeType,omitempty"`
	FileName              string       `json:"fileName,omitempty"`
	UserContext           string       `json:"userContext,omitempty"`
	PreferredModeOverride AnalysisMode `json:"preferredModeOverride,omitempty"`
}

// IsFile はファイル入力かどうかを返します。
func (in DocumentInput) IsFile() bool {
	return in.Kind == InputFile
}

// KeyPoint は要点の1項目です。
type KeyPoint struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// AnalysisResult は Analyst の出力で、ユーザーのレビュー後に Plan / Image 生成へ渡されます。
type AnalysisResult struct {
	Mode               AnalysisMode `json:"mode"`
	Title              string       `json:"title"`
	Summary            string       `json:"summary"`
	KeyPoints          []KeyPoint   `json:"keyPoints"`
	CustomVisualPrompt string       `json:"customVisualPrompt,omitempty"`
}

// ContentText はテンプレート選定などに使う平文表現を返します。
func (r AnalysisResult) ContentText() string {
	var sb strings.Builder
	sb.WriteString(r.Title)
	if r.Summary != "" {
		sb.WriteString("\n")
		sb.WriteString(r.Summary)
	}
	for _, kp := range r.KeyPoints {
		sb.WriteString("\n- ")
		sb.WriteString(kp.Title)
		if kp.Description != "" {
			sb.WriteString(": ")
			sb.WriteString(kp.Description)
		}
	}
	return sb.String()
}
