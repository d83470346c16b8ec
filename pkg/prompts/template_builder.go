package prompts

import (
	"embed"
	"fmt"
	"strings"

	"github.com/shouni/go-infographic-kit/pkg/domain"

	promptkit "github.com/shouni/go-prompt-kit/prompts"
	"github.com/shouni/go-prompt-kit/resource"
)

//go:embed templates/analysis_*.md
var analysisFS embed.FS

const (
	templateDir    = "templates"
	analysisPrefix = "analysis_"
)

// PromptBuilder は、解析プロンプトを構築する契約です。
type PromptBuilder interface {
	Build(mode domain.AnalysisMode, data TemplateData) (string, error)
}

// TextPromptBuilder は解析モードごとのテンプレートを保持します。
// テンプレートは templates/analysis_<mode>.md から読み込み、全モード分が揃っていなければ初期化に失敗します。
type TextPromptBuilder struct {
	builder *promptkit.Builder
}

// NewTextPromptBuilder は埋め込みテンプレートから TextPromptBuilder を初期化します。
func NewTextPromptBuilder() (*TextPromptBuilder, error) {
	raw, err := resource.Load(analysisFS, templateDir, analysisPrefix)
	if err != nil {
		return nil, fmt.Errorf("解析テンプレートの読み込みに失敗しました: %w", err)
	}

	templates := make(map[string]string, len(raw))
	for name, content := range raw {
		templates[strings.ToUpper(name)] = content
	}
	for _, mode := range domain.AllModes() {
		if _, ok := templates[string(mode)]; !ok {
			return nil, fmt.Errorf("モード '%s' のテンプレートがありません", mode)
		}
	}

	b, err := promptkit.NewBuilder(templates)
	if err != nil {
		return nil, err
	}
	return &TextPromptBuilder{builder: b}, nil
}

// Build は、要求されたモードに応じて適切なテンプレートを実行します。
func (b *TextPromptBuilder) Build(mode domain.AnalysisMode, data TemplateData) (string, error) {
	return b.builder.Build(string(mode), data)
}

// sanitizeInline は文字列をプロンプトに埋め込む前の最低限の正規化を行います。
func sanitizeInline(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
