package generator

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/shouni/go-infographic-kit/pkg/ai"
	"github.com/shouni/go-infographic-kit/pkg/asset"
	"github.com/shouni/go-infographic-kit/pkg/config"
	"github.com/shouni/go-infographic-kit/pkg/domain"
	"github.com/shouni/go-infographic-kit/pkg/prompts"
)

// TemplateSelector はコンテンツに合うテンプレートをモデルに選ばせます。失敗しても呼び出し元には返しません。
type TemplateSelector struct {
	model ai.TextModel
	cfg   config.Config
}

// NewTemplateSelector は TemplateSelector を生成します。
func NewTemplateSelector(model ai.TextModel, cfg config.Config) *TemplateSelector {
	return &TemplateSelector{model: model, cfg: cfg}
}

// Select はテンプレートの相対パスを最大3件返します。カタログにテンプレートが無い場合は空です。
// モデルの失敗や有効な一致が無い場合は先頭のテンプレートを返します。
func (s *TemplateSelector) Select(ctx context.Context, mode domain.AnalysisMode, text, manifestRaw string, catalog []domain.AssetEntry) []string {
	candidates := asset.Templates(catalog)
	if len(candidates) == 0 {
		return nil
	}
	fallback := []string{candidates[0].RelativePath}

	raw, err := s.model.GenerateText(ctx, ai.TextRequest{
		Model:           s.cfg.GeminiModel,
		Parts:           []ai.Part{ai.TextPart(prompts.BuildSelectorPrompt(mode, text, manifestRaw, candidates))},
		Temperature:     s.cfg.SelectorTemperature,
		MaxOutputTokens: s.cfg.SelectorMaxTokens,
		Format:          ai.FormatPlain,
	})
	if err != nil {
		slog.WarnContext(ctx, "テンプレート選定に失敗したため先頭のテンプレートを使用します", "error", err)
		return fallback
	}

	selected := matchTemplateLines(raw, candidates)
	if len(selected) == 0 {
		slog.WarnContext(ctx, "テンプレート選定の応答に有効なパスがありません", "response", raw)
		return fallback
	}
	slog.InfoContext(ctx, "テンプレートを選定しました", "templates", selected)
	return selected
}

// matchTemplateLines は応答の各行に含まれる候補パスを出現順に取り出します。
func matchTemplateLines(raw string, candidates []domain.AssetEntry) []string {
	var out []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(raw, "\n") {
		type hit struct {
			pos  int
			path string
		}
		var hits []hit
		for _, c := range candidates {
			if pos := strings.Index(line, c.RelativePath); pos >= 0 {
				hits = append(hits, hit{pos: pos, path: c.RelativePath})
			}
		}
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
		for _, h := range hits {
			if seen[h.path] {
				continue
			}
			seen[h.path] = true
			out = append(out, h.path)
			if len(out) == MaxSelectedTemplates {
				return out
			}
		}
	}
	return out
}
