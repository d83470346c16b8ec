package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-infographic-kit/pkg/ai"
	"github.com/shouni/go-infographic-kit/pkg/asset"
	"github.com/shouni/go-infographic-kit/pkg/config"
	"github.com/shouni/go-infographic-kit/pkg/domain"
	"github.com/shouni/go-infographic-kit/pkg/prompts"
)

// PlanGenerator はブランドのカタログとプレビュー画像を根拠にレイアウトプランを生成します。
type PlanGenerator struct {
	assets   *BrandAssets
	selector *TemplateSelector
	model    ai.TextModel
	cfg      config.Config
}

// NewPlanGenerator は PlanGenerator を生成します。selector が nil の場合はテンプレート選定を行いません。
func NewPlanGenerator(assets *BrandAssets, selector *TemplateSelector, model ai.TextModel, cfg config.Config) *PlanGenerator {
	return &PlanGenerator{assets: assets, selector: selector, model: model, cfg: cfg}
}

// Generate はプランを1回のモデル呼び出しで生成します。リトライは行いません。
func (g *PlanGenerator) Generate(ctx context.Context, result domain.AnalysisResult, hint domain.BrandHint, visual domain.VisualConfig, lang domain.Language) (string, error) {
	lang = lang.Normalize()
	brandCfg, lib := g.assets.Library(ctx, hint)
	logger := slog.With("brand", brandCfg.ID, "mode", result.Mode)
	if lib == nil {
		logger.Warn("アセットライブラリが無いため、メタデータ無しでプランを生成します")
	}

	var preferred []string
	var previews []domain.AssetEntry
	if lib != nil {
		if g.selector != nil {
			preferred = g.selector.Select(ctx, result.Mode, result.ContentText(), lib.RawManifestText, lib.Assets)
		}
		previews = previewSet(lib, preferred)
	}

	attached := g.assets.fetchAll(ctx, previews)
	entries := make([]domain.AssetEntry, len(attached))
	parts := make([]ai.Part, 0, len(attached)+1)
	for i, a := range attached {
		entries[i] = a.entry
		parts = append(parts, a.part)
	}

	prompt := prompts.BuildPlanPrompt(prompts.PlanData{
		Result:             result,
		Library:            lib,
		Previews:           entries,
		Visual:             visual,
		Language:           lang,
		PreferredTemplates: preferred,
	})
	parts = append(parts, ai.TextPart(prompt))

	startTime := time.Now()
	text, err := g.model.GenerateText(ctx, ai.TextRequest{
		Model:           g.cfg.GeminiModel,
		Parts:           parts,
		Temperature:     g.cfg.PlanTemperature,
		MaxOutputTokens: g.cfg.PlanMaxTokens,
		Format:          ai.FormatPlain,
	})
	if err != nil {
		return "", domain.NewPipelineError(domain.ErrPlanFailed, lang, fmt.Errorf("プラン生成リクエスト: %w", err))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.NewPipelineError(domain.ErrPlanFailed, lang, errors.New("モデルが空のプランを返しました"))
	}

	logger.Info("プランを生成しました",
		"attachments", len(attached),
		"chars", len([]rune(text)),
		"duration", time.Since(startTime).Round(time.Millisecond),
	)
	return text, nil
}

// previewSet は選定済みテンプレートがあればそれを、無ければ間引いたテンプレートをプレビューにします。
func previewSet(lib *domain.AssetLibrary, preferred []string) []domain.AssetEntry {
	if len(preferred) == 0 {
		return asset.SelectPreviews(lib.Assets)
	}
	var previews []domain.AssetEntry
	for _, rel := range preferred {
		if e, ok := lib.Find(rel); ok {
			previews = append(previews, e)
		}
	}
	if logo, ok := asset.PreferredLogo(lib.Assets); ok {
		previews = append(previews, logo)
	}
	return append(previews, asset.ExtraExamples(lib.Assets, previews, asset.MaxExamples)...)
}
