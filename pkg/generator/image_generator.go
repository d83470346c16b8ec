package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shouni/go-infographic-kit/pkg/ai"
	"github.com/shouni/go-infographic-kit/pkg/asset"
	"github.com/shouni/go-infographic-kit/pkg/config"
	"github.com/shouni/go-infographic-kit/pkg/domain"
	"github.com/shouni/go-infographic-kit/pkg/prompts"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ImageGenerator は同一プロンプトで複数の画像を並列に生成し、成功した分だけを返します。
type ImageGenerator struct {
	assets  *BrandAssets
	model   ai.ImageModel
	cfg     config.Config
	limiter *rate.Limiter
}

// NewImageGenerator は ImageGenerator を生成します。RateInterval が 0 より大きい場合はリクエスト発行を制限します。
func NewImageGenerator(assets *BrandAssets, model ai.ImageModel, cfg config.Config) *ImageGenerator {
	var limiter *rate.Limiter
	if cfg.RateInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.RateInterval), defaultRateBurst)
	}
	return &ImageGenerator{assets: assets, model: model, cfg: cfg, limiter: limiter}
}

// Generate は ImageCount 件のリクエストを並列に発行します。
// 個々の失敗は記録して無視し、1件も生成できなかった場合のみ ErrGenerationFailed を返します。
func (g *ImageGenerator) Generate(ctx context.Context, result domain.AnalysisResult, hint domain.BrandHint, visual domain.VisualConfig, lang domain.Language, planText string) ([]string, error) {
	lang = lang.Normalize()
	brandCfg, lib := g.assets.Library(ctx, hint)

	selected := asset.ResolveAssets(lib, planText)
	if lib != nil {
		selected = append(selected, asset.ExtraExamples(lib.Assets, selected, asset.MaxExamples)...)
	}

	attached := g.assets.fetchAll(ctx, selected)
	refs := make([]prompts.Reference, len(attached))
	parts := make([]ai.Part, 0, len(attached)+1)
	for i, a := range attached {
		refs[i] = prompts.Reference{Index: i + 1, Asset: a.entry, Role: roleOf(a.entry)}
		parts = append(parts, a.part)
	}

	prompt := prompts.BuildImagePrompt(prompts.ImageData{
		Result:     result,
		Visual:     visual,
		Language:   lang,
		References: refs,
		PlanText:   prompts.ReplaceFilenames(planText, refs),
		BrandName:  brandDisplayName(brandCfg, lib),
	})
	parts = append(parts, ai.TextPart(prompt))

	_, _, ratio := visual.Ratio()
	req := ai.ImageRequest{
		Model:       g.cfg.ImageModel,
		Parts:       parts,
		Temperature: g.cfg.ImageTemperature,
		AspectRatio: ratio,
	}

	count := g.cfg.ImageCount
	if count < 1 {
		count = config.DefaultImageCount
	}
	images, failures := g.generateAll(ctx, req, count)

	var uris []string
	for _, img := range images {
		if img != "" {
			uris = append(uris, img)
		}
	}
	if len(uris) == 0 {
		cause := errors.Join(failures...)
		if cause == nil {
			cause = errors.New("画像を含む応答がありませんでした")
		}
		return nil, domain.NewPipelineError(domain.ErrGenerationFailed, lang, cause)
	}

	slog.InfoContext(ctx, "画像を生成しました",
		"brand", brandCfg.ID,
		"requested", count,
		"succeeded", len(uris),
		"references", len(refs),
	)
	return uris, nil
}

// generateAll は count 件を並列に実行し、リクエスト順のスロットに結果を格納します。
func (g *ImageGenerator) generateAll(ctx context.Context, req ai.ImageRequest, count int) ([]string, []error) {
	images := make([]string, count)
	var (
		mu       sync.Mutex
		failures []error
	)
	fail := func(err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		i := i
		eg.Go(func() error {
			logger := slog.With("instance", i+1)
			if g.limiter != nil {
				if err := g.limiter.Wait(egCtx); err != nil {
					fail(fmt.Errorf("instance %d: %w", i+1, err))
					return nil
				}
			}

			startTime := time.Now()
			img, err := g.model.GenerateImage(egCtx, req)
			if err != nil {
				logger.Warn("画像生成に失敗しました", "error", err)
				fail(fmt.Errorf("instance %d: %w", i+1, err))
				return nil
			}
			if img == nil {
				logger.Warn("応答に画像が含まれていません")
				return nil
			}
			logger.Info("画像生成が完了しました", "duration", time.Since(startTime).Round(time.Millisecond))
			images[i] = img.DataURI()
			return nil
		})
	}
	_ = eg.Wait()
	return images, failures
}

func roleOf(e domain.AssetEntry) prompts.ReferenceRole {
	switch {
	case asset.IsTemplate(e):
		return prompts.RoleTemplate
	case asset.IsLogo(e):
		return prompts.RoleLogo
	case asset.IsExample(e):
		return prompts.RoleExample
	default:
		return prompts.RoleAsset
	}
}
