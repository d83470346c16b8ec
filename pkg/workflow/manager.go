package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-infographic-kit/pkg/ai"
	"github.com/shouni/go-infographic-kit/pkg/asset"
	"github.com/shouni/go-infographic-kit/pkg/brand"
	"github.com/shouni/go-infographic-kit/pkg/config"
	"github.com/shouni/go-infographic-kit/pkg/domain"
	"github.com/shouni/go-infographic-kit/pkg/generator"
	"github.com/shouni/go-infographic-kit/pkg/intent"
	"github.com/shouni/go-infographic-kit/pkg/prompts"

	"github.com/patrickmn/go-cache"
)

// Manager はパイプラインの各工程を構築し、呼び出し側に3つの入口を提供します。
// アセットのキャッシュは New で生成した Loader に閉じており、Manager ごとに独立しています。
type Manager struct {
	cfg      config.Config
	registry *brand.Registry
	analyst  generator.ContentAnalyzer
	planner  generator.PlanWriter
	renderer generator.InfographicRenderer
}

// New は、設定と依存関係を基に新しい Manager を初期化します。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	cfg := args.Config

	assetClient := args.AssetClient
	if assetClient == nil {
		assetClient = asset.NewAssetClient(asset.ClientOptions{})
	}
	fetcher := args.Fetcher
	if fetcher == nil {
		fetcher = asset.NewFetcher(cfg.AssetBaseURL, assetClient)
	}

	textModel, imageModel, err := initializeModels(ctx, ai.ClientOptions{
		APIKey:           cfg.GeminiAPIKey,
		HTTPClient:       args.HTTPClient,
		Downloader:       assetClient,
		Reader:           asset.FetcherReader{Fetcher: fetcher},
		Cache:            cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		ImageTemperature: cfg.ImageTemperature,
	}, args.TextModel, args.ImageModel)
	if err != nil {
		return nil, err
	}

	builder, err := initializePromptBuilder(args.PromptBuilder)
	if err != nil {
		return nil, err
	}

	registry := args.Registry
	if registry == nil {
		registry = brand.DefaultRegistry()
	}
	loader := asset.NewLoader(fetcher, cfg.CacheTTL)
	assets := &generator.BrandAssets{Registry: registry, Loader: loader}

	router := intent.NewRouter(&intent.ModelClassifier{
		Model:       textModel,
		ModelName:   cfg.GeminiModel,
		Temperature: cfg.RouterTemperature,
		MaxTokens:   cfg.RouterMaxTokens,
	})

	var selector *generator.TemplateSelector
	if cfg.EnableTemplateSelection {
		selector = generator.NewTemplateSelector(textModel, cfg)
	}

	return &Manager{
		cfg:      cfg,
		registry: registry,
		analyst:  generator.NewAnalyst(router, textModel, builder, cfg),
		planner:  generator.NewPlanGenerator(assets, selector, textModel, cfg),
		renderer: generator.NewImageGenerator(assets, imageModel, cfg),
	}, nil
}

// initializeModels は未指定のモデルを Gemini クライアントで補います。
func initializeModels(ctx context.Context, opts ai.ClientOptions, text ai.TextModel, image ai.ImageModel) (ai.TextModel, ai.ImageModel, error) {
	if text != nil && image != nil {
		return text, image, nil
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = asset.NewHTTPClient(asset.ClientOptions{})
	}
	client, err := ai.NewGeminiClient(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	if text == nil {
		text = client
	}
	if image == nil {
		image = client
	}
	return text, image, nil
}

// initializePromptBuilder は解析プロンプトのビルダーを初期化します。
// 引数として既存のビルダーが渡された場合はそれを返し、nil の場合は新規作成します。
func initializePromptBuilder(pb prompts.PromptBuilder) (prompts.PromptBuilder, error) {
	if pb != nil {
		return pb, nil
	}
	b, err := prompts.NewTextPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("TextPromptBuilder の新規作成に失敗しました: %w", err)
	}
	return b, nil
}

// Analyze は入力の意図を判定し、構造化された解析結果を返します。
func (m *Manager) Analyze(ctx context.Context, in domain.DocumentInput, lang domain.Language) (domain.AnalysisResult, error) {
	ctx, cancel := m.stageContext(ctx)
	defer cancel()

	slog.InfoContext(ctx, "解析を開始します", "kind", in.Kind, "file", in.FileName)
	return m.analyst.Analyze(ctx, in, lang)
}

// GeneratePlan はレビュー済みの解析結果からレイアウトプランを生成します。
func (m *Manager) GeneratePlan(ctx context.Context, result domain.AnalysisResult, hint domain.BrandHint, visual domain.VisualConfig, lang domain.Language) (string, error) {
	ctx, cancel := m.stageContext(ctx)
	defer cancel()

	slog.InfoContext(ctx, "プラン生成を開始します", "brand", m.registry.Resolve(hint), "aspect_ratio", visual.AspectRatio)
	return m.planner.Generate(ctx, result, hint, visual, lang)
}

// GenerateImages はインフォグラフィック画像を生成し、data URI の一覧を返します。planText は空でも構いません。
func (m *Manager) GenerateImages(ctx context.Context, result domain.AnalysisResult, hint domain.BrandHint, visual domain.VisualConfig, lang domain.Language, planText string) ([]string, error) {
	ctx, cancel := m.stageContext(ctx)
	defer cancel()

	slog.InfoContext(ctx, "画像生成を開始します", "brand", m.registry.Resolve(hint), "with_plan", planText != "")
	return m.renderer.Generate(ctx, result, hint, visual, lang, planText)
}

// Registry はブランドの一覧を返します。
func (m *Manager) Registry() *brand.Registry {
	return m.registry
}

func (m *Manager) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.cfg.StageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.cfg.StageTimeout)
}
