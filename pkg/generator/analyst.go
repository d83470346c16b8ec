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
	"github.com/shouni/go-infographic-kit/pkg/intent"
	"github.com/shouni/go-infographic-kit/pkg/parser"
	"github.com/shouni/go-infographic-kit/pkg/prompts"
	"github.com/shouni/go-infographic-kit/pkg/retry"
)

// Analyst は入力の意図を判定し、モード別の指示でテキストモデルから構造化結果を取り出します。
type Analyst struct {
	router  *intent.Router
	model   ai.TextModel
	builder prompts.PromptBuilder
	cfg     config.Config
	policy  retry.Policy
}

// NewAnalyst は Analyst を生成します。
func NewAnalyst(router *intent.Router, model ai.TextModel, builder prompts.PromptBuilder, cfg config.Config) *Analyst {
	return &Analyst{
		router:  router,
		model:   model,
		builder: builder,
		cfg:     cfg,
		policy:  retry.NewPolicy(cfg.AnalystMaxAttempts, cfg.AnalystBackoff),
	}
}

// WithRetryPolicy はリトライ方針を差し替えます。
func (a *Analyst) WithRetryPolicy(p retry.Policy) *Analyst {
	a.policy = p
	return a
}

// Analyze は入力を解析します。
// 試行を使い切った場合、最後の失敗が JSON の破損であれば ErrMalformedResponse、それ以外は ErrAnalysisFailed を返します。
func (a *Analyst) Analyze(ctx context.Context, in domain.DocumentInput, lang domain.Language) (domain.AnalysisResult, error) {
	lang = lang.Normalize()
	mode := a.router.Route(ctx, in)
	logger := slog.With("mode", mode, "kind", in.Kind, "lang", lang)

	instruction, err := a.builder.Build(mode, prompts.NewTemplateData(in, lang))
	if err != nil {
		return domain.AnalysisResult{}, domain.NewPipelineError(domain.ErrAnalysisFailed, lang, err)
	}
	parts, err := analysisParts(in, instruction)
	if err != nil {
		return domain.AnalysisResult{}, domain.NewPipelineError(domain.ErrAnalysisFailed, lang, err)
	}

	var obj map[string]any
	startTime := time.Now()
	err = retry.Do(ctx, a.policy, func(ctx context.Context, attempt int) error {
		raw, err := a.model.GenerateText(ctx, ai.TextRequest{
			Model:           a.cfg.GeminiModel,
			Parts:           parts,
			Temperature:     a.cfg.AnalystTemperature,
			MaxOutputTokens: a.cfg.AnalystMaxTokens,
			Format:          ai.FormatJSON,
		})
		if err != nil {
			logger.Warn("解析リクエストに失敗しました", "attempt", attempt, "error", err)
			return err
		}
		parsed, err := parser.ParseJSON(raw)
		if err != nil {
			logger.Warn("解析結果のパースに失敗しました", "attempt", attempt, "error", err)
			return err
		}
		obj = parsed
		return nil
	})
	if err != nil {
		kind := domain.ErrAnalysisFailed
		if errors.Is(err, domain.ErrMalformedResponse) {
			kind = domain.ErrMalformedResponse
		}
		return domain.AnalysisResult{}, domain.NewPipelineError(kind, lang, err)
	}

	result := toAnalysisResult(mode, obj).Sanitize()
	logger.Info("解析が完了しました",
		"title", result.Title,
		"key_points", len(result.KeyPoints),
		"duration", time.Since(startTime).Round(time.Millisecond),
	)
	return result, nil
}

// analysisParts はモデルに渡すパートを組み立てます。ファイル入力はバイナリを先頭に添付します。
func analysisParts(in domain.DocumentInput, instruction string) ([]ai.Part, error) {
	if !in.IsFile() {
		return []ai.Part{ai.TextPart(instruction)}, nil
	}
	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = asset.MimeTypeFromExt(in.FileName)
	}
	if mimeType == "" {
		mimeType = DefaultFileMimeType
	}
	file, err := ai.PartFromBase64(in.Content, mimeType)
	if err != nil {
		return nil, fmt.Errorf("ファイル入力 (%s): %w", in.FileName, err)
	}
	return []ai.Part{file, ai.TextPart(instruction)}, nil
}

// toAnalysisResult はパース済みオブジェクトを AnalysisResult に写します。欠落したフィールドは空のままです。
func toAnalysisResult(mode domain.AnalysisMode, obj map[string]any) domain.AnalysisResult {
	r := domain.AnalysisResult{
		Mode:    mode,
		Title:   stringField(obj["title"]),
		Summary: stringField(obj["summary"]),
	}
	if items, ok := obj["keyPoints"].([]any); ok {
		for _, item := range items {
			switch v := item.(type) {
			case map[string]any:
				r.KeyPoints = append(r.KeyPoints, domain.KeyPoint{
					Title:       stringField(v["title"]),
					Description: stringField(v["description"]),
					Category:    stringField(v["category"]),
				})
			case string:
				r.KeyPoints = append(r.KeyPoints, domain.KeyPoint{Title: v})
			}
		}
	}
	if mode == domain.ModeCreativeGeneration {
		r.CustomVisualPrompt = stringField(obj["visualIdeas"])
	}
	return r
}

// stringField は文字列、数値、文字列配列を文字列に変換します。
func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64, bool:
		return fmt.Sprint(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := stringField(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}
