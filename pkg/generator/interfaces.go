package generator

import (
	"context"

	"github.com/shouni/go-infographic-kit/pkg/domain"
)

// ContentAnalyzer は入力を構造化された AnalysisResult に変換します。
type ContentAnalyzer interface {
	Analyze(ctx context.Context, in domain.DocumentInput, lang domain.Language) (domain.AnalysisResult, error)
}

// PlanWriter はレイアウトプランのテキストを生成します。
type PlanWriter interface {
	Generate(ctx context.Context, result domain.AnalysisResult, hint domain.BrandHint, visual domain.VisualConfig, lang domain.Language) (string, error)
}

// InfographicRenderer は data URI 形式の画像を生成します。
type InfographicRenderer interface {
	Generate(ctx context.Context, result domain.AnalysisResult, hint domain.BrandHint, visual domain.VisualConfig, lang domain.Language, planText string) ([]string, error)
}
