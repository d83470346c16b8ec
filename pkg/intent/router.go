package intent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-infographic-kit/pkg/ai"
	"github.com/shouni/go-infographic-kit/pkg/domain"
	"github.com/shouni/go-infographic-kit/pkg/parser"
	"github.com/shouni/go-infographic-kit/pkg/prompts"
)

// FallbackMode はどのルールにも一致せず分類にも失敗した場合のモードです。
const FallbackMode = domain.ModeAutoSummary

// Classifier はルールで決まらない入力をモデルで分類する戦略です。
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.AnalysisMode, error)
}

// Router はルールを順に評価し、最後に Classifier を呼び出します。
type Router struct {
	rules      []Rule
	classifier Classifier
}

// NewRouter は Router を生成します。classifier が nil の場合はモデル呼び出しを行いません。
func NewRouter(classifier Classifier, rules ...Rule) *Router {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Router{rules: rules, classifier: classifier}
}

// Route は入力の解析モードを返します。失敗することはありません。
func (r *Router) Route(ctx context.Context, in domain.DocumentInput) domain.AnalysisMode {
	for _, rule := range r.rules {
		if mode, ok := rule.Match(in); ok {
			slog.DebugContext(ctx, "ルールで解析モードを決定しました", "rule", rule.Name, "mode", mode)
			return mode
		}
	}

	if r.classifier == nil {
		return FallbackMode
	}
	mode, err := r.classifier.Classify(ctx, CombinedText(in))
	if err != nil {
		slog.WarnContext(ctx, "解析モードの分類に失敗したため既定モードを使用します", "error", err, "mode", FallbackMode)
		return FallbackMode
	}
	slog.DebugContext(ctx, "モデルで解析モードを決定しました", "mode", mode)
	return mode
}

// ModelClassifier はスキーマで3値に制約したテキストモデル呼び出しで分類します。
type ModelClassifier struct {
	Model       ai.TextModel
	ModelName   string
	Temperature float32
	MaxTokens   int32
}

// Classify はモデルの応答が有効なモードであればそれを返します。
func (c *ModelClassifier) Classify(ctx context.Context, text string) (domain.AnalysisMode, error) {
	raw, err := c.Model.GenerateText(ctx, ai.TextRequest{
		Model:           c.ModelName,
		Parts:           []ai.Part{ai.TextPart(prompts.BuildRouterPrompt(text))},
		Temperature:     c.Temperature,
		MaxOutputTokens: c.MaxTokens,
		Format:          ai.FormatJSON,
		Schema:          prompts.RouterSchema(),
	})
	if err != nil {
		return "", err
	}
	obj, err := parser.ParseJSON(raw)
	if err != nil {
		return "", err
	}
	value, ok := obj[prompts.RouterModeField].(string)
	if !ok {
		return "", fmt.Errorf("分類応答に %s がありません: %s", prompts.RouterModeField, raw)
	}
	return domain.ParseMode(value)
}
