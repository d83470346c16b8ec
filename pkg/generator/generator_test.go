package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shouni/go-infographic-kit/pkg/ai"
	"github.com/shouni/go-infographic-kit/pkg/asset"
	"github.com/shouni/go-infographic-kit/pkg/brand"
	"github.com/shouni/go-infographic-kit/pkg/config"
	"github.com/shouni/go-infographic-kit/pkg/domain"
	"github.com/shouni/go-infographic-kit/pkg/intent"
	"github.com/shouni/go-infographic-kit/pkg/prompts"
	"github.com/shouni/go-infographic-kit/pkg/retry"

	"github.com/cenkalti/backoff/v4"
)

// scriptedTextModel は呼び出し順に応答を返す ai.TextModel です。
type scriptedTextModel struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	requests  []ai.TextRequest
}

func (m *scriptedTextModel) GenerateText(_ context.Context, req ai.TextRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := len(m.requests)
	m.requests = append(m.requests, req)
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	text := ""
	if i < len(m.responses) {
		text = m.responses[i]
	}
	return text, err
}

// flakyImageModel は最初の failN 回の呼び出しを失敗させる ai.ImageModel です。
type flakyImageModel struct {
	failN int32
	calls atomic.Int32
	last  atomic.Pointer[ai.ImageRequest]
}

func (m *flakyImageModel) GenerateImage(_ context.Context, req ai.ImageRequest) (*ai.Image, error) {
	m.last.Store(&req)
	if m.calls.Add(1) <= m.failN {
		return nil, errors.New("quota exceeded")
	}
	return &ai.Image{Data: []byte("img"), MimeType: "image/png"}, nil
}

func zeroBackOff() backoff.BackOff { return &backoff.ZeroBackOff{} }

// newBrandAssets は一時ディレクトリにブランド aurora のマニフェストとアセットを用意します。
func newBrandAssets(t *testing.T) *BrandAssets {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "brands", "aurora")
	for _, rel := range []string{"a_template/a_template_p0.png", "a_template/a_template_p1.png", "a_logo_color.png", "examples/example_1.png"} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("\x89PNG"+rel), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	manifest := `Template Root: brands/aurora
Brand: Aurora
Assets:
- a_template/a_template_p0.png :: Cover background
- a_template/a_template_p1.png :: Data background
- a_logo_color.png :: Logo
- examples/example_1.png :: Finished example
`
	if err := os.WriteFile(filepath.Join(root, "prompt_template.txt"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return &BrandAssets{
		Registry: brand.DefaultRegistry(),
		Loader:   asset.NewLoader(asset.NewFetcher(dir, nil), 0),
	}
}

func testConfig() config.Config {
	cfg := config.NewConfig("test-key")
	cfg.AnalystBackoff = 0
	return cfg
}

func TestAnalyst_Analyze(t *testing.T) {
	ctx := context.Background()
	builder, err := prompts.NewTextPromptBuilder()
	if err != nil {
		t.Fatal(err)
	}
	newAnalyst := func(m ai.TextModel) *Analyst {
		return NewAnalyst(intent.NewRouter(nil), m, builder, testConfig()).
			WithRetryPolicy(retry.Policy{MaxAttempts: 2, NewBackOff: zeroBackOff})
	}

	t.Run("創作モードのvisualIdeasをcustomVisualPromptに写すこと", func(t *testing.T) {
		m := &scriptedTextModel{responses: []string{"```json\n{\"title\": \"Happy New Year 2026\", \"summary\": \"\", \"keyPoints\": [], \"visualIdeas\": [\"fireworks\", \"gold\"]}\n```"}}
		got, err := newAnalyst(m).Analyze(ctx, domain.DocumentInput{Kind: domain.InputText, Content: "Happy New Year 2026"}, domain.LanguageEnglish)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if got.Mode != domain.ModeCreativeGeneration || got.Title != "Happy New Year 2026" {
			t.Errorf("実際 %+v", got)
		}
		if got.CustomVisualPrompt != "fireworks; gold" {
			t.Errorf("CustomVisualPrompt 実際 %q", got.CustomVisualPrompt)
		}
		if m.requests[0].Format != ai.FormatJSON {
			t.Error("JSON 形式で要求していません")
		}
	})

	t.Run("1回目の失敗後に再試行して成功すること", func(t *testing.T) {
		m := &scriptedTextModel{
			errs:      []error{errors.New("503")},
			responses: []string{"", `{"title": "Report\nQ3", "keyPoints": [{"title": "A", "description": "B"}]}`},
		}
		got, err := newAnalyst(m).Analyze(ctx, domain.DocumentInput{Kind: domain.InputText, Content: "long report text"}, domain.LanguageEnglish)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if len(m.requests) != 2 {
			t.Errorf("呼び出し回数 期待値 2, 実際 %d", len(m.requests))
		}
		if got.Title != "Report Q3" || got.Mode != domain.ModeAutoSummary || len(got.KeyPoints) != 1 {
			t.Errorf("実際 %+v", got)
		}
	})

	t.Run("壊れたJSONが続く場合はErrMalformedResponseを返すこと", func(t *testing.T) {
		m := &scriptedTextModel{responses: []string{`{"a": [[[`, `{"a": [[[`}}
		_, err := newAnalyst(m).Analyze(ctx, domain.DocumentInput{Kind: domain.InputText, Content: "text"}, domain.LanguageChinese)
		if !errors.Is(err, domain.ErrMalformedResponse) {
			t.Fatalf("期待値 ErrMalformedResponse, 実際 %v", err)
		}
		if msg := domain.UserMessageOf(err); !strings.Contains(msg, "AI") {
			t.Errorf("表示メッセージ 実際 %q", msg)
		}
	})

	t.Run("呼び出しが失敗し続ける場合はErrAnalysisFailedを返すこと", func(t *testing.T) {
		m := &scriptedTextModel{errs: []error{errors.New("x"), errors.New("y")}}
		_, err := newAnalyst(m).Analyze(ctx, domain.DocumentInput{Kind: domain.InputText, Content: "text"}, domain.LanguageEnglish)
		if !errors.Is(err, domain.ErrAnalysisFailed) {
			t.Fatalf("期待値 ErrAnalysisFailed, 実際 %v", err)
		}
		if len(m.requests) != 2 {
			t.Errorf("呼び出し回数 期待値 2, 実際 %d", len(m.requests))
		}
	})

	t.Run("ファイル入力はバイナリを添付すること", func(t *testing.T) {
		m := &scriptedTextModel{responses: []string{`{"title": "Doc"}`}}
		in := domain.DocumentInput{Kind: domain.InputFile, Content: "JVBERi0=", FileName: "report.pdf"}
		if _, err := newAnalyst(m).Analyze(ctx, in, domain.LanguageEnglish); err != nil {
			t.Fatal(err)
		}
		parts := m.requests[0].Parts
		if len(parts) != 2 || !parts[0].IsInline() || parts[0].MimeType != "application/pdf" {
			t.Errorf("パート 実際 %+v", parts)
		}
	})

	t.Run("欠落したタイトルは既定値で補うこと", func(t *testing.T) {
		m := &scriptedTextModel{responses: []string{"Sorry."}}
		got, err := newAnalyst(m).Analyze(ctx, domain.DocumentInput{Kind: domain.InputText, Content: "text"}, domain.LanguageEnglish)
		if err != nil {
			t.Fatal(err)
		}
		if got.Title != domain.DefaultTitle {
			t.Errorf("実際 %q", got.Title)
		}
	})
}

func TestTemplateSelector_Select(t *testing.T) {
	ctx := context.Background()
	catalog := []domain.AssetEntry{
		{RelativePath: "t_template/cover.png"},
		{RelativePath: "t_template/data.png"},
		{RelativePath: "t_template/split.png"},
		{RelativePath: "t_template/quote.png"},
		{RelativePath: "logo.png"},
	}

	t.Run("応答の出現順を保ち重複を除くこと", func(t *testing.T) {
		m := &scriptedTextModel{responses: []string{"Best: t_template/data.png\n2. t_template/cover.png\nt_template/data.png again"}}
		got := NewTemplateSelector(m, testConfig()).Select(ctx, domain.ModeAutoSummary, "text", "", catalog)
		if strings.Join(got, ",") != "t_template/data.png,t_template/cover.png" {
			t.Errorf("実際 %v", got)
		}
	})

	t.Run("3件を上限とすること", func(t *testing.T) {
		m := &scriptedTextModel{responses: []string{"t_template/quote.png\nt_template/split.png\nt_template/data.png\nt_template/cover.png"}}
		got := NewTemplateSelector(m, testConfig()).Select(ctx, domain.ModeCreativeGeneration, "text", "", catalog)
		if len(got) != MaxSelectedTemplates || got[0] != "t_template/quote.png" {
			t.Errorf("実際 %v", got)
		}
	})

	t.Run("モデルが失敗した場合は先頭のテンプレートを返すこと", func(t *testing.T) {
		m := &scriptedTextModel{errs: []error{errors.New("down")}}
		got := NewTemplateSelector(m, testConfig()).Select(ctx, domain.ModeAutoSummary, "text", "", catalog)
		if len(got) != 1 || got[0] != "t_template/cover.png" {
			t.Errorf("実際 %v", got)
		}
	})

	t.Run("一致が無い場合は先頭のテンプレートを返すこと", func(t *testing.T) {
		m := &scriptedTextModel{responses: []string{"I like the blue one"}}
		got := NewTemplateSelector(m, testConfig()).Select(ctx, domain.ModeAutoSummary, "text", "", catalog)
		if len(got) != 1 || got[0] != "t_template/cover.png" {
			t.Errorf("実際 %v", got)
		}
	})

	t.Run("テンプレートが無い場合はモデルを呼ばず空を返すこと", func(t *testing.T) {
		m := &scriptedTextModel{}
		got := NewTemplateSelector(m, testConfig()).Select(ctx, domain.ModeAutoSummary, "text", "", catalog[4:])
		if len(got) != 0 || len(m.requests) != 0 {
			t.Errorf("実際 %v, 呼び出し %d", got, len(m.requests))
		}
	})
}

func TestPlanGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	result := domain.AnalysisResult{Mode: domain.ModeAutoSummary, Title: "Q3"}

	t.Run("選定テンプレートとロゴを添付してプランを返すこと", func(t *testing.T) {
		assets := newBrandAssets(t)
		m := &scriptedTextModel{responses: []string{
			"a_template/a_template_p1.png",
			"  1. Concept...\nSELECTED_ASSETS:\n- a_template_p1.png :: base\n  ",
		}}
		cfg := testConfig()
		g := NewPlanGenerator(assets, NewTemplateSelector(m, cfg), m, cfg)

		plan, err := g.Generate(ctx, result, domain.BrandHint{BrandID: "aurora"}, domain.VisualConfig{}, domain.LanguageEnglish)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if !strings.HasPrefix(plan, "1. Concept") {
			t.Errorf("プランが整形されていません: %q", plan)
		}

		req := m.requests[1]
		var inline int
		for _, p := range req.Parts {
			if p.IsInline() {
				inline++
			}
		}
		if inline != 3 {
			t.Errorf("添付数 期待値 3 (テンプレート, ロゴ, 作例), 実際 %d", inline)
		}
		text := req.Parts[len(req.Parts)-1].Text
		if !strings.Contains(text, "[File Input 1] = a_template/a_template_p1.png") {
			t.Errorf("選定テンプレートが先頭に添付されていません:\n%s", text)
		}
		if req.Format != ai.FormatPlain {
			t.Error("プレーンテキスト形式で要求していません")
		}
	})

	t.Run("空のプランはErrPlanFailedを返すこと", func(t *testing.T) {
		m := &scriptedTextModel{responses: []string{"   "}}
		g := NewPlanGenerator(newBrandAssets(t), nil, m, testConfig())
		_, err := g.Generate(ctx, result, domain.BrandHint{}, domain.VisualConfig{}, domain.LanguageEnglish)
		if !errors.Is(err, domain.ErrPlanFailed) {
			t.Fatalf("期待値 ErrPlanFailed, 実際 %v", err)
		}
		if len(m.requests) != 1 {
			t.Errorf("リトライしないこと: 呼び出し %d 回", len(m.requests))
		}
	})

	t.Run("ライブラリが無くても劣化したプロンプトで生成すること", func(t *testing.T) {
		m := &scriptedTextModel{responses: []string{"plan"}}
		assets := &BrandAssets{
			Registry: brand.DefaultRegistry(),
			Loader:   asset.NewLoader(asset.NewFetcher(t.TempDir(), nil), 0),
		}
		plan, err := NewPlanGenerator(assets, nil, m, testConfig()).Generate(ctx, result, domain.BrandHint{}, domain.VisualConfig{}, domain.LanguageEnglish)
		if err != nil || plan != "plan" {
			t.Fatalf("plan=%q err=%v", plan, err)
		}
		if !strings.Contains(m.requests[0].Parts[0].Text, "metadata is unavailable") {
			t.Error("メタデータ欠落の注記がありません")
		}
	})
}

func TestImageGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	result := domain.AnalysisResult{Mode: domain.ModeAutoSummary, Title: "Q3", Summary: "Up"}
	plan := "Put a_logo_color.png top-right.\nSELECTED_ASSETS:\n- a_template_p0.png :: base\n- a_logo_color.png :: logo\n"

	t.Run("3件中2件が失敗しても成功した1件の画像を返すこと", func(t *testing.T) {
		model := &flakyImageModel{failN: 2}
		g := NewImageGenerator(newBrandAssets(t), model, testConfig())

		uris, err := g.Generate(ctx, result, domain.BrandHint{}, domain.VisualConfig{AspectRatio: "16:9"}, domain.LanguageEnglish, plan)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if len(uris) != 1 || !strings.HasPrefix(uris[0], "data:image/png;base64,") {
			t.Errorf("実際 %v", uris)
		}
		if model.calls.Load() != 3 {
			t.Errorf("リクエスト数 期待値 3, 実際 %d", model.calls.Load())
		}
	})

	t.Run("全ての画像生成が失敗した場合は表示メッセージ付きのエラーを返すこと", func(t *testing.T) {
		model := &flakyImageModel{failN: 3}
		g := NewImageGenerator(newBrandAssets(t), model, testConfig())

		uris, err := g.Generate(ctx, result, domain.BrandHint{}, domain.VisualConfig{}, domain.LanguageEnglish, plan)
		if !errors.Is(err, domain.ErrGenerationFailed) {
			t.Fatalf("期待値 ErrGenerationFailed, 実際 %v", err)
		}
		if uris != nil {
			t.Errorf("画像は返さないこと: %v", uris)
		}
		if domain.UserMessageOf(err) == "" {
			t.Error("表示メッセージが空です")
		}
	})

	t.Run("参照番号で添付を示しプランのファイル名を置換すること", func(t *testing.T) {
		model := &flakyImageModel{}
		g := NewImageGenerator(newBrandAssets(t), model, testConfig())
		if _, err := g.Generate(ctx, result, domain.BrandHint{}, domain.VisualConfig{AspectRatio: "16:9"}, domain.LanguageEnglish, plan); err != nil {
			t.Fatal(err)
		}

		req := model.last.Load()
		if req.AspectRatio != "16:9" {
			t.Errorf("AspectRatio 実際 %q", req.AspectRatio)
		}
		// テンプレート, ロゴ, 作例 + テキスト
		if len(req.Parts) != 4 {
			t.Fatalf("パート数 期待値 4, 実際 %d", len(req.Parts))
		}
		text := req.Parts[3].Text
		if strings.Contains(text, "a_logo_color.png") {
			t.Error("プラン中のファイル名が置換されていません")
		}
		for _, want := range []string{"Put [File Input 2] top-right.", "[File Input 1] is the BASE LAYER", "[File Input 3]: style example"} {
			if !strings.Contains(text, want) {
				t.Errorf("%q が含まれていません", want)
			}
		}
	})
}
