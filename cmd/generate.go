package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-infographic-kit/pkg/domain"
	"github.com/shouni/go-infographic-kit/pkg/publisher"

	"github.com/spf13/cobra"
)

var (
	generateInput    inputOptions
	generateVisual   visualOptions
	generateAnalysis string
	generatePlanFile string
	generateWithPlan bool
	generateOutDir   string
)

// generateCmd は解析、プラン、画像生成までを通しで実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "インフォグラフィック画像を生成して保存するのだ。",
	Long: `入力を解析し（または既存の解析結果 JSON を読み込み）、ブランドのテンプレートに沿った画像を生成するのだ。
--with-plan を付けると、画像生成の前にレイアウトプランも作るのだよ。`,
	RunE: generateCommand,
}

func init() {
	addInputFlags(generateCmd, &generateInput)
	addVisualFlags(generateCmd, &generateVisual)
	f := generateCmd.Flags()
	f.StringVarP(&generateAnalysis, "analysis", "a", "", "解析をスキップして使う解析結果 JSON のパスなのだ。")
	f.StringVarP(&generatePlanFile, "plan", "p", "", "既存のプランファイルのパスなのだ。")
	f.BoolVar(&generateWithPlan, "with-plan", false, "画像生成の前にプランを生成するのだ。")
	f.StringVarP(&generateOutDir, "output-dir", "o", "output", "画像の保存先ディレクトリなのだ。")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	lang := language()

	m, err := newManager(ctx)
	if err != nil {
		return err
	}

	var (
		result   domain.AnalysisResult
		fileName string
	)
	if generateAnalysis != "" {
		if result, err = readAnalysis(generateAnalysis); err != nil {
			return err
		}
	} else {
		in, err := readDocument(generateInput)
		if err != nil {
			return err
		}
		fileName = in.FileName
		if result, err = m.Analyze(ctx, in, lang); err != nil {
			return userError(err)
		}
	}
	hint := brandHint(fileName)
	visual := generateVisual.config()

	var plan string
	switch {
	case generatePlanFile != "":
		data, err := readFileOrStdin(generatePlanFile)
		if err != nil {
			return fmt.Errorf("プランの読み込みに失敗したのだ: %w", err)
		}
		plan = string(data)
	case generateWithPlan:
		// プランが作れなくても画像生成は続けるのだ
		if plan, err = m.GeneratePlan(ctx, result, hint, visual, lang); err != nil {
			slog.Warn("プラン無しで画像を生成するのだ", "error", err)
		}
	}

	images, err := m.GenerateImages(ctx, result, hint, visual, lang, plan)
	if err != nil {
		return userError(err)
	}

	paths, err := publisher.NewImagePublisher(nil).Publish(ctx, images, generateOutDir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	slog.Info("すべての生成工程が完了したのだ！", "images", len(paths), "title", result.Title)
	return nil
}
