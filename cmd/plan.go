package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	planAnalysis string
	planVisual   visualOptions
	planFileName string
	planOutput   string
)

// planCmd はレビュー済みの解析結果からレイアウトプランを生成するのだ。
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "解析結果 JSON からレイアウトプランを生成するのだ。",
	RunE:  planCommand,
}

func init() {
	planCmd.Flags().StringVarP(&planAnalysis, "analysis", "a", "", "解析結果 JSON のパス（'-'で標準入力なのだ）。")
	planCmd.Flags().StringVar(&planFileName, "source-name", "", "ブランド推定に使う元ファイル名なのだ。")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "", "プランの保存先（省略時は標準出力）なのだ。")
	addVisualFlags(planCmd, &planVisual)
	_ = planCmd.MarkFlagRequired("analysis")
}

func addVisualFlags(cmd *cobra.Command, opts *visualOptions) {
	cmd.Flags().StringVarP(&opts.AspectRatio, "aspect-ratio", "r", "3:4", "キャンバスのアスペクト比なのだ。")
	cmd.Flags().StringVarP(&opts.Style, "style", "s", "", "配色や雰囲気の指定なのだ。")
}

func planCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	result, err := readAnalysis(planAnalysis)
	if err != nil {
		return err
	}
	m, err := newManager(ctx)
	if err != nil {
		return err
	}

	plan, err := m.GeneratePlan(ctx, result, brandHint(planFileName), planVisual.config(), language())
	if err != nil {
		return userError(err)
	}

	if planOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), plan)
		return nil
	}
	if err := os.WriteFile(planOutput, []byte(plan), 0o644); err != nil {
		return fmt.Errorf("プランの保存に失敗したのだ: %w", err)
	}
	return nil
}
