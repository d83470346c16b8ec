package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	analyzeInput  inputOptions
	analyzeOutput string
)

// analyzeCmd は入力を解析して、レビュー用の解析結果 JSON を出力するのだ。
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "テキストやファイルを解析して要点を JSON で出力するのだ。",
	RunE:  analyzeCommand,
}

func init() {
	addInputFlags(analyzeCmd, &analyzeInput)
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "保存先の JSON パス（省略時は標準出力）なのだ。")
}

func addInputFlags(cmd *cobra.Command, opts *inputOptions) {
	cmd.Flags().StringVarP(&opts.Text, "text", "t", "", "解析するテキスト（'-'で標準入力なのだ）。")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "解析するファイルのパス（PDF や画像）なのだ。")
	cmd.Flags().StringVarP(&opts.Context, "context", "c", "", "質問や注目してほしい観点なのだ。")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "", "解析モードを固定するのだ（AUTO_SUMMARY / TARGETED_ANALYSIS / CREATIVE_GENERATION）。")
}

func analyzeCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	in, err := readDocument(analyzeInput)
	if err != nil {
		return err
	}
	m, err := newManager(ctx)
	if err != nil {
		return err
	}

	result, err := m.Analyze(ctx, in, language())
	if err != nil {
		return userError(err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if analyzeOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	if err := os.WriteFile(analyzeOutput, data, 0o644); err != nil {
		return fmt.Errorf("解析結果の保存に失敗したのだ: %w", err)
	}
	slog.Info("解析結果を保存したのだ", "path", analyzeOutput, "mode", result.Mode)
	return nil
}
