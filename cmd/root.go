package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globalOptions はすべてのサブコマンドで共通のフラグなのだ。
type globalOptions struct {
	Verbose bool
	LogJSON bool
	Brand   string
	Lang    string
	Model   string
	Image   string
}

var global globalOptions

var rootCmd = &cobra.Command{
	Use:           "infographic",
	Short:         "ブランドのテンプレートに沿ったインフォグラフィックを生成するのだ。",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env が無くてもエラーにはしないのだ
		_ = godotenv.Load()
		slog.SetDefault(newLogger(global.Verbose, global.LogJSON))
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&global.Verbose, "verbose", "v", false, "デバッグログを出力するのだ。")
	pf.BoolVar(&global.LogJSON, "log-json", false, "ログを JSON 形式で出力するのだ。")
	pf.StringVarP(&global.Brand, "brand", "b", "", "ブランドID（省略時はファイル名から推定、最後は既定ブランド）なのだ。")
	pf.StringVarP(&global.Lang, "lang", "l", "en", "出力言語（en または zh）なのだ。")
	pf.StringVar(&global.Model, "model", "", "テキスト生成用の Gemini モデル名なのだ。")
	pf.StringVar(&global.Image, "image-model", "", "画像生成用の Gemini モデル名なのだ。")

	rootCmd.AddCommand(analyzeCmd, planCmd, generateCmd)
}

func newLogger(verbose, asJSON bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "エラー:", err)
		os.Exit(1)
	}
}
