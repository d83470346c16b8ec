package cmd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-infographic-kit/internal/config"
	"github.com/shouni/go-infographic-kit/pkg/asset"
	"github.com/shouni/go-infographic-kit/pkg/brand"
	"github.com/shouni/go-infographic-kit/pkg/domain"
	"github.com/shouni/go-infographic-kit/pkg/workflow"
)

// inputOptions は解析対象の入力を指定するフラグなのだ。
type inputOptions struct {
	Text    string
	File    string
	Context string
	Mode    string
}

// visualOptions はキャンバスの見た目を指定するフラグなのだ。
type visualOptions struct {
	AspectRatio string
	Style       string
}

func newManager(ctx context.Context) (*workflow.Manager, error) {
	appCfg := config.LoadConfig()
	cfg := appCfg.Pipeline
	if global.Model != "" {
		cfg.GeminiModel = global.Model
	}
	if global.Image != "" {
		cfg.ImageModel = global.Image
	}
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}

	registry := brand.DefaultRegistry()
	if appCfg.BrandsFile != "" {
		r, err := brand.LoadRegistry(appCfg.BrandsFile)
		if err != nil {
			return nil, fmt.Errorf("ブランド定義の読み込みに失敗したのだ: %w", err)
		}
		registry = r
	}

	return workflow.New(ctx, workflow.ManagerArgs{
		Config:     cfg,
		HTTPClient: asset.NewHTTPClient(asset.ClientOptions{Timeout: appCfg.HTTPTimeout}),
		AssetClient: asset.NewAssetClient(asset.ClientOptions{
			Timeout:             appCfg.HTTPTimeout,
			AllowPrivateNetwork: appCfg.AllowPrivateAssets,
		}),
		Registry: registry,
	})
}

// readDocument はフラグから DocumentInput を組み立てるのだ。ファイルは base64 にして渡すのだ。
func readDocument(opts inputOptions) (domain.DocumentInput, error) {
	in := domain.DocumentInput{UserContext: opts.Context}
	if opts.Mode != "" {
		mode, err := domain.ParseMode(opts.Mode)
		if err != nil {
			return in, err
		}
		in.PreferredModeOverride = mode
	}

	switch {
	case opts.File != "":
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return in, fmt.Errorf("入力ファイルの読み込みに失敗したのだ: %w", err)
		}
		in.Kind = domain.InputFile
		in.Content = base64.StdEncoding.EncodeToString(data)
		in.FileName = filepath.Base(opts.File)
		in.MimeType = asset.MimeTypeFromExt(opts.File)
	case opts.Text == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return in, fmt.Errorf("標準入力の読み込みに失敗したのだ: %w", err)
		}
		in.Kind = domain.InputText
		in.Content = string(data)
	case opts.Text != "":
		in.Kind = domain.InputText
		in.Content = opts.Text
	default:
		return in, errors.New("--text または --file を指定してほしいのだ")
	}
	if in.Kind == domain.InputText && strings.TrimSpace(in.Content) == "" {
		return in, errors.New("入力テキストが空なのだ")
	}
	return in, nil
}

// readAnalysis はレビュー済みの解析結果 JSON を読み込むのだ。
func readAnalysis(path string) (domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	data, err := readFileOrStdin(path)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("解析結果 JSON の形式が不正なのだ: %w", err)
	}
	if !result.Mode.Valid() {
		result.Mode = domain.ModeAutoSummary
	}
	return result, nil
}

func readFileOrStdin(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func brandHint(fileName string) domain.BrandHint {
	return domain.BrandHint{BrandID: global.Brand, FileName: fileName}
}

func (o visualOptions) config() domain.VisualConfig {
	return domain.VisualConfig{AspectRatio: o.AspectRatio, StyleNotes: o.Style}
}

func language() domain.Language {
	return domain.Language(global.Lang).Normalize()
}

// userError は表示用メッセージに内部原因を添えて返すのだ。
func userError(err error) error {
	return fmt.Errorf("%s (%w)", domain.UserMessageOf(err), err)
}
