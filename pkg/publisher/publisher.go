package publisher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

// DefaultImageBaseName は保存する画像の共通のベース名です。連番は拡張子の前に挿入されます。
const DefaultImageBaseName = "infographic"

// OutputWriter は成果物の書き込み先を抽象化します。
type OutputWriter interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// FileWriter はローカルファイルシステムへ書き込む OutputWriter です。
type FileWriter struct{}

// Write は親ディレクトリを作成してから path に書き込みます。
func (FileWriter) Write(ctx context.Context, path string, r io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.Contains(path, "://") {
		return fmt.Errorf("ローカル以外の出力先には対応していません: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ImagePublisher は生成された data URI を画像ファイルとして保存します。
type ImagePublisher struct {
	writer OutputWriter
}

// NewImagePublisher は ImagePublisher を生成します。writer が nil の場合は FileWriter を使用します。
func NewImagePublisher(writer OutputWriter) *ImagePublisher {
	if writer == nil {
		writer = FileWriter{}
	}
	return &ImagePublisher{writer: writer}
}

// Publish は images を <outputDir>/infographic_N.<ext> として書き込み、保存したパスを返します。
// 連番は入力の順序に対応し、1から始まります。
func (p *ImagePublisher) Publish(ctx context.Context, images []string, outputDir string) ([]string, error) {
	paths := make([]string, 0, len(images))
	for i, uri := range images {
		data, mimeType, err := DecodeDataURI(uri)
		if err != nil {
			return paths, fmt.Errorf("画像 %d のデコードに失敗しました: %w", i+1, err)
		}

		base, err := urlpath.ResolvePath(outputDir, DefaultImageBaseName+ExtensionFor(mimeType))
		if err != nil {
			return paths, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
		}
		fullPath, err := urlpath.GenerateIndexedPath(base, i+1)
		if err != nil {
			return paths, fmt.Errorf("連番パスの生成に失敗しました: %w", err)
		}

		if err := p.writer.Write(ctx, fullPath, bytes.NewReader(data), mimeType); err != nil {
			return paths, fmt.Errorf("画像の書き込みに失敗しました %s: %w", fullPath, err)
		}
		slog.InfoContext(ctx, "画像を保存しました", "path", fullPath, "bytes", len(data))
		paths = append(paths, fullPath)
	}
	return paths, nil
}
