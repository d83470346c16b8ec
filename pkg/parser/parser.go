// Package parser はモデル応答に含まれる JSON オブジェクトを寛容に解析します。
package parser

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-infographic-kit/pkg/domain"
)

const (
	// refusalMaxLength 未満でコロンを含まないテキストは拒否応答とみなします。
	refusalMaxLength = 50

	UnknownInputKey   = "inputType"
	UnknownInputValue = "UNKNOWN"
)

// truncationRepairs は途中で切れた JSON を閉じるための接尾辞です。試行順に並んでいます。
var truncationRepairs = []string{`"}`, `"]}`, `}]}`}

// ParseJSON はモデル応答テキストから JSON オブジェクトを取り出して返します。
// 修復がすべて失敗した場合は domain.ErrMalformedResponse をラップしたエラーを返します。
func ParseJSON(raw string) (map[string]any, error) {
	text := StripFences(raw)

	start := strings.Index(text, "{")
	if start < 0 {
		if len([]rune(text)) < refusalMaxLength && !strings.Contains(text, ":") {
			slog.Debug("JSON が見つからないため UNKNOWN として扱います", "text", text)
			return map[string]any{UnknownInputKey: UnknownInputValue}, nil
		}
		return nil, fmt.Errorf("%w: JSON オブジェクトが見つかりません", domain.ErrMalformedResponse)
	}

	candidate := text[start:]
	if end := strings.LastIndex(candidate, "}"); end >= 0 {
		candidate = candidate[:end+1]
	}

	if obj, err := decode(candidate); err == nil {
		return obj, nil
	}

	// 閉じ括弧で切り詰めた場合は末尾の欠落部分を失っているため、開始位置以降の全文で修復を試みます。
	tail := strings.TrimRight(text[start:], " \t\r\n")
	for _, suffix := range truncationRepairs {
		for _, repaired := range repairVariants(tail, suffix) {
			if obj, err := decode(repaired); err == nil {
				slog.Warn("途中で切れた JSON を修復しました", "suffix", suffix)
				return obj, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: 応答が途中で途切れています", domain.ErrMalformedResponse)
}

// StripFences は Markdown のコードフェンスを取り除きます。
func StripFences(raw string) string {
	return strings.TrimSpace(FenceRegex.ReplaceAllString(raw, ""))
}

// repairVariants は接尾辞を付けた候補を返します。
// 文字列が閉じた直後に切れている場合は接尾辞先頭の引用符を省いた候補も加えます。
func repairVariants(tail, suffix string) []string {
	variants := []string{tail + suffix}
	if strings.HasPrefix(suffix, `"`) && strings.HasSuffix(tail, `"`) {
		variants = append(variants, tail+suffix[1:])
	}
	return variants
}

func decode(s string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("null オブジェクト")
	}
	return obj, nil
}
