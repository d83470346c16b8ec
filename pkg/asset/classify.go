package asset

import (
	"path"
	"strings"

	"github.com/shouni/go-infographic-kit/pkg/domain"
)

// AllowedExtensions はカタログおよび SELECTED_ASSETS ブロックで有効なファイル拡張子です。
var AllowedExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".pdf"}

var extMimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// genericBackgroundNames はテンプレートとして扱わない汎用背景のファイル名（拡張子なし）です。
var genericBackgroundNames = map[string]bool{
	"background": true,
	"bg":         true,
	"backdrop":   true,
}

// HasAllowedExtension はファイル名が画像または PDF の拡張子で終わるかどうかを返します。
func HasAllowedExtension(name string) bool {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(name)))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// MimeTypeFromExt は拡張子から MIME タイプを推定します。不明な場合は空文字を返します。
func MimeTypeFromExt(name string) string {
	return extMimeTypes[strings.ToLower(path.Ext(name))]
}

// IsLogo はファイル名にロゴの目印を含むかどうかを返します。
func IsLogo(a domain.AssetEntry) bool {
	return strings.Contains(strings.ToLower(a.BaseName()), "logo")
}

// IsTemplate はテンプレート背景らしいアセットかどうかを返します。
func IsTemplate(a domain.AssetEntry) bool {
	if IsLogo(a) {
		return false
	}
	lower := strings.ToLower(a.RelativePath)
	if !strings.Contains(lower, "template") {
		return false
	}
	base := strings.ToLower(a.BaseName())
	stem := strings.TrimSuffix(base, path.Ext(base))
	return !genericBackgroundNames[stem]
}

// IsExample はスタイル参照用の作例かどうかを返します。
func IsExample(a domain.AssetEntry) bool {
	if IsLogo(a) {
		return false
	}
	lower := strings.ToLower(a.RelativePath)
	return strings.Contains(lower, "example") || strings.Contains(lower, "sample")
}

// Templates はカタログ順にテンプレートを返します。
func Templates(assets []domain.AssetEntry) []domain.AssetEntry {
	return filter(assets, IsTemplate)
}

// Logos はカタログ順にロゴを返します。
func Logos(assets []domain.AssetEntry) []domain.AssetEntry {
	return filter(assets, IsLogo)
}

// Examples はカタログ順に作例を返します。
func Examples(assets []domain.AssetEntry) []domain.AssetEntry {
	return filter(assets, IsExample)
}

// PreferredLogo はカラー版を優先してロゴを1件選びます。
func PreferredLogo(assets []domain.AssetEntry) (domain.AssetEntry, bool) {
	logos := Logos(assets)
	if len(logos) == 0 {
		return domain.AssetEntry{}, false
	}
	for _, l := range logos {
		name := strings.ToLower(l.BaseName())
		if strings.Contains(name, "color") || strings.Contains(name, "colour") {
			return l, true
		}
	}
	for _, l := range logos {
		name := strings.ToLower(l.BaseName())
		if !strings.Contains(name, "white") && !strings.Contains(name, "mono") && !strings.Contains(name, "black") {
			return l, true
		}
	}
	return logos[0], true
}

func filter(assets []domain.AssetEntry, keep func(domain.AssetEntry) bool) []domain.AssetEntry {
	var out []domain.AssetEntry
	for _, a := range assets {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
