package domain

import (
	"path"
	"strings"
)

// BrandConfig はブランドごとの静的な設定です。
type BrandConfig struct {
	ID           string   `yaml:"id"`
	DisplayName  string   `yaml:"display_name"`
	ManifestPath string   `yaml:"manifest_path"`
	LookupTokens []string `yaml:"lookup_tokens"`
}

// BrandHint は呼び出し側から渡されるブランド指定のヒントです。
type BrandHint struct {
	BrandID  string `json:"brandId,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// AssetEntry はマニフェストに列挙されたアセット1件です。RelativePath が同一性のキーになります。
type AssetEntry struct {
	RelativePath string
	FullPath     string
	Description  string

	// Source はカタログスクリプトが付与する "(source: ...)" の元ファイル情報です。
	Source string
	Width  int
	Height int
	// Hints は "| Recommended use: ..." 等の補助情報（キーは小文字）です。
	Hints map[string]string
}

// BaseName は相対パスのファイル名部分を返します。
func (a AssetEntry) BaseName() string {
	return path.Base(a.RelativePath)
}

// AssetLibrary はブランドのマニフェストを解析した結果です。
type AssetLibrary struct {
	BrandName       string
	RootPath        string
	RawManifestText string
	UsageGuidance   []string
	Assets          []AssetEntry
}

// Find は相対パスでアセットを検索します。
func (l *AssetLibrary) Find(relativePath string) (AssetEntry, bool) {
	if l == nil {
		return AssetEntry{}, false
	}
	for _, a := range l.Assets {
		if a.RelativePath == relativePath {
			return a, true
		}
	}
	return AssetEntry{}, false
}

// InlineAsset はプロンプトに添付するバイナリです。
type InlineAsset struct {
	Base64Data string
	MimeType   string
}

// DataURI は data URI 形式の文字列を返します。
func (a InlineAsset) DataURI() string {
	return "data:" + a.MimeType + ";base64," + a.Base64Data
}

// JoinAssetPath はルートパスと相対パスを結合します。
func JoinAssetPath(root, rel string) string {
	rel = strings.TrimLeft(rel, "/")
	if root == "" {
		return rel
	}
	return strings.TrimRight(root, "/") + "/" + rel
}
