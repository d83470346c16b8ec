package asset

import (
	"github.com/shouni/go-infographic-kit/pkg/domain"
)

const (
	// MaxPreviewTemplates はプラン生成時に添付するテンプレート画像の上限です。
	MaxPreviewTemplates = 3
	// MaxExamples は添付する作例画像の上限です。
	MaxExamples = 2
)

// SelectPreviews はプラン生成に添付する少数のプレビューを選びます。
// テンプレートはカタログ全体から均等に間引き、ロゴはカラー版を優先し、作例は最大2件です。
func SelectPreviews(assets []domain.AssetEntry) []domain.AssetEntry {
	var previews []domain.AssetEntry
	previews = append(previews, SampleEvenly(Templates(assets), MaxPreviewTemplates)...)
	if logo, ok := PreferredLogo(assets); ok {
		previews = append(previews, logo)
	}
	previews = append(previews, ExtraExamples(assets, previews, MaxExamples)...)
	return previews
}

// SampleEvenly は先頭と末尾を含むよう等間隔に最大 n 件を取り出します。
func SampleEvenly(assets []domain.AssetEntry, n int) []domain.AssetEntry {
	if n <= 0 || len(assets) == 0 {
		return nil
	}
	if len(assets) <= n {
		return append([]domain.AssetEntry(nil), assets...)
	}
	if n == 1 {
		return []domain.AssetEntry{assets[0]}
	}
	out := make([]domain.AssetEntry, 0, n)
	last := len(assets) - 1
	for i := 0; i < n; i++ {
		out = append(out, assets[i*last/(n-1)])
	}
	return out
}

// ExtraExamples は selected に含まれない作例を最大 n 件返します。
func ExtraExamples(assets, selected []domain.AssetEntry, n int) []domain.AssetEntry {
	taken := make(map[string]bool, len(selected))
	for _, a := range selected {
		taken[a.RelativePath] = true
	}
	var out []domain.AssetEntry
	for _, a := range Examples(assets) {
		if len(out) >= n {
			break
		}
		if taken[a.RelativePath] {
			continue
		}
		taken[a.RelativePath] = true
		out = append(out, a)
	}
	return out
}
