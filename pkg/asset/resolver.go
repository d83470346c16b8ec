package asset

import (
	"log/slog"
	"path"
	"strings"

	"github.com/shouni/go-infographic-kit/pkg/domain"
)

// ResolveAssets はプランの SELECTED_ASSETS ブロックをカタログのアセットに解決します。
// ライブラリもプランも無い場合や一致が無い場合はカタログ全体を返します。
// 一致があった場合はテンプレートとロゴが必ず含まれるよう補います。
func ResolveAssets(lib *domain.AssetLibrary, planText string) []domain.AssetEntry {
	if lib == nil {
		return nil
	}
	all := append([]domain.AssetEntry(nil), lib.Assets...)
	if strings.TrimSpace(planText) == "" {
		return all
	}

	sel, ok := ParseSelection(planText)
	if !ok {
		slog.Debug("プランに SELECTED_ASSETS ブロックがありません。カタログ全体を使用します")
		return all
	}

	var matched []domain.AssetEntry
	seen := make(map[string]bool)
	for _, name := range sel.Filenames() {
		entry, ok := matchCatalog(lib.Assets, name)
		if !ok {
			slog.Debug("カタログに一致しないファイル名をスキップします", "name", name)
			continue
		}
		if seen[entry.RelativePath] {
			continue
		}
		seen[entry.RelativePath] = true
		matched = append(matched, entry)
	}

	if len(matched) == 0 {
		return all
	}
	return ensureRequired(matched, lib.Assets)
}

// ensureRequired はテンプレートが無ければ先頭に、ロゴが無ければ末尾にカタログ最初の1件を補います。
func ensureRequired(matched, catalog []domain.AssetEntry) []domain.AssetEntry {
	if !containsKind(matched, IsTemplate) {
		if ts := Templates(catalog); len(ts) > 0 {
			matched = append([]domain.AssetEntry{ts[0]}, matched...)
		}
	}
	if !containsKind(matched, IsLogo) {
		if ls := Logos(catalog); len(ls) > 0 {
			matched = append(matched, ls[0])
		}
	}
	return matched
}

// matchCatalog は相対パス、ファイル名、部分一致の順に照合します。
func matchCatalog(catalog []domain.AssetEntry, candidate string) (domain.AssetEntry, bool) {
	cand := strings.TrimLeft(strings.TrimSpace(candidate), "./")
	if cand == "" {
		return domain.AssetEntry{}, false
	}
	lower := strings.ToLower(cand)

	for _, a := range catalog {
		if a.RelativePath == cand {
			return a, true
		}
	}
	for _, a := range catalog {
		if a.BaseName() == path.Base(cand) {
			return a, true
		}
	}
	for _, a := range catalog {
		rel := strings.ToLower(a.RelativePath)
		if strings.Contains(rel, lower) || strings.Contains(lower, rel) {
			return a, true
		}
	}
	return domain.AssetEntry{}, false
}

func containsKind(assets []domain.AssetEntry, kind func(domain.AssetEntry) bool) bool {
	for _, a := range assets {
		if kind(a) {
			return true
		}
	}
	return false
}
