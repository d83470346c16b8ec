package asset

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/shouni/go-infographic-kit/pkg/domain"
)

const (
	headerRoot   = "Template Root:"
	headerBrand  = "Brand:"
	headerUsage  = "Usage guidance:"
	headerAssets = "Assets:"

	markerSource      = "(source:"
	markerDescription = "::"
)

// DefaultUsageGuidance はマニフェストに Usage guidance が無い場合の既定ルールです。
var DefaultUsageGuidance = []string{
	"Template/background assets = base layer. Do NOT replace or ignore them.",
	"Logo assets must be used as provided (top corner, padding).",
	"Use user copy verbatim; no translation/rewrites.",
	"Use relative placement descriptions; avoid numeric coordinates.",
	"Return plain text (no Markdown/JSON) when drafting prompts.",
}

// dimensionRegex は "(source: x.pdf, 1080x1920px, ~120KB)" の寸法部分を取り出します。
var dimensionRegex = regexp.MustCompile(`(\d+)\s*x\s*(\d+)\s*px`)

type section int

const (
	sectionNone section = iota
	sectionUsage
	sectionAssets
)

// ParseManifest はマニフェストテキストを解析します。
// 認識できない行は無視し、形式に合わないアセット行はスキップします。
// fallbackRoot は Template Root 行が無い場合に使用されます。
func ParseManifest(raw, fallbackRoot string) *domain.AssetLibrary {
	lib := &domain.AssetLibrary{
		RootPath:        fallbackRoot,
		RawManifestText: raw,
	}

	state := sectionNone
	var pending []domain.AssetEntry
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, headerRoot):
			if root := strings.TrimSpace(strings.TrimPrefix(trimmed, headerRoot)); root != "" {
				lib.RootPath = root
			}
			state = sectionNone
			continue
		case strings.HasPrefix(trimmed, headerBrand):
			lib.BrandName = strings.TrimSpace(strings.TrimPrefix(trimmed, headerBrand))
			state = sectionNone
			continue
		case strings.HasPrefix(trimmed, headerUsage):
			state = sectionUsage
			continue
		case strings.HasPrefix(trimmed, headerAssets):
			state = sectionAssets
			continue
		}

		switch state {
		case sectionUsage:
			if rule := strings.TrimSpace(strings.TrimPrefix(trimmed, "-")); rule != "" {
				lib.UsageGuidance = append(lib.UsageGuidance, rule)
			}
		case sectionAssets:
			if !strings.HasPrefix(trimmed, "- ") {
				continue
			}
			if entry, ok := parseAssetLine(strings.TrimPrefix(trimmed, "- ")); ok {
				pending = append(pending, entry)
			}
		}
	}

	// Template Root がアセット行より後にあっても FullPath を正しく組み立てます。
	for i := range pending {
		pending[i].FullPath = domain.JoinAssetPath(lib.RootPath, pending[i].RelativePath)
	}
	lib.Assets = pending
	return lib
}

// parseAssetLine は "<path> [(source: ...)] [:: description]" を解析します。
func parseAssetLine(body string) (domain.AssetEntry, bool) {
	var entry domain.AssetEntry

	cut := len(body)
	if i := strings.Index(body, markerSource); i >= 0 {
		cut = i
	} else if i := strings.Index(body, markerDescription); i >= 0 {
		cut = i
	}
	rel := strings.TrimLeft(strings.TrimSpace(body[:cut]), "/")
	if rel == "" {
		return entry, false
	}
	entry.RelativePath = path.Clean(rel)

	rest := body[cut:]
	if i := strings.Index(rest, markerDescription); i >= 0 {
		entry.Description = strings.TrimSpace(rest[i+len(markerDescription):])
		rest = rest[:i]
	}
	if strings.HasPrefix(rest, markerSource) {
		parseSourceMeta(&entry, rest)
	}
	entry.Hints = parseHints(entry.Description)
	return entry, true
}

func parseSourceMeta(entry *domain.AssetEntry, meta string) {
	meta = strings.TrimSpace(strings.TrimPrefix(meta, markerSource))
	meta = strings.TrimSpace(strings.TrimSuffix(meta, ")"))
	fields := strings.Split(meta, ",")
	if len(fields) > 0 {
		entry.Source = strings.TrimSpace(fields[0])
	}
	if m := dimensionRegex.FindStringSubmatch(meta); m != nil {
		entry.Width, _ = strconv.Atoi(m[1])
		entry.Height, _ = strconv.Atoi(m[2])
	}
}

// parseHints は "desc | Recommended use: ... | Layout: ..." の補助情報を取り出します。
func parseHints(desc string) map[string]string {
	segments := strings.Split(desc, "|")
	if len(segments) < 2 {
		return nil
	}
	hints := make(map[string]string, len(segments)-1)
	for _, seg := range segments[1:] {
		key, value, ok := strings.Cut(seg, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if value = strings.TrimSpace(value); key != "" && value != "" {
			hints[key] = value
		}
	}
	if len(hints) == 0 {
		return nil
	}
	return hints
}

// Summary は説明文から補助情報を除いた先頭部分を返します。
func Summary(a domain.AssetEntry) string {
	head, _, _ := strings.Cut(a.Description, "|")
	return strings.TrimSpace(head)
}
