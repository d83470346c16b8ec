package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shouni/go-infographic-kit/pkg/asset"
	"github.com/shouni/go-infographic-kit/pkg/domain"
)

// MinSelectedAssets はプランの SELECTED_ASSETS に列挙させる最小件数です。
const MinSelectedAssets = 3

// PlanData はプラン生成プロンプトの入力です。
type PlanData struct {
	Result   domain.AnalysisResult
	Library  *domain.AssetLibrary
	Previews []domain.AssetEntry
	Visual   domain.VisualConfig
	Language domain.Language
	// PreferredTemplates はテンプレート選定で選ばれた相対パスです。
	PreferredTemplates []string
}

// BuildPlanPrompt はレイアウトプラン生成用のプロンプトを構築します。
// Previews は添付画像の順序で [File Input N] として参照されます。
func BuildPlanPrompt(d PlanData) string {
	var sb strings.Builder
	visual := d.Visual
	_, _, ratio := visual.Ratio()

	sb.WriteString("# INFOGRAPHIC LAYOUT PLAN REQUEST\n")
	sb.WriteString("You are the art director for a branded infographic. Write a precise layout plan that an image model will follow.\n\n")

	// --- 1. キャンバス ---
	sb.WriteString("## CANVAS\n")
	sb.WriteString(fmt.Sprintf("- Aspect ratio: %s (%s)\n", ratio, visual.Orientation()))
	sb.WriteString("- Output: ONE single complete canvas.\n")
	if d.Result.Mode.IsPoster() {
		sb.WriteString("- Format: poster. One dominant headline, minimal secondary copy.\n")
	} else {
		sb.WriteString("- Format: sectioned infographic. Headline, summary, then one visual block per key point.\n")
	}
	if visual.StyleNotes != "" {
		sb.WriteString(fmt.Sprintf("- Style notes: %s\n", sanitizeInline(visual.StyleNotes)))
	}
	sb.WriteString("\n")

	// --- 2. ブランドルール ---
	sb.WriteString("## BRAND RULES\n")
	if d.Library == nil {
		sb.WriteString("- Brand asset metadata is unavailable. Use a clean, neutral corporate style and do not invent a logo.\n")
	} else {
		if d.Library.BrandName != "" {
			sb.WriteString(fmt.Sprintf("- Brand: %s\n", d.Library.BrandName))
		}
		guidance := d.Library.UsageGuidance
		if len(guidance) == 0 {
			guidance = asset.DefaultUsageGuidance
		}
		for _, rule := range guidance {
			sb.WriteString("- " + rule + "\n")
		}
	}
	sb.WriteString("\n")

	// --- 3. コンテンツ ---
	sb.WriteString("## CONTENT (use verbatim, do not rewrite)\n")
	writeContent(&sb, d.Result)
	if d.Result.CustomVisualPrompt != "" {
		sb.WriteString(fmt.Sprintf("Visual direction: %s\n", sanitizeInline(d.Result.CustomVisualPrompt)))
	}
	sb.WriteString("\n")

	// --- 4. 添付プレビュー ---
	if len(d.Previews) > 0 {
		sb.WriteString("## ATTACHED PREVIEWS\n")
		for i, p := range d.Previews {
			sb.WriteString(fmt.Sprintf("- %s = %s\n", ReferenceToken(i+1), p.RelativePath))
		}
		sb.WriteString("\n")
	}

	// --- 5. カタログ全体 ---
	if d.Library != nil && len(d.Library.Assets) > 0 {
		sb.WriteString("## FULL ASSET CATALOG (you may cite any of these filenames, attached or not)\n")
		for i, a := range d.Library.Assets {
			line := fmt.Sprintf("%d. %s", i+1, a.RelativePath)
			if s := asset.Summary(a); s != "" {
				line += " :: " + s
			}
			sb.WriteString(line + "\n")
			for _, key := range sortedKeys(a.Hints) {
				sb.WriteString(fmt.Sprintf("   %s: %s\n", key, a.Hints[key]))
			}
		}
		sb.WriteString("\n")
	}

	if len(d.PreferredTemplates) > 0 {
		sb.WriteString("## PREFERRED TEMPLATES\n")
		sb.WriteString("These templates were pre-selected as the best fit. Use the first as the base layer unless it clearly conflicts with the content.\n")
		for _, t := range d.PreferredTemplates {
			sb.WriteString("- " + t + "\n")
		}
		sb.WriteString("\n")
	}

	if len(visual.Metadata) > 0 {
		sb.WriteString("## ADDITIONAL NOTES\n")
		for _, key := range sortedKeys(visual.Metadata) {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", key, sanitizeInline(visual.Metadata[key])))
		}
		sb.WriteString("\n")
	}

	// --- 6. 出力形式 ---
	sb.WriteString("## OUTPUT CONTRACT\n")
	sb.WriteString("Write 7-8 numbered sections in plain prose. No JSON. No Markdown headings, bold or tables.\n")
	sb.WriteString("1. Overall concept  2. Template background usage  3. Logo placement  4. Headline and typography\n")
	sb.WriteString("5. Content layout  6. Thematic and decorative elements  7. Color and contrast  8. Final checks\n")
	sb.WriteString("Describe placement with relative terms (top-left, center band, lower third). Avoid numeric coordinates.\n")
	sb.WriteString(fmt.Sprintf("%s\n", LanguageDirective(d.Language)))
	sb.WriteString(fmt.Sprintf("End with the block below, listing at least %d exact filenames from the catalog, one per line:\n", MinSelectedAssets))
	sb.WriteString(asset.Selection{
		{Token: "<template background filename>", Reason: "why it is the base layer"},
		{Token: "<logo filename>", Reason: "where it goes"},
		{Token: "<other filename>", Reason: "how it is used"},
	}.String())
	sb.WriteString("\nThe first entry MUST be a template background and the second MUST be the logo.\n")
	return sb.String()
}

func writeContent(sb *strings.Builder, r domain.AnalysisResult) {
	sb.WriteString(fmt.Sprintf("Title: \"%s\"\n", r.Title))
	if r.Summary != "" {
		sb.WriteString(fmt.Sprintf("Summary: \"%s\"\n", r.Summary))
	}
	for i, kp := range r.KeyPoints {
		sb.WriteString(fmt.Sprintf("Key point %d: \"%s\"", i+1, kp.Title))
		if kp.Description != "" {
			sb.WriteString(fmt.Sprintf(" - \"%s\"", kp.Description))
		}
		sb.WriteString("\n")
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
