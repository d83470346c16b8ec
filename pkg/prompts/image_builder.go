package prompts

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shouni/go-infographic-kit/pkg/domain"
)

// 画像生成時のテンプレートと主題要素の比率です。
const (
	TemplateDominancePercent = 60
	ThematicPercent          = 100 - TemplateDominancePercent
)

// ReferenceRole は添付アセットの用途です。
type ReferenceRole string

const (
	RoleTemplate ReferenceRole = "template background"
	RoleLogo     ReferenceRole = "logo"
	RoleExample  ReferenceRole = "style example"
	RoleAsset    ReferenceRole = "brand asset"
)

// Reference は添付アセットと 1 始まりの参照番号の対応です。
type Reference struct {
	Index int
	Asset domain.AssetEntry
	Role  ReferenceRole
}

// Token はプロンプト中で使う参照トークンを返します。
func (r Reference) Token() string {
	return ReferenceToken(r.Index)
}

// ReferenceToken は添付ファイルの参照トークンです。
func ReferenceToken(index int) string {
	return fmt.Sprintf("[File Input %d]", index)
}

// ReplaceFilenames はプラン中のファイル名を参照トークンに置き換えます。
// 相対パスとファイル名の両方を対象とし、長いものから照合します。
// 行頭、空白、"/"、引用符などの直後に現れる場合のみ置換し、"big_bg.png" の中の "bg.png" は残します。
func ReplaceFilenames(plan string, refs []Reference) string {
	if plan == "" || len(refs) == 0 {
		return plan
	}

	tokens := make(map[string]string)
	var names []string
	for _, r := range refs {
		for _, name := range []string{r.Asset.RelativePath, r.Asset.BaseName()} {
			if name == "" || name == "." {
				continue
			}
			if _, ok := tokens[name]; ok {
				continue
			}
			tokens[name] = r.Token()
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return plan
	}
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	re := regexp.MustCompile(filenameBoundary + `(` + strings.Join(quoted, "|") + `)`)

	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(plan, -1) {
		b.WriteString(plan[last:m[4]])
		b.WriteString(tokens[plan[m[4]:m[5]]])
		last = m[5]
	}
	b.WriteString(plan[last:])
	return b.String()
}

// filenameBoundary はファイル名の直前に許す区切りです。
const filenameBoundary = "(^|[\\s/\"'`(\\[*])"

// ImageData は画像生成プロンプトの入力です。
type ImageData struct {
	Result     domain.AnalysisResult
	Visual     domain.VisualConfig
	Language   domain.Language
	References []Reference
	// PlanText は参照トークンに置換済みのプランです。
	PlanText  string
	BrandName string
}

// BuildImagePrompt は1枚のインフォグラフィックを生成するためのプロンプトを構築します。
func BuildImagePrompt(d ImageData) string {
	var us strings.Builder
	_, _, ratio := d.Visual.Ratio()
	r := d.Result

	// --- 1. 基本要求 ---
	us.WriteString("# BRANDED INFOGRAPHIC PRODUCTION REQUEST\n")
	us.WriteString(fmt.Sprintf("- OUTPUT: EXACTLY ONE complete %s canvas, aspect ratio %s.\n", d.Visual.Orientation(), ratio))
	us.WriteString("- ABSOLUTE BAN: NO collage, NO split screen, NO grid of variants, NO multiple pages.\n")
	if r.Mode.IsPoster() {
		us.WriteString("- FORMAT: Poster. One dominant headline with strong visual impact.\n")
	} else {
		us.WriteString("- FORMAT: Infographic with a headline, a summary line and one clear block per key point.\n")
	}
	if d.BrandName != "" {
		us.WriteString(fmt.Sprintf("- BRAND: %s\n", d.BrandName))
	}
	us.WriteString("\n")

	// --- 2. 描画する文字列 ---
	us.WriteString("## EXACT TEXT TO RENDER (copy character by character)\n")
	us.WriteString(fmt.Sprintf("- TITLE: \"%s\"\n", r.Title))
	if r.Summary != "" {
		us.WriteString(fmt.Sprintf("- SUBTITLE: \"%s\"\n", r.Summary))
	}
	for i, kp := range r.KeyPoints {
		us.WriteString(fmt.Sprintf("- POINT %d TITLE: \"%s\"\n", i+1, kp.Title))
		if kp.Description != "" {
			us.WriteString(fmt.Sprintf("  POINT %d TEXT: \"%s\"\n", i+1, kp.Description))
		}
	}
	us.WriteString("- Render these strings EXACTLY as written. Do NOT paraphrase, translate, summarize or add words.\n")
	us.WriteString("- Spelling must be identical to the strings above. Every quoted string appears once.\n\n")

	// --- 3. 参照ファイル ---
	if len(d.References) > 0 {
		us.WriteString("## REFERENCE FILES\n")
		for _, ref := range d.References {
			line := fmt.Sprintf("- %s: %s", ref.Token(), ref.Role)
			if desc := sanitizeInline(ref.Asset.Description); desc != "" {
				head, _, _ := strings.Cut(desc, "|")
				line += " (" + strings.TrimSpace(head) + ")"
			}
			us.WriteString(line + "\n")
		}
		us.WriteString("\n")
	}

	// --- 4. 融合ルール ---
	us.WriteString("## FUSION POLICY\n")
	if tmpl, ok := firstRole(d.References, RoleTemplate); ok {
		us.WriteString(fmt.Sprintf("- %s is the BASE LAYER. Keep its background, color fields and frame structure.\n", tmpl.Token()))
	}
	us.WriteString(fmt.Sprintf("- Visual weight: %d%% brand template visuals, %d%% thematic and decorative elements for this topic.\n",
		TemplateDominancePercent, ThematicPercent))
	us.WriteString("- Thematic elements decorate the template. They never replace or cover it.\n")
	if r.CustomVisualPrompt != "" {
		us.WriteString(fmt.Sprintf("- Thematic motif: %s\n", sanitizeInline(r.CustomVisualPrompt)))
	}
	if d.Visual.StyleNotes != "" {
		us.WriteString(fmt.Sprintf("- Style notes: %s\n", sanitizeInline(d.Visual.StyleNotes)))
	}
	if ex, ok := firstRole(d.References, RoleExample); ok {
		us.WriteString(fmt.Sprintf("- Use %s only as a style reference for finish and density. Do not copy its text.\n", ex.Token()))
	}
	us.WriteString("\n")

	// --- 5. ロゴ ---
	us.WriteString("## LOGO\n")
	if logo, ok := firstRole(d.References, RoleLogo); ok {
		us.WriteString(fmt.Sprintf("- Place the logo from %s exactly once, in a top corner with padding.\n", logo.Token()))
		us.WriteString("- Preserve the logo's original colors, shape and proportions. Do not redraw, recolor or distort it.\n")
	} else {
		us.WriteString("- No logo file is provided. Do NOT invent or draw any logo.\n")
	}
	us.WriteString("\n")

	// --- 6. タイポグラフィ ---
	us.WriteString("## TYPOGRAPHY\n")
	us.WriteString("- Match the font style, weight and color treatment visible in the template reference.\n")
	us.WriteString("- Strong hierarchy: title largest, subtitle secondary, point text smallest but legible.\n")
	if d.Language.Normalize() == domain.LanguageChinese {
		us.WriteString("- Render Simplified Chinese glyphs cleanly. No garbled or pseudo characters.\n")
	}
	us.WriteString("\n")

	// --- 7. プラン ---
	if plan := strings.TrimSpace(d.PlanText); plan != "" {
		us.WriteString("## LAYOUT PLAN (follow its placement directions)\n")
		us.WriteString(plan)
		us.WriteString("\n\n")
	}

	us.WriteString("## FINAL REMINDER\n")
	us.WriteString(fmt.Sprintf("ONE canvas only. Title text is exactly \"%s\".\n", r.Title))
	return us.String()
}

func firstRole(refs []Reference, role ReferenceRole) (Reference, bool) {
	for _, r := range refs {
		if r.Role == role {
			return r, true
		}
	}
	return Reference{}, false
}
