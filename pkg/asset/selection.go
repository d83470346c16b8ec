package asset

import (
	"strings"
)

// SelectionMarker はプラン末尾の選定アセットブロックの開始行です。
const SelectionMarker = "SELECTED_ASSETS:"

const selectionSeparator = "::"

// SelectionItem は "- <token> :: <reason>" の1行です。
type SelectionItem struct {
	Token  string
	Reason string
}

// Selection はプランが選定したアセットの一覧です。
type Selection []SelectionItem

// ParseSelection はテキスト中の最後の SELECTED_ASSETS ブロックを解析します。
// マーカー行の後、"-" で始まる行が続く限り読み取ります。マーカーが無い場合は false を返します。
func ParseSelection(text string) (Selection, bool) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	start := -1
	for i, line := range lines {
		if isMarkerLine(line) {
			start = i
		}
	}
	if start < 0 {
		return nil, false
	}

	var sel Selection
	for _, line := range lines[start+1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" && len(sel) == 0 {
			continue
		}
		if !strings.HasPrefix(trimmed, "-") {
			break
		}
		body := strings.TrimSpace(strings.TrimPrefix(trimmed, "-"))
		token, reason, _ := strings.Cut(body, selectionSeparator)
		token = strings.Trim(strings.TrimSpace(token), "`\"'*")
		if token == "" {
			continue
		}
		sel = append(sel, SelectionItem{Token: token, Reason: strings.TrimSpace(reason)})
	}
	return sel, true
}

// isMarkerLine は見出しや強調の記号を除いた行がマーカーで始まるかを判定します。
// "## SELECTED_ASSETS:" や "**SELECTED_ASSETS:**" も対象です。
func isMarkerLine(line string) bool {
	bare := strings.ReplaceAll(strings.TrimLeft(strings.TrimSpace(line), "#> "), "*", "")
	return strings.HasPrefix(strings.TrimSpace(bare), SelectionMarker)
}

// String はブロックをプランに埋め込める形式で出力します。
func (s Selection) String() string {
	var b strings.Builder
	b.WriteString(SelectionMarker)
	for _, item := range s {
		b.WriteString("\n- ")
		b.WriteString(item.Token)
		if item.Reason != "" {
			b.WriteString(" " + selectionSeparator + " ")
			b.WriteString(item.Reason)
		}
	}
	return b.String()
}

// Filenames は画像または PDF の拡張子を持つトークンのみを返します。
func (s Selection) Filenames() []string {
	var names []string
	for _, item := range s {
		if HasAllowedExtension(item.Token) {
			names = append(names, item.Token)
		}
	}
	return names
}
