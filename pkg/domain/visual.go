package domain

import (
	"strconv"
	"strings"
)

// DefaultAspectRatio は VisualConfig が未指定または不正な場合のアスペクト比です。
const DefaultAspectRatio = "3:4"

// VisualConfig は生成キャンバスの設定です。
type VisualConfig struct {
	AspectRatio string `json:"aspectRatio"`
	// StyleNotes は配色や雰囲気などユーザーの自由記述です。
	StyleNotes string `json:"styleNotes,omitempty"`
	// Metadata はプランプロンプトの "Additional notes" にのみ出力されます。
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Orientation はキャンバスの向きです。
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// Ratio は "幅:高さ" を解析します。不正な値は DefaultAspectRatio として扱います。
func (v VisualConfig) Ratio() (w, h int, normalized string) {
	if w, h, ok := parseRatio(v.AspectRatio); ok {
		return w, h, strconv.Itoa(w) + ":" + strconv.Itoa(h)
	}
	w, h, _ = parseRatio(DefaultAspectRatio)
	return w, h, DefaultAspectRatio
}

// Orientation は幅が高さ以上なら横向きを返します。
func (v VisualConfig) Orientation() Orientation {
	w, h, _ := v.Ratio()
	if w >= h {
		return OrientationLandscape
	}
	return OrientationPortrait
}

func parseRatio(s string) (int, int, bool) {
	left, right, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, 0, false
	}
	w, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil || w <= 0 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
