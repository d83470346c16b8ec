package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAnalysisResult_Sanitize(t *testing.T) {
	raw := AnalysisResult{
		Mode:    ModeAutoSummary,
		Title:   "  Quarterly\nReport  ",
		Summary: strings.Repeat("s", MaxSummaryLength+20),
		KeyPoints: []KeyPoint{
			{Title: "Growth\r\nrate", Description: "  12% YoY  "},
			{Title: " ", Description: ""},
		},
	}

	t.Run("改行を除去し長さを制限すること", func(t *testing.T) {
		got := raw.Sanitize()
		if got.Title != "Quarterly Report" {
			t.Errorf("Title 実際 %q", got.Title)
		}
		if n := len([]rune(got.Summary)); n != MaxSummaryLength {
			t.Errorf("Summary の長さ 期待値 %d, 実際 %d", MaxSummaryLength, n)
		}
		if len(got.KeyPoints) != 1 {
			t.Fatalf("空の要点が除去されていません: %+v", got.KeyPoints)
		}
		if got.KeyPoints[0].Title != "Growth rate" || got.KeyPoints[0].Description != "12% YoY" {
			t.Errorf("要点 実際 %+v", got.KeyPoints[0])
		}
	})

	t.Run("2回適用しても結果が変わらないこと", func(t *testing.T) {
		once := raw.Sanitize()
		twice := once.Sanitize()
		if fmt.Sprintf("%+v", once) != fmt.Sprintf("%+v", twice) {
			t.Errorf("1回目 %+v\n2回目 %+v", once, twice)
		}
	})

	t.Run("マルチバイトの説明文は文字数で切り詰めること", func(t *testing.T) {
		r := AnalysisResult{KeyPoints: []KeyPoint{{Title: "売上", Description: strings.Repeat("増", MaxKeyPointDescriptionLen+5)}}}
		got := r.Sanitize().KeyPoints[0].Description
		if got != strings.Repeat("増", MaxKeyPointDescriptionLen) {
			t.Errorf("Description の長さ 期待値 %d, 実際 %d", MaxKeyPointDescriptionLen, len([]rune(got)))
		}
	})

	t.Run("タイトルが空の場合は既定値になること", func(t *testing.T) {
		if got := (AnalysisResult{}).Sanitize().Title; got != DefaultTitle {
			t.Errorf("実際 %q", got)
		}
	})
}

func TestVisualConfig_Ratio(t *testing.T) {
	tests := []struct {
		input      string
		want       string
		wantOrient Orientation
	}{
		{"16:9", "16:9", OrientationLandscape},
		{" 9 : 16 ", "9:16", OrientationPortrait},
		{"1:1", "1:1", OrientationLandscape},
		{"", DefaultAspectRatio, OrientationPortrait},
		{"wide", DefaultAspectRatio, OrientationPortrait},
		{"0:4", DefaultAspectRatio, OrientationPortrait},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v := VisualConfig{AspectRatio: tt.input}
			if _, _, got := v.Ratio(); got != tt.want {
				t.Errorf("Ratio 期待値 %q, 実際 %q", tt.want, got)
			}
			if got := v.Orientation(); got != tt.wantOrient {
				t.Errorf("Orientation 期待値 %q, 実際 %q", tt.wantOrient, got)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	t.Run("大文字小文字を区別しないこと", func(t *testing.T) {
		m, err := ParseMode(" targeted_analysis ")
		if err != nil || m != ModeTargetedAnalysis {
			t.Errorf("実際 %q, %v", m, err)
		}
	})
	t.Run("未知のモードはエラーになること", func(t *testing.T) {
		if _, err := ParseMode("POSTER"); err == nil {
			t.Error("エラーが返されませんでした")
		}
	})
}

func TestPipelineError(t *testing.T) {
	cause := errors.New("upstream 500")
	err := fmt.Errorf("wrapped: %w", NewPipelineError(ErrPlanFailed, LanguageChinese, cause))

	t.Run("種類と原因の両方で判定できること", func(t *testing.T) {
		if !errors.Is(err, ErrPlanFailed) {
			t.Error("ErrPlanFailed として判定できません")
		}
		if !errors.Is(err, cause) {
			t.Error("原因のエラーを辿れません")
		}
		if errors.Is(err, ErrGenerationFailed) {
			t.Error("別の種類と一致してしまいました")
		}
	})

	t.Run("言語に応じた表示メッセージを返すこと", func(t *testing.T) {
		if got := UserMessageOf(err); got != userMessages[ErrPlanFailed][LanguageChinese] {
			t.Errorf("実際 %q", got)
		}
		if got := UserMessageOf(cause); got == "" {
			t.Error("既定のメッセージが空です")
		}
	})
}

func TestJoinAssetPath(t *testing.T) {
	tests := []struct{ root, rel, want string }{
		{"brands/aurora/", "/a.png", "brands/aurora/a.png"},
		{"", "a.png", "a.png"},
		{"https://cdn.example.com/x", "sub/b.png", "https://cdn.example.com/x/sub/b.png"},
	}
	for _, tt := range tests {
		if got := JoinAssetPath(tt.root, tt.rel); got != tt.want {
			t.Errorf("JoinAssetPath(%q, %q) 期待値 %q, 実際 %q", tt.root, tt.rel, tt.want, got)
		}
	}
}
