package asset

import (
	"reflect"
	"testing"
)

func TestParseSelection(t *testing.T) {
	t.Run("マーカー以降のハイフン行を読み取り非ハイフン行で止まること", func(t *testing.T) {
		text := "7. Final notes\n\nSELECTED_ASSETS:\n\n- `a_template/a.png` :: base layer\n- logo.png :: top-right\n- Brand palette\nTrailing prose\n- after.png :: ignored\n"

		sel, ok := ParseSelection(text)
		if !ok {
			t.Fatal("マーカーが見つかりません")
		}
		want := Selection{
			{Token: "a_template/a.png", Reason: "base layer"},
			{Token: "logo.png", Reason: "top-right"},
			{Token: "Brand palette"},
		}
		if !reflect.DeepEqual(sel, want) {
			t.Errorf("期待値 %+v, 実際 %+v", want, sel)
		}
		if got := sel.Filenames(); !reflect.DeepEqual(got, []string{"a_template/a.png", "logo.png"}) {
			t.Errorf("Filenames 実際 %v", got)
		}
	})

	t.Run("マーカーが無い場合はfalseを返すこと", func(t *testing.T) {
		if _, ok := ParseSelection("1. Title\n- a.png :: x"); ok {
			t.Error("false を期待")
		}
	})

	t.Run("強調や見出しで装飾されたマーカーも認識すること", func(t *testing.T) {
		for _, marker := range []string{"**SELECTED_ASSETS:**", "## SELECTED_ASSETS:", "**SELECTED_ASSETS**:"} {
			sel, ok := ParseSelection("7. Notes\n" + marker + "\n- logo.png :: top-right")
			if !ok {
				t.Errorf("%q: マーカーが見つかりません", marker)
				continue
			}
			if len(sel) != 1 || sel[0].Token != "logo.png" {
				t.Errorf("%q: 実際 %+v", marker, sel)
			}
		}
	})

	t.Run("複数のマーカーがある場合は最後のブロックを使うこと", func(t *testing.T) {
		text := "Remember to end with SELECTED_ASSETS.\nSELECTED_ASSETS:\n- old.png\n\nSELECTED_ASSETS:\n- new.png :: final"
		sel, _ := ParseSelection(text)
		if len(sel) != 1 || sel[0].Token != "new.png" {
			t.Errorf("実際 %+v", sel)
		}
	})
}

func TestSelectionRoundTrip(t *testing.T) {
	selections := []Selection{
		{},
		{{Token: "a_template/a_template_p0.png", Reason: "template background"}},
		{
			{Token: "t_template/cover.webp", Reason: "base layer, keep gradient"},
			{Token: "logo_color.png", Reason: "top-left with padding"},
			{Token: "examples/example_1.pdf"},
		},
	}

	for _, s := range selections {
		got, ok := ParseSelection(s.String())
		if !ok {
			t.Fatalf("マーカーが出力されていません: %q", s.String())
		}
		if len(s) == 0 && len(got) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, s) {
			t.Errorf("往復で一致しません\n期待値 %+v\n実際   %+v", s, got)
		}
	}
}
