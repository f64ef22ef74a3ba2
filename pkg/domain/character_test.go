package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRoster(t *testing.T) {
	// 1. 正常系：重複した名前は最初のものだけが残ること
	jsonInput := []byte(`[
		{"name": "Lan", "description": "desc-A", "species": "human"},
		{"name": "lan", "description": "duplicate"},
		{"name": "Mochi", "description": "a fluffy white cat", "species": "animal"}
	]`)

	roster, err := ParseRoster(jsonInput)
	if err != nil {
		t.Fatalf("正常なJSONでエラーが発生しました: %v", err)
	}

	if diff := cmp.Diff([]string{"Lan", "Mochi"}, roster.Names()); diff != "" {
		t.Errorf("名前の一覧が一致しません (-want +got):\n%s", diff)
	}
	if c, _ := roster.Find("LAN"); c.Description != "desc-A" {
		t.Errorf("期待値 'desc-A', 実際の値 '%s'", c.Description)
	}

	// 2. 異常系：不正なJSONでエラーが返ること
	if _, err := ParseRoster([]byte(`{ invalid json }`)); err == nil {
		t.Error("不正なJSONでエラーが発生しませんでした")
	}
}

func TestRoster_WithDescription(t *testing.T) {
	original := NewRoster([]Character{{Name: "Lan", Description: "desc-A"}})

	t.Run("新しいRosterが返り元は変更されないこと", func(t *testing.T) {
		edited, err := original.WithDescription("lan", "desc-B")
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if c, _ := edited.Find("Lan"); c.Description != "desc-B" {
			t.Errorf("期待値 'desc-B', 実際の値 '%s'", c.Description)
		}
		if c, _ := original.Find("Lan"); c.Description != "desc-A" {
			t.Errorf("元のRosterが変更されています: '%s'", c.Description)
		}
	})

	t.Run("存在しない名前はエラーになること", func(t *testing.T) {
		if _, err := original.WithDescription("Nobody", "x"); err == nil {
			t.Error("エラーが発生しませんでした")
		}
	})

	t.Run("Charactersの戻り値を変更しても影響しないこと", func(t *testing.T) {
		chars := original.Characters()
		chars[0].Description = "mutated"
		if c, _ := original.Find("Lan"); c.Description != "desc-A" {
			t.Errorf("内部状態が変更されています: '%s'", c.Description)
		}
	})
}

func TestCharacter_String(t *testing.T) {
	c := Character{Name: "Lan", Description: "desc-A"}
	expected := "Lan: desc-A"
	if c.String() != expected {
		t.Errorf("期待値 '%s', 実際の値 '%s'", expected, c.String())
	}
}
