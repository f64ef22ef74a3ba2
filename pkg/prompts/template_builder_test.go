package prompts

import (
	"strings"
	"testing"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

func TestTextPromptBuilder_Build(t *testing.T) {
	b, err := NewTextPromptBuilder()
	if err != nil {
		t.Fatalf("初期化に失敗しました: %v", err)
	}

	t.Run("国籍の上書き指示が含まれること", func(t *testing.T) {
		got, err := b.Build(ModeCharacters, TemplateData{Language: "English", Nationality: "Vietnamese"})
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if !strings.Contains(got, "MUST be Vietnamese") || !strings.Contains(got, "Animals are not affected") {
			t.Errorf("国籍の指示が見つかりません:\n%s", got)
		}
	})

	t.Run("国籍の指定がなければ上書き指示を含まないこと", func(t *testing.T) {
		got, _ := b.Build(ModeCharacters, TemplateData{Language: "English"})
		if strings.Contains(got, "MUST be") {
			t.Errorf("不要な国籍指示が含まれています:\n%s", got)
		}
	})

	t.Run("シーン生成では件数と登場人物が埋め込まれること", func(t *testing.T) {
		got, err := b.Build(ModeScenes, TemplateData{
			Language:         "English",
			KindLabel:        "animated video",
			TargetSceneCount: 16,
			UnitSeconds:      8,
			TotalSeconds:     125,
			Characters:       []domain.Character{{Name: "Lan"}},
			MaxDialogueChars: 80,
		})
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		for _, want := range []string{"exactly 16", "- Lan", "80 characters"} {
			if !strings.Contains(got, want) {
				t.Errorf("'%s' が見つかりません:\n%s", want, got)
			}
		}
	})

	t.Run("無音モードではセリフを求めないこと", func(t *testing.T) {
		got, _ := b.Build(ModeScenes, TemplateData{Language: "English", Silent: true, TargetSceneCount: 2})
		if !strings.Contains(got, "no dialogue") || strings.Contains(got, "exact spoken lines") {
			t.Errorf("無音モードの指示が不正です:\n%s", got)
		}
	})

	t.Run("すべてのモードのテンプレートが読み込まれること", func(t *testing.T) {
		for _, mode := range modes {
			if _, err := b.Build(mode, TemplateData{Language: "English", Count: 2}); err != nil {
				t.Errorf("モード '%s' の構築に失敗しました: %v", mode, err)
			}
		}
	})

	t.Run("不明なモードはエラーになること", func(t *testing.T) {
		if _, err := b.Build("unknown", TemplateData{}); err == nil {
			t.Error("エラーが発生しませんでした")
		}
	})
}
