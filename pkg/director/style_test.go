package director

import (
	"strings"
	"testing"
)

func TestResolveStyle(t *testing.T) {
	if got := ResolveStyle(" Anime "); !strings.HasPrefix(got, "Japanese anime style") {
		t.Errorf("プリセットが展開されていません: %q", got)
	}
	if got := ResolveStyle("oil painting "); got != "oil painting" {
		t.Errorf("期待値 'oil painting', 実際の値 '%s'", got)
	}
	if got := ResolveStyle(""); got != "" {
		t.Errorf("空文字はそのまま返すこと: %q", got)
	}
	if names := StyleNames(); len(names) == 0 || names[0] != "3d" {
		t.Errorf("プリセット名が昇順ではありません: %v", names)
	}
}
