package selection

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("scene-%d", i+1)
	}
	return out
}

func TestSet_Toggle(t *testing.T) {
	s := New(10)

	for i, id := range ids(12) {
		_, err := s.Toggle(id)
		if i < 10 && err != nil {
			t.Fatalf("%d 件目で予期しないエラー: %v", i+1, err)
		}
		if i >= 10 && !errors.Is(err, domain.ErrSelectionLimitExceeded) {
			t.Errorf("%d 件目: SelectionLimitExceeded が期待されましたが %v でした", i+1, err)
		}
	}

	if s.Len() != 10 {
		t.Fatalf("期待値 10, 実際の値 %d", s.Len())
	}
	if s.Contains("scene-11") || s.Contains("scene-12") {
		t.Error("上限を超えた ID が追加されています")
	}

	t.Run("選択済みのIDは外せること", func(t *testing.T) {
		selected, err := s.Toggle("scene-3")
		if err != nil || selected {
			t.Fatalf("selected=%v err=%v", selected, err)
		}
		if s.Len() != 9 || s.Contains("scene-3") {
			t.Errorf("選択解除されていません: %v", s.IDs())
		}
		if selected, err := s.Toggle("scene-11"); err != nil || !selected {
			t.Errorf("空きができた後の追加に失敗しました: %v", err)
		}
	})
}

func TestSet_SelectAll(t *testing.T) {
	t.Run("上限を超える場合は先頭から上限件数を選ぶこと", func(t *testing.T) {
		s := New(10)
		err := s.SelectAll(ids(15))

		var limitErr *LimitError
		if !errors.As(err, &limitErr) {
			t.Fatalf("LimitError が期待されましたが %v でした", err)
		}
		if limitErr.Truncated != 5 {
			t.Errorf("除外件数: 期待値 5, 実際の値 %d", limitErr.Truncated)
		}
		if diff := cmp.Diff(ids(10), s.IDs()); diff != "" {
			t.Errorf("選択が一致しません (-want +got):\n%s", diff)
		}
	})

	t.Run("上限以内ならそのまま選ぶこと", func(t *testing.T) {
		s := New(10)
		_, _ = s.Toggle("other")
		if err := s.SelectAll(ids(3)); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if diff := cmp.Diff(ids(3), s.IDs()); diff != "" {
			t.Errorf("選択が一致しません (-want +got):\n%s", diff)
		}
	})

	t.Run("Clearで空になること", func(t *testing.T) {
		s := New(10)
		_ = s.SelectAll(ids(4))
		s.Clear()
		if s.Len() != 0 {
			t.Errorf("期待値 0, 実際の値 %d", s.Len())
		}
	})
}

func TestPick(t *testing.T) {
	s := New(10)
	_, _ = s.Toggle("scene-3")
	_, _ = s.Toggle("scene-1")

	got := Pick(ids(4), s, func(id string) string { return id })
	if diff := cmp.Diff([]string{"scene-1", "scene-3"}, got); diff != "" {
		t.Errorf("元の順序が保たれていません (-want +got):\n%s", diff)
	}
}
