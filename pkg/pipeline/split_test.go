package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

func TestDistribute(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Duration
		total   time.Duration
		n       int
		wantErr bool
	}{
		{name: "秒単位で割り切れる", total: 40 * time.Second, n: 5},
		{name: "割り切れない長さも合計が一致する", total: 125 * time.Second, n: 16},
		{name: "開始位置がずれていても連続する", start: 23 * time.Second, total: 8 * time.Second, n: 3},
		{name: "1秒未満の区間はナノ秒で分割する", total: 900 * time.Millisecond, n: 4},
		{name: "区間数と同じナノ秒数なら分割できる", total: 5, n: 5},
		{name: "区間数より短い長さはエラー", total: 3, n: 5, wantErr: true},
		{name: "長さ0はエラー", total: 0, n: 2, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spans, err := distribute(tc.start, tc.total, tc.n)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("ValidationError を期待しましたが %v でした", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("予期しないエラー: %v", err)
			}
			if len(spans) != tc.n {
				t.Fatalf("区間数: 期待値 %d, 実際の値 %d", tc.n, len(spans))
			}
			prev := tc.start
			for i, sp := range spans {
				if sp.start != prev || sp.end <= sp.start {
					t.Errorf("区間 %d が不正です: %s-%s (直前の終端 %s)", i+1, sp.start, sp.end, prev)
				}
				prev = sp.end
			}
			if got := prev - tc.start; got != tc.total {
				t.Errorf("合計時間: 期待値 %s, 実際の値 %s", tc.total, got)
			}
		})
	}
}

func TestAssembleScenes_TooShort(t *testing.T) {
	drafts := make([]sceneDraft, 5)
	for i := range drafts {
		drafts[i] = sceneDraft{Action: "a", Visual: "v"}
	}
	_, err := assembleScenes(drafts, domain.NewRoster(nil), assembleOptions{total: 3, maxDialogueChars: 80})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ValidationError を期待しましたが %v でした", err)
	}
}
