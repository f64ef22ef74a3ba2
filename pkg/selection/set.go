package selection

import (
	"fmt"
	"sync"

	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// LimitError は選択上限を超えたことを表します。
// errors.Is(err, domain.ErrSelectionLimitExceeded) で判定できます。
type LimitError struct {
	Limit     int
	Requested int // 要求された件数
	Truncated int // 上限により選択されなかった件数
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("選択できるのは最大 %d 件です (要求: %d 件, 除外: %d 件)", e.Limit, e.Requested, e.Truncated)
}

func (e *LimitError) Is(target error) bool {
	return target == domain.ErrSelectionLimitExceeded
}

// Set は上限付きの選択集合です。選択された順序を保持します。
type Set struct {
	mu    sync.RWMutex
	limit int
	ids   []string
	index map[string]struct{}
}

// New は上限 limit の Set を生成します。0 以下の場合は既定値を使います。
func New(limit int) *Set {
	if limit <= 0 {
		limit = config.DefaultSelectionLimit
	}
	return &Set{
		limit: limit,
		index: make(map[string]struct{}),
	}
}

// Toggle は id が選択済みなら外し、未選択なら追加します。
// 上限に達している場合は何も変更せず LimitError を返します。
func (s *Set) Toggle(id string) (selected bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; ok {
		s.remove(id)
		return false, nil
	}
	if len(s.ids) >= s.limit {
		return false, &LimitError{Limit: s.limit, Requested: len(s.ids) + 1, Truncated: 1}
	}
	s.ids = append(s.ids, id)
	s.index[id] = struct{}{}
	return true, nil
}

// SelectAll は現在の選択を ids で置き換えます。重複は除かれます。
// 上限を超える場合は先頭から上限件数だけを選択し、LimitError を返します。
func (s *Set) SelectAll(ids []string) error {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if len(unique) > s.limit {
		err = &LimitError{Limit: s.limit, Requested: len(unique), Truncated: len(unique) - s.limit}
		unique = unique[:s.limit]
	}

	s.ids = unique
	s.index = make(map[string]struct{}, len(unique))
	for _, id := range unique {
		s.index[id] = struct{}{}
	}
	return err
}

// Clear は選択をすべて解除します。
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
	s.index = make(map[string]struct{})
}

// Contains は id が選択されているかを返します。
func (s *Set) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Len は選択件数を返します。
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Limit は選択上限を返します。
func (s *Set) Limit() int { return s.limit }

// IDs は選択順の ID のコピーを返します。
func (s *Set) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.ids...)
}

func (s *Set) remove(id string) {
	delete(s.index, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// Pick は items のうち選択されているものだけを、items の順序のまま返します。
func Pick[T any](items []T, s *Set, key func(T) string) []T {
	var picked []T
	for _, it := range items {
		if s.Contains(key(it)) {
			picked = append(picked, it)
		}
	}
	return picked
}
