package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Status は WorkItem のライフサイクル上の状態です。
type Status string

const (
	StatusPending   Status = "pending"
	StatusInFlight  Status = "in_flight"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal は Completed または Failed であれば true を返します。
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo は next への遷移が許可されているかを返します。
// 終端状態からはどこへも遷移できません。
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusInFlight
	case StatusInFlight:
		return next.IsTerminal()
	default:
		return false
	}
}

// WorkItem はバッチ処理の1単位です。
// Result は Status が Completed の場合のみ、Err は Failed の場合のみ意味を持ちます。
type WorkItem[I, R any] struct {
	ID     string `json:"id"`
	Input  I      `json:"input"`
	Status Status `json:"status"`
	Result R      `json:"result,omitempty"`
	Err    string `json:"error,omitempty"`
}

// NewWorkItem は Pending 状態の WorkItem を新しい ID で生成します。
func NewWorkItem[I, R any](input I) WorkItem[I, R] {
	return WorkItem[I, R]{
		ID:     uuid.NewString(),
		Input:  input,
		Status: StatusPending,
	}
}

// NewWorkItems は入力の順序を保ったまま WorkItem のキューを生成します。
func NewWorkItems[I, R any](inputs []I) []WorkItem[I, R] {
	items := make([]WorkItem[I, R], len(inputs))
	for i, in := range inputs {
		items[i] = NewWorkItem[I, R](in)
	}
	return items
}

// RetryOf は失敗したアイテムから、同じ入力を持つ新しい WorkItem を作ります。
// 元の失敗記録はそのまま履歴として残ります。
func RetryOf[I, R any](failed WorkItem[I, R]) (WorkItem[I, R], error) {
	if failed.Status != StatusFailed {
		return WorkItem[I, R]{}, fmt.Errorf("再投入できるのは失敗したアイテムのみです (id=%s, status=%s)", failed.ID, failed.Status)
	}
	return NewWorkItem[I, R](failed.Input), nil
}

// Transition は状態遷移を検証しながら適用します。
func (w *WorkItem[I, R]) Transition(next Status) error {
	if !w.Status.CanTransitionTo(next) {
		return fmt.Errorf("不正な状態遷移です (id=%s): %s -> %s", w.ID, w.Status, next)
	}
	w.Status = next
	return nil
}

// Complete は結果を設定して Completed に遷移させます。
func (w *WorkItem[I, R]) Complete(result R) error {
	if err := w.Transition(StatusCompleted); err != nil {
		return err
	}
	w.Result = result
	return nil
}

// Fail はエラーメッセージを設定して Failed に遷移させます。
func (w *WorkItem[I, R]) Fail(err error) error {
	if terr := w.Transition(StatusFailed); terr != nil {
		return terr
	}
	if err != nil {
		w.Err = err.Error()
	}
	return nil
}
