package batch

import (
	"context"
	"time"
)

// Clock はクールダウンの待機を抽象化します。テストでは実時間を使わない実装に差し替えます。
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock は実時間で待機する Clock です。
type RealClock struct{}

// Sleep は d の経過か ctx のキャンセルまで待機します。
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
