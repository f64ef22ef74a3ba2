package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-storyboard-kit/pkg/batch"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// buildFunc は進捗通知を組み込んだオプションから Run を組み立てる関数です。
type buildFunc[I, R any] func(opts batch.Options) (*batch.Run[I, R], error)

// drive は Run を実行しながら、進捗を別ゴルーチンで w に描画するのだ。
// 戻り値の Run からは失敗したアイテムを取り出せます。
func drive[I, R any](ctx context.Context, w io.Writer, opts batch.Options, build buildFunc[I, R]) (*batch.Run[I, R], batch.Summary, error) {
	updates := make(chan batch.Progress, 16)
	opts.OnProgress = func(p batch.Progress) { updates <- p }

	run, err := build(opts)
	if err != nil {
		return nil, batch.Summary{}, err
	}

	var g errgroup.Group
	g.Go(func() error {
		defer close(updates)
		for item := range run.Items(ctx) {
			if item.Status == domain.StatusFailed {
				slog.WarnContext(ctx, "アイテムの処理に失敗しました", "id", item.ID, "error", item.Err)
			}
		}
		return ctx.Err()
	})
	g.Go(func() error {
		for p := range updates {
			fmt.Fprintf(w, "[%s] %s\n", opts.Name, p)
		}
		return nil
	})

	err = g.Wait()
	return run, run.Summary(), err
}

// printFailed は失敗したアイテムの一覧を w に書き出します。
func printFailed[I, R any](w io.Writer, failed []domain.WorkItem[I, R], label func(I) string) {
	if len(failed) == 0 {
		return
	}
	fmt.Fprintf(w, "失敗したアイテム (%d 件):\n", len(failed))
	for _, it := range failed {
		fmt.Fprintf(w, "  - %s: %s\n", label(it.Input), it.Err)
	}
}
