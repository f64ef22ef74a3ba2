package batch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// ErrRunConsumed は実行済みの Run を再度実行しようとした場合に返されます。
// 再実行するには新しい Run を構築してください。
var ErrRunConsumed = errors.New("batch: この Run はすでに実行されています")

// ProcessFunc は1件のアイテムを処理し、結果を返す関数です。
type ProcessFunc[I, R any] func(ctx context.Context, item domain.WorkItem[I, R]) (R, error)

// State は Run 全体の状態です。
type State string

const (
	StateIdle        State = "idle"
	StateRunning     State = "running"
	StateCoolingDown State = "cooling_down"
	StateCancelled   State = "cancelled"
	StateFinished    State = "finished"
)

// Options はバッチ実行のパラメータです。
type Options struct {
	Name       string           // ログ用の名前
	BatchSize  int              // クールダウンを挟むまでの処理件数。0 以下なら挟まない
	Cooldown   time.Duration    // バッチ境界ごとの待機時間
	Clock      Clock            // nil の場合は RealClock
	OnProgress func(p Progress) // アイテムが終端状態になるたびに呼ばれる
}

// OptionsFromConfig は設定値からバッチオプションを組み立てます。
func OptionsFromConfig(name string, cfg config.Config) Options {
	return Options{
		Name:      name,
		BatchSize: cfg.BatchSize,
		Cooldown:  cfg.BatchCooldown,
	}
}

// Progress は進捗の集計値です。
type Progress struct {
	Done      int `json:"done"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d (成功 %d, 失敗 %d)", p.Done, p.Total, p.Succeeded, p.Failed)
}

// Snapshot は Run の読み取り専用コピーです。
type Snapshot[I, R any] struct {
	Items     []domain.WorkItem[I, R]
	Progress  Progress
	State     State
	Cooldowns int
}

// Summary は実行結果の要約です。
type Summary struct {
	Progress
	Pending   int
	Cooldowns int
	Cancelled bool
}

// Run は1回分のバッチ実行の状態を保持します。
// キューは厳密に順番通り1件ずつ処理され、状態の書き込みは実行ループのみが行います。
// 外部からは Snapshot で読み取り、Cancel で中断を要求します。
type Run[I, R any] struct {
	process ProcessFunc[I, R]
	opts    Options
	logger  *slog.Logger
	started atomic.Bool

	mu        sync.RWMutex
	items     []domain.WorkItem[I, R]
	state     State
	progress  Progress
	cooldowns int
	cancelled bool
	stopSleep context.CancelFunc
}

// NewRun は Pending 状態のアイテム列から Run を構築します。
func NewRun[I, R any](items []domain.WorkItem[I, R], process ProcessFunc[I, R], opts Options) (*Run[I, R], error) {
	if process == nil {
		return nil, errors.New("batch: ProcessFunc は必須です")
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.Status != domain.StatusPending {
			return nil, fmt.Errorf("batch: Pending 以外のアイテムは投入できません (id=%s, status=%s)", it.ID, it.Status)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("batch: アイテムIDが重複しています (id=%s)", it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}

	copied := make([]domain.WorkItem[I, R], len(items))
	copy(copied, items)

	return &Run[I, R]{
		process:  process,
		opts:     opts,
		logger:   slog.With("run", opts.Name),
		items:    copied,
		state:    StateIdle,
		progress: Progress{Total: len(items)},
	}, nil
}

// FromInputs は入力値から新しい WorkItem を作って Run を構築します。
func FromInputs[I, R any](inputs []I, process ProcessFunc[I, R], opts Options) (*Run[I, R], error) {
	return NewRun(domain.NewWorkItems[I, R](inputs), process, opts)
}

// Items はアイテムを1件ずつ処理し、終端状態になった順に返す遅延シーケンスです。
// 反復を途中でやめた場合はキャンセルとして扱い、未処理のアイテムは Pending のまま残ります。
// シーケンスは1度しか消費できません。
func (r *Run[I, R]) Items(ctx context.Context) iter.Seq[domain.WorkItem[I, R]] {
	return func(yield func(domain.WorkItem[I, R]) bool) {
		if !r.started.CompareAndSwap(false, true) {
			r.logger.Warn("実行済みの Run が再度消費されようとしました")
			return
		}
		r.loop(ctx, yield)
	}
}

// Execute は全アイテムを処理し、要約を返します。
// ctx がキャンセルされた場合は要約とともに ctx のエラーを返します。
func (r *Run[I, R]) Execute(ctx context.Context) (Summary, error) {
	if !r.started.CompareAndSwap(false, true) {
		return r.Summary(), ErrRunConsumed
	}
	r.loop(ctx, func(domain.WorkItem[I, R]) bool { return true })
	return r.Summary(), ctx.Err()
}

// Cancel は中断を要求します。処理中のアイテムは最後まで実行され、次のアイテムは開始されません。
// クールダウン中であれば待機を打ち切ります。
func (r *Run[I, R]) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	stop := r.stopSleep
	r.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (r *Run[I, R]) loop(ctx context.Context, yield func(domain.WorkItem[I, R]) bool) {
	sleepCtx, stop := context.WithCancel(ctx)
	defer stop()

	r.mu.Lock()
	r.stopSleep = stop
	r.state = StateRunning
	total := len(r.items)
	r.mu.Unlock()

	r.logger.Info("バッチ処理を開始します",
		slog.Int("total", total),
		slog.Int("batch_size", r.opts.BatchSize),
		slog.Duration("cooldown", r.opts.Cooldown))

	for i := range total {
		if r.stopRequested(ctx) {
			r.finish(StateCancelled)
			return
		}

		item := r.dispatch(i)
		result, err := r.invoke(ctx, item)
		done, progress := r.settle(i, result, err)

		if err != nil {
			r.logger.Warn("アイテムの処理に失敗しました", "id", done.ID, "index", i+1, "error", err)
		}
		if r.opts.OnProgress != nil {
			r.opts.OnProgress(progress)
		}
		if !yield(done) {
			r.finish(StateCancelled)
			return
		}

		processed := i + 1
		if !r.atBatchBoundary(processed, total) {
			continue
		}
		if r.stopRequested(ctx) {
			r.finish(StateCancelled)
			return
		}
		if err := r.cooldown(sleepCtx, processed); err != nil {
			r.finish(StateCancelled)
			return
		}
	}
	r.finish(StateFinished)
}

// atBatchBoundary は processed 件目の直後にクールダウンを挟むべきかを返します。
// 最後のアイテムの後には挟みません。
func (r *Run[I, R]) atBatchBoundary(processed, total int) bool {
	n := r.opts.BatchSize
	return n > 0 && r.opts.Cooldown > 0 && processed%n == 0 && processed < total
}

func (r *Run[I, R]) cooldown(ctx context.Context, processed int) error {
	r.mu.Lock()
	r.state = StateCoolingDown
	r.cooldowns++
	r.mu.Unlock()

	r.logger.Info("APIレート制限のためクールダウンします",
		slog.Int("processed", processed),
		slog.Duration("cooldown", r.opts.Cooldown))

	if err := r.opts.Clock.Sleep(ctx, r.opts.Cooldown); err != nil {
		return err
	}

	r.mu.Lock()
	r.state = StateRunning
	r.mu.Unlock()
	return nil
}

func (r *Run[I, R]) stopRequested(ctx context.Context) bool {
	r.mu.RLock()
	cancelled := r.cancelled
	r.mu.RUnlock()
	return cancelled || ctx.Err() != nil
}

func (r *Run[I, R]) dispatch(i int) domain.WorkItem[I, R] {
	r.mu.Lock()
	defer r.mu.Unlock()
	// NewRun で Pending であることを検証済みなので遷移は失敗しません。
	_ = r.items[i].Transition(domain.StatusInFlight)
	return r.items[i]
}

// invoke は ProcessFunc を呼び出します。panic はアイテムの失敗として回収します。
func (r *Run[I, R]) invoke(ctx context.Context, item domain.WorkItem[I, R]) (result R, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("アイテム処理中に panic が発生しました: %v", p)
		}
	}()
	return r.process(ctx, item)
}

func (r *Run[I, R]) settle(i int, result R, err error) (domain.WorkItem[I, R], Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		_ = r.items[i].Fail(err)
		r.progress.Failed++
	} else {
		_ = r.items[i].Complete(result)
		r.progress.Succeeded++
	}
	r.progress.Done++
	return r.items[i], r.progress
}

func (r *Run[I, R]) finish(state State) {
	r.mu.Lock()
	r.state = state
	r.stopSleep = nil
	progress := r.progress
	r.mu.Unlock()

	r.logger.Info("バッチ処理を終了しました",
		"state", state,
		slog.Int("succeeded", progress.Succeeded),
		slog.Int("failed", progress.Failed),
		slog.Int("pending", progress.Total-progress.Done))
}

// Snapshot は現在の状態のコピーを返します。並行して呼び出しても安全です。
func (r *Run[I, R]) Snapshot() Snapshot[I, R] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.WorkItem[I, R], len(r.items))
	copy(items, r.items)
	return Snapshot[I, R]{
		Items:     items,
		Progress:  r.progress,
		State:     r.state,
		Cooldowns: r.cooldowns,
	}
}

// Summary は現在の集計値を返します。
func (r *Run[I, R]) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending := 0
	for _, it := range r.items {
		if it.Status == domain.StatusPending {
			pending++
		}
	}
	return Summary{
		Progress:  r.progress,
		Pending:   pending,
		Cooldowns: r.cooldowns,
		Cancelled: r.state == StateCancelled,
	}
}

// Failed は失敗したアイテムをキュー順に返します。
func (r *Run[I, R]) Failed() []domain.WorkItem[I, R] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var failed []domain.WorkItem[I, R]
	for _, it := range r.items {
		if it.Status == domain.StatusFailed {
			failed = append(failed, it)
		}
	}
	return failed
}

// RetryFailed は失敗したアイテムだけを新しい ID で作り直します。
// 戻り値を NewRun に渡すことで、失敗分のみを再実行できます。
func (r *Run[I, R]) RetryFailed() []domain.WorkItem[I, R] {
	failed := r.Failed()
	retries := make([]domain.WorkItem[I, R], 0, len(failed))
	for _, it := range failed {
		retry, err := domain.RetryOf(it)
		if err != nil {
			continue
		}
		retries = append(retries, retry)
	}
	return retries
}
