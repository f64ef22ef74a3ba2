package history

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record は完了した生成結果の履歴1件です。
type Record struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // "storyboard", "image_prompts" など
	CreatedAt time.Time `json:"created_at"`
	Summary   string    `json:"summary,omitempty"`
	Entries   []Entry   `json:"entries"`
}

// Entry は履歴に残す結果1件分です。バイナリは保存先のパスのみを記録します。
type Entry struct {
	Key  string `json:"key"`
	Text string `json:"text,omitempty"`
	Path string `json:"path,omitempty"`
}

// NewRecord は新しい ID と作成時刻を付与した Record を返します。
func NewRecord(kind, summary string, entries []Entry) Record {
	return Record{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		Summary:   summary,
		Entries:   entries,
	}
}

// Recorder は履歴を保存する外部コラボレーターです。
// 保存の失敗が生成処理を止めることはありません。
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// Nop は何も保存しない Recorder です。
type Nop struct{}

func (Nop) Record(context.Context, Record) error { return nil }

// FileRecorder は履歴を JSON Lines 形式でファイルに追記します。
type FileRecorder struct {
	path string
	mu   sync.Mutex
}

// NewFileRecorder は FileRecorder を生成します。ディレクトリは最初の書き込み時に作成されます。
func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{path: path}
}

// Record は1行の JSON として履歴を追記します。
func (r *FileRecorder) Record(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("履歴のエンコードに失敗しました: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("履歴ディレクトリの作成に失敗しました: %w", err)
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("履歴ファイルを開けませんでした: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("履歴の書き込みに失敗しました: %w", err)
	}
	return nil
}

// List はファイルに保存された履歴を古い順に返します。ファイルがなければ空です。
func (r *FileRecorder) List() ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("履歴ファイルを開けませんでした: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("履歴の解析に失敗しました: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("履歴の読み込みに失敗しました: %w", err)
	}
	return records, nil
}
