package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shouni/go-storyboard-kit/pkg/asset"
	"github.com/shouni/go-storyboard-kit/pkg/history"
)

// OutputWriter は生成物を保存先へ書き出すインターフェースです。
type OutputWriter interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// LocalWriter はローカルファイルシステムへ書き出す OutputWriter です。
type LocalWriter struct{}

// Write は path の親ディレクトリを作成してから r の内容を書き込みます。
func (LocalWriter) Write(ctx context.Context, path string, r io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ファイル '%s' の作成に失敗しました: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("ファイル '%s' の書き込みに失敗しました: %w", path, err)
	}
	return f.Close()
}

// Options は Publish の出力内容を指定します。
type Options struct {
	Kind         string // 履歴に残す種別
	Separator    string
	TextFileName string
	ArchiveName  string
	Archive      bool // zip を出力する
	Files        bool // バイナリ結果を個別ファイルとしても出力する
}

// Result は Publish が書き出したパスの一覧です。
type Result struct {
	TextPath    string
	ArchivePath string
	FilePaths   []string
}

// Publisher は集約結果を出力先へ書き出し、履歴に記録します。
type Publisher struct {
	writer   OutputWriter
	recorder history.Recorder
}

// NewPublisher は Publisher を生成します。recorder が nil の場合は履歴を残しません。
func NewPublisher(writer OutputWriter, recorder history.Recorder) *Publisher {
	if writer == nil {
		writer = LocalWriter{}
	}
	if recorder == nil {
		recorder = history.Nop{}
	}
	return &Publisher{writer: writer, recorder: recorder}
}

// Publish は entries を outputDir に書き出します。
// テキスト結果は1ファイルに連結し、指定があれば zip と個別ファイルも出力します。
func (p *Publisher) Publish(ctx context.Context, outputDir string, entries []Entry, opts Options) (Result, error) {
	opts = withDefaults(opts)
	var result Result

	if text := ExportConcatenated(entries, opts.Separator); text != "" {
		path, err := asset.ResolveOutputPath(outputDir, opts.TextFileName)
		if err != nil {
			return result, fmt.Errorf("テキスト出力パスの生成に失敗しました: %w", err)
		}
		if err := p.writer.Write(ctx, path, bytes.NewBufferString(text), "text/plain; charset=utf-8"); err != nil {
			return result, fmt.Errorf("テキストファイルの書き込みに失敗しました: %w", err)
		}
		result.TextPath = path
	}

	if opts.Files {
		names := ArchiveNames(entries)
		for i, e := range entries {
			if !e.IsBinary() {
				continue
			}
			path, err := asset.ResolveOutputPath(outputDir, names[i])
			if err != nil {
				return result, fmt.Errorf("出力パスの生成に失敗しました: %w", err)
			}
			if err := p.writer.Write(ctx, path, bytes.NewReader(e.Data), e.MIMEType); err != nil {
				return result, fmt.Errorf("ファイル '%s' の書き込みに失敗しました: %w", names[i], err)
			}
			result.FilePaths = append(result.FilePaths, path)
		}
	}

	if opts.Archive && len(entries) > 0 {
		var buf bytes.Buffer
		if err := ExportArchive(&buf, entries); err != nil {
			return result, err
		}
		path, err := asset.ResolveOutputPath(outputDir, opts.ArchiveName)
		if err != nil {
			return result, fmt.Errorf("アーカイブ出力パスの生成に失敗しました: %w", err)
		}
		if err := p.writer.Write(ctx, path, &buf, "application/zip"); err != nil {
			return result, fmt.Errorf("アーカイブの書き込みに失敗しました: %w", err)
		}
		result.ArchivePath = path
	}

	slog.InfoContext(ctx, "生成結果を出力しました",
		slog.String("dir", outputDir),
		slog.Int("entries", len(entries)),
		slog.String("archive", result.ArchivePath),
	)

	p.record(ctx, opts.Kind, entries, result)
	return result, nil
}

// WriteJSON は v を整形済み JSON として outputDir/name に書き出します。
func (p *Publisher) WriteJSON(ctx context.Context, outputDir, name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("JSON のエンコードに失敗しました: %w", err)
	}
	return p.writeFile(ctx, outputDir, name, data, "application/json")
}

// WriteText は text を outputDir/name に書き出します。
func (p *Publisher) WriteText(ctx context.Context, outputDir, name, text string) (string, error) {
	return p.writeFile(ctx, outputDir, name, []byte(text), "text/plain; charset=utf-8")
}

func (p *Publisher) writeFile(ctx context.Context, outputDir, name string, data []byte, contentType string) (string, error) {
	path, err := asset.ResolveOutputPath(outputDir, name)
	if err != nil {
		return "", fmt.Errorf("出力パスの生成に失敗しました: %w", err)
	}
	if err := p.writer.Write(ctx, path, bytes.NewReader(data), contentType); err != nil {
		return "", fmt.Errorf("ファイル '%s' の書き込みに失敗しました: %w", name, err)
	}
	return path, nil
}

// record は履歴を保存します。失敗してもログに残すだけです。
func (p *Publisher) record(ctx context.Context, kind string, entries []Entry, result Result) {
	recEntries := make([]history.Entry, 0, len(entries))
	names := ArchiveNames(entries)
	for i, e := range entries {
		he := history.Entry{Key: e.Key, Text: e.Text}
		if e.IsBinary() && result.hasBinaryOutput() {
			he.Path = names[i]
		}
		recEntries = append(recEntries, he)
	}

	summary := fmt.Sprintf("%d entries", len(entries))
	if err := p.recorder.Record(ctx, history.NewRecord(kind, summary, recEntries)); err != nil {
		slog.WarnContext(ctx, "履歴の保存に失敗しました", "error", err)
	}
}

func (r Result) hasBinaryOutput() bool {
	return r.ArchivePath != "" || len(r.FilePaths) > 0
}

func withDefaults(o Options) Options {
	if o.Kind == "" {
		o.Kind = "export"
	}
	if o.Separator == "" {
		o.Separator = "\n\n"
	}
	if o.TextFileName == "" {
		o.TextFileName = asset.DefaultPromptsFileName
	}
	if o.ArchiveName == "" {
		o.ArchiveName = asset.DefaultArchiveName
	}
	return o
}
