package publisher

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/asset"
)

// ExportConcatenated はテキスト結果を sep で連結します。バイナリのみの結果は読み飛ばします。
func ExportConcatenated(entries []Entry, sep string) string {
	texts := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsBinary() && e.Text == "" {
			continue
		}
		texts = append(texts, e.Text)
	}
	return strings.Join(texts, sep)
}

// ArchiveNames は entries ごとのアーカイブ内ファイル名を、重複のない形で順に返します。
func ArchiveNames(entries []Entry) []string {
	namer := asset.NewUniqueNamer()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = namer.Name(asset.SanitizeKey(e.Key), extensionOf(e))
	}
	return names
}

// ExportArchive は entries を1件1ファイルの zip として w に書き出します。
func ExportArchive(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	names := ArchiveNames(entries)

	for i, e := range entries {
		f, err := zw.Create(names[i])
		if err != nil {
			zw.Close()
			return fmt.Errorf("アーカイブエントリ '%s' の作成に失敗しました: %w", names[i], err)
		}
		if _, err := f.Write(e.Payload()); err != nil {
			zw.Close()
			return fmt.Errorf("アーカイブエントリ '%s' の書き込みに失敗しました: %w", names[i], err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("アーカイブの書き込みに失敗しました: %w", err)
	}
	return nil
}

func extensionOf(e Entry) string {
	if !e.IsBinary() {
		return ".txt"
	}
	return asset.ExtensionFor(e.MIMEType)
}
