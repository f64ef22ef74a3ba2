package runner

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
)

// LoadMedia は path のファイルを読み込み、MIME タイプを判定して ai.Media を返します。
func LoadMedia(path string) (ai.Media, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ai.Media{}, fmt.Errorf("ファイル '%s' の読み込みに失敗しました: %w", path, err)
	}
	return ai.Media{
		Name:     filepath.Base(path),
		Data:     data,
		MIMEType: detectMIME(path, data),
	}, nil
}

// LoadImageDir は dir 直下の画像ファイルをファイル名順に読み込みます。
func LoadImageDir(dir string) ([]ai.Media, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ディレクトリ '%s' の読み込みに失敗しました: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var images []ai.Media
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m, err := LoadMedia(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(m.MIMEType, "image/") {
			continue
		}
		images = append(images, m)
	}
	return images, nil
}

func detectMIME(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return strings.Split(t, ";")[0]
	}
	return strings.Split(http.DetectContentType(data), ";")[0]
}
