package parser

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// ParseFile は保存済みの絵コンテを読み込みます。
// 拡張子が .json なら storyboard.json 形式、それ以外は Markdown として解析します。
func ParseFile(path string) (Storyboard, error) {
	slog.Info("絵コンテファイルを読み込んでいます", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return Storyboard{}, fmt.Errorf("絵コンテファイルのオープンに失敗しました (%s): %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var doc struct {
			Title  string        `json:"title"`
			Scenes domain.Scenes `json:"scenes"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return Storyboard{}, fmt.Errorf("絵コンテJSONのパースに失敗しました: %w", err)
		}
		if len(doc.Scenes) == 0 {
			return Storyboard{}, fmt.Errorf("有効なシーン情報が見つかりませんでした")
		}
		return Storyboard{Title: doc.Title, Scenes: doc.Scenes}, nil
	}

	return NewMarkdownParser().Parse(string(data))
}
