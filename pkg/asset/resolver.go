package asset

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultPromptsFileName は連結したプロンプトのデフォルトファイル名です。
	DefaultPromptsFileName = "prompts.txt"
	// DefaultStoryboardJSON は生成された絵コンテのデフォルト JSON ファイル名です。
	DefaultStoryboardJSON = "storyboard.json"
	// DefaultArchiveName は一括ダウンロード用アーカイブのデフォルトファイル名です。
	DefaultArchiveName = "results.zip"
)

// preferredExtensions は MIME タイプごとの優先拡張子です。
var preferredExtensions = map[string]string{
	"image/png":        ".png",
	"image/jpeg":       ".jpg",
	"image/webp":       ".webp",
	"image/gif":        ".gif",
	"video/mp4":        ".mp4",
	"audio/mpeg":       ".mp3",
	"audio/wav":        ".wav",
	"application/json": ".json",
	"text/plain":       ".txt",
}

// SanitizeKey は集約キーからファイル名に使える文字列を作ります。
// 英数字以外は "_" に置き換え、連続は1つにまとめ、小文字に揃えます。
// 例: "Scene 1 (00:00-00:08)" -> "scene_1_00_00_00_08"
func SanitizeKey(key string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(key) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}
	name := strings.Trim(sb.String(), "_")
	if name == "" {
		return "item"
	}
	return name
}

// ExtensionFor は MIME タイプに対応する拡張子を返します。不明な場合は ".bin" です。
func ExtensionFor(mimeType string) string {
	if mimeType == "" {
		return ".txt"
	}
	base := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if ext, ok := preferredExtensions[base]; ok {
		return ext
	}
	return ".bin"
}

// UniqueNamer は同じ名前が二度使われないように連番を付与します。
type UniqueNamer struct {
	used map[string]struct{}
}

// NewUniqueNamer は UniqueNamer を生成します。
func NewUniqueNamer() *UniqueNamer {
	return &UniqueNamer{used: make(map[string]struct{})}
}

// Name は base+ext が未使用ならそのまま、使用済みなら base_2+ext のように返します。
func (n *UniqueNamer) Name(base, ext string) string {
	candidate := base + ext
	for i := 2; n.taken(candidate); i++ {
		candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	n.used[candidate] = struct{}{}
	return candidate
}

func (n *UniqueNamer) taken(name string) bool {
	_, ok := n.used[name]
	return ok
}

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から、
// GCS/ローカルを考慮した最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolveOutputPath(baseDir, fileName)
}
