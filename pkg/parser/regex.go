package parser

import "regexp"

var (
	// TitleRegex は "# タイトル" 形式のタイトル行をキャプチャします。
	TitleRegex = regexp.MustCompile(`^#\s+(.+)`)

	// SceneRegex は "## Scene 3 (00:16-00:24)" 形式のシーン見出しをキャプチャします。時間表記は省略できます。
	SceneRegex = regexp.MustCompile(`^##\s+Scene\s+(\d+)(?:\s*\((\d+):(\d{2})-(\d+):(\d{2})\))?`)

	// FieldRegex は "- key: value" 形式のフィールド行をキャプチャします。
	FieldRegex = regexp.MustCompile(`^\s*-\s*([a-zA-Z_]+):\s*(.*)`)

	// PartRegex は分割シーンの "2/3" 形式の位置をキャプチャします。
	PartRegex = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)$`)
)
