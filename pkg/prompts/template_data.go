package prompts

import (
	"embed"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

const (
	ModeCharacters  = "characters"
	ModeTranslate   = "translate"
	ModeScenes      = "scenes"
	ModeImagePrompt = "image_prompt"
	ModeSEO         = "seo"
	ModeMusic       = "music"
	ModeVideoScript = "video_script"
)

// TemplateData はプロンプトテンプレートに渡すデータ構造です。
// モードごとに使う項目は異なり、使わない項目はゼロ値のままで構いません。
type TemplateData struct {
	Language        string // 生成に使う言語
	DisplayLanguage string // 翻訳先の表示言語
	Style           string
	Nationality     string

	// シーン生成用
	KindLabel        string
	TargetSceneCount int
	UnitSeconds      int
	TotalSeconds     int
	Characters       []domain.Character
	Silent           bool
	MaxDialogueChars int

	// SEO・音楽用
	Platform string
	Genre    string
	Mood     string
	Count    int
}

// templateFS はモード名と同じ名前の Markdown テンプレートを保持します (例: scenes.md → "scenes")。
//
//go:embed *.md
var templateFS embed.FS

// modes はビルダーが必ず持つべきモードの一覧なのだ。
var modes = []string{
	ModeCharacters,
	ModeTranslate,
	ModeScenes,
	ModeImagePrompt,
	ModeSEO,
	ModeMusic,
	ModeVideoScript,
}
