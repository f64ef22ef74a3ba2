package parser

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

const (
	fieldKeyAction     = "action"
	fieldKeyCharacters = "characters"
	fieldKeyDialogue   = "dialogue"
	fieldKeyPart       = "part"
	promptFence        = "```"
)

// Storyboard は Markdown 形式の絵コンテの内容です。
type Storyboard struct {
	Title  string
	Scenes domain.Scenes
}

// FormatMarkdown は絵コンテを人が編集しやすい Markdown に整形します。
// 出力は MarkdownParser.Parse でそのまま読み戻せます。
func FormatMarkdown(sb Storyboard) string {
	var b strings.Builder
	if sb.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", sb.Title)
	}
	for _, sc := range sb.Scenes {
		fmt.Fprintf(&b, "## %s (%s)\n", sc.Key(), sc.TimeCode())
		fmt.Fprintf(&b, "- %s: %s\n", fieldKeyAction, oneLine(sc.Action))
		fmt.Fprintf(&b, "- %s: %s\n", fieldKeyCharacters, strings.Join(sc.CharactersPresent, ", "))
		if sc.Dialogue != "" {
			fmt.Fprintf(&b, "- %s: %s\n", fieldKeyDialogue, oneLine(sc.Dialogue))
		}
		if sc.Parts > 1 {
			fmt.Fprintf(&b, "- %s: %d/%d\n", fieldKeyPart, sc.Part, sc.Parts)
		}
		fmt.Fprintf(&b, "\n%stext\n%s\n%s\n\n", promptFence, sc.PromptText, promptFence)
	}
	return b.String()
}

// MarkdownParser は Markdown 形式の絵コンテを解析し、シーン一覧に変換します。
// プロンプトは各シーン見出しの後のコードブロックに、改行を含めてそのまま書かれます。
type MarkdownParser struct{}

// NewMarkdownParser は Parser を初期化するのだ。
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

// Parse は Markdown テキストを解析して Storyboard に変換します。
// プロンプトを持たないシーンは無視され、有効なシーンが1つもなければエラーになります。
func (p *MarkdownParser) Parse(input string) (Storyboard, error) {
	var sb Storyboard
	var current *domain.Scene

	flush := func() {
		if current != nil && strings.TrimSpace(current.PromptText) != "" {
			sb.Scenes = append(sb.Scenes, *current)
		}
		current = nil
	}

	var prompt []string
	inPrompt := false

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, promptFence) {
			if inPrompt && current != nil {
				current.PromptText = strings.TrimSpace(strings.Join(prompt, "\n"))
			}
			inPrompt = !inPrompt
			prompt = prompt[:0]
			continue
		}
		if inPrompt {
			prompt = append(prompt, strings.TrimRight(line, " \t\r"))
			continue
		}
		if trimmed == "" {
			continue
		}

		if m := SceneRegex.FindStringSubmatch(trimmed); m != nil {
			flush()
			current = newScene(m)
			continue
		}

		if m := TitleRegex.FindStringSubmatch(trimmed); m != nil {
			sb.Title = strings.TrimSpace(m[1])
			continue
		}

		if current == nil {
			continue
		}
		m := FieldRegex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		key, val := strings.ToLower(m[1]), strings.TrimSpace(m[2])
		switch key {
		case fieldKeyAction:
			current.Action = val
		case fieldKeyCharacters:
			current.CharactersPresent = splitNames(val)
		case fieldKeyDialogue:
			current.Dialogue = val
		case fieldKeyPart:
			if part, parts, ok := parsePart(val); ok {
				current.Part, current.Parts = part, parts
			} else {
				slog.Warn("分割位置の表記が不正なため無視しました", "scene", current.Index, "value", val)
			}
		default:
			slog.Debug("Markdown内に未知のフィールドキーが見つかりました", "key", key)
		}
	}
	flush()

	if len(sb.Scenes) == 0 {
		return Storyboard{}, fmt.Errorf("有効なシーン情報が見つかりませんでした")
	}
	return sb, nil
}

// newScene は見出しのマッチ結果からシーンを作ります。
func newScene(m []string) *domain.Scene {
	idx, _ := strconv.Atoi(m[1])
	sc := &domain.Scene{Index: idx, Part: 1, Parts: 1}
	if m[2] != "" {
		sc.Start = clock(m[2], m[3])
		sc.End = clock(m[4], m[5])
	}
	sc.Name = fmt.Sprintf("%s (%s)", sc.Key(), sc.TimeCode())
	return sc
}

func clock(min, sec string) time.Duration {
	mm, _ := strconv.Atoi(min)
	ss, _ := strconv.Atoi(sec)
	return time.Duration(mm)*time.Minute + time.Duration(ss)*time.Second
}

// parsePart は "2/3" 形式の分割位置を解析します。
func parsePart(raw string) (part, parts int, ok bool) {
	m := PartRegex.FindStringSubmatch(raw)
	if m == nil {
		return 0, 0, false
	}
	part, _ = strconv.Atoi(m[1])
	parts, _ = strconv.Atoi(m[2])
	if part < 1 || part > parts {
		return 0, 0, false
	}
	return part, parts, true
}

func splitNames(raw string) []string {
	names := []string{}
	for _, n := range strings.Split(raw, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// oneLine は改行を空白に置き換え、1行のフィールドに収めます。
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
