package pipeline

import (
	"fmt"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// NoDialogueMarker は無音モードで全プロンプトの末尾に付ける固定文言です。
const NoDialogueMarker = "No dialogue, no speech, no subtitles."

// composePrompt はシーンの最終プロンプトを組み立てます。
// 先頭に登場キャラクターの固定説明をそのまま並べ、言い換えは一切行いません。
func composePrompt(chars []domain.Character, visual, style, dialogue string, silent bool) string {
	var sb strings.Builder
	for _, c := range chars {
		fmt.Fprintf(&sb, "%s: %s\n", c.Name, c.Description)
	}

	sb.WriteString(strings.TrimSpace(visual))
	if style != "" {
		fmt.Fprintf(&sb, "\nStyle: %s", style)
	}

	switch {
	case silent:
		sb.WriteString("\n" + NoDialogueMarker)
	case dialogue != "":
		fmt.Fprintf(&sb, "\nDialogue (original language, do not translate): \"%s\"", dialogue)
	}
	return sb.String()
}

// resolveCharacters はモデルが返した名前を Roster の登録順・表記に揃えます。
// Roster にない名前は除外し、その名前を unknown として返します。
func resolveCharacters(names []string, roster domain.Roster) (present []domain.Character, unknown []string) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		if c, ok := roster.Find(n); ok {
			wanted[c.Name] = true
			continue
		}
		if strings.TrimSpace(n) != "" {
			unknown = append(unknown, n)
		}
	}
	for _, c := range roster.Characters() {
		if wanted[c.Name] {
			present = append(present, c)
		}
	}
	return present, unknown
}
