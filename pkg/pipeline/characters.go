package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
)

type characterSheet struct {
	Characters []characterEntry `json:"characters" validate:"dive"`
}

type characterEntry struct {
	Name        string `json:"name" validate:"required" jsonschema_description:"Name as written in the script"`
	Species     string `json:"species" validate:"oneof=human animal" jsonschema:"enum=human,enum=animal"`
	Nationality string `json:"nationality" jsonschema_description:"Nationality or ethnicity, empty for animals"`
	Description string `json:"description" validate:"required" jsonschema_description:"Self-contained visual description reused in every scene"`
}

// IdentifyCharacters は台本から登場キャラクターを抽出し、Roster を確定させます。
// キャラクターが見つからない場合は空の Roster で成功します。
func (s *Session) IdentifyCharacters(ctx context.Context) error {
	system, err := s.p.prompts.Build(prompts.ModeCharacters, prompts.TemplateData{
		Language:    s.opts.GenerationLanguage,
		Nationality: s.opts.Nationality,
	})
	if err != nil {
		return s.fail("characters", err)
	}

	slog.InfoContext(ctx, "キャラクターを抽出します", "nationality", s.opts.Nationality)
	sheet, err := ai.CompleteAs[characterSheet](ctx, s.p.client, system, s.script)
	if err != nil {
		return s.fail("characters", fmt.Errorf("キャラクター抽出に失敗しました: %w", err))
	}

	chars := make([]domain.Character, 0, len(sheet.Characters))
	for _, e := range sheet.Characters {
		chars = append(chars, applyNationality(domain.Character{
			Name:        strings.TrimSpace(e.Name),
			Description: strings.TrimSpace(e.Description),
			Species:     domain.Species(e.Species),
			Nationality: strings.TrimSpace(e.Nationality),
		}, s.opts.Nationality))
	}
	roster := domain.NewRoster(chars)

	s.mu.Lock()
	s.roster = roster
	s.stage = StageCharacters
	s.lastErr = nil
	s.mu.Unlock()

	slog.InfoContext(ctx, "キャラクターの抽出が完了しました", slog.Int("count", roster.Len()))
	return nil
}

// applyNationality は国籍の上書きを人間のキャラクターにのみ適用します。
// 説明文に国籍が書かれていなければ先頭に補います。
func applyNationality(c domain.Character, override string) domain.Character {
	if override == "" || c.IsAnimal() {
		return c
	}
	c.Nationality = override
	if !strings.Contains(strings.ToLower(c.Description), strings.ToLower(override)) {
		c.Description = fmt.Sprintf("%s. %s", override, c.Description)
	}
	return c
}

// Translate は各キャラクターの説明を表示言語に翻訳します。正規の説明は変更しません。
func (s *Session) Translate(ctx context.Context) error {
	lang := s.opts.DisplayLanguage
	if lang == "" {
		return nil
	}

	roster := s.Roster()
	translations := make([]Translation, 0, roster.Len())
	for _, c := range roster.Characters() {
		translated, err := s.p.translator.Translate(ctx, c.Description, lang)
		if err != nil {
			return s.fail("translate", fmt.Errorf("キャラクター '%s' の翻訳に失敗しました: %w", c.Name, err))
		}
		translations = append(translations, Translation{
			Name:       c.Name,
			Language:   lang,
			Original:   c.Description,
			Translated: translated,
		})
	}

	s.mu.Lock()
	s.translations = translations
	if s.stage < StageTranslated {
		s.stage = StageTranslated
	}
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}
