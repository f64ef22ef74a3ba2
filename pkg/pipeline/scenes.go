package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
)

type sceneBoard struct {
	Scenes []sceneDraft `json:"scenes" validate:"dive"`
}

type sceneDraft struct {
	Action     string   `json:"action" validate:"required" jsonschema_description:"One-sentence summary of the scene"`
	Characters []string `json:"characters" jsonschema_description:"Names of the characters visible in the scene"`
	Visual     string   `json:"visual" validate:"required" jsonschema_description:"Setting, action, camera and lighting"`
	Dialogue   string   `json:"dialogue" jsonschema_description:"Original spoken lines, untranslated"`
}

// GenerateScenes は台本と確定済みの Roster からシーン一覧を生成します。
// 時間配分・長いセリフの分割・番号付け・プロンプトの組み立てはモデルの応答に頼らず、ここで確定させます。
func (s *Session) GenerateScenes(ctx context.Context) error {
	roster := s.Roster()
	unit := UnitFor(s.opts.Kind, s.p.cfg)
	target := TargetSceneCount(s.opts.Total, unit)

	kindLabel := "animated video"
	if s.opts.Kind == KindImage {
		kindLabel = "slideshow of still images"
	}
	system, err := s.p.prompts.Build(prompts.ModeScenes, prompts.TemplateData{
		Language:         s.opts.GenerationLanguage,
		Style:            s.opts.Style,
		KindLabel:        kindLabel,
		TargetSceneCount: target,
		UnitSeconds:      int(unit / time.Second),
		TotalSeconds:     int(s.opts.Total.Round(time.Second) / time.Second),
		Characters:       roster.Characters(),
		Silent:           s.opts.Silent(),
		MaxDialogueChars: s.p.cfg.MaxDialogueChars,
	})
	if err != nil {
		return s.fail("scenes", err)
	}

	slog.InfoContext(ctx, "シーンを生成します",
		slog.Int("target_scenes", target),
		slog.Duration("total", s.opts.Total),
		slog.Int("characters", roster.Len()))

	board, err := ai.CompleteAs[sceneBoard](ctx, s.p.client, system, s.script)
	if err != nil {
		return s.fail("scenes", fmt.Errorf("シーン生成に失敗しました: %w", err))
	}
	if len(board.Scenes) == 0 {
		return s.fail("scenes", domain.NewError(domain.KindEmptyResult, "scenes", "シーンが1つも生成されませんでした", nil))
	}
	if len(board.Scenes) != target {
		slog.WarnContext(ctx, "生成されたシーン数が目標と異なります",
			slog.Int("target", target), slog.Int("got", len(board.Scenes)))
	}

	scenes, err := assembleScenes(board.Scenes, roster, assembleOptions{
		total:            s.opts.Total,
		style:            s.opts.Style,
		silent:           s.opts.Silent(),
		maxDialogueChars: s.p.cfg.MaxDialogueChars,
	})
	if err != nil {
		return s.fail("scenes", err)
	}
	if err := scenes.Validate(); err != nil {
		return s.fail("scenes", err)
	}

	s.mu.Lock()
	s.scenes = scenes
	s.stage = StageScenes
	s.lastErr = nil
	s.mu.Unlock()

	slog.InfoContext(ctx, "シーンの生成が完了しました", slog.Int("scenes", len(scenes)))
	return nil
}

type assembleOptions struct {
	total            time.Duration
	style            string
	silent           bool
	maxDialogueChars int
}

// assembleScenes は論理シーンに時間を割り当て、長いセリフを分割し、連番とプロンプトを確定させます。
func assembleScenes(drafts []sceneDraft, roster domain.Roster, opts assembleOptions) (domain.Scenes, error) {
	spans, err := distribute(0, opts.total, len(drafts))
	if err != nil {
		return nil, err
	}
	var scenes domain.Scenes

	for i, d := range drafts {
		present, unknown := resolveCharacters(d.Characters, roster)
		if len(unknown) > 0 {
			slog.Warn("Roster にないキャラクターを除外しました", "scene", i+1, "names", unknown)
		}
		names := make([]string, len(present))
		for j, c := range present {
			names[j] = c.Name
		}

		dialogue := ""
		if !opts.silent {
			dialogue = d.Dialogue
		}
		chunks := splitDialogue(dialogue, opts.maxDialogueChars)
		subSpans, err := distribute(spans[i].start, spans[i].end-spans[i].start, len(chunks))
		if err != nil {
			return nil, err
		}

		for j, chunk := range chunks {
			scenes = append(scenes, domain.Scene{
				Start:             subSpans[j].start,
				End:               subSpans[j].end,
				Action:            strings.TrimSpace(d.Action),
				CharactersPresent: append([]string(nil), names...),
				Dialogue:          chunk,
				PromptText:        composePrompt(present, d.Visual, opts.style, chunk, opts.silent),
				Part:              j + 1,
				Parts:             len(chunks),
			})
		}
	}

	for i := range scenes {
		scenes[i].Index = i + 1
		scenes[i].Name = fmt.Sprintf("Scene %d (%s)", scenes[i].Index, scenes[i].TimeCode())
	}
	return scenes, nil
}
