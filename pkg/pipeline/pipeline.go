package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
)

// Stage はセッションが完了した工程です。
type Stage int

const (
	StageNew Stage = iota
	StageCharacters
	StageTranslated
	StageScenes
)

func (s Stage) String() string {
	switch s {
	case StageCharacters:
		return "characters"
	case StageTranslated:
		return "translated"
	case StageScenes:
		return "scenes"
	default:
		return "new"
	}
}

// Pipeline は台本からキャラクター一覧、シーンプロンプトまでを生成する司令塔です。
type Pipeline struct {
	client     ai.GenerativeClient
	prompts    prompts.PromptBuilder
	translator *Translator
	cfg        config.Config
}

// New は各コンポーネントを受け取り、Pipeline インスタンスを生成します。
func New(client ai.GenerativeClient, pb prompts.PromptBuilder, cfg config.Config) (*Pipeline, error) {
	if client == nil {
		return nil, errors.New("GenerativeClient は必須です")
	}
	if pb == nil {
		return nil, errors.New("PromptBuilder は必須です")
	}
	return &Pipeline{
		client:     client,
		prompts:    pb,
		translator: NewTranslator(client, pb, cfg.TranslationTTL),
		cfg:        cfg,
	}, nil
}

// Session は1回分の生成の状態です。工程が失敗しても、それまでの成果は保持されます。
type Session struct {
	p      *Pipeline
	script string
	opts   Options

	mu           sync.RWMutex
	roster       domain.Roster
	translations []Translation
	scenes       domain.Scenes
	stage        Stage
	lastErr      error
}

// NewSession は入力を検証してセッションを開始します。
// 検証に失敗した場合は ValidationError を返し、何も生成しません。
func (p *Pipeline) NewSession(script string, opts Options) (*Session, error) {
	opts = opts.normalize(p.cfg)
	if err := opts.check(script); err != nil {
		return nil, err
	}
	return &Session{p: p, script: script, opts: opts}, nil
}

// Run は全工程を順に実行します。翻訳は DisplayLanguage が指定された場合のみ行います。
func (s *Session) Run(ctx context.Context) error {
	if err := s.IdentifyCharacters(ctx); err != nil {
		return err
	}
	if s.opts.DisplayLanguage != "" {
		if err := s.Translate(ctx); err != nil {
			return err
		}
	}
	return s.GenerateScenes(ctx)
}

// Options は正規化済みのオプションを返します。
func (s *Session) Options() Options { return s.opts }

// Roster は現在のキャラクター一覧を返します。
func (s *Session) Roster() domain.Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster
}

// SetRoster はキャラクター一覧を差し替えます。保存済みの一覧を使う場合や、抽出を省略する場合に使います。
func (s *Session) SetRoster(r domain.Roster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster = r
	if s.stage < StageCharacters {
		s.stage = StageCharacters
	}
}

// EditCharacter はユーザーが編集した説明で Roster を更新します。
// 生成済みのシーンには影響しません。
func (s *Session) EditCharacter(name, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.roster.WithDescription(name, description)
	if err != nil {
		return domain.NewError(domain.KindValidation, "edit_character", err.Error(), nil)
	}
	s.roster = next
	return nil
}

// Translations は表示用の翻訳結果を返します。
func (s *Session) Translations() []Translation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Translation(nil), s.translations...)
}

// Scenes は生成済みシーンのコピーを返します。
func (s *Session) Scenes() domain.Scenes {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scenes.Clone()
}

// Stage は最後に成功した工程を返します。
func (s *Session) Stage() Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage
}

// Err は最後に失敗した工程のエラーを返します。
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Session) fail(stage string, err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	slog.Error("パイプラインの工程が失敗しました", "stage", stage, "error", err)
	return err
}
