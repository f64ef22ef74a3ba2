package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
)

// SEOMetadata は動画やページに付与する検索向けメタデータです。
type SEOMetadata struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Tags        []string `json:"tags" validate:"required,min=1,dive,required"`
	Hashtags    []string `json:"hashtags" validate:"dive,startswith=#"`
}

// SEORunner は本文から SEO メタデータを生成します。
type SEORunner struct {
	cfg     config.Config
	client  ai.GenerativeClient
	prompts prompts.PromptBuilder
}

// NewSEORunner は依存関係を注入して初期化します。
func NewSEORunner(cfg config.Config, client ai.GenerativeClient, pb prompts.PromptBuilder) *SEORunner {
	return &SEORunner{cfg: cfg, client: client, prompts: pb}
}

// Run は content を元にメタデータを生成します。platform は空でも構いません。
func (r *SEORunner) Run(ctx context.Context, content, platform string) (SEOMetadata, error) {
	if strings.TrimSpace(content) == "" {
		return SEOMetadata{}, domain.Validationf("seo", "本文が空です")
	}
	instruction, err := r.prompts.Build(prompts.ModeSEO, prompts.TemplateData{
		Language: r.cfg.GenerationLanguage,
		Platform: platform,
	})
	if err != nil {
		return SEOMetadata{}, fmt.Errorf("プロンプト生成に失敗: %w", err)
	}

	slog.InfoContext(ctx, "SEO メタデータを生成しています", "model", r.cfg.GeminiModel, "platform", platform)
	return ai.CompleteAs[SEOMetadata](ctx, r.client, instruction, content)
}

// MusicPrompt は AI 作曲サービス向けの1曲分のプロンプトです。
type MusicPrompt struct {
	Title  string `json:"title" validate:"required"`
	Style  string `json:"style" validate:"required,max=200"`
	Lyrics string `json:"lyrics"`
}

type musicResponse struct {
	Songs []MusicPrompt `json:"songs" validate:"required,min=1,dive"`
}

// MusicRequest は作曲プロンプト生成の入力です。
type MusicRequest struct {
	Idea  string
	Genre string
	Mood  string
	Count int // 0 以下なら1曲
}

// MusicRunner はアイデアから作曲用プロンプトを生成します。
type MusicRunner struct {
	cfg     config.Config
	client  ai.GenerativeClient
	prompts prompts.PromptBuilder
}

// NewMusicRunner は依存関係を注入して初期化します。
func NewMusicRunner(cfg config.Config, client ai.GenerativeClient, pb prompts.PromptBuilder) *MusicRunner {
	return &MusicRunner{cfg: cfg, client: client, prompts: pb}
}

// Run は req.Count 曲分のプロンプトを生成します。
func (r *MusicRunner) Run(ctx context.Context, req MusicRequest) ([]MusicPrompt, error) {
	if strings.TrimSpace(req.Idea) == "" {
		return nil, domain.Validationf("music", "アイデアが空です")
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	instruction, err := r.prompts.Build(prompts.ModeMusic, prompts.TemplateData{
		Language: r.cfg.GenerationLanguage,
		Genre:    req.Genre,
		Mood:     req.Mood,
		Count:    req.Count,
	})
	if err != nil {
		return nil, fmt.Errorf("プロンプト生成に失敗: %w", err)
	}

	res, err := ai.CompleteAs[musicResponse](ctx, r.client, instruction, req.Idea)
	if err != nil {
		return nil, err
	}
	if len(res.Songs) > req.Count {
		res.Songs = res.Songs[:req.Count]
	}
	return res.Songs, nil
}

// VideoScript は動画から書き起こした台本です。
type VideoScript struct {
	Title  string `json:"title"`
	Script string `json:"script" validate:"required"`
}

// VideoScriptRunner は動画を解析して台本を起こします。結果は絵コンテ生成の入力になります。
type VideoScriptRunner struct {
	cfg     config.Config
	client  ai.GenerativeClient
	prompts prompts.PromptBuilder
}

// NewVideoScriptRunner は依存関係を注入して初期化します。
func NewVideoScriptRunner(cfg config.Config, client ai.GenerativeClient, pb prompts.PromptBuilder) *VideoScriptRunner {
	return &VideoScriptRunner{cfg: cfg, client: client, prompts: pb}
}

// Run は video を解析して台本を返します。
func (r *VideoScriptRunner) Run(ctx context.Context, video ai.Media) (VideoScript, error) {
	instruction, err := r.prompts.Build(prompts.ModeVideoScript, prompts.TemplateData{
		Language: r.cfg.GenerationLanguage,
	})
	if err != nil {
		return VideoScript{}, fmt.Errorf("プロンプト生成に失敗: %w", err)
	}

	slog.InfoContext(ctx, "動画を解析しています", "file", video.Name, "bytes", len(video.Data))
	return ai.AnalyzeAs[VideoScript](ctx, r.client, video, instruction, "Transcribe this video into a script.")
}
