package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/batch"
	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
)

// ImagePromptRun は画像からプロンプトを起こすバッチ実行です。
type ImagePromptRun = batch.Run[ai.Media, string]

type imagePromptResponse struct {
	Prompt string `json:"prompt" validate:"required" jsonschema:"description=A detailed text-to-image prompt"`
}

// ImagePromptRunner は画像ごとに再現用のプロンプトを生成します。
type ImagePromptRunner struct {
	cfg     config.Config
	client  ai.GenerativeClient
	prompts prompts.PromptBuilder
}

// NewImagePromptRunner は依存関係を注入して初期化します。
func NewImagePromptRunner(cfg config.Config, client ai.GenerativeClient, pb prompts.PromptBuilder) *ImagePromptRunner {
	return &ImagePromptRunner{cfg: cfg, client: client, prompts: pb}
}

// NewRun は images をバッチ実行として組み立てます。成功した結果はファイル名をキーに agg へ登録されます。
// 進捗通知やクールダウンは opts で指定します。
func (r *ImagePromptRunner) NewRun(images []ai.Media, style string, agg *publisher.Aggregator, opts batch.Options) (*ImagePromptRun, error) {
	instruction, err := r.prompts.Build(prompts.ModeImagePrompt, prompts.TemplateData{
		Language: r.cfg.GenerationLanguage,
		Style:    style,
	})
	if err != nil {
		return nil, fmt.Errorf("プロンプト生成に失敗: %w", err)
	}

	process := func(ctx context.Context, item domain.WorkItem[ai.Media, string]) (string, error) {
		slog.DebugContext(ctx, "画像を解析しています", "file", item.Input.Name)
		res, err := ai.AnalyzeAs[imagePromptResponse](ctx, r.client, item.Input, instruction, "Describe this image as a prompt.")
		if err != nil {
			return "", err
		}
		if agg != nil {
			agg.Upsert(item.Input.Name, publisher.Entry{Text: res.Prompt})
		}
		return res.Prompt, nil
	}

	if opts.Name == "" {
		opts.Name = "image-prompts"
	}
	return batch.FromInputs(images, process, opts)
}

// Run は images をすべて処理し、要約と失敗したアイテムを返します。
func (r *ImagePromptRunner) Run(ctx context.Context, images []ai.Media, style string, agg *publisher.Aggregator) (batch.Summary, []domain.WorkItem[ai.Media, string], error) {
	run, err := r.NewRun(images, style, agg, batch.OptionsFromConfig("image-prompts", r.cfg))
	if err != nil {
		return batch.Summary{}, nil, err
	}
	summary, err := run.Execute(ctx)
	return summary, run.Failed(), err
}
