package workflow

import (
	"context"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/batch"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/pipeline"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
	"github.com/shouni/go-storyboard-kit/pkg/runner"
	"github.com/shouni/go-storyboard-kit/pkg/selection"
)

// Workflow は、絵コンテ制作の各工程を担当するコンポーネントを構築するためのインターフェースです。
type Workflow interface {
	BuildPipeline() (*pipeline.Pipeline, error)
	BuildImagePromptRunner() (ImagePromptRunner, error)
	BuildSceneImageRunner() (SceneImageRunner, error)
	BuildSEORunner() (SEORunner, error)
	BuildMusicRunner() (MusicRunner, error)
	BuildVideoScriptRunner() (VideoScriptRunner, error)
	BuildPublisher() (*publisher.Publisher, error)
	NewSelection() *selection.Set
}

// ImagePromptRunner は、画像群から再現用プロンプトをバッチで生成する責務を持ちます。
type ImagePromptRunner interface {
	NewRun(images []ai.Media, style string, agg *publisher.Aggregator, opts batch.Options) (*runner.ImagePromptRun, error)
	Run(ctx context.Context, images []ai.Media, style string, agg *publisher.Aggregator) (batch.Summary, []domain.WorkItem[ai.Media, string], error)
}

// SceneImageRunner は、選択されたシーンの画像を生成する責務を持ちます。
type SceneImageRunner interface {
	NewRun(scenes domain.Scenes, sel *selection.Set, agg *publisher.Aggregator, opts batch.Options) (*runner.SceneImageRun, error)
	Run(ctx context.Context, scenes domain.Scenes, sel *selection.Set, agg *publisher.Aggregator) (batch.Summary, []domain.WorkItem[domain.Scene, ai.Image], error)
}

// SEORunner は、本文から SEO メタデータを生成する責務を持ちます。
type SEORunner interface {
	Run(ctx context.Context, content, platform string) (runner.SEOMetadata, error)
}

// MusicRunner は、アイデアから作曲用プロンプトを生成する責務を持ちます。
type MusicRunner interface {
	Run(ctx context.Context, req runner.MusicRequest) ([]runner.MusicPrompt, error)
}

// VideoScriptRunner は、動画から台本を書き起こす責務を持ちます。
type VideoScriptRunner interface {
	Run(ctx context.Context, video ai.Media) (runner.VideoScript, error)
}
