package runner

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/batch"
	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
	"github.com/shouni/go-storyboard-kit/pkg/selection"
)

// SceneImageRun はシーン画像を描画するバッチ実行です。
type SceneImageRun = batch.Run[domain.Scene, ai.Image]

// ErrNothingSelected は描画対象のシーンが1件も選択されていないことを示します。
var ErrNothingSelected = errors.New("描画対象のシーンが選択されていません")

// SceneImageRunner は選択されたシーンのプロンプトから画像を生成します。
type SceneImageRunner struct {
	cfg    config.Config
	client ai.GenerativeClient
}

// NewSceneImageRunner は依存関係を注入して初期化します。
func NewSceneImageRunner(cfg config.Config, client ai.GenerativeClient) *SceneImageRunner {
	return &SceneImageRunner{cfg: cfg, client: client}
}

// NewRun は sel で選ばれたシーンだけをシーン順に並べ、描画のバッチ実行を組み立てます。
// 生成された画像はシーンのキーで agg に登録されます。
func (r *SceneImageRunner) NewRun(scenes domain.Scenes, sel *selection.Set, agg *publisher.Aggregator, opts batch.Options) (*SceneImageRun, error) {
	picked := selection.Pick(scenes, sel, domain.Scene.Key)
	if len(picked) == 0 {
		return nil, ErrNothingSelected
	}

	process := func(ctx context.Context, item domain.WorkItem[domain.Scene, ai.Image]) (ai.Image, error) {
		scene := item.Input
		slog.InfoContext(ctx, "シーン画像を生成しています", "scene", scene.Key())
		img, err := r.client.GenerateImage(ctx, scene.PromptText)
		if err != nil {
			return ai.Image{}, err
		}
		if agg != nil {
			agg.Upsert(scene.Key(), publisher.Entry{Data: img.Data, MIMEType: img.MIMEType})
		}
		return img, nil
	}

	if opts.Name == "" {
		opts.Name = "scene-images"
	}
	return batch.FromInputs(picked, process, opts)
}

// Run は選択されたシーンをすべて描画し、要約と失敗したアイテムを返します。
func (r *SceneImageRunner) Run(ctx context.Context, scenes domain.Scenes, sel *selection.Set, agg *publisher.Aggregator) (batch.Summary, []domain.WorkItem[domain.Scene, ai.Image], error) {
	run, err := r.NewRun(scenes, sel, agg, batch.OptionsFromConfig("scene-images", r.cfg))
	if err != nil {
		return batch.Summary{}, nil, err
	}
	summary, err := run.Execute(ctx)
	return summary, run.Failed(), err
}
