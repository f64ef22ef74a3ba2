package workflow

import (
	"fmt"

	"github.com/shouni/go-storyboard-kit/pkg/pipeline"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
	"github.com/shouni/go-storyboard-kit/pkg/runner"
	"github.com/shouni/go-storyboard-kit/pkg/selection"
)

var _ Workflow = (*Manager)(nil)

// BuildPipeline は台本からシーンプロンプトを生成する Pipeline を構築します。
func (m *Manager) BuildPipeline() (*pipeline.Pipeline, error) {
	p, err := pipeline.New(m.aiClient, m.prompts, m.cfg)
	if err != nil {
		return nil, fmt.Errorf("Pipeline の構築に失敗しました: %w", err)
	}
	return p, nil
}

// BuildImagePromptRunner は画像プロンプト生成用の Runner を構築します。
func (m *Manager) BuildImagePromptRunner() (ImagePromptRunner, error) {
	return runner.NewImagePromptRunner(m.cfg, m.aiClient, m.prompts), nil
}

// BuildSceneImageRunner はシーン画像描画用の Runner を構築します。
func (m *Manager) BuildSceneImageRunner() (SceneImageRunner, error) {
	return runner.NewSceneImageRunner(m.cfg, m.aiClient), nil
}

// BuildSEORunner は SEO メタデータ生成用の Runner を構築します。
func (m *Manager) BuildSEORunner() (SEORunner, error) {
	return runner.NewSEORunner(m.cfg, m.aiClient, m.prompts), nil
}

// BuildMusicRunner は作曲プロンプト生成用の Runner を構築します。
func (m *Manager) BuildMusicRunner() (MusicRunner, error) {
	return runner.NewMusicRunner(m.cfg, m.aiClient, m.prompts), nil
}

// BuildVideoScriptRunner は動画書き起こし用の Runner を構築します。
func (m *Manager) BuildVideoScriptRunner() (VideoScriptRunner, error) {
	return runner.NewVideoScriptRunner(m.cfg, m.aiClient, m.prompts), nil
}

// BuildPublisher は出力と履歴保存を担う Publisher を構築します。
func (m *Manager) BuildPublisher() (*publisher.Publisher, error) {
	return publisher.NewPublisher(m.writer, m.history), nil
}

// NewSelection は設定された上限を持つ空の選択集合を返します。
func (m *Manager) NewSelection() *selection.Set {
	return selection.New(m.cfg.SelectionLimit)
}
