package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

type nopClient struct{}

func (nopClient) CompleteStructured(context.Context, ai.StructuredRequest) (ai.StructuredResult, error) {
	return ai.StructuredResult{}, errors.New("unused")
}

func (nopClient) GenerateImage(context.Context, string) (ai.Image, error) {
	return ai.Image{}, errors.New("unused")
}

func (nopClient) AnalyzeMedia(context.Context, ai.Media, ai.StructuredRequest) (ai.StructuredResult, error) {
	return ai.StructuredResult{}, errors.New("unused")
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("API キーがなければ設定エラーになること", func(t *testing.T) {
		_, err := New(ctx, ManagerArgs{Config: config.DefaultConfig(), Client: nopClient{}})
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("ConfigurationError を期待しましたが %v でした", err)
		}
	})

	t.Run("注入したクライアントで全コンポーネントを構築できること", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.GeminiAPIKey = "test-key"
		cfg.SelectionLimit = 3

		m, err := New(ctx, ManagerArgs{Config: cfg, Client: nopClient{}})
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if _, err := m.BuildPipeline(); err != nil {
			t.Errorf("BuildPipeline: %v", err)
		}
		if _, err := m.BuildImagePromptRunner(); err != nil {
			t.Errorf("BuildImagePromptRunner: %v", err)
		}
		if _, err := m.BuildSceneImageRunner(); err != nil {
			t.Errorf("BuildSceneImageRunner: %v", err)
		}
		if _, err := m.BuildSEORunner(); err != nil {
			t.Errorf("BuildSEORunner: %v", err)
		}
		if _, err := m.BuildMusicRunner(); err != nil {
			t.Errorf("BuildMusicRunner: %v", err)
		}
		if _, err := m.BuildVideoScriptRunner(); err != nil {
			t.Errorf("BuildVideoScriptRunner: %v", err)
		}
		if _, err := m.BuildPublisher(); err != nil {
			t.Errorf("BuildPublisher: %v", err)
		}
		if got := m.NewSelection().Limit(); got != 3 {
			t.Errorf("選択上限: 期待値 3, 実際の値 %d", got)
		}
	})
}
