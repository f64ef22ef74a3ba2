package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/history"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
	"github.com/shouni/go-storyboard-kit/pkg/workflow"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持します。
// これを各 Execute 関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config   *config.Config         // Config は、ファイル・環境変数・フラグから組み立てた設定です。
	Options  config.GenerateOptions // Options は、コマンドラインから渡された実行時の設定です。
	Workflow workflow.Workflow      // Workflow は、各工程のコンポーネントを構築します。
}

// NewAppContext は AppContext の新しいインスタンスを生成します。
// client が nil の場合は設定から Gemini クライアントを初期化します。
func NewAppContext(ctx context.Context, cfg *config.Config, client ai.GenerativeClient) (*AppContext, error) {
	manager, err := workflow.New(ctx, workflow.ManagerArgs{
		Config:  cfg.Kit,
		Client:  client,
		Writer:  publisher.LocalWriter{},
		History: buildRecorder(cfg.HistoryFile),
	})
	if err != nil {
		return nil, fmt.Errorf("ワークフローの初期化に失敗しました: %w", err)
	}

	return &AppContext{
		Config:   cfg,
		Options:  cfg.Options,
		Workflow: manager,
	}, nil
}

// buildRecorder は履歴ファイルが指定されていれば FileRecorder を、なければ Nop を返します。
func buildRecorder(path string) history.Recorder {
	if path == "" {
		return history.Nop{}
	}
	slog.Debug("履歴ファイルを使用します", "path", path)
	return history.NewFileRecorder(path)
}
