package workflow

import (
	"context"
	"fmt"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/history"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
)

// ManagerArgs は Manager の初期化に必要な依存関係です。
// Client、Prompts、Writer、History は省略でき、省略時は既定の実装が使われます。
type ManagerArgs struct {
	Config  config.Config
	Client  ai.GenerativeClient
	Prompts prompts.PromptBuilder
	Writer  publisher.OutputWriter
	History history.Recorder
}

// Manager は、ワークフローの各工程を担うコンポーネント群を構築・管理します。
type Manager struct {
	cfg      config.Config
	aiClient ai.GenerativeClient
	prompts  prompts.PromptBuilder
	writer   publisher.OutputWriter
	history  history.Recorder
}

// New は設定を検証し、新しい Manager を初期化します。
// Client が渡されていない場合のみ Gemini クライアントを生成するのだ。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	if err := args.Config.Validate(); err != nil {
		return nil, err
	}

	aiClient, err := initializeAIClient(ctx, args.Client, args.Config)
	if err != nil {
		return nil, err
	}

	pb, err := initializePrompts(args.Prompts)
	if err != nil {
		return nil, err
	}

	writer := args.Writer
	if writer == nil {
		writer = publisher.LocalWriter{}
	}
	rec := args.History
	if rec == nil {
		rec = history.Nop{}
	}

	return &Manager{
		cfg:      args.Config,
		aiClient: aiClient,
		prompts:  pb,
		writer:   writer,
		history:  rec,
	}, nil
}

// Config は Manager が使用している設定を返します。
func (m *Manager) Config() config.Config {
	return m.cfg
}

// initializeAIClient は注入されたクライアントがあればそれを返し、なければ Gemini クライアントを初期化します。
func initializeAIClient(ctx context.Context, client ai.GenerativeClient, cfg config.Config) (ai.GenerativeClient, error) {
	if client != nil {
		return client, nil
	}
	gc, err := ai.NewGeminiClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return gc, nil
}

// initializePrompts は PromptBuilder を初期化します。
// 引数として既存のビルダーが渡された場合はそれを返し、nil の場合は新規作成します。
func initializePrompts(pb prompts.PromptBuilder) (prompts.PromptBuilder, error) {
	if pb != nil {
		return pb, nil
	}
	built, err := prompts.NewTextPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("TextPromptBuilder の新規作成に失敗しました: %w", err)
	}
	return built, nil
}
