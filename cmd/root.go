package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/internal/builder"
	"github.com/shouni/go-storyboard-kit/internal/config"
)

// opts は全サブコマンドで共有するフラグの値なのだ。
var opts config.GenerateOptions

// rootCmd はアプリケーションのルートコマンドなのだ。
var rootCmd = &cobra.Command{
	Use:           "storyboard-kit",
	Short:         "台本や画像から、生成AI向けの絵コンテとプロンプトを作るのだ。",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(opts.Verbose)
		opts.CooldownSet = cmd.Flags().Changed("cooldown")
		return nil
	},
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(c *cobra.Command) {
	f := c.PersistentFlags()
	f.StringVar(&opts.ConfigFile, "config", "", "YAML 設定ファイルのパスなのだ。")
	f.StringVar(&opts.AIModel, "model", "", "テキスト生成に使う Gemini モデル名なのだ。")
	f.StringVar(&opts.ImageModel, "image-model", "", "画像生成に使う Gemini モデル名なのだ。")
	f.StringVarP(&opts.OutputDir, "output-dir", "o", "", "生成物を保存するディレクトリなのだ。")
	f.IntVar(&opts.BatchSize, "batch-size", 0, "クールダウンを挟むまでの処理件数なのだ。")
	f.DurationVar(&opts.Cooldown, "cooldown", 0, "バッチ境界ごとの待機時間なのだ。")
	f.StringVar(&opts.HistoryFile, "history-file", "", "生成履歴を追記する JSONL ファイルなのだ。")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "デバッグログを出力するのだ。")
}

func init() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(
		storyboardCmd,
		renderCmd,
		imagePromptsCmd,
		seoCmd,
		musicCmd,
		videoScriptCmd,
	)
}

// setupLogger は slog のデフォルトロガーを設定します。
func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// newAppContext は設定を読み込み、フラグを反映した AppContext を構築するのだ。
func newAppContext(ctx context.Context) (*builder.AppContext, error) {
	cfg, err := config.LoadConfig(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg.Apply(opts)

	slog.Debug("設定を読み込みました",
		"model", cfg.Kit.GeminiModel,
		"image_model", cfg.Kit.ImageModel,
		"output_dir", cfg.OutputDir,
		"batch_size", cfg.Kit.BatchSize,
		"cooldown", cfg.Kit.BatchCooldown)

	return builder.NewAppContext(ctx, cfg, nil)
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// Ctrl+C で中断すると、処理中のアイテムを終えたところで停止します。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("コマンドの実行に失敗しました", "error", err)
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
