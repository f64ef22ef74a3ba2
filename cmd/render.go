package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/internal/pipeline"
)

// renderCmd は保存済みの絵コンテから、選択したシーンの画像だけを描き直すのだ。
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "保存済みの絵コンテからシーン画像を生成するのだ。",
	Long: `storyboard コマンドが出力した storyboard.md (または storyboard.json) を読み込み、
選択したシーンの画像を生成して zip にまとめるのだ。Markdown のプロンプトを手で直してから描き直せるのだよ。`,
	RunE: renderCommand,
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&opts.StoryboardFile, "from", "", "読み込む絵コンテファイル (.md / .json) なのだ。")
	f.StringVar(&selectFlag, "select", "", "描画するシーン番号（例: 1,3,5）なのだ。")
	f.BoolVar(&opts.SelectAll, "select-all", false, "全シーンを選択するのだ（上限まで）。")
}

func renderCommand(cmd *cobra.Command, args []string) error {
	if opts.StoryboardFile == "" {
		return fmt.Errorf("--from で絵コンテファイルを指定してほしいのだ")
	}
	if err := resolveSelection(); err != nil {
		return err
	}

	ctx := cmd.Context()
	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}

	slog.Info("シーン画像の生成を開始するのだ！", "from", opts.StoryboardFile, "select", opts.Select, "select_all", opts.SelectAll)
	return pipeline.ExecuteRender(ctx, appCtx, cmd.OutOrStdout())
}
