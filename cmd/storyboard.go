package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/internal/pipeline"
)

var selectFlag string

// storyboardCmd は台本から絵コンテ（キャラクター一覧とシーンプロンプト）を生成するのだ。
var storyboardCmd = &cobra.Command{
	Use:   "storyboard",
	Short: "台本から絵コンテを生成するのだ。",
	Long: `台本を解析して登場キャラクターを確定し、指定した長さのシーンに分割したプロンプトを生成するのだ。
--render を付けると、選択したシーンの画像も生成して zip にまとめるのだよ。`,
	RunE: storyboardCommand,
}

func init() {
	f := storyboardCmd.Flags()
	f.StringVarP(&opts.ScriptFile, "script-file", "f", "", "台本テキストファイルのパスなのだ。")
	f.StringVar(&opts.InputFile, "video", "", "台本の代わりに使う動画ファイルなのだ。")
	f.StringVarP(&opts.CharactersFile, "characters", "c", "", "キャラクター定義 JSON。指定するとキャラクター抽出を省略するのだ。")
	f.StringVarP(&opts.Style, "style", "s", "", "映像スタイル (anime, cinematic などのプリセット名か自由記述) なのだ。")
	f.StringVar(&opts.Title, "title", "", "storyboard.md の見出しに使うタイトルなのだ。")
	f.DurationVarP(&opts.Duration, "duration", "d", config.DefaultDuration, "動画全体の長さなのだ。")
	f.StringVar(&opts.Kind, "kind", "animation", "animation (1シーン8秒) または image (1シーン5秒) なのだ。")
	f.StringVar(&opts.Dialogue, "dialogue", "spoken", "spoken (セリフを含める) または silent なのだ。")
	f.StringVar(&opts.Nationality, "nationality", "", "人間キャラクターに適用する国籍なのだ。")
	f.StringVar(&opts.DisplayLanguage, "display-language", "", "キャラクター説明の表示用翻訳言語なのだ。")
	f.BoolVar(&opts.Render, "render", false, "選択したシーンの画像を生成するのだ。")
	f.StringVar(&selectFlag, "select", "", "描画するシーン番号（例: 1,3,5）なのだ。")
	f.BoolVar(&opts.SelectAll, "select-all", false, "全シーンを選択するのだ（上限まで）。")
}

func storyboardCommand(cmd *cobra.Command, args []string) error {
	if opts.ScriptFile == "" && opts.InputFile == "" {
		return fmt.Errorf("台本（--script-file）または動画（--video）を指定してほしいのだ")
	}
	if opts.Render {
		if err := resolveSelection(); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}

	slog.Info("絵コンテ生成を開始するのだ！",
		"script", opts.ScriptFile,
		"duration", opts.Duration,
		"kind", opts.Kind,
		"dialogue", opts.Dialogue)

	return pipeline.ExecuteStoryboard(ctx, appCtx, cmd.OutOrStdout())
}

// resolveSelection は --select を解析し、描画対象が指定されているか確認します。
func resolveSelection() error {
	if selectFlag != "" {
		indices, err := pipeline.ParseIndices(selectFlag)
		if err != nil {
			return err
		}
		opts.Select = indices
	}
	if len(opts.Select) == 0 && !opts.SelectAll {
		return fmt.Errorf("--select か --select-all で描画するシーンを指定してほしいのだ")
	}
	return nil
}
