package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/internal/pipeline"
)

// imagePromptsCmd はディレクトリ内の画像から再現用プロンプトを一括生成するのだ。
var imagePromptsCmd = &cobra.Command{
	Use:   "image-prompts",
	Short: "画像から text-to-image 用のプロンプトを一括生成するのだ。",
	Long: `指定ディレクトリの画像を1枚ずつ解析し、プロンプトを prompts.txt にまとめるのだ。
--batch-size 件ごとに --cooldown だけ待機するので、上流のクォータを超えにくいのだよ。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if opts.ImageDir == "" {
			return fmt.Errorf("画像ディレクトリ（--dir）を指定してほしいのだ")
		}
		appCtx, err := newAppContext(cmd.Context())
		if err != nil {
			return err
		}
		return pipeline.ExecuteImagePrompts(cmd.Context(), appCtx, cmd.OutOrStdout())
	},
}

// seoCmd は本文から SEO メタデータを生成するのだ。
var seoCmd = &cobra.Command{
	Use:   "seo",
	Short: "本文からタイトル・説明・タグを生成するのだ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx, err := newAppContext(cmd.Context())
		if err != nil {
			return err
		}
		return pipeline.ExecuteSEO(cmd.Context(), appCtx, cmd.OutOrStdout())
	},
}

// musicCmd はアイデアから作曲用プロンプトを生成するのだ。
var musicCmd = &cobra.Command{
	Use:   "music [idea]",
	Short: "アイデアから AI 作曲用のプロンプトを生成するのだ。",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx, err := newAppContext(cmd.Context())
		if err != nil {
			return err
		}
		return pipeline.ExecuteMusic(cmd.Context(), appCtx, strings.Join(args, " "), cmd.OutOrStdout())
	},
}

// videoScriptCmd は動画から台本を書き起こすのだ。
var videoScriptCmd = &cobra.Command{
	Use:   "video-script",
	Short: "動画から台本を書き起こすのだ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		if opts.InputFile == "" {
			return fmt.Errorf("動画ファイル（--input）を指定してほしいのだ")
		}
		appCtx, err := newAppContext(cmd.Context())
		if err != nil {
			return err
		}
		return pipeline.ExecuteVideoScript(cmd.Context(), appCtx, cmd.OutOrStdout())
	},
}

func init() {
	imagePromptsCmd.Flags().StringVar(&opts.ImageDir, "dir", "", "画像が置かれたディレクトリなのだ。")
	imagePromptsCmd.Flags().StringVarP(&opts.Style, "style", "s", "", "プロンプトに反映するスタイルなのだ。")

	seoCmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "本文ファイルのパスなのだ。")
	seoCmd.Flags().StringVar(&opts.Platform, "platform", "", "対象プラットフォーム（YouTube など）なのだ。")

	musicCmd.Flags().StringVar(&opts.Genre, "genre", "", "ジャンルなのだ。")
	musicCmd.Flags().StringVar(&opts.Mood, "mood", "", "雰囲気なのだ。")
	musicCmd.Flags().IntVarP(&opts.Count, "count", "n", config.DefaultMusicCount, "生成する曲数なのだ。")

	videoScriptCmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "動画ファイルのパスなのだ。")
}
