package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shouni/go-storyboard-kit/internal/builder"
	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/batch"
	"github.com/shouni/go-storyboard-kit/pkg/director"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
	"github.com/shouni/go-storyboard-kit/pkg/runner"
)

const (
	seoFileName         = "seo.json"
	musicFileName       = "music.json"
	videoScriptFileName = "script.txt"
)

// ExecuteImagePrompts はディレクトリ内の画像からプロンプトをバッチ生成し、prompts.txt に保存するのだ。
func ExecuteImagePrompts(ctx context.Context, appCtx *builder.AppContext, w io.Writer) error {
	opts := appCtx.Options
	images, err := runner.LoadImageDir(opts.ImageDir)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return fmt.Errorf("ディレクトリ '%s' に画像が見つかりませんでした", opts.ImageDir)
	}

	ipr, err := appCtx.Workflow.BuildImagePromptRunner()
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "画像プロンプトの生成を開始します",
		slog.Int("images", len(images)),
		slog.Int("batch_size", appCtx.Config.Kit.BatchSize),
		slog.Duration("cooldown", appCtx.Config.Kit.BatchCooldown))

	agg := publisher.NewAggregator()
	batchOpts := batch.OptionsFromConfig("image-prompts", appCtx.Config.Kit)
	run, summary, err := drive(ctx, w, batchOpts, func(o batch.Options) (*runner.ImagePromptRun, error) {
		return ipr.NewRun(images, director.ResolveStyle(opts.Style), agg, o)
	})
	if run != nil {
		printFailed(w, run.Failed(), func(m ai.Media) string { return m.Name })
	}

	// 中断された場合も、それまでの結果は保存します。
	if agg.Len() > 0 {
		pub, perr := appCtx.Workflow.BuildPublisher()
		if perr != nil {
			return perr
		}
		res, perr := pub.Publish(context.WithoutCancel(ctx), appCtx.Config.OutputDir, agg.Entries(), publisher.Options{Kind: "image_prompts"})
		if perr != nil {
			return perr
		}
		fmt.Fprintf(w, "プロンプト %d 件を %s に保存しました\n", summary.Succeeded, res.TextPath)
	}
	return err
}

// ExecuteSEO は入力ファイルの本文から SEO メタデータを生成するのだ。
func ExecuteSEO(ctx context.Context, appCtx *builder.AppContext, w io.Writer) error {
	content, err := readInput(appCtx.Options.InputFile)
	if err != nil {
		return err
	}
	sr, err := appCtx.Workflow.BuildSEORunner()
	if err != nil {
		return err
	}
	meta, err := sr.Run(ctx, content, appCtx.Options.Platform)
	if err != nil {
		return fmt.Errorf("SEO メタデータの生成に失敗しました: %w", err)
	}

	fmt.Fprintf(w, "Title: %s\nDescription: %s\nTags: %s\nHashtags: %s\n",
		meta.Title, meta.Description, strings.Join(meta.Tags, ", "), strings.Join(meta.Hashtags, " "))
	return saveJSON(ctx, appCtx, seoFileName, meta, w)
}

// ExecuteMusic はアイデアから作曲プロンプトを生成するのだ。
func ExecuteMusic(ctx context.Context, appCtx *builder.AppContext, idea string, w io.Writer) error {
	opts := appCtx.Options
	mr, err := appCtx.Workflow.BuildMusicRunner()
	if err != nil {
		return err
	}
	songs, err := mr.Run(ctx, runner.MusicRequest{
		Idea:  idea,
		Genre: opts.Genre,
		Mood:  opts.Mood,
		Count: opts.Count,
	})
	if err != nil {
		return fmt.Errorf("作曲プロンプトの生成に失敗しました: %w", err)
	}

	for i, s := range songs {
		fmt.Fprintf(w, "#%d %s\nStyle: %s\n", i+1, s.Title, s.Style)
		if s.Lyrics != "" {
			fmt.Fprintf(w, "%s\n", s.Lyrics)
		}
		fmt.Fprintln(w)
	}
	return saveJSON(ctx, appCtx, musicFileName, songs, w)
}

// ExecuteVideoScript は動画から台本を書き起こし、script.txt に保存するのだ。
func ExecuteVideoScript(ctx context.Context, appCtx *builder.AppContext, w io.Writer) error {
	vs, err := videoToScript(ctx, appCtx, appCtx.Options.InputFile)
	if err != nil {
		return fmt.Errorf("台本の書き起こしに失敗しました: %w", err)
	}

	pub, err := appCtx.Workflow.BuildPublisher()
	if err != nil {
		return err
	}
	res, err := pub.Publish(ctx, appCtx.Config.OutputDir, []publisher.Entry{{Key: vs.Title, Text: vs.Script}}, publisher.Options{
		Kind:         "video_script",
		TextFileName: videoScriptFileName,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "台本を %s に保存しました\n", res.TextPath)
	return nil
}

func saveJSON(ctx context.Context, appCtx *builder.AppContext, name string, v any, w io.Writer) error {
	pub, err := appCtx.Workflow.BuildPublisher()
	if err != nil {
		return err
	}
	path, err := pub.WriteJSON(ctx, appCtx.Config.OutputDir, name, v)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s に保存しました\n", path)
	return nil
}

func readInput(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("入力ファイルを指定してください")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("入力ファイル '%s' の読み込みに失敗しました: %w", path, err)
	}
	return string(data), nil
}
