package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/shouni/go-storyboard-kit/internal/builder"
	"github.com/shouni/go-storyboard-kit/pkg/asset"
	"github.com/shouni/go-storyboard-kit/pkg/batch"
	"github.com/shouni/go-storyboard-kit/pkg/director"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/parser"
	kit "github.com/shouni/go-storyboard-kit/pkg/pipeline"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
	"github.com/shouni/go-storyboard-kit/pkg/runner"
	"github.com/shouni/go-storyboard-kit/pkg/selection"
)

const (
	// DefaultScenesFileName はシーンプロンプトを連結したファイルの名前です。
	DefaultScenesFileName = "scenes.txt"
	// DefaultStoryboardMarkdown は編集用の絵コンテ Markdown の名前です。
	DefaultStoryboardMarkdown = "storyboard.md"
)

// storyboardFile は storyboard.json に書き出す内容です。
type storyboardFile struct {
	Title        string            `json:"title,omitempty"`
	Options      kit.Options       `json:"options"`
	Characters   domain.Roster     `json:"characters"`
	Translations []kit.Translation `json:"translations,omitempty"`
	Scenes       domain.Scenes     `json:"scenes"`
}

// ExecuteStoryboard は台本ファイルから絵コンテを生成し、出力ディレクトリに保存するのだ。
// 台本ファイルの代わりに動画 (InputFile) を渡すと、書き起こした台本を入力にします。
// Render が指定されていれば、選択されたシーンの画像も生成します。
func ExecuteStoryboard(ctx context.Context, appCtx *builder.AppContext, w io.Writer) error {
	opts := appCtx.Options
	if opts.ScriptFile == "" && opts.InputFile != "" {
		vs, err := videoToScript(ctx, appCtx, opts.InputFile)
		if err != nil {
			return fmt.Errorf("動画からの台本生成に失敗しました: %w", err)
		}
		return runStoryboard(ctx, appCtx, vs.Script, w)
	}

	script, err := os.ReadFile(opts.ScriptFile)
	if err != nil {
		return fmt.Errorf("台本ファイル '%s' の読み込みに失敗しました: %w", opts.ScriptFile, err)
	}
	return runStoryboard(ctx, appCtx, string(script), w)
}

func runStoryboard(ctx context.Context, appCtx *builder.AppContext, script string, w io.Writer) error {
	opts := appCtx.Options
	p, err := appCtx.Workflow.BuildPipeline()
	if err != nil {
		return err
	}

	session, err := p.NewSession(script, kit.Options{
		Style:           director.ResolveStyle(opts.Style),
		Total:           opts.Duration,
		Kind:            kit.Kind(opts.Kind),
		Dialogue:        kit.DialogueMode(opts.Dialogue),
		Nationality:     opts.Nationality,
		DisplayLanguage: opts.DisplayLanguage,
	})
	if err != nil {
		return err
	}

	if err := runSession(ctx, session, opts.CharactersFile); err != nil {
		return fmt.Errorf("絵コンテの生成に失敗しました (工程: %s): %w", session.Stage(), err)
	}

	scenes := session.Scenes()
	slog.InfoContext(ctx, "絵コンテを生成しました",
		slog.Int("characters", session.Roster().Len()),
		slog.Int("scenes", len(scenes)),
		slog.Duration("total", scenes.TotalDuration()))

	pub, err := appCtx.Workflow.BuildPublisher()
	if err != nil {
		return err
	}
	outputDir := appCtx.Config.OutputDir

	agg := publisher.NewAggregator()
	for _, sc := range scenes {
		agg.Upsert(sc.Key(), publisher.Entry{Text: sc.PromptText})
	}
	if _, err := pub.Publish(ctx, outputDir, agg.Entries(), publisher.Options{
		Kind:         "storyboard",
		TextFileName: DefaultScenesFileName,
	}); err != nil {
		return err
	}

	jsonPath, err := pub.WriteJSON(ctx, outputDir, asset.DefaultStoryboardJSON, storyboardFile{
		Title:        opts.Title,
		Options:      session.Options(),
		Characters:   session.Roster(),
		Translations: session.Translations(),
		Scenes:       scenes,
	})
	if err != nil {
		return err
	}
	mdPath, err := pub.WriteText(ctx, outputDir, DefaultStoryboardMarkdown, parser.FormatMarkdown(parser.Storyboard{
		Title:  opts.Title,
		Scenes: scenes,
	}))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d シーンを %s と %s に保存しました\n", len(scenes), jsonPath, mdPath)

	if !opts.Render {
		return nil
	}
	return renderScenes(ctx, appCtx, scenes, w)
}

// ExecuteRender は保存済みの絵コンテ (storyboard.md / storyboard.json) を読み込み、
// 選択されたシーンの画像だけを生成するのだ。編集したプロンプトで描き直すときに使います。
func ExecuteRender(ctx context.Context, appCtx *builder.AppContext, w io.Writer) error {
	sb, err := parser.ParseFile(appCtx.Options.StoryboardFile)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "絵コンテを読み込みました", "title", sb.Title, "scenes", len(sb.Scenes))
	return renderScenes(ctx, appCtx, sb.Scenes, w)
}

// runSession はキャラクターファイルが指定されていれば抽出を省略し、残りの工程を実行します。
func runSession(ctx context.Context, s *kit.Session, charactersFile string) error {
	if charactersFile == "" {
		return s.Run(ctx)
	}
	roster, err := domain.LoadRoster(charactersFile)
	if err != nil {
		return err
	}
	s.SetRoster(roster)
	if s.Options().DisplayLanguage != "" {
		if err := s.Translate(ctx); err != nil {
			return err
		}
	}
	return s.GenerateScenes(ctx)
}

// renderScenes は選択されたシーンの画像を生成し、zip にまとめて保存するのだ。
func renderScenes(ctx context.Context, appCtx *builder.AppContext, scenes domain.Scenes, w io.Writer) error {
	sel := appCtx.Workflow.NewSelection()
	if err := applySelection(sel, scenes, appCtx.Options.SelectAll, appCtx.Options.Select); err != nil {
		// 上限超過は先頭から上限件数までを描画して続行します。
		slog.WarnContext(ctx, "選択数が上限を超えたため切り詰めました", "error", err)
	}

	imageRunner, err := appCtx.Workflow.BuildSceneImageRunner()
	if err != nil {
		return err
	}

	agg := publisher.NewAggregator()
	opts := batch.OptionsFromConfig("scene-images", appCtx.Config.Kit)
	run, summary, err := drive(ctx, w, opts, func(o batch.Options) (*runner.SceneImageRun, error) {
		return imageRunner.NewRun(scenes, sel, agg, o)
	})
	if run != nil {
		printFailed(w, run.Failed(), domain.Scene.Key)
	}
	if agg.Len() == 0 {
		return err
	}

	// 中断された場合も、描画済みの画像は保存します。
	pub, perr := appCtx.Workflow.BuildPublisher()
	if perr != nil {
		return perr
	}
	res, perr := pub.Publish(context.WithoutCancel(ctx), appCtx.Config.OutputDir, agg.Entries(), publisher.Options{
		Kind:    "scene_images",
		Archive: true,
		Files:   true,
	})
	if perr != nil {
		return perr
	}
	fmt.Fprintf(w, "画像 %d 件 (失敗 %d 件) を %s に保存しました\n", summary.Succeeded, summary.Failed, res.ArchivePath)
	return err
}

// applySelection はフラグに従って選択集合を組み立てます。
func applySelection(sel *selection.Set, scenes domain.Scenes, selectAll bool, indices []int) error {
	if selectAll {
		keys := make([]string, len(scenes))
		for i, sc := range scenes {
			keys[i] = sc.Key()
		}
		return sel.SelectAll(keys)
	}
	seen := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		// 重複した番号は1回だけ選択します。
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		if _, err := sel.Toggle(domain.Scene{Index: idx}.Key()); err != nil {
			return err
		}
	}
	return nil
}

// ParseIndices は "1,3,5" 形式の文字列をシーン番号の一覧に変換します。
func ParseIndices(raw string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("シーン番号 '%s' が不正です", part)
		}
		out = append(out, n)
	}
	return out, nil
}

// videoToScript は動画から台本を起こします。video-script コマンドと storyboard の動画入力で共有します。
func videoToScript(ctx context.Context, appCtx *builder.AppContext, path string) (runner.VideoScript, error) {
	video, err := runner.LoadMedia(path)
	if err != nil {
		return runner.VideoScript{}, err
	}
	if !strings.HasPrefix(video.MIMEType, "video/") {
		slog.WarnContext(ctx, "動画ではない可能性があります", "file", video.Name, "mime", video.MIMEType)
	}
	vr, err := appCtx.Workflow.BuildVideoScriptRunner()
	if err != nil {
		return runner.VideoScript{}, err
	}
	return vr.Run(ctx, video)
}
