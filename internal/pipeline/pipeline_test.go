package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/shouni/go-storyboard-kit/examples"
	"github.com/shouni/go-storyboard-kit/internal/builder"
	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/pkg/ai"
	kitconfig "github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/parser"
	"github.com/shouni/go-storyboard-kit/pkg/selection"
)

type scriptedClient struct {
	responses map[string]string
	onImage   func(prompt string)
}

func (c *scriptedClient) CompleteStructured(_ context.Context, req ai.StructuredRequest) (ai.StructuredResult, error) {
	raw, ok := c.responses[req.Schema.Name]
	if !ok {
		return ai.StructuredResult{}, errors.New("unexpected schema " + req.Schema.Name)
	}
	return ai.StructuredResult{Raw: json.RawMessage(raw)}, nil
}

func (c *scriptedClient) GenerateImage(_ context.Context, prompt string) (ai.Image, error) {
	if c.onImage != nil {
		c.onImage(prompt)
	}
	return ai.Image{Data: []byte(prompt), MIMEType: "image/png"}, nil
}

func (c *scriptedClient) AnalyzeMedia(_ context.Context, m ai.Media, _ ai.StructuredRequest) (ai.StructuredResult, error) {
	if strings.HasPrefix(m.Name, "broken") {
		return ai.StructuredResult{}, errors.New("upstream unavailable")
	}
	return ai.StructuredResult{Raw: json.RawMessage(`{"prompt": "prompt of ` + m.Name + `"}`)}, nil
}

func newTestApp(t *testing.T, opts config.GenerateOptions) (*builder.AppContext, string) {
	t.Helper()
	return newTestAppWithClient(t, opts, newScriptedClient())
}

func newTestAppWithClient(t *testing.T, opts config.GenerateOptions, client ai.GenerativeClient) (*builder.AppContext, string) {
	t.Helper()
	outDir := t.TempDir()
	kit := kitconfig.DefaultConfig()
	kit.GeminiAPIKey = "test-key"
	kit.BatchCooldown = 0

	cfg := &config.Config{Kit: kit, OutputDir: outDir}
	cfg.Apply(opts)

	appCtx, err := builder.NewAppContext(context.Background(), cfg, client)
	if err != nil {
		t.Fatalf("AppContext の初期化に失敗しました: %v", err)
	}
	return appCtx, outDir
}

func newScriptedClient() *scriptedClient {
	return &scriptedClient{responses: map[string]string{
		"characterSheet": `{"characters": [{"name": "Lan", "species": "human", "nationality": "", "description": "desc-A"}]}`,
		"sceneBoard": `{"scenes": [
			{"action": "a1", "characters": ["Lan"], "visual": "v1", "dialogue": "Hi."},
			{"action": "a2", "characters": [], "visual": "v2", "dialogue": ""},
			{"action": "a3", "characters": ["Lan"], "visual": "v3", "dialogue": ""}
		]}`,
	}}
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("%s が見つかりません: %v", filepath.Base(path), err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip の読み込みに失敗しました: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestExecuteStoryboard(t *testing.T) {
	scriptPath := filepath.Join(t.TempDir(), "script.txt")
	if err := os.WriteFile(scriptPath, []byte("Lan says hi."), 0o644); err != nil {
		t.Fatal(err)
	}

	appCtx, outDir := newTestApp(t, config.GenerateOptions{
		ScriptFile: scriptPath,
		Duration:   24 * time.Second,
		Render:     true,
		Select:     []int{3, 1},
	})

	var out bytes.Buffer
	if err := ExecuteStoryboard(context.Background(), appCtx, &out); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	t.Run("シーンプロンプトが連結して保存されること", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(outDir, DefaultScenesFileName))
		if err != nil {
			t.Fatalf("scenes.txt が見つかりません: %v", err)
		}
		if strings.Count(string(data), "Lan: desc-A") != 2 {
			t.Errorf("固定説明の出現回数が一致しません: %q", data)
		}
	})

	t.Run("選択したシーンだけが zip に含まれること", func(t *testing.T) {
		names := zipNames(t, filepath.Join(outDir, "results.zip"))
		if diff := cmp.Diff([]string{"scene_1.png", "scene_3.png"}, names); diff != "" {
			t.Errorf("zip のエントリが一致しません (-want +got):\n%s", diff)
		}
	})
}

func TestExecuteRender(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "script.txt")
	charsPath := filepath.Join(dir, "characters.json")
	if err := os.WriteFile(scriptPath, []byte(examples.Script), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(charsPath, examples.CharactersJSON, 0o644); err != nil {
		t.Fatal(err)
	}

	appCtx, outDir := newTestApp(t, config.GenerateOptions{
		ScriptFile:     scriptPath,
		CharactersFile: charsPath,
		Duration:       24 * time.Second,
		Title:          "Harbor",
	})
	var out bytes.Buffer
	if err := ExecuteStoryboard(context.Background(), appCtx, &out); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	mdPath := filepath.Join(outDir, DefaultStoryboardMarkdown)
	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("storyboard.md が見つかりません: %v", err)
	}
	if !strings.HasPrefix(string(md), "# Harbor") {
		t.Errorf("タイトルが見出しになっていません: %q", md)
	}
	// 手で直したプロンプトがそのまま描画に使われること
	edited := strings.Replace(string(md), "v2", "v2 at dawn", 1)
	if err := os.WriteFile(mdPath, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}

	appCtx.Options.StoryboardFile = mdPath
	appCtx.Options.Select = []int{2}
	if err := ExecuteRender(context.Background(), appCtx, &out); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	img, err := os.ReadFile(filepath.Join(outDir, "scene_2.png"))
	if err != nil {
		t.Fatalf("scene_2.png が見つかりません: %v", err)
	}
	if !strings.Contains(string(img), "v2 at dawn") {
		t.Errorf("編集後のプロンプトで描画されていません: %q", img)
	}
}

func writeStoryboard(t *testing.T, n int) string {
	t.Helper()
	scenes := make(domain.Scenes, n)
	for i := range scenes {
		scenes[i] = domain.Scene{
			Index:      i + 1,
			Start:      time.Duration(i) * 8 * time.Second,
			End:        time.Duration(i+1) * 8 * time.Second,
			PromptText: fmt.Sprintf("prompt %d", i+1),
		}
	}
	path := filepath.Join(t.TempDir(), DefaultStoryboardMarkdown)
	if err := os.WriteFile(path, []byte(parser.FormatMarkdown(parser.Storyboard{Scenes: scenes})), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecuteRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := newScriptedClient()
	calls := 0
	client.onImage = func(string) {
		calls++
		if calls == 2 {
			cancel()
		}
	}

	appCtx, outDir := newTestAppWithClient(t, config.GenerateOptions{
		StoryboardFile: writeStoryboard(t, 4),
		SelectAll:      true,
	}, client)

	var out bytes.Buffer
	err := ExecuteRender(ctx, appCtx, &out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("context.Canceled を期待しましたが %v でした", err)
	}

	names := zipNames(t, filepath.Join(outDir, "results.zip"))
	if diff := cmp.Diff([]string{"scene_1.png", "scene_2.png"}, names); diff != "" {
		t.Errorf("中断前に描画したシーンが保存されていません (-want +got):\n%s", diff)
	}
	if calls != 2 {
		t.Errorf("中断後に描画が続いています: %d 回", calls)
	}
}

func TestApplySelection(t *testing.T) {
	scenes := domain.Scenes{{Index: 1}, {Index: 2}, {Index: 3}}

	t.Run("重複した番号で選択が外れないこと", func(t *testing.T) {
		sel := selection.New(10)
		if err := applySelection(sel, scenes, false, []int{1, 3, 1}); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if diff := cmp.Diff([]string{"Scene 1", "Scene 3"}, sel.IDs()); diff != "" {
			t.Errorf("選択結果が一致しません (-want +got):\n%s", diff)
		}
	})

	t.Run("全選択は上限で切り詰めること", func(t *testing.T) {
		sel := selection.New(2)
		if err := applySelection(sel, scenes, true, nil); err == nil {
			t.Error("上限超過のエラーを期待しましたが nil でした")
		}
		if sel.Len() != 2 {
			t.Errorf("選択数: 期待値 2, 実際の値 %d", sel.Len())
		}
	})
}

func TestExecuteImagePrompts(t *testing.T) {
	imgDir := t.TempDir()
	for _, name := range []string{"a.png", "broken.png", "c.png", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(imgDir, name), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	appCtx, outDir := newTestApp(t, config.GenerateOptions{ImageDir: imgDir})
	var out bytes.Buffer
	if err := ExecuteImagePrompts(context.Background(), appCtx, &out); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "prompts.txt"))
	if err != nil {
		t.Fatalf("prompts.txt が見つかりません: %v", err)
	}
	want := "prompt of a.png\n\nprompt of c.png"
	if string(data) != want {
		t.Errorf("期待値 %q, 実際の値 %q", want, data)
	}
	if !strings.Contains(out.String(), "broken.png") {
		t.Errorf("失敗したアイテムが表示されていません:\n%s", out.String())
	}
}

func TestParseIndices(t *testing.T) {
	got, err := ParseIndices(" 1, 3,,5 ")
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if diff := cmp.Diff([]int{1, 3, 5}, got); diff != "" {
		t.Errorf("結果が一致しません (-want +got):\n%s", diff)
	}
	if _, err := ParseIndices("1,x"); err == nil {
		t.Error("エラーを期待しましたが nil でした")
	}
}
