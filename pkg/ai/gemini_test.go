package ai

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

type fakeModels struct {
	resp      *genai.GenerateContentResponse
	imgResp   *genai.GenerateImagesResponse
	err       error
	lastModel string
	lastCfg   *genai.GenerateContentConfig
	calls     int
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.lastModel = model
	f.lastCfg = cfg
	return f.resp, f.err
}

func (f *fakeModels) GenerateImages(_ context.Context, model, _ string, _ *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.calls++
	f.lastModel = model
	return f.imgResp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.GeminiAPIKey = "test-key"
	return cfg
}

type titleResponse struct {
	Title string `json:"title" validate:"required"`
}

func TestNewGeminiClient_MissingKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), config.DefaultConfig())
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("ConfigurationError が期待されましたが %v でした", err)
	}
}

func TestGeminiClient_CompleteStructured(t *testing.T) {
	ctx := context.Background()

	t.Run("コードブロック付きのJSONから本体を取り出せること", func(t *testing.T) {
		fm := &fakeModels{resp: textResponse("```json\n{\"title\": \"hello\"}\n```")}
		gc := newGeminiClient(fm, nil, testConfig())

		got, err := CompleteAs[titleResponse](ctx, gc, "system", "user")
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if got.Title != "hello" {
			t.Errorf("期待値 'hello', 実際の値 '%s'", got.Title)
		}
		if fm.lastCfg.ResponseMIMEType != "application/json" || fm.lastCfg.ResponseJsonSchema == nil {
			t.Errorf("構造化出力の設定が送信されていません: %+v", fm.lastCfg)
		}
		if fm.lastModel != config.DefaultGeminiModel {
			t.Errorf("期待値 '%s', 実際の値 '%s'", config.DefaultGeminiModel, fm.lastModel)
		}
	})

	t.Run("上流エラーは元のメッセージを保持すること", func(t *testing.T) {
		fm := &fakeModels{err: errors.New("429 RESOURCE_EXHAUSTED")}
		gc := newGeminiClient(fm, nil, testConfig())

		_, err := gc.CompleteStructured(ctx, StructuredRequest{UserContent: "x"})
		if !errors.Is(err, domain.ErrUpstream) {
			t.Fatalf("UpstreamError が期待されましたが %v でした", err)
		}
		var de *domain.Error
		if !errors.As(err, &de) || de.Msg != "429 RESOURCE_EXHAUSTED" {
			t.Errorf("上流のメッセージが保持されていません: %v", err)
		}
	})

	t.Run("空の応答はEmptyResultになること", func(t *testing.T) {
		gc := newGeminiClient(&fakeModels{resp: textResponse("  ")}, nil, testConfig())
		_, err := gc.CompleteStructured(ctx, StructuredRequest{UserContent: "x"})
		if !errors.Is(err, domain.ErrEmptyResult) {
			t.Errorf("EmptyResult が期待されましたが %v でした", err)
		}
	})

	t.Run("JSONでない応答はSchemaViolationになること", func(t *testing.T) {
		gc := newGeminiClient(&fakeModels{resp: textResponse("sorry, I cannot")}, nil, testConfig())
		_, err := gc.CompleteStructured(ctx, StructuredRequest{UserContent: "x"})
		if !errors.Is(err, domain.ErrSchemaViolation) {
			t.Errorf("SchemaViolation が期待されましたが %v でした", err)
		}
	})
}

func TestGeminiClient_GenerateImage(t *testing.T) {
	ctx := context.Background()

	t.Run("インラインデータの画像を返すこと", func(t *testing.T) {
		fm := &fakeModels{resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "here you go"},
					{InlineData: &genai.Blob{Data: []byte{0x89, 0x50}, MIMEType: "image/png"}},
				}},
			}},
		}}
		gc := newGeminiClient(fm, nil, testConfig())

		img, err := gc.GenerateImage(ctx, "a cat")
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if img.MIMEType != "image/png" || len(img.Data) != 2 {
			t.Errorf("画像データが不正です: %+v", img)
		}
	})

	t.Run("画像が0枚ならEmptyResultになること", func(t *testing.T) {
		gc := newGeminiClient(&fakeModels{resp: textResponse("no image")}, nil, testConfig())
		if _, err := gc.GenerateImage(ctx, "a cat"); !errors.Is(err, domain.ErrEmptyResult) {
			t.Errorf("EmptyResult が期待されましたが %v でした", err)
		}
	})

	t.Run("Imagenモデルでは GenerateImages を使うこと", func(t *testing.T) {
		cfg := testConfig()
		cfg.ImageModel = "imagen-4.0-generate-001"
		fm := &fakeModels{imgResp: &genai.GenerateImagesResponse{}}
		gc := newGeminiClient(fm, nil, cfg)

		if _, err := gc.GenerateImage(ctx, "a cat"); !errors.Is(err, domain.ErrEmptyResult) {
			t.Errorf("EmptyResult が期待されましたが %v でした", err)
		}
		if fm.lastModel != cfg.ImageModel {
			t.Errorf("期待値 '%s', 実際の値 '%s'", cfg.ImageModel, fm.lastModel)
		}
	})
}

func TestGeminiClient_AnalyzeMedia(t *testing.T) {
	gc := newGeminiClient(&fakeModels{resp: textResponse(`{"title": "frame"}`)}, nil, testConfig())

	got, err := AnalyzeAs[titleResponse](context.Background(), gc, Media{Name: "a.png", Data: []byte{1}, MIMEType: "image/png"}, "describe", "")
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if got.Title != "frame" {
		t.Errorf("期待値 'frame', 実際の値 '%s'", got.Title)
	}

	_, err = gc.AnalyzeMedia(context.Background(), Media{Name: "empty.png"}, StructuredRequest{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ValidationError が期待されましたが %v でした", err)
	}
}
