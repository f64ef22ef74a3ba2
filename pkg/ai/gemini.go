package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// maxInlineBytes を超えるメディアは File API 経由で渡します。
const maxInlineBytes = 20 << 20

// contentGenerator は genai.Models のうち利用する操作だけを切り出したものです。
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// fileStore は genai.Files のうち利用する操作だけを切り出したものです。
type fileStore interface {
	Upload(ctx context.Context, r io.Reader, config *genai.UploadFileConfig) (*genai.File, error)
	Get(ctx context.Context, name string, config *genai.GetFileConfig) (*genai.File, error)
	Delete(ctx context.Context, name string, config *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error)
}

// GeminiClient は Gemini API を用いた GenerativeClient の実装です。
type GeminiClient struct {
	models      contentGenerator
	files       fileStore
	textModel   string
	imageModel  string
	temperature float32
	limiter     *rate.Limiter
	pollEvery   time.Duration
}

// NewGeminiClient は明示的な設定から Gemini クライアントを初期化します。
// APIキーが空の場合は ConfigurationError を返し、上流への接続は行いません。
func NewGeminiClient(ctx context.Context, cfg config.Config) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return nil, domain.NewError(domain.KindConfiguration, "gemini", "GEMINI_API_KEY が設定されていません", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, domain.NewError(domain.KindConfiguration, "gemini", "AIクライアントの初期化に失敗しました", err)
	}

	return newGeminiClient(client.Models, client.Files, cfg), nil
}

func newGeminiClient(models contentGenerator, files fileStore, cfg config.Config) *GeminiClient {
	gc := &GeminiClient{
		models:      models,
		files:       files,
		textModel:   cfg.GeminiModel,
		imageModel:  cfg.ImageModel,
		temperature: cfg.Temperature,
		pollEvery:   cfg.FileActivePoll,
	}
	if cfg.RateInterval > 0 {
		gc.limiter = rate.NewLimiter(rate.Every(cfg.RateInterval), 1)
	}
	if gc.pollEvery <= 0 {
		gc.pollEvery = config.DefaultFileActivePoll
	}
	return gc
}

// CompleteStructured は JSON スキーマ付きでテキスト生成を行います。
func (gc *GeminiClient) CompleteStructured(ctx context.Context, req StructuredRequest) (StructuredResult, error) {
	contents := []*genai.Content{genai.NewContentFromText(req.UserContent, genai.RoleUser)}
	return gc.generateStructured(ctx, "complete_structured", contents, req)
}

// AnalyzeMedia はメディアと指示を合わせて送信し、構造化された応答を返します。
// 大きな入力は File API にアップロードし、処理可能になるまで待機します。
func (gc *GeminiClient) AnalyzeMedia(ctx context.Context, media Media, req StructuredRequest) (StructuredResult, error) {
	if len(media.Data) == 0 {
		return StructuredResult{}, domain.Validationf("analyze_media", "メディアが空です (%s)", media.Name)
	}

	var mediaPart *genai.Part
	if len(media.Data) <= maxInlineBytes || gc.files == nil {
		mediaPart = genai.NewPartFromBytes(media.Data, media.MIMEType)
	} else {
		file, err := gc.uploadAndWait(ctx, media)
		if err != nil {
			return StructuredResult{}, err
		}
		defer gc.deleteFile(file.Name)
		mediaPart = genai.NewPartFromURI(file.URI, file.MIMEType)
	}

	parts := []*genai.Part{mediaPart}
	if req.UserContent != "" {
		parts = append(parts, genai.NewPartFromText(req.UserContent))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	return gc.generateStructured(ctx, "analyze_media", contents, req)
}

func (gc *GeminiClient) generateStructured(ctx context.Context, op string, contents []*genai.Content, req StructuredRequest) (StructuredResult, error) {
	if err := gc.wait(ctx); err != nil {
		return StructuredResult{}, err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(gc.temperature),
		ResponseMIMEType: "application/json",
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if len(req.Schema.Document) > 0 {
		cfg.ResponseJsonSchema = req.Schema.Document
	}

	slog.DebugContext(ctx, "Gemini API を呼び出します", "op", op, "model", gc.textModel, "schema", req.Schema.Name)
	resp, err := gc.models.GenerateContent(ctx, gc.textModel, contents, cfg)
	if err != nil {
		return StructuredResult{}, domain.NewError(domain.KindUpstream, op, err.Error(), err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return StructuredResult{}, domain.NewError(domain.KindEmptyResult, op, "モデルの応答にテキストが含まれていません", nil)
	}

	payload, err := extractJSON([]byte(text))
	if err != nil || !json.Valid(payload) {
		return StructuredResult{}, domain.NewError(domain.KindSchemaViolation, op,
			fmt.Sprintf("応答がJSONではありません (応答抜粋: %q)", truncateString(text, 200)), err)
	}
	return StructuredResult{Raw: payload}, nil
}

// GenerateImage はプロンプトから画像を1枚生成します。
// Imagen 系モデルは GenerateImages、それ以外は画像出力付きの GenerateContent を使います。
func (gc *GeminiClient) GenerateImage(ctx context.Context, prompt string) (Image, error) {
	if err := gc.wait(ctx); err != nil {
		return Image{}, err
	}

	slog.DebugContext(ctx, "画像生成リクエストを送信します", "model", gc.imageModel)
	if strings.HasPrefix(gc.imageModel, "imagen") {
		return gc.generateWithImagen(ctx, prompt)
	}

	resp, err := gc.models.GenerateContent(ctx, gc.imageModel,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	)
	if err != nil {
		return Image{}, domain.NewError(domain.KindUpstream, "generate_image", err.Error(), err)
	}

	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return Image{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}, nil
			}
		}
	}
	return Image{}, domain.NewError(domain.KindEmptyResult, "generate_image", "画像が1枚も返されませんでした", nil)
}

func (gc *GeminiClient) generateWithImagen(ctx context.Context, prompt string) (Image, error) {
	resp, err := gc.models.GenerateImages(ctx, gc.imageModel, prompt, &genai.GenerateImagesConfig{NumberOfImages: 1})
	if err != nil {
		return Image{}, domain.NewError(domain.KindUpstream, "generate_image", err.Error(), err)
	}
	for _, gi := range resp.GeneratedImages {
		if gi != nil && gi.Image != nil && len(gi.Image.ImageBytes) > 0 {
			return Image{Data: gi.Image.ImageBytes, MIMEType: gi.Image.MIMEType}, nil
		}
	}
	return Image{}, domain.NewError(domain.KindEmptyResult, "generate_image", "画像が1枚も返されませんでした", nil)
}

// uploadAndWait はファイルをアップロードし、状態が ACTIVE になるまでポーリングします。
func (gc *GeminiClient) uploadAndWait(ctx context.Context, media Media) (*genai.File, error) {
	slog.InfoContext(ctx, "File API にメディアをアップロードします", "name", media.Name, "bytes", len(media.Data))
	file, err := gc.files.Upload(ctx, bytes.NewReader(media.Data), &genai.UploadFileConfig{
		MIMEType:    media.MIMEType,
		DisplayName: media.Name,
	})
	if err != nil {
		return nil, domain.NewError(domain.KindUpstream, "upload", err.Error(), err)
	}

	ticker := time.NewTicker(gc.pollEvery)
	defer ticker.Stop()
	for file.State != genai.FileStateActive {
		if file.State == genai.FileStateFailed {
			return nil, domain.NewError(domain.KindUpstream, "upload", "ファイルの処理に失敗しました: "+media.Name, nil)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
		file, err = gc.files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, domain.NewError(domain.KindUpstream, "upload", err.Error(), err)
		}
	}
	return file, nil
}

func (gc *GeminiClient) deleteFile(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := gc.files.Delete(ctx, name, nil); err != nil {
		slog.Warn("アップロード済みファイルの削除に失敗しました", "name", name, "error", err)
	}
}

// wait はリクエスト間隔が設定されている場合に待機します。
func (gc *GeminiClient) wait(ctx context.Context) error {
	if gc.limiter == nil {
		return nil
	}
	if err := gc.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("リミッター待機中にエラーが発生しました: %w", err)
	}
	return nil
}
