package ai

import (
	"context"
	"encoding/json"
)

// GenerativeClient は外部の生成AIサービスに対する3つの操作をまとめた契約です。
// 通信や認証の詳細は実装側に閉じ込められ、呼び出し側はこのインターフェースのみに依存します。
// いずれの操作も内部でリトライは行いません。
type GenerativeClient interface {
	// CompleteStructured は指示とJSONスキーマを送り、構造化されたテキスト応答を返します。
	CompleteStructured(ctx context.Context, req StructuredRequest) (StructuredResult, error)
	// GenerateImage はテキストプロンプトから画像を1枚生成します。
	GenerateImage(ctx context.Context, prompt string) (Image, error)
	// AnalyzeMedia は画像や動画などのバイナリ入力を解析し、構造化された応答を返します。
	AnalyzeMedia(ctx context.Context, media Media, req StructuredRequest) (StructuredResult, error)
}

// StructuredRequest は構造化出力を要求するリクエストです。
type StructuredRequest struct {
	SystemInstruction string
	UserContent       string
	Schema            Schema
}

// StructuredResult は上流から返された JSON ペイロードです。
// 検証は Decode で行います。
type StructuredResult struct {
	Raw json.RawMessage
}

// Image は生成された画像データです。
type Image struct {
	Data     []byte
	MIMEType string
}

// Media は解析対象のバイナリ入力です。
type Media struct {
	Name     string
	Data     []byte
	MIMEType string
}
