package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// Schema は構造化出力の契約です。Document は上流に送る JSON Schema です。
type Schema struct {
	Name     string
	Document map[string]any
}

var (
	reflector = &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	validate = validator.New(validator.WithRequiredStructEnabled())
)

// SchemaFor は型 T から JSON Schema を生成します。T は構造体である必要があります。
func SchemaFor[T any]() Schema {
	var v T
	s := reflector.Reflect(&v)

	doc := map[string]any{}
	if raw, err := json.Marshal(s); err == nil {
		_ = json.Unmarshal(raw, &doc)
	}
	// Gemini はメタ情報のキーを受け付けないため取り除きます。
	delete(doc, "$schema")
	delete(doc, "$id")

	return Schema{
		Name:     reflect.TypeOf(v).Name(),
		Document: doc,
	}
}

// Decode は応答を T に変換し、validate タグで検証します。
// 変換または検証に失敗した場合は SchemaViolation を返します。
func Decode[T any](res StructuredResult) (T, error) {
	var out T

	payload, err := extractJSON(res.Raw)
	if err != nil {
		return out, domain.NewError(domain.KindSchemaViolation, "decode", err.Error(), nil)
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, domain.NewError(domain.KindSchemaViolation, "decode",
			fmt.Sprintf("AIからの応答に含まれるJSONの解析に失敗しました (応答抜粋: %q)", truncateString(string(res.Raw), 200)), err)
	}

	if err := validate.Struct(out); err != nil {
		var invalid *validator.InvalidValidationError
		if !errors.As(err, &invalid) {
			return out, domain.NewError(domain.KindSchemaViolation, "decode", "応答が契約を満たしていません", err)
		}
	}
	return out, nil
}

// CompleteAs は CompleteStructured を呼び出し、結果を T として検証して返します。
func CompleteAs[T any](ctx context.Context, c GenerativeClient, systemInstruction, userContent string) (T, error) {
	res, err := c.CompleteStructured(ctx, StructuredRequest{
		SystemInstruction: systemInstruction,
		UserContent:       userContent,
		Schema:            SchemaFor[T](),
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](res)
}

// AnalyzeAs は AnalyzeMedia を呼び出し、結果を T として検証して返します。
func AnalyzeAs[T any](ctx context.Context, c GenerativeClient, media Media, systemInstruction, userContent string) (T, error) {
	res, err := c.AnalyzeMedia(ctx, media, StructuredRequest{
		SystemInstruction: systemInstruction,
		UserContent:       userContent,
		Schema:            SchemaFor[T](),
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](res)
}
