package prompts

import (
	"fmt"
	"strings"

	promptkit "github.com/shouni/go-prompt-kit/prompts"
	"github.com/shouni/go-prompt-kit/resource"
)

// PromptBuilder は、AIへのシステム指示を構築する契約です。
type PromptBuilder interface {
	Build(mode string, data TemplateData) (string, error)
}

// TextPromptBuilder は埋め込みテンプレートからモードごとの指示文を組み立てます。
type TextPromptBuilder struct {
	builder *promptkit.Builder
}

// NewTextPromptBuilder は埋め込みテンプレートをすべて読み込み、TextPromptBuilder を初期化します。
// 埋め込み漏れの変数はテンプレート実行時にエラーになります。
func NewTextPromptBuilder() (*TextPromptBuilder, error) {
	templates, err := resource.Load(templateFS, ".", "")
	if err != nil {
		return nil, fmt.Errorf("プロンプトテンプレートの読み込みに失敗しました: %w", err)
	}
	for _, mode := range modes {
		if _, ok := templates[mode]; !ok {
			return nil, fmt.Errorf("プロンプトテンプレート '%s' が見つかりません", mode)
		}
	}

	b, err := promptkit.NewBuilder(templates)
	if err != nil {
		return nil, fmt.Errorf("プロンプトビルダーの初期化に失敗しました: %w", err)
	}
	return &TextPromptBuilder{builder: b}, nil
}

// Build は、要求されたモードに応じて適切なテンプレートを実行します。
func (b *TextPromptBuilder) Build(mode string, data TemplateData) (string, error) {
	out, err := b.builder.Build(mode, data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
