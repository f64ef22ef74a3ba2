package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// デフォルト値の定義
const (
	DefaultGeminiModel        = "gemini-3-flash-preview"
	DefaultImageModel         = "gemini-3-pro-image-preview"
	DefaultTemperature        = float32(0.2)
	DefaultRateInterval       = 0 * time.Second // 0 の場合はリクエスト間隔を制御しません
	DefaultBatchSize          = 5
	DefaultBatchCooldown      = 10 * time.Second
	DefaultMaxDialogueChars   = 80
	DefaultSelectionLimit     = 10
	DefaultAnimationUnit      = 8 * time.Second
	DefaultImageUnit          = 5 * time.Second
	DefaultGenerationLanguage = "English"
	DefaultTranslationTTL     = 30 * time.Minute
	DefaultFileActivePoll     = 2 * time.Second
)

// Config は Storyboard Kit の各 Runner を動作させるための基本設定です。
// バッチサイズやクールダウンは特定の上流クォータに合わせた既定値であり、定数ではありません。
type Config struct {
	// --- Google AI (Gemini API) Settings ---
	GeminiAPIKey string `yaml:"gemini_api_key" validate:"required"`

	// --- AI Model Settings ---
	GeminiModel string  `yaml:"gemini_model" validate:"required"`
	ImageModel  string  `yaml:"image_model" validate:"required"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`

	// --- Rate Limiting ---
	RateInterval  time.Duration `yaml:"rate_interval" validate:"gte=0"`  // 上流リクエスト間の最小間隔
	BatchSize     int           `yaml:"batch_size" validate:"gt=0"`      // クールダウンを挟むまでの処理件数
	BatchCooldown time.Duration `yaml:"batch_cooldown" validate:"gte=0"` // バッチ境界ごとの待機時間

	// --- Scene Settings ---
	MaxDialogueChars   int           `yaml:"max_dialogue_chars" validate:"gt=0"`
	AnimationUnit      time.Duration `yaml:"animation_unit" validate:"gt=0"`
	ImageUnit          time.Duration `yaml:"image_unit" validate:"gt=0"`
	GenerationLanguage string        `yaml:"generation_language" validate:"required"`

	// --- Selection ---
	SelectionLimit int `yaml:"selection_limit" validate:"gt=0"`

	// --- Caching & Files ---
	TranslationTTL time.Duration `yaml:"translation_ttl" validate:"gte=0"`
	FileActivePoll time.Duration `yaml:"file_active_poll" validate:"gte=0"`
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		GeminiModel:        DefaultGeminiModel,
		ImageModel:         DefaultImageModel,
		Temperature:        DefaultTemperature,
		RateInterval:       DefaultRateInterval,
		BatchSize:          DefaultBatchSize,
		BatchCooldown:      DefaultBatchCooldown,
		MaxDialogueChars:   DefaultMaxDialogueChars,
		AnimationUnit:      DefaultAnimationUnit,
		ImageUnit:          DefaultImageUnit,
		GenerationLanguage: DefaultGenerationLanguage,
		SelectionLimit:     DefaultSelectionLimit,
		TranslationTTL:     DefaultTranslationTTL,
		FileActivePoll:     DefaultFileActivePoll,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate は設定を検証し、不備があれば ConfigurationError を返します。
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewError(domain.KindConfiguration, "config", "設定の検証に失敗しました", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
	}
	return domain.NewError(domain.KindConfiguration, "config", "不正な設定項目: "+strings.Join(fields, ", "), nil)
}
