package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/shouni/go-storyboard-kit/pkg/ai"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
)

const cacheCleanupInterval = 15 * time.Minute

// Translation は表示用に翻訳されたキャラクター説明です。Original が正規の説明として使われ続けます。
type Translation struct {
	Name       string `json:"name"`
	Language   string `json:"language"`
	Original   string `json:"original"`
	Translated string `json:"translated"`
}

type translationResponse struct {
	Translation string `json:"translation" validate:"required" jsonschema_description:"The translated text"`
}

// Translator は説明文の翻訳を行い、結果をキャッシュします。
// 同じ文の翻訳が同時に要求された場合は1回の呼び出しにまとめます。
type Translator struct {
	client  ai.GenerativeClient
	prompts prompts.PromptBuilder
	cache   *cache.Cache
	group   singleflight.Group
}

// NewTranslator は Translator を初期化します。ttl が 0 以下の場合はキャッシュが期限切れになりません。
func NewTranslator(client ai.GenerativeClient, pb prompts.PromptBuilder, ttl time.Duration) *Translator {
	expiration := ttl
	if expiration <= 0 {
		expiration = cache.NoExpiration
	}
	return &Translator{
		client:  client,
		prompts: pb,
		cache:   cache.New(expiration, cacheCleanupInterval),
	}
}

// Translate は text を language に翻訳します。
func (t *Translator) Translate(ctx context.Context, text, language string) (string, error) {
	key := language + "\x00" + text
	if v, ok := t.cache.Get(key); ok {
		if s, ok := v.(string); ok {
			return s, nil
		}
	}

	val, err, _ := t.group.Do(key, func() (interface{}, error) {
		if v, ok := t.cache.Get(key); ok {
			return v, nil
		}

		system, err := t.prompts.Build(prompts.ModeTranslate, prompts.TemplateData{DisplayLanguage: language})
		if err != nil {
			return nil, err
		}
		resp, err := ai.CompleteAs[translationResponse](ctx, t.client, system, text)
		if err != nil {
			return nil, err
		}

		t.cache.SetDefault(key, resp.Translation)
		return resp.Translation, nil
	})
	if err != nil {
		return "", err
	}

	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("unexpected return type from singleflight: %T", val)
	}
	return s, nil
}
