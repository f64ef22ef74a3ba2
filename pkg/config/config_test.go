package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

func TestConfig_Validate(t *testing.T) {
	t.Run("APIキーがなければ設定エラーになること", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.Validate()
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("ConfigurationError が期待されましたが %v でした", err)
		}
		if !strings.Contains(err.Error(), "GeminiAPIKey") {
			t.Errorf("エラーメッセージに項目名が含まれていません: %v", err)
		}
	})

	t.Run("デフォルト値とAPIキーで検証を通ること", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.GeminiAPIKey = "test-key"
		if err := cfg.Validate(); err != nil {
			t.Errorf("予期しないエラー: %v", err)
		}
	})

	t.Run("バッチサイズが0なら設定エラーになること", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.GeminiAPIKey = "test-key"
		cfg.BatchSize = 0
		if err := cfg.Validate(); !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("ConfigurationError が期待されましたが %v でした", err)
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BatchSize != 5 || cfg.BatchCooldown.Seconds() != 10 {
		t.Errorf("バッチ設定の既定値が不正です: %d / %s", cfg.BatchSize, cfg.BatchCooldown)
	}
	if cfg.MaxDialogueChars != 80 || cfg.SelectionLimit != 10 {
		t.Errorf("既定値が不正です: %+v", cfg)
	}
}
