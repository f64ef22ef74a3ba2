package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Run("YAML と環境変数が既定値に重なること", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "storyboard.yaml")
		yamlText := "gemini_model: yaml-model\nbatch_size: 3\nbatch_cooldown: 2s\noutput_dir: from-yaml\n"
		if err := os.WriteFile(path, []byte(yamlText), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("GEMINI_API_KEY", "env-key")
		t.Setenv("BATCH_SIZE", "7")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if cfg.Kit.GeminiModel != "yaml-model" {
			t.Errorf("GeminiModel: 期待値 'yaml-model', 実際の値 '%s'", cfg.Kit.GeminiModel)
		}
		if cfg.Kit.BatchSize != 7 {
			t.Errorf("BatchSize: 期待値 7, 実際の値 %d", cfg.Kit.BatchSize)
		}
		if cfg.Kit.BatchCooldown != 2*time.Second {
			t.Errorf("BatchCooldown: 期待値 2s, 実際の値 %s", cfg.Kit.BatchCooldown)
		}
		if cfg.Kit.GeminiAPIKey != "env-key" || cfg.OutputDir != "from-yaml" {
			t.Errorf("設定が一致しません: %+v", cfg)
		}
		if cfg.Kit.MaxDialogueChars != 80 {
			t.Errorf("既定値が失われています: %d", cfg.Kit.MaxDialogueChars)
		}
	})

	t.Run("不正な数値の環境変数はエラーになること", func(t *testing.T) {
		t.Setenv("BATCH_SIZE", "five")
		if _, err := LoadConfig(""); err == nil {
			t.Error("エラーを期待しましたが nil でした")
		}
	})
}

func TestConfig_Apply(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	cfg.Apply(GenerateOptions{AIModel: "flag-model", CooldownSet: true, Cooldown: 0})

	if cfg.Kit.GeminiModel != "flag-model" {
		t.Errorf("期待値 'flag-model', 実際の値 '%s'", cfg.Kit.GeminiModel)
	}
	if cfg.Kit.BatchCooldown != 0 {
		t.Errorf("明示した 0 のクールダウンが反映されていません: %s", cfg.Kit.BatchCooldown)
	}
}
