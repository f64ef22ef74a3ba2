package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"
	"gopkg.in/yaml.v3"

	kitconfig "github.com/shouni/go-storyboard-kit/pkg/config"
)

// デフォルト値の定義なのだ
const (
	DefaultOutputDir   = "output"
	DefaultHistoryFile = ""
	DefaultEnvFile     = ".env"
	DefaultDuration    = 40 * time.Second
	DefaultMusicCount  = 2
)

// Config はアプリケーション全体の設定を保持する構造体なのだ。
// Kit は各 Runner に渡すライブラリ側の設定です。
type Config struct {
	Kit         kitconfig.Config `yaml:",inline"`
	OutputDir   string           `yaml:"output_dir"`
	HistoryFile string           `yaml:"history_file"`

	Options GenerateOptions `yaml:"-"`
}

// LoadConfig は .env、YAML ファイル、環境変数の順に設定を重ねて読み込むのだ。
// path が空なら YAML ファイルは読み込みません。
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".env ファイルの読み込みに失敗しました: %w", err)
	}

	cfg := &Config{
		Kit:         kitconfig.DefaultConfig(),
		OutputDir:   DefaultOutputDir,
		HistoryFile: DefaultHistoryFile,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("設定ファイル '%s' の読み込みに失敗しました: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("設定ファイル '%s' の解析に失敗しました: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv は環境変数が設定されている項目だけを上書きします。
func applyEnv(cfg *Config) error {
	k := &cfg.Kit
	k.GeminiAPIKey = envutil.GetEnv("GEMINI_API_KEY", k.GeminiAPIKey)
	k.GeminiModel = envutil.GetEnv("GEMINI_MODEL", k.GeminiModel)
	k.ImageModel = envutil.GetEnv("IMAGE_GEMINI_MODEL", k.ImageModel)
	k.GenerationLanguage = envutil.GetEnv("GENERATION_LANGUAGE", k.GenerationLanguage)
	cfg.OutputDir = envutil.GetEnv("OUTPUT_DIR", cfg.OutputDir)
	cfg.HistoryFile = envutil.GetEnv("HISTORY_FILE", cfg.HistoryFile)

	var err error
	if k.BatchSize, err = envInt("BATCH_SIZE", k.BatchSize); err != nil {
		return err
	}
	if k.SelectionLimit, err = envInt("SELECTION_LIMIT", k.SelectionLimit); err != nil {
		return err
	}
	if k.MaxDialogueChars, err = envInt("MAX_DIALOGUE_CHARS", k.MaxDialogueChars); err != nil {
		return err
	}
	if k.BatchCooldown, err = envDuration("BATCH_COOLDOWN", k.BatchCooldown); err != nil {
		return err
	}
	if k.RateInterval, err = envDuration("RATE_INTERVAL", k.RateInterval); err != nil {
		return err
	}
	return nil
}

func envInt(key string, fallback int) (int, error) {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("環境変数 %s の値 '%s' は整数ではありません: %w", key, raw, err)
	}
	return v, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("環境変数 %s の値 '%s' は期間として解釈できません: %w", key, raw, err)
	}
	return v, nil
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// 全体
	ConfigFile  string        // --config
	AIModel     string        // --model
	ImageModel  string        // --image-model
	OutputDir   string        // --output-dir
	BatchSize   int           // --batch-size
	Cooldown    time.Duration // --cooldown
	CooldownSet bool          // --cooldown が明示されたか
	HistoryFile string        // --history-file
	Verbose     bool          // --verbose

	// storyboard / render
	ScriptFile      string
	StoryboardFile  string
	Title           string
	CharactersFile  string
	Style           string
	Duration        time.Duration
	Kind            string
	Dialogue        string
	Nationality     string
	DisplayLanguage string
	Render          bool
	Select          []int
	SelectAll       bool

	// image-prompts
	ImageDir string

	// seo / music / video-script
	InputFile string
	Platform  string
	Genre     string
	Mood      string
	Count     int
}

// Apply はフラグで明示された値を設定に反映します。ゼロ値のフラグは無視されます。
func (c *Config) Apply(opts GenerateOptions) {
	if opts.AIModel != "" {
		c.Kit.GeminiModel = opts.AIModel
	}
	if opts.ImageModel != "" {
		c.Kit.ImageModel = opts.ImageModel
	}
	if opts.OutputDir != "" {
		c.OutputDir = opts.OutputDir
	}
	if opts.BatchSize > 0 {
		c.Kit.BatchSize = opts.BatchSize
	}
	if opts.CooldownSet {
		c.Kit.BatchCooldown = opts.Cooldown
	}
	if opts.HistoryFile != "" {
		c.HistoryFile = opts.HistoryFile
	}
	c.Options = opts
}
