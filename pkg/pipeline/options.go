package pipeline

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// Kind は台本の種類です。シーン1つあたりの長さが種類ごとに決まります。
type Kind string

const (
	KindAnimation Kind = "animation" // 動画（1シーン 8 秒）
	KindImage     Kind = "image"     // 静止画（1シーン 5 秒）
)

// DialogueMode はセリフの扱いです。
type DialogueMode string

const (
	DialogueSpoken DialogueMode = "spoken" // 元のセリフをそのまま埋め込む
	DialogueSilent DialogueMode = "silent" // セリフを含めず、無音マーカーを付ける
)

// Options はシーン生成の入力オプションです。
type Options struct {
	Style              string
	Total              time.Duration `validate:"gt=0"`
	Kind               Kind          `validate:"oneof=animation image"`
	Dialogue           DialogueMode  `validate:"oneof=spoken silent"`
	Nationality        string
	DisplayLanguage    string
	GenerationLanguage string `validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// normalize は未指定の項目に既定値を補います。
func (o Options) normalize(cfg config.Config) Options {
	if o.Kind == "" {
		o.Kind = KindAnimation
	}
	if o.Dialogue == "" {
		o.Dialogue = DialogueSpoken
	}
	if o.GenerationLanguage == "" {
		o.GenerationLanguage = cfg.GenerationLanguage
	}
	o.Style = strings.TrimSpace(o.Style)
	o.Nationality = strings.TrimSpace(o.Nationality)
	o.DisplayLanguage = strings.TrimSpace(o.DisplayLanguage)
	return o
}

func (o Options) check(script string) error {
	var problems []string
	if strings.TrimSpace(script) == "" {
		problems = append(problems, "台本が空です")
	}
	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.NewError(domain.KindValidation, "pipeline", "オプションの検証に失敗しました", err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s が不正です (%s=%v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	}
	if len(problems) > 0 {
		return domain.NewError(domain.KindValidation, "pipeline", strings.Join(problems, "; "), nil)
	}
	return nil
}

// Silent は無音モードかどうかを返します。
func (o Options) Silent() bool {
	return o.Dialogue == DialogueSilent
}

// UnitFor は台本の種類に応じたシーン1つあたりの長さを返します。
func UnitFor(kind Kind, cfg config.Config) time.Duration {
	if kind == KindImage {
		return cfg.ImageUnit
	}
	return cfg.AnimationUnit
}

// TargetSceneCount は round(total / unit) を返します。最低でも 1 です。
func TargetSceneCount(total, unit time.Duration) int {
	if unit <= 0 {
		return 1
	}
	n := int(math.Round(total.Seconds() / unit.Seconds()))
	if n < 1 {
		return 1
	}
	return n
}
