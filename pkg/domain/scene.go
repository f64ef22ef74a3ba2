package domain

import (
	"fmt"
	"time"
)

// Scene は台本の時間区切りされた1区間と、その生成プロンプトを保持します。
type Scene struct {
	Index             int           `json:"index"`
	Name              string        `json:"name"`
	Start             time.Duration `json:"start"`
	End               time.Duration `json:"end"`
	Action            string        `json:"action"`
	CharactersPresent []string      `json:"characters_present"`
	Dialogue          string        `json:"dialogue,omitempty"`
	PromptText        string        `json:"prompt_text"`
	Part              int           `json:"part"`  // 分割後の位置 (1始まり)
	Parts             int           `json:"parts"` // 分割数。分割されていなければ 1
}

// Span はシーンの長さを返します。
func (s Scene) Span() time.Duration {
	return s.End - s.Start
}

// StartSeconds は開始位置を秒で返します。
func (s Scene) StartSeconds() float64 { return s.Start.Seconds() }

// EndSeconds は終了位置を秒で返します。
func (s Scene) EndSeconds() float64 { return s.End.Seconds() }

// HasCharacter はシーンに指定のキャラクターが登場するかを返します。
func (s Scene) HasCharacter(name string) bool {
	for _, c := range s.CharactersPresent {
		if c == name {
			return true
		}
	}
	return false
}

// Key は集約やファイル名に使うシーンの識別キーです。
func (s Scene) Key() string {
	return fmt.Sprintf("Scene %d", s.Index)
}

// TimeCode は "00:08-00:16" 形式の時間表記を返します。
func (s Scene) TimeCode() string {
	return formatClock(s.Start) + "-" + formatClock(s.End)
}

func formatClock(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Scenes はシーン列に対するヘルパーを提供します。
type Scenes []Scene

// TotalDuration は全シーンの長さの合計を返します。
func (ss Scenes) TotalDuration() time.Duration {
	var total time.Duration
	for _, s := range ss {
		total += s.Span()
	}
	return total
}

// Validate はインデックスが1から連番であること、区間が連続していることを検証します。
func (ss Scenes) Validate() error {
	for i, s := range ss {
		if s.Index != i+1 {
			return fmt.Errorf("シーン番号が連続していません: 位置 %d に index %d", i+1, s.Index)
		}
		if s.Start < 0 || s.End <= s.Start {
			return fmt.Errorf("シーン %d の区間が不正です: %s-%s", s.Index, s.Start, s.End)
		}
		if i > 0 && ss[i-1].End != s.Start {
			return fmt.Errorf("シーン %d と %d の区間が連続していません", ss[i-1].Index, s.Index)
		}
	}
	return nil
}

// Clone はスライスを含めた防御的コピーを返します。
func (ss Scenes) Clone() Scenes {
	if ss == nil {
		return nil
	}
	out := make(Scenes, len(ss))
	for i, s := range ss {
		out[i] = s
		if s.CharactersPresent != nil {
			out[i].CharactersPresent = append([]string(nil), s.CharactersPresent...)
		}
	}
	return out
}
