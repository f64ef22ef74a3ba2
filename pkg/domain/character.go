package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Species はキャラクターの種別です。国籍の上書きは人間にのみ適用されます。
type Species string

const (
	SpeciesHuman  Species = "human"
	SpeciesAnimal Species = "animal"
)

// Character は台本に登場するキャラクターの定義を保持します。
// Description は一度生成されたら、以降のすべてのシーンプロンプトでそのまま再利用されるのだ。
type Character struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Species     Species `json:"species,omitempty"`
	Nationality string  `json:"nationality,omitempty"`
}

// IsAnimal は動物キャラクターかどうかを返します。
func (c Character) IsAnimal() bool {
	return c.Species == SpeciesAnimal
}

// String はキャラクターの情報を文字列で返すのだ。
func (c Character) String() string {
	return fmt.Sprintf("%s: %s", c.Name, c.Description)
}

// Roster は1セッション内のキャラクター一覧です。名前は大文字小文字を区別せず一意です。
// 編集系のメソッドは常に新しい Roster を返し、既存の値は変更しません。
type Roster struct {
	chars []Character
}

// NewRoster は重複した名前を除きつつ、出現順を保った Roster を生成するのだ。
func NewRoster(chars []Character) Roster {
	seen := make(map[string]struct{}, len(chars))
	out := make([]Character, 0, len(chars))
	for _, c := range chars {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		key := strings.ToLower(c.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return Roster{chars: out}
}

// LoadRoster は指定されたファイルパスからJSON配列を読み込み、Roster を返すのだ。
func LoadRoster(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("キャラクターファイルの読み込みに失敗したのだ: %w", err)
	}
	return ParseRoster(data)
}

// ParseRoster はJSONバイト列から Roster をパースします。
func ParseRoster(data []byte) (Roster, error) {
	var chars []Character
	if err := json.Unmarshal(data, &chars); err != nil {
		return Roster{}, fmt.Errorf("キャラクター情報のJSONパースに失敗しました: %w", err)
	}
	return NewRoster(chars), nil
}

// Len はキャラクター数を返します。
func (r Roster) Len() int { return len(r.chars) }

// Characters は内部スライスのコピーを返すのだ。
func (r Roster) Characters() []Character {
	return copyCharacters(r.chars)
}

// Names は登録順のキャラクター名を返します。
func (r Roster) Names() []string {
	names := make([]string, len(r.chars))
	for i, c := range r.chars {
		names[i] = c.Name
	}
	return names
}

// Find は名前（大文字小文字を区別しない）からキャラクターを探します。
func (r Roster) Find(name string) (Character, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, c := range r.chars {
		if strings.ToLower(c.Name) == key {
			return c, true
		}
	}
	return Character{}, false
}

// WithDescription は指定キャラクターの説明だけを差し替えた新しい Roster を返します。
func (r Roster) WithDescription(name, description string) (Roster, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	next := copyCharacters(r.chars)
	for i := range next {
		if strings.ToLower(next[i].Name) == key {
			next[i].Description = description
			return Roster{chars: next}, nil
		}
	}
	return r, fmt.Errorf("キャラクター '%s' は登録されていません", name)
}

// MarshalJSON は Roster をキャラクター配列としてエンコードします。
func (r Roster) MarshalJSON() ([]byte, error) {
	if r.chars == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.chars)
}

// copyCharacters はスライスの防御的コピーを行う内部ヘルパーなのだ。
func copyCharacters(src []Character) []Character {
	if src == nil {
		return nil
	}
	copied := make([]Character, len(src))
	copy(copied, src)
	return copied
}
