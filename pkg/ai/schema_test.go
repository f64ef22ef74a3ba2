package ai

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

type sceneList struct {
	Scenes []struct {
		Action string `json:"action" validate:"required"`
	} `json:"scenes" validate:"required,dive"`
}

func TestSchemaFor(t *testing.T) {
	s := SchemaFor[titleResponse]()
	if s.Name != "titleResponse" {
		t.Errorf("期待値 'titleResponse', 実際の値 '%s'", s.Name)
	}
	if _, ok := s.Document["$schema"]; ok {
		t.Error("$schema キーが残っています")
	}
	if s.Document["additionalProperties"] != false {
		t.Errorf("追加プロパティが禁止されていません: %v", s.Document["additionalProperties"])
	}
	props, ok := s.Document["properties"].(map[string]any)
	if !ok || props["title"] == nil {
		t.Errorf("title プロパティが見つかりません: %v", s.Document)
	}
}

func TestDecode(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "正常なJSON", raw: `{"scenes": [{"action": "run"}]}`},
		{name: "前後に説明文があるJSON", raw: `Here: {"scenes": [{"action": "run"}]} done`},
		{name: "未知のフィールド", raw: `{"scenes": [], "extra": 1}`, wantErr: true},
		{name: "必須フィールドの欠落", raw: `{"scenes": [{"action": ""}]}`, wantErr: true},
		{name: "壊れたJSON", raw: `{"scenes": [`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode[sceneList](StructuredResult{Raw: json.RawMessage(tc.raw)})
			if tc.wantErr {
				if !errors.Is(err, domain.ErrSchemaViolation) {
					t.Errorf("SchemaViolation が期待されましたが %v でした", err)
				}
				return
			}
			if err != nil {
				t.Errorf("予期しないエラー: %v", err)
			}
		})
	}
}
