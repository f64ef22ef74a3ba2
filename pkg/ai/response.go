package ai

import (
	"bytes"
	"errors"
	"regexp"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// extractJSON はモデル応答から JSON 本体を取り出します。
// レスポンススキーマを指定していてもコードブロックで包まれることがあるため、
// コードブロック、最も外側のオブジェクト、応答全体の順に試します。
func extractJSON(raw []byte) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("応答が空です")
	}

	if matches := jsonBlockRegex.FindSubmatch(raw); len(matches) > 1 {
		return matches[1], nil
	}

	first := bytes.IndexByte(raw, '{')
	last := bytes.LastIndexByte(raw, '}')
	if first != -1 && last > first {
		return raw[first : last+1], nil
	}
	return raw, nil
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
