package pipeline

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

var (
	sentenceRegex = regexp.MustCompile(`[^.!?。！？]*[.!?。！？]+\s*|[^.!?。！？]+`)
	wordRegex     = regexp.MustCompile(`\S+\s*`)
)

type span struct {
	start, end time.Duration
}

// distribute は [start, start+total) を n 個の連続した区間に分けます。
// 合計は必ず total に一致します。可能な場合は境界を秒単位に揃えます。
// どの区間も長さを持てないほど total が短い場合は ValidationError を返します。
func distribute(start, total time.Duration, n int) ([]span, error) {
	if n <= 0 {
		return nil, nil
	}
	if spans, ok := boundaries(start, total, n, true); ok {
		return spans, nil
	}
	if spans, ok := boundaries(start, total, n, false); ok {
		return spans, nil
	}
	return nil, domain.Validationf("distribute", "%s を %d 個の区間に分割できません", total, n)
}

func boundaries(start, total time.Duration, n int, roundSeconds bool) ([]span, bool) {
	spans := make([]span, n)
	prev := start
	for i := 1; i <= n; i++ {
		offset := time.Duration(int64(total) * int64(i) / int64(n))
		if roundSeconds && i < n {
			offset = offset.Round(time.Second)
		}
		next := start + offset
		if next <= prev {
			return nil, false
		}
		spans[i-1] = span{start: prev, end: next}
		prev = next
	}
	return spans, true
}

// splitDialogue は limit 文字（rune 数）を超えるセリフを、文・単語の境界を優先して分割します。
// 空のセリフは空文字列1つを返します。
func splitDialogue(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	return pack(segments(text, limit), limit)
}

// segments はテキストを、それぞれ limit 文字以下の断片に分解します。
func segments(text string, limit int) []string {
	var out []string
	for _, sentence := range sentenceRegex.FindAllString(text, -1) {
		if runeLen(sentence) <= limit {
			out = append(out, sentence)
			continue
		}
		for _, word := range wordRegex.FindAllString(sentence, -1) {
			if runeLen(word) <= limit {
				out = append(out, word)
				continue
			}
			out = append(out, hardSplit(strings.TrimSpace(word), limit)...)
		}
	}
	return out
}

// pack は断片を limit 文字を超えない範囲で前から詰めていきます。
func pack(segs []string, limit int) []string {
	var chunks []string
	current := ""
	for _, seg := range segs {
		if candidate := current + seg; runeLen(candidate) <= limit {
			current = candidate
			continue
		}
		if t := strings.TrimSpace(current); t != "" {
			chunks = append(chunks, t)
		}
		current = seg
	}
	if t := strings.TrimSpace(current); t != "" {
		chunks = append(chunks, t)
	}
	return chunks
}

func hardSplit(word string, limit int) []string {
	runes := []rune(word)
	var out []string
	for len(runes) > limit {
		out = append(out, string(runes[:limit]))
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
