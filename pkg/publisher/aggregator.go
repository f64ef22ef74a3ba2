package publisher

import (
	"slices"
	"sync"
)

// Entry は集約される結果1件分です。テキスト結果なら Text、バイナリ結果なら Data を持ちます。
type Entry struct {
	Key      string
	Text     string
	Data     []byte
	MIMEType string
}

// IsBinary はバイナリペイロードを持つかどうかを返します。
func (e Entry) IsBinary() bool {
	return len(e.Data) > 0
}

// Payload はアーカイブに格納するバイト列を返します。
func (e Entry) Payload() []byte {
	if e.IsBinary() {
		return e.Data
	}
	return []byte(e.Text)
}

func (e Entry) clone() Entry {
	e.Data = slices.Clone(e.Data)
	return e
}

// Aggregator はキーごとの最新結果を、最初に登録された順序のまま保持します。
// 書き込みはバッチのループ1本から行われ、UI などの読み手は Entries でコピーを受け取ります。
type Aggregator struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]Entry
}

// NewAggregator は空の Aggregator を生成します。
func NewAggregator() *Aggregator {
	return &Aggregator{entries: make(map[string]Entry)}
}

// Upsert は key の結果を登録します。既存のキーは位置を変えずに置き換え、新しいキーは末尾に追加します。
func (a *Aggregator) Upsert(key string, e Entry) {
	e.Key = key
	e = e.clone()

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.entries[key]; !ok {
		a.order = append(a.order, key)
	}
	a.entries[key] = e
}

// Get は key の結果を返します。
func (a *Aggregator) Get(key string) (Entry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	e, ok := a.entries[key]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Entries は全結果を登録順に返します。
func (a *Aggregator) Entries() []Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Entry, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, a.entries[key].clone())
	}
	return out
}

// Select は keys に含まれる結果だけを登録順で返します。存在しないキーは無視されます。
func (a *Aggregator) Select(keys []string) []Entry {
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []Entry
	for _, key := range a.order {
		if _, ok := want[key]; ok {
			out = append(out, a.entries[key].clone())
		}
	}
	return out
}

// Keys は登録順のキー一覧を返します。
func (a *Aggregator) Keys() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.order)
}

// Len は登録済みの件数を返します。
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.order)
}
