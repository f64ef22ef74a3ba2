package domain

import (
	"errors"
	"fmt"
)

// ErrorKind はエラーの分類です。呼び出し側はこの分類でリトライ可否や表示方法を決めます。
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindConfiguration は必須の認証情報や設定が欠けていることを示します。修正されるまで再試行できません。
	KindConfiguration
	// KindSchemaViolation は上流の応答が期待した構造に変換できなかったことを示します。
	KindSchemaViolation
	// KindEmptyResult は上流が成功を返したものの、使える結果が含まれていなかったことを示します。
	KindEmptyResult
	// KindUpstream は通信・認証・クォータなど上流サービス側の失敗です。
	KindUpstream
	// KindSelectionLimitExceeded は選択上限を超えたことをユーザーに伝えるためのものです。
	KindSelectionLimitExceeded
	// KindValidation はリクエスト送信前に検出された入力の不備です。
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindSchemaViolation:
		return "SchemaViolation"
	case KindEmptyResult:
		return "EmptyResult"
	case KindUpstream:
		return "UpstreamError"
	case KindSelectionLimitExceeded:
		return "SelectionLimitExceeded"
	case KindValidation:
		return "ValidationError"
	default:
		return "UnknownError"
	}
}

// errors.Is で分類を判定するためのセンチネルです。
var (
	ErrConfiguration          = &Error{Kind: KindConfiguration}
	ErrSchemaViolation        = &Error{Kind: KindSchemaViolation}
	ErrEmptyResult            = &Error{Kind: KindEmptyResult}
	ErrUpstream               = &Error{Kind: KindUpstream}
	ErrSelectionLimitExceeded = &Error{Kind: KindSelectionLimitExceeded}
	ErrValidation             = &Error{Kind: KindValidation}
)

// Error は分類付きのエラーです。Msg は利用者に表示できる短い説明、Err は元のエラーを保持します。
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

// NewError は分類付きエラーを生成します。
func NewError(kind ErrorKind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	var s string
	if e.Op != "" {
		s = e.Op + ": "
	}
	s += e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is は分類が一致すれば true を返します。errors.Is(err, domain.ErrUpstream) のように使います。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// KindOf はエラーチェーンから最初に見つかった分類を返します。
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsItemFailure は、バッチ処理でアイテム単位の失敗として扱うべきエラーかどうかを判定します。
// 設定エラーはアイテムではなく実行全体の問題なので false になります。
func IsItemFailure(err error) bool {
	switch KindOf(err) {
	case KindSchemaViolation, KindEmptyResult, KindUpstream, KindUnknown:
		return true
	default:
		return false
	}
}

// Validationf は ValidationError を生成するヘルパーです。
func Validationf(op, format string, args ...any) error {
	return NewError(KindValidation, op, fmt.Sprintf(format, args...), nil)
}
