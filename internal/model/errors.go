// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, not_found, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodePostNotFound     = "POST_NOT_FOUND"
	ErrCodePostBoxNotFound  = "POST_BOX_NOT_FOUND"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeInvalidReference = "INVALID_REFERENCE"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
)

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %d", id),
		Category: "not_found",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewPostNotFoundError は投稿が見つからない場合のエラーを生成する。
func NewPostNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された投稿が見つかりません: %d", id),
		Category: "not_found",
		Action:   "投稿IDを確認してください。",
	}
}

// NewPostBoxNotFoundError はポストボックスが見つからない場合のエラーを生成する。
func NewPostBoxNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodePostBoxNotFound,
		Message:  fmt.Sprintf("指定されたポストボックスが見つかりません: %d", id),
		Category: "not_found",
		Action:   "ポストボックスIDを確認してください。",
	}
}

// NewInvalidRequestError はリクエストの形式が不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidReferenceError は存在しないレコードを参照した場合のエラーを生成する。
func NewInvalidReferenceError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidReference,
		Message:  "参照先のレコードが存在しません。",
		Category: "validation",
		Action:   "user_id、box_idに既存のIDを指定してください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// IsNotFound はAPIErrorが未検出系のエラーかを返す。
func (e *APIError) IsNotFound() bool {
	switch e.Code {
	case ErrCodeUserNotFound, ErrCodePostNotFound, ErrCodePostBoxNotFound:
		return true
	}
	return false
}
