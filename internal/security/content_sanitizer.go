// Package security はアプリケーションのセキュリティ機能を提供する。
//
// MarkupDetector はユーザー名や投稿タイトルなどのプレーンテキスト入力に
// HTMLマークアップが含まれているかを判定する。値は書き換えず、
// マークアップを含む入力はサービス層で拒否される。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// MarkupDetector はマークアップ検出機能のインターフェースを定義する。
// レコード作成前にサービス層から呼ばれる。
type MarkupDetector interface {
	// ContainsMarkup はStrictPolicyで除去される部分がrawに含まれる場合にtrueを返す。
	ContainsMarkup(raw string) bool
}

// markupDetector はMarkupDetectorの実装。
// bluemondayのStrictPolicyはスレッドセーフに共有できる。
type markupDetector struct {
	policy *bluemonday.Policy
}

// NewMarkupDetector はMarkupDetectorの新しいインスタンスを生成する。
func NewMarkupDetector() MarkupDetector {
	return &markupDetector{
		policy: bluemonday.StrictPolicy(),
	}
}

// ContainsMarkup はポリシー適用前後のテキストを比較する。
// StrictPolicyは &, <, > などをエスケープするので、比較前に元の文字へ戻す。
func (d *markupDetector) ContainsMarkup(raw string) bool {
	if raw == "" {
		return false
	}
	return html.UnescapeString(d.policy.Sanitize(raw)) != raw
}
