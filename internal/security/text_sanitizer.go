// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はユーザー入力のタスクタイトル・説明文をサニタイズし、
// ブラウザフロントエンドでの表示時にXSS攻撃が成立しないことを保証する。
// bluemondayライブラリの許可リストベースのポリシーで、HTMLタグを一切許可しない。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
// タスクの保存前にサービス層から使用される。
type TextSanitizerService interface {
	// Sanitize は入力テキストからすべてのHTMLタグを除去して返す。
	// scriptタグ、イベント属性を含むあらゆるマークアップが除去され、
	// テキストコンテンツのみが残る。前後の空白はトリムされる。
	// 保存対象はプレーンテキストのため、&や引用符などの文字は
	// HTMLエンティティに変換されず元のまま保持される。
	// 空文字列の入力には空文字列を返す。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはタグ・属性を一切許可せず、テキストのみを通過させる。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力テキストからすべてのHTMLタグを除去して返す。
// bluemondayは出力をHTMLエスケープするため、プレーンテキストとして
// 保存できるようエンティティを元の文字に戻してからトリムする。
func (s *textSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}

var _ TextSanitizerService = (*textSanitizer)(nil)
