// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// StatusとMessagesはそのままエラーレスポンスボディ（{status, messages}）になる。
// Codeはハンドラー層でHTTPステータスコードへのマッピングに使用する内部識別子。
type APIError struct {
	Code     string   // エラーコード
	Status   string   // レスポンスに表示するステータス文言
	Messages []string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, strings.Join(e.Messages, "; "))
}

// 定義済みエラーコード
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeTaskNotFound   = "TASK_NOT_FOUND"
	ErrCodeDuplicateEmail = "DUPLICATE_EMAIL"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeAuthRequired   = "AUTH_REQUIRED"
	ErrCodeRateLimited    = "RATE_LIMITED"
)

// エラーレスポンスのステータス文言。
// リファレンス実装のAPI互換性を保つためポルトガル語表記を維持する。
const (
	StatusValidationError = "Erro de Validação"
	StatusNotFound        = "Recurso Não Encontrado"
	StatusUnauthorized    = "Credenciais Inválidas"
	StatusAuthRequired    = "Não Autorizado"
	StatusRateLimited     = "Limite de Requisições Excedido"
	StatusInternalError   = "Erro Interno"
)

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(messages ...string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Status:   StatusValidationError,
		Messages: messages,
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Status:   StatusNotFound,
		Messages: []string{"A tarefa com o ID fornecido não existe."},
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Status:   StatusValidationError,
		Messages: []string{"Email já está em uso."},
	}
}

// NewUnauthorizedError は認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Status:   StatusUnauthorized,
		Messages: []string{"Credenciais inválidas."},
	}
}

// NewAuthRequiredError はBearerトークン未提示・無効時のエラーを生成する。
func NewAuthRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthRequired,
		Status:   StatusAuthRequired,
		Messages: []string{"Autenticação necessária."},
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Status:   StatusRateLimited,
		Messages: []string{"Muitas requisições. Tente novamente mais tarde."},
	}
}
