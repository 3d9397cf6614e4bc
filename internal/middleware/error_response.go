package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/taskdeck/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// statusは人間可読なステータス文言、messagesは詳細メッセージの配列。
type ErrorResponseBody struct {
	Status   string   `json:"status"`
	Messages []string `json:"messages"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Status:   apiErr.Status,
		Messages: apiErr.Messages,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Status:   model.StatusInternalError,
		Messages: []string{"Ocorreu um erro interno. Tente novamente mais tarde."},
	})
}
