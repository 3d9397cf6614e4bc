package handler

import (
	"context"
	"net/http"
)

// HealthChecker はストアの疎通確認インターフェース。
// インメモリストアなど確認対象がない場合はnilを許容する。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler はHealthHandlerを生成する。checkerはnilを許容する。
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Healthz はサービスの稼働状態を返す。
// ストアの疎通確認に失敗した場合は503を返す。
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		if err := h.checker.Ping(r.Context()); err != nil {
			writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
