// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskdeck/internal/model"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	// GetAll は全タスクの一覧を返す。
	GetAll(ctx context.Context) ([]model.Task, error)
	// GetByID はタスクを返す。存在しない場合はnilを返す。
	GetByID(ctx context.Context, id int) (*model.Task, error)
	// Create は新しいタスクをPendingステータスで作成する。
	Create(ctx context.Context, title, description string) (*model.Task, error)
	// Update はタスクのタイトルと説明を更新する。ステータスは変更しない。
	Update(ctx context.Context, id int, title, description string) (*model.Task, error)
	// UpdateStatus はタスクのステータスを更新する。
	UpdateStatus(ctx context.Context, id int, status model.TaskStatus) (*model.Task, error)
	// Delete はタスクを削除する。
	Delete(ctx context.Context, id int) error
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// taskRequest はタスク作成・更新リクエストのボディ。
type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// taskStatusRequest はステータス更新リクエストのボディ。
type taskStatusRequest struct {
	Status string `json:"status"`
}

// taskResponse はタスクのレスポンス。
// status_labelはステータスの表示名で、クライアントがそのまま表示できる。
type taskResponse struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
}

// apiErrorResponse はAPIエラーレスポンスのボディ。
type apiErrorResponse struct {
	Status   string   `json:"status"`
	Messages []string `json:"messages"`
}

// toTaskResponse はドメインのTaskをレスポンス型に変換する。
func toTaskResponse(task model.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		StatusLabel: task.Status.DisplayName(),
	}
}

// ListTasks は全タスクの一覧を取得する。
// GET /tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.GetAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		results[i] = toTaskResponse(task)
	}

	writeJSONResponse(w, http.StatusOK, results)
}

// GetTask はタスクを取得する。
// GET /tasks/:id
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if task == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewTaskNotFoundError())
		return
	}

	writeJSONResponse(w, http.StatusOK, toTaskResponse(*task))
}

// CreateTask は新しいタスクを作成する。ステータスは常にPendingで開始する。
// POST /tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("O corpo da requisição é inválido."))
		return
	}

	task, err := h.service.Create(r.Context(), req.Title, req.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toTaskResponse(*task))
}

// UpdateTask はタスクのタイトルと説明を更新する。ステータスは保持される。
// PUT /tasks/:id
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("O corpo da requisição é inválido."))
		return
	}

	task, err := h.service.Update(r.Context(), id, req.Title, req.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toTaskResponse(*task))
}

// UpdateTaskStatus はタスクのステータスを更新する。
// PUT /tasks/:id/status
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	var req taskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("O corpo da requisição é inválido."))
		return
	}

	status, ok := model.ParseTaskStatus(req.Status)
	if !ok {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("O status informado é inválido."))
		return
	}

	task, err := h.service.UpdateStatus(r.Context(), id, status)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toTaskResponse(*task))
}

// DeleteTask はタスクを削除する。
// DELETE /tasks/:id
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseTaskID はパスパラメータのタスクIDを整数として解釈する。
// 数値でないIDはリソース不在として404を返す。
func parseTaskID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewTaskNotFoundError())
		return 0, false
	}
	return id, true
}

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Status:   apiErr.Status,
		Messages: apiErr.Messages,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Status:   model.StatusInternalError,
		Messages: []string{"Ocorreu um erro interno. Tente novamente mais tarde."},
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeDuplicateEmail:
		return http.StatusBadRequest
	case model.ErrCodeTaskNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorized, model.ErrCodeAuthRequired:
		return http.StatusUnauthorized
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
