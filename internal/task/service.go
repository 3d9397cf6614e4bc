// Package task はタスク管理のドメインロジックを提供する。
package task

import (
	"context"
	"log/slog"

	"github.com/hitoshi/taskdeck/internal/model"
	"github.com/hitoshi/taskdeck/internal/repository"
)

// TextSanitizer はユーザー入力テキストのサニタイズインターフェース。
// security.TextSanitizerServiceの部分集合として定義する。
type TextSanitizer interface {
	Sanitize(raw string) string
}

// MetricsRecorder はタスク操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordTaskCreated()
	RecordTaskDeleted()
}

// Service はタスク管理のサービス層。
// リポジトリへの薄い委譲に加え、変更系操作の存在チェックと
// 保存前のテキストサニタイズを行う。
//
// UpdateStatusとDeleteはリポジトリ層では存在しないIDに対して何もしないが、
// サービス層では事前に存在確認を行い、タスク未検出エラーを返す。
// HTTP層はこれを404に変換する。
type Service struct {
	repo      repository.TaskRepository
	sanitizer TextSanitizer
	metrics   MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// sanitizerとmetricsはnilを許容する（テスト用）。
func NewService(repo repository.TaskRepository, sanitizer TextSanitizer, metrics MetricsRecorder) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// GetAll は全タスクを返す。
func (s *Service) GetAll(ctx context.Context) ([]model.Task, error) {
	return s.repo.GetAll(ctx)
}

// GetByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (s *Service) GetByID(ctx context.Context, id int) (*model.Task, error) {
	return s.repo.GetByID(ctx, id)
}

// Create はタスクを新規作成する。
// タイトルと説明は保存前にサニタイズされる。IDとステータスはストアが払い出す。
func (s *Service) Create(ctx context.Context, title, description string) (*model.Task, error) {
	created, err := s.repo.Create(ctx, model.Task{
		Title:       s.sanitize(title),
		Description: s.sanitize(description),
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTaskCreated()
	}
	slog.Info("task created",
		slog.Int("task_id", created.ID),
		slog.String("status", string(created.Status)),
	)
	return created, nil
}

// Update は既存タスクのタイトルと説明を更新する。
// ステータスは保存済みの値を維持する。IDが存在しない場合はタスク未検出エラーを返す。
func (s *Service) Update(ctx context.Context, id int, title, description string) (*model.Task, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, model.NewTaskNotFoundError()
	}

	return s.repo.Update(ctx, model.Task{
		ID:          id,
		Title:       s.sanitize(title),
		Description: s.sanitize(description),
		Status:      existing.Status,
	})
}

// UpdateStatus はタスクのステータスのみを更新し、更新後のタスクを返す。
// IDが存在しない場合はタスク未検出エラーを返す。
// 返却値は事前取得したタスクに新しいステータスを反映して構築するため、
// 更新直後に他のリクエストが同タスクを削除していてもnilにはならない。
func (s *Service) UpdateStatus(ctx context.Context, id int, status model.TaskStatus) (*model.Task, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, model.NewTaskNotFoundError()
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	updated := *existing
	updated.Status = status
	return &updated, nil
}

// Delete は指定IDのタスクを削除する。
// IDが存在しない場合はタスク未検出エラーを返す。
func (s *Service) Delete(ctx context.Context, id int) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return model.NewTaskNotFoundError()
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordTaskDeleted()
	}
	slog.Info("task deleted", slog.Int("task_id", id))
	return nil
}

// sanitize はサニタイザー設定時のみテキストをサニタイズする。
func (s *Service) sanitize(text string) string {
	if s.sanitizer == nil {
		return text
	}
	return s.sanitizer.Sanitize(text)
}
