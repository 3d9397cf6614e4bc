package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/hitoshi/taskdeck/internal/model"
)

// MemoryTaskRepo はプロセス内メモリのタスクリポジトリ。
// マップとID採番カウンタをミューテックスで保護し、並行アクセスに安全。
type MemoryTaskRepo struct {
	mu     sync.RWMutex
	tasks  map[int]model.Task
	nextID int
}

// NewMemoryTaskRepo は空のMemoryTaskRepoを生成する。
func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{
		tasks:  make(map[int]model.Task),
		nextID: 1,
	}
}

// GetAll は全タスクを返す。マップ走査のため並び順は保証されない。
func (r *MemoryTaskRepo) GetAll(ctx context.Context) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// GetByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *MemoryTaskRepo) GetByID(ctx context.Context, id int) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// Create はタスクを新規作成する。
// IDは採番カウンタから払い出し、ステータスはPendingに強制する。
func (r *MemoryTaskRepo) Create(ctx context.Context, task model.Task) (*model.Task, error) {
	if strings.TrimSpace(task.Title) == "" {
		return nil, model.NewValidationError("O título da tarefa é obrigatório.")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task.ID = r.nextID
	r.nextID++
	task.Status = model.StatusPending
	r.tasks[task.ID] = task

	return &task, nil
}

// Update は既存タスクを全置換する。
func (r *MemoryTaskRepo) Update(ctx context.Context, task model.Task) (*model.Task, error) {
	if strings.TrimSpace(task.Title) == "" {
		return nil, model.NewValidationError("O título da tarefa é obrigatório.")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.ID]; !ok {
		return nil, model.NewTaskNotFoundError()
	}

	r.tasks[task.ID] = task
	return &task, nil
}

// UpdateStatus はステータスのみを更新する。IDが存在しない場合は何もしない。
func (r *MemoryTaskRepo) UpdateStatus(ctx context.Context, id int, status model.TaskStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil
	}
	t.Status = status
	r.tasks[id] = t
	return nil
}

// Delete は指定IDのタスクを削除する。IDが存在しない場合は何もしない。
func (r *MemoryTaskRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tasks, id)
	return nil
}

var _ TaskRepository = (*MemoryTaskRepo)(nil)
