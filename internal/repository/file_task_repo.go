package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/hitoshi/taskdeck/internal/model"
)

// FileTaskRepo はJSONファイルに永続化するタスクリポジトリ。
// 構築時にファイルから全タスクを読み込み、変更操作のたびに
// 配列全体をファイルに書き戻す。追記ログではなく全書き換えであり、
// 部分書き込みからの復旧は保証しない。
type FileTaskRepo struct {
	mu     sync.RWMutex
	path   string
	tasks  []model.Task
	nextID int
}

// NewFileTaskRepo は指定パスのJSONファイルからタスクを読み込んで
// FileTaskRepoを生成する。ファイルが存在しない場合は空の状態で開始する。
func NewFileTaskRepo(path string) (*FileTaskRepo, error) {
	r := &FileTaskRepo{
		path:   path,
		nextID: 1,
	}

	if err := r.load(); err != nil {
		return nil, err
	}

	for _, t := range r.tasks {
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
	}

	return r, nil
}

// load はファイルからタスク配列を読み込む。
// ファイルが存在しない、または空の場合は空配列として扱う。
func (r *FileTaskRepo) load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.tasks = []model.Task{}
			return nil
		}
		return fmt.Errorf("failed to read tasks file: %w", err)
	}

	if len(data) == 0 {
		r.tasks = []model.Task{}
		return nil
	}

	if err := json.Unmarshal(data, &r.tasks); err != nil {
		return fmt.Errorf("failed to parse tasks file: %w", err)
	}
	return nil
}

// save はタスク配列全体をファイルに書き戻す。呼び出し側がロックを保持すること。
func (r *FileTaskRepo) save() error {
	data, err := json.MarshalIndent(r.tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize tasks: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write tasks file: %w", err)
	}
	return nil
}

// GetAll は全タスクを返す。
func (r *FileTaskRepo) GetAll(ctx context.Context) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.Task, len(r.tasks))
	copy(tasks, r.tasks)
	return tasks, nil
}

// GetByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *FileTaskRepo) GetByID(ctx context.Context, id int) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		t := r.tasks[i]
		return &t, nil
	}
	return nil, nil
}

// Create はタスクを新規作成し、ファイルへ書き戻す。
func (r *FileTaskRepo) Create(ctx context.Context, task model.Task) (*model.Task, error) {
	if strings.TrimSpace(task.Title) == "" {
		return nil, model.NewValidationError("O título da tarefa é obrigatório.")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task.ID = r.nextID
	r.nextID++
	task.Status = model.StatusPending
	r.tasks = append(r.tasks, task)

	if err := r.save(); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update は既存タスクを全置換し、ファイルへ書き戻す。
func (r *FileTaskRepo) Update(ctx context.Context, task model.Task) (*model.Task, error) {
	if strings.TrimSpace(task.Title) == "" {
		return nil, model.NewValidationError("O título da tarefa é obrigatório.")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(task.ID)
	if i < 0 {
		return nil, model.NewTaskNotFoundError()
	}

	r.tasks[i] = task
	if err := r.save(); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateStatus はステータスのみを更新し、ファイルへ書き戻す。
// IDが存在しない場合は何もしない。
func (r *FileTaskRepo) UpdateStatus(ctx context.Context, id int, status model.TaskStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil
	}

	r.tasks[i].Status = status
	return r.save()
}

// Delete は指定IDのタスクを削除し、ファイルへ書き戻す。
// IDが存在しない場合は何もしない。
func (r *FileTaskRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil
	}

	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return r.save()
}

// indexOf は指定IDのタスクの添字を返す。見つからない場合は-1。
// 呼び出し側がロックを保持すること。
func (r *FileTaskRepo) indexOf(id int) int {
	for i, t := range r.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

var _ TaskRepository = (*FileTaskRepo)(nil)
