package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/taskdeck/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
// IDの払い出しはtasksテーブルのシーケンスに委ねる。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// GetAll は全タスクを返す。
func (r *PostgresTaskRepo) GetAll(ctx context.Context) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, status FROM tasks`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// GetByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) GetByID(ctx context.Context, id int) (*model.Task, error) {
	t := &model.Task{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, status FROM tasks WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.Status)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by ID: %w", err)
	}

	return t, nil
}

// Create はタスクを新規作成する。ステータスはPendingに強制する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task model.Task) (*model.Task, error) {
	if strings.TrimSpace(task.Title) == "" {
		return nil, model.NewValidationError("O título da tarefa é obrigatório.")
	}

	task.Status = model.StatusPending
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (title, description, status)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		task.Title, task.Description, task.Status,
	).Scan(&task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	return &task, nil
}

// Update は既存タスクを全置換する。IDが存在しない場合はタスク未検出エラーを返す。
func (r *PostgresTaskRepo) Update(ctx context.Context, task model.Task) (*model.Task, error) {
	if strings.TrimSpace(task.Title) == "" {
		return nil, model.NewValidationError("O título da tarefa é obrigatório.")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = $1, description = $2, status = $3 WHERE id = $4`,
		task.Title, task.Description, task.Status, task.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, model.NewTaskNotFoundError()
	}

	return &task, nil
}

// UpdateStatus はステータスのみを更新する。IDが存在しない場合は何もしない。
func (r *PostgresTaskRepo) UpdateStatus(ctx context.Context, id int, status model.TaskStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status = $1 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	return nil
}

// Delete は指定IDのタスクを削除する。IDが存在しない場合は何もしない。
func (r *PostgresTaskRepo) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

var _ TaskRepository = (*PostgresTaskRepo)(nil)
