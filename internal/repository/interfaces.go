// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/taskdeck/internal/model"
)

// TaskRepository はタスクデータの永続化インターフェース。
// メモリ、JSONファイル、PostgreSQLの各バックエンドが同一の契約を実装する。
type TaskRepository interface {
	// GetAll は全タスクを返す。並び順は保証されない。
	GetAll(ctx context.Context) ([]model.Task, error)

	// GetByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	GetByID(ctx context.Context, id int) (*model.Task, error)

	// Create はタスクを新規作成する。
	// タイトルが空白のみの場合はバリデーションエラーを返す。
	// 成功時はID払い出し（単調増加）、ステータスのPending強制、
	// 説明の空文字正規化を行った保存後のタスクを返す。
	// 呼び出し側が指定したIDとステータスは無視される。
	Create(ctx context.Context, task model.Task) (*model.Task, error)

	// Update は既存タスクのタイトル・説明・ステータスを全置換する。
	// タイトルが空白のみの場合はバリデーションエラー、
	// IDが存在しない場合はタスク未検出エラーを返す。
	Update(ctx context.Context, task model.Task) (*model.Task, error)

	// UpdateStatus はステータスフィールドのみを更新する。
	// IDが存在しない場合はエラーにせず何もしない。
	UpdateStatus(ctx context.Context, id int, status model.TaskStatus) error

	// Delete は指定IDのタスクを削除する。
	// IDが存在しない場合はエラーにせず何もしない。
	Delete(ctx context.Context, id int) error
}

// UserRepository はユーザーデータの永続化インターフェース。
// パスワードのハッシュ化はサービス層の責務であり、
// リポジトリはハッシュ済みのUserのみを受け取る。
type UserRepository interface {
	// FindByEmail はメールアドレスでユーザーを検索する（大文字小文字を区別しない）。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// 同一メールアドレス（大文字小文字を区別しない）が登録済みの場合は
	// メールアドレス重複エラーを返す。
	Create(ctx context.Context, user *model.User) error

	// GetAll は全ユーザーを返す。
	GetAll(ctx context.Context) ([]model.User, error)
}
