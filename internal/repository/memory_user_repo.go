package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/hitoshi/taskdeck/internal/model"
)

// MemoryUserRepo はプロセス内メモリのユーザーリポジトリ。
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users []model.User
}

// NewMemoryUserRepo は空のMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{}
}

// FindByEmail はメールアドレスでユーザーを検索する（大文字小文字を区別しない）。
// 見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

// Create はユーザーを作成する。メールアドレス重複時はエラーを返す。
func (r *MemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return model.NewDuplicateEmailError()
		}
	}

	r.users = append(r.users, *user)
	return nil
}

// GetAll は全ユーザーを登録順で返す。
func (r *MemoryUserRepo) GetAll(ctx context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, len(r.users))
	copy(users, r.users)
	return users, nil
}

var _ UserRepository = (*MemoryUserRepo)(nil)
