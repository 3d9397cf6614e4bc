// Package user はユーザー登録のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/taskdeck/internal/model"
	"github.com/hitoshi/taskdeck/internal/repository"
)

// 登録入力の制約。リファレンス実装のDTOルールに合わせる。
const (
	nameMinLength     = 2
	nameMaxLength     = 50
	passwordMinLength = 8
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Service はユーザー登録のサービス層。
// 入力検証、重複チェック、パスワードのbcryptハッシュ化を担う。
type Service struct {
	repo repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo}
}

// Register は新規ユーザーを登録する。
// 平文パスワードはbcryptでハッシュ化され、保持されない。
// メールアドレス重複時はメールアドレス重複エラーを返す。
func (s *Service) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	if msgs := validateRegistration(email, name, password); len(msgs) > 0 {
		return nil, model.NewValidationError(msgs...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         model.DefaultUserRole,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

// GetByEmail はメールアドレスでユーザーを検索する（大文字小文字を区別しない）。
// 見つからない場合はnilを返す。
func (s *Service) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// GetAll は全ユーザーを返す。
func (s *Service) GetAll(ctx context.Context) ([]model.User, error) {
	return s.repo.GetAll(ctx)
}

// validateRegistration は登録入力を検証し、フィールドエラーのメッセージ一覧を返す。
// 問題がなければ空スライスを返す。
func validateRegistration(email, name, password string) []string {
	var msgs []string

	switch {
	case strings.TrimSpace(email) == "":
		msgs = append(msgs, "O email é obrigatório.")
	case !emailPattern.MatchString(email):
		msgs = append(msgs, "O email informado é inválido.")
	}

	nameLen := utf8.RuneCountInString(strings.TrimSpace(name))
	switch {
	case nameLen == 0:
		msgs = append(msgs, "O nome é obrigatório.")
	case nameLen < nameMinLength || nameLen > nameMaxLength:
		msgs = append(msgs, fmt.Sprintf("O nome deve ter entre %d e %d caracteres.", nameMinLength, nameMaxLength))
	}

	switch {
	case password == "":
		msgs = append(msgs, "A senha é obrigatória.")
	case len(password) < passwordMinLength:
		msgs = append(msgs, fmt.Sprintf("A senha deve ter no mínimo %d caracteres.", passwordMinLength))
	}

	return msgs
}
