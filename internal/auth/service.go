// Package auth は資格情報の検証とBearerトークンの発行・検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/taskdeck/internal/model"
	"github.com/hitoshi/taskdeck/internal/repository"
)

// tokenIssuer はJWTのiss claimに設定する発行者名。
const tokenIssuer = "taskdeck"

// Claims はBearerトークンに埋め込むJWT claims。
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	Secret      string        // HMAC署名鍵。プロセス設定であり、ユーザーデータではない。
	TokenExpiry time.Duration // トークンの有効期間
}

// LoginMetrics はログイン試行のメトリクス記録インターフェース。
type LoginMetrics interface {
	RecordLogin(result string)
}

// Service は資格情報検証とトークン発行のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	secret   []byte
	expiry   time.Duration
	metrics  LoginMetrics
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(userRepo repository.UserRepository, config ServiceConfig, metrics LoginMetrics) *Service {
	return &Service{
		userRepo: userRepo,
		secret:   []byte(config.Secret),
		expiry:   config.TokenExpiry,
		metrics:  metrics,
	}
}

// ValidateUser はメールアドレスとパスワードの組を検証する。
// ユーザーが存在しない、またはパスワードが一致しない場合は(nil, nil)を返す。
// 不正な資格情報はエラーではなく不在として通知される。
func (s *Service) ValidateUser(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		slog.Info("login attempt with unknown email", slog.String("email", email))
		s.recordLogin("failure")
		return nil, nil
	}

	// bcryptの比較は定数時間で行われる
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Info("login failed with wrong password", slog.String("user_id", user.ID))
		s.recordLogin("failure")
		return nil, nil
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	s.recordLogin("success")
	return user, nil
}

// GenerateToken は署名付きBearerトークンを発行する。
// ユーザーのID・メールアドレス・名前をclaimsに含め、設定された有効期限を付与する。
func (s *Service) GenerateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyToken はBearerトークンを検証し、claimsを返す。
// 署名不一致・期限切れ・不正なフォーマットはエラーを返す。
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// recordLogin はメトリクス設定時のみログイン結果を記録する。
func (s *Service) recordLogin(result string) {
	if s.metrics != nil {
		s.metrics.RecordLogin(result)
	}
}
