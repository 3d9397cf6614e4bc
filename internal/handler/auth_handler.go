package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/taskdeck/internal/model"
)

// UserServiceInterface はユーザー登録ハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Register は入力値を検証し、新しいユーザーを作成する。
	Register(ctx context.Context, email, name, password string) (*model.User, error)
}

// CredentialServiceInterface はログインハンドラーが必要とするサービスインターフェース。
type CredentialServiceInterface interface {
	// ValidateUser は資格情報を検証する。不正な資格情報には(nil, nil)を返す。
	ValidateUser(ctx context.Context, email, password string) (*model.User, error)
	// GenerateToken はユーザーのBearerトークンを発行する。
	GenerateToken(user *model.User) (string, error)
}

// AuthHandler はユーザー登録とログインのHTTPハンドラー。
type AuthHandler struct {
	userService UserServiceInterface
	credentials CredentialServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(userService UserServiceInterface, credentials CredentialServiceInterface) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		credentials: credentials,
	}
}

// --- リクエスト・レスポンス型 ---

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// registerResponse はユーザー登録のレスポンス。
// パスワードハッシュは決して含めない。
type registerResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Register は新しいユーザーを登録する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("O corpo da requisição é inválido."))
		return
	}

	user, err := h.userService.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, registerResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	})
}

// Login は資格情報を検証し、Bearerトークンを発行する。
// 不正な資格情報には詳細を明かさず一律401を返す。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("O corpo da requisição é inválido."))
		return
	}

	user, err := h.credentials.ValidateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	token, err := h.credentials.GenerateToken(user)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, loginResponse{AccessToken: token})
}
