package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/taskdeck/internal/model"
)

// --- モック定義 ---

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	registerFn func(ctx context.Context, email, name, password string) (*model.User, error)
}

func (m *mockUserService) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, name, password)
	}
	return nil, nil
}

// mockCredentialService はCredentialServiceInterfaceのモック実装。
type mockCredentialService struct {
	validateUserFn  func(ctx context.Context, email, password string) (*model.User, error)
	generateTokenFn func(user *model.User) (string, error)
}

func (m *mockCredentialService) ValidateUser(ctx context.Context, email, password string) (*model.User, error) {
	if m.validateUserFn != nil {
		return m.validateUserFn(ctx, email, password)
	}
	return nil, nil
}

func (m *mockCredentialService) GenerateToken(user *model.User) (string, error) {
	if m.generateTokenFn != nil {
		return m.generateTokenFn(user)
	}
	return "token", nil
}

var (
	_ UserServiceInterface       = (*mockUserService)(nil)
	_ CredentialServiceInterface = (*mockCredentialService)(nil)
)

// --- POST /auth/register テスト ---

func TestAuthHandler_Register_Success(t *testing.T) {
	svc := &mockUserService{
		registerFn: func(ctx context.Context, email, name, password string) (*model.User, error) {
			if email != "alice@example.com" {
				t.Errorf("email = %q", email)
			}
			if password != "password123" {
				t.Errorf("password = %q", password)
			}
			return &model.User{ID: "u-1", Email: email, Name: name, PasswordHash: "$2a$..."}, nil
		},
	}
	h := NewAuthHandler(svc, &mockCredentialService{})

	body := bytes.NewBufferString(`{"email":"alice@example.com","name":"Alice","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var result map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result["id"] != "u-1" {
		t.Errorf("id = %v, want u-1", result["id"])
	}
	if result["email"] != "alice@example.com" {
		t.Errorf("email = %v", result["email"])
	}
	// パスワードハッシュはレスポンスに含めない
	if _, ok := result["password_hash"]; ok {
		t.Error("response should not contain password_hash")
	}
}

func TestAuthHandler_Register_ValidationErrors_Returns400(t *testing.T) {
	svc := &mockUserService{
		registerFn: func(ctx context.Context, email, name, password string) (*model.User, error) {
			return nil, model.NewValidationError(
				"O email informado é inválido.",
				"A senha deve ter no mínimo 8 caracteres.",
			)
		},
	}
	h := NewAuthHandler(svc, &mockCredentialService{})

	body := bytes.NewBufferString(`{"email":"bad","name":"Alice","password":"short"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if errBody := decodeErrorBody(t, w); len(errBody.Messages) != 2 {
		t.Errorf("len(Messages) = %d, want 2", len(errBody.Messages))
	}
}

func TestAuthHandler_Register_DuplicateEmail_Returns400(t *testing.T) {
	svc := &mockUserService{
		registerFn: func(ctx context.Context, email, name, password string) (*model.User, error) {
			return nil, model.NewDuplicateEmailError()
		},
	}
	h := NewAuthHandler(svc, &mockCredentialService{})

	body := bytes.NewBufferString(`{"email":"alice@example.com","name":"Alice","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAuthHandler_Register_MalformedJSON_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockUserService{}, &mockCredentialService{})

	body := bytes.NewBufferString(`{{`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	w := httptest.NewRecorder()
	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- POST /auth/login テスト ---

func TestAuthHandler_Login_Success_ReturnsAccessToken(t *testing.T) {
	creds := &mockCredentialService{
		validateUserFn: func(ctx context.Context, email, password string) (*model.User, error) {
			return &model.User{ID: "u-1", Email: email, Name: "Alice"}, nil
		},
		generateTokenFn: func(user *model.User) (string, error) {
			if user.ID != "u-1" {
				t.Errorf("user.ID = %q, want u-1", user.ID)
			}
			return "header.payload.signature", nil
		},
	}
	h := NewAuthHandler(&mockUserService{}, creds)

	body := bytes.NewBufferString(`{"email":"alice@example.com","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var result map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result["access_token"] != "header.payload.signature" {
		t.Errorf("access_token = %v", result["access_token"])
	}
}

func TestAuthHandler_Login_InvalidCredentials_Returns401(t *testing.T) {
	creds := &mockCredentialService{
		validateUserFn: func(ctx context.Context, email, password string) (*model.User, error) {
			return nil, nil
		},
		generateTokenFn: func(user *model.User) (string, error) {
			t.Error("token should not be generated for invalid credentials")
			return "", nil
		},
	}
	h := NewAuthHandler(&mockUserService{}, creds)

	body := bytes.NewBufferString(`{"email":"alice@example.com","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if errBody := decodeErrorBody(t, w); errBody.Status != model.StatusUnauthorized {
		t.Errorf("body.Status = %q, want %q", errBody.Status, model.StatusUnauthorized)
	}
}

func TestAuthHandler_Login_MalformedJSON_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockUserService{}, &mockCredentialService{})

	body := bytes.NewBufferString(`not json`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
