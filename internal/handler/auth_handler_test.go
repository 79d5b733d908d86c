package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/bookman/internal/model"
)

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFn func(ctx context.Context, username, email, password string) (*model.User, string, error)
	loginFn    func(ctx context.Context, email, password string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, username, email, password string) (*model.User, string, error) {
	return m.registerFn(ctx, username, email, password)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return m.loginFn(ctx, email, password)
}

// noopMetrics はテスト用のメトリクス実装。記録回数のみ数える。
type noopMetrics struct {
	registrations int
	loginSuccess  int
	loginFailure  int
	booksCreated  int
	booksDeleted  int
}

func (n *noopMetrics) RecordRegistration() { n.registrations++ }
func (n *noopMetrics) RecordLoginSuccess() { n.loginSuccess++ }
func (n *noopMetrics) RecordLoginFailure() { n.loginFailure++ }
func (n *noopMetrics) RecordBookCreated()  { n.booksCreated++ }
func (n *noopMetrics) RecordBookDeleted()  { n.booksDeleted++ }

// parseAPIErrorResponse はエラーレスポンスのボディを解析するヘルパー。
func parseAPIErrorResponse(t *testing.T, body *bytes.Buffer) apiErrorResponse {
	t.Helper()
	var resp apiErrorResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	service := &mockAuthService{
		registerFn: func(ctx context.Context, username, email, password string) (*model.User, string, error) {
			if username != "alice" || email != "alice@example.com" || password != "password" {
				t.Errorf("Register() got (%q, %q, %q)", username, email, password)
			}
			return &model.User{
				ID:        "user-1",
				Username:  username,
				Email:     email,
				CreatedAt: now,
			}, "issued-token", nil
		},
	}
	m := &noopMetrics{}
	h := NewAuthHandler(service, m)

	body := strings.NewReader(`{"username":"alice","email":"alice@example.com","password":"password"}`)
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var resp registerResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token != "issued-token" {
		t.Errorf("token = %q, want %q", resp.Token, "issued-token")
	}
	if resp.User.ID != "user-1" || resp.User.Username != "alice" {
		t.Errorf("user = %+v", resp.User)
	}
	if m.registrations != 1 {
		t.Errorf("registrations metric = %d, want 1", m.registrations)
	}

	// パスワードハッシュがレスポンスに含まれないこと
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("response should not contain password_hash")
	}
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	service := &mockAuthService{
		registerFn: func(ctx context.Context, username, email, password string) (*model.User, string, error) {
			t.Error("Register() should not be called")
			return nil, "", nil
		},
	}
	h := NewAuthHandler(service, &noopMetrics{})

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	resp := parseAPIErrorResponse(t, rec.Body)
	if resp.Code != model.ErrCodeInvalidRequest {
		t.Errorf("error code = %q, want %q", resp.Code, model.ErrCodeInvalidRequest)
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	service := &mockAuthService{
		registerFn: func(ctx context.Context, username, email, password string) (*model.User, string, error) {
			return nil, "", model.NewDuplicateEmailError()
		},
	}
	m := &noopMetrics{}
	h := NewAuthHandler(service, m)

	body := strings.NewReader(`{"username":"alice","email":"alice@example.com","password":"password"}`)
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	resp := parseAPIErrorResponse(t, rec.Body)
	if resp.Code != model.ErrCodeDuplicateEmail {
		t.Errorf("error code = %q, want %q", resp.Code, model.ErrCodeDuplicateEmail)
	}
	if m.registrations != 0 {
		t.Errorf("registrations metric = %d, want 0", m.registrations)
	}
}

func TestAuthHandler_Register_ValidationError(t *testing.T) {
	service := &mockAuthService{
		registerFn: func(ctx context.Context, username, email, password string) (*model.User, string, error) {
			return nil, "", model.NewValidationError("email", "password")
		},
	}
	h := NewAuthHandler(service, &noopMetrics{})

	body := strings.NewReader(`{"username":"alice","email":"bad","password":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	resp := parseAPIErrorResponse(t, rec.Body)
	if resp.Code != model.ErrCodeValidation {
		t.Errorf("error code = %q, want %q", resp.Code, model.ErrCodeValidation)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, error) {
			if email != "alice@example.com" || password != "password" {
				t.Errorf("Login() got (%q, %q)", email, password)
			}
			return "login-token", nil
		},
	}
	m := &noopMetrics{}
	h := NewAuthHandler(service, m)

	body := strings.NewReader(`{"email":"alice@example.com","password":"password"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp loginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token != "login-token" {
		t.Errorf("token = %q, want %q", resp.Token, "login-token")
	}
	if m.loginSuccess != 1 || m.loginFailure != 0 {
		t.Errorf("login metrics = (%d, %d), want (1, 0)", m.loginSuccess, m.loginFailure)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, error) {
			return "", model.NewInvalidCredentialsError()
		},
	}
	m := &noopMetrics{}
	h := NewAuthHandler(service, m)

	body := strings.NewReader(`{"email":"alice@example.com","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	resp := parseAPIErrorResponse(t, rec.Body)
	if resp.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("error code = %q, want %q", resp.Code, model.ErrCodeInvalidCredentials)
	}
	if m.loginFailure != 1 {
		t.Errorf("loginFailure metric = %d, want 1", m.loginFailure)
	}
}

func TestAuthHandler_Login_InvalidJSON(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, error) {
			t.Error("Login() should not be called")
			return "", nil
		},
	}
	h := NewAuthHandler(service, &noopMetrics{})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
