package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/bookman/internal/model"
	"github.com/hitoshi/bookman/internal/repository"
)

// minPasswordLength は登録時に要求するパスワードの最小文字数。
const minPasswordLength = 6

// Service はユーザー登録・ログインのサービス層。
type Service struct {
	userRepo   repository.UserRepository
	tokens     *TokenManager
	bcryptCost int
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, tokens *TokenManager, bcryptCost int) *Service {
	return &Service{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Register は新規ユーザーを登録し、作成したユーザーとセッショントークンを返す。
// username非空、emailは構文的に有効、passwordは6文字以上を要求する。
// メールアドレスが登録済みの場合はDUPLICATE_EMAILを返す。
// パスワードはbcryptハッシュのみを保存し、平文は保持しない。
func (s *Service) Register(ctx context.Context, username, email, password string) (*model.User, string, error) {
	var invalid []string
	if username == "" {
		invalid = append(invalid, "username")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		invalid = append(invalid, "email")
	}
	if len(password) < minPasswordLength {
		invalid = append(invalid, "password")
	}
	if len(invalid) > 0 {
		return nil, "", model.NewValidationError(invalid...)
	}

	// 事前チェック。同時登録の競合はリポジトリの一意制約で最終的に検出される。
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", model.NewDuplicateEmailError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
	)

	return user, token, nil
}

// Login はメールアドレスとパスワードを検証し、セッショントークンを発行する。
// メールアドレス未登録とパスワード不一致は同一のINVALID_CREDENTIALSを返す
// （どちらが原因かを外部に漏らさない）。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return "", model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}
