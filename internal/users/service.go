package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service はユーザー検索・作成・パスワード照合をまとめたアダプターです。
type Service struct {
	repo Repository
	cost int
	now  func() time.Time
}

// NewService は Service を作成します。cost が 0 の場合は bcrypt.DefaultCost を使います。
func NewService(repo Repository, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, cost: cost, now: time.Now}
}

// NormalizeEmail は比較用にメールアドレスを正規化します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByID はIDでユーザーを検索し、パスワードを除いた情報を返します。
func (s *Service) FindByID(ctx context.Context, id string) (Identity, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Identity{}, err
	}
	return u.Identity(), nil
}

// FindByEmail はメールアドレスでユーザーを検索します。パスワード照合用にハッシュを含みます。
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

// Create はパスワードをハッシュ化してユーザーを作成します。
func (s *Service) Create(ctx context.Context, name, email, password string) (Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}
	u := User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return Identity{}, err
	}
	return u.Identity(), nil
}

// VerifyPassword はパスワードをハッシュと照合します。
func (s *Service) VerifyPassword(u User, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return fmt.Errorf("compare password: %w", err)
}
