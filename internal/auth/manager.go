// Package auth はトークン認証とページ遷移（リダイレクト）の制御を提供します。
package auth

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/creator-dashboard/internal/users"
)

const (
	// TokenCookieName は認証トークンを保持するクッキー名です。
	TokenCookieName = "token"

	// ContextUserKey は、ハンドラー間でログイン済みユーザーを共有するためのキーです。
	ContextUserKey = "auth.user"
)

// リダイレクト先
const (
	PathIndex     = "/index"
	PathLogin     = "/login"
	PathSignup    = "/signup"
	PathDashboard = "/dashboard"
)

// TokenCodec はトークンの発行と検証を行います。
type TokenCodec interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

// CredentialStore はユーザー検索・作成・パスワード照合を行います。
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (users.Identity, error)
	FindByEmail(ctx context.Context, email string) (users.User, error)
	Create(ctx context.Context, name, email, password string) (users.Identity, error)
	VerifyPassword(user users.User, password string) error
}

// RenderFunc はテンプレート名と認証済みユーザーからページを描画します。
type RenderFunc func(c *gin.Context, name string, user *users.Identity)

// Options は Manager の依存関係です。
type Options struct {
	Codec  TokenCodec
	Users  CredentialStore
	Render RenderFunc
	// Secure は本番モードで true にし、トークンクッキーを HTTPS 限定にします。
	Secure bool
	Logger *log.Logger
}

// Manager は認証ガードと認証フローをまとめた構造体です。
type Manager struct {
	codec  TokenCodec
	users  CredentialStore
	render RenderFunc
	secure bool
	logger *log.Logger
}

// NewManager は認証マネージャーを作成します。
func NewManager(opts Options) (*Manager, error) {
	if opts.Codec == nil {
		return nil, errors.New("token codec is nil")
	}
	if opts.Users == nil {
		return nil, errors.New("credential store is nil")
	}
	if opts.Render == nil {
		return nil, errors.New("render func is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		codec:  opts.Codec,
		users:  opts.Users,
		render: opts.Render,
		secure: opts.Secure,
		logger: logger,
	}, nil
}

// CurrentUser は RequireLogin が紐づけたユーザーを返します。
func CurrentUser(c *gin.Context) (users.Identity, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return users.Identity{}, false
	}
	identity, ok := v.(users.Identity)
	return identity, ok
}

func (m *Manager) setTokenCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
	})
}

func (m *Manager) clearTokenCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
	})
}

func redirect(c *gin.Context, path string) {
	c.Redirect(http.StatusFound, path)
}
