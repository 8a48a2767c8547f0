package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/creator-dashboard/internal/flash"
	"github.com/yourusername/creator-dashboard/internal/users"
)

// State はリクエストごとの認証状態です。
type State int

const (
	StateNoCookie State = iota
	StateInvalidToken
	StateUserMissing
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateNoCookie:
		return "no_cookie"
	case StateInvalidToken:
		return "invalid_token"
	case StateUserMissing:
		return "user_missing"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Resolution はトークンクッキーの判定結果です。
// State が StateAuthenticated の場合のみ Identity が有効です。
type Resolution struct {
	State    State
	Identity users.Identity
	Err      error
}

// Upstream はユーザー検索がストア障害で失敗したかどうかを返します。
func (r Resolution) Upstream() bool {
	return r.State == StateUserMissing && KindOf(r.Err) == KindUpstream
}

// Resolve はクッキーの有無と値から認証状態を判定します。
func (m *Manager) Resolve(ctx context.Context, raw string, present bool) Resolution {
	if !present {
		return Resolution{State: StateNoCookie}
	}

	userID, err := m.codec.Verify(raw)
	if err != nil {
		return Resolution{State: StateInvalidToken, Err: newError(KindInvalidToken, "Invalid token", err)}
	}

	identity, err := m.users.FindByID(ctx, userID)
	switch {
	case err == nil:
		return Resolution{State: StateAuthenticated, Identity: identity}
	case errors.Is(err, users.ErrNotFound):
		return Resolution{State: StateUserMissing, Err: newError(KindNotFound, "User not found", err)}
	default:
		return Resolution{State: StateUserMissing, Err: newError(KindUpstream, "User not found", err)}
	}
}

// resolveRequest はリクエストのトークンクッキーを判定します。
func (m *Manager) resolveRequest(c *gin.Context) Resolution {
	raw, err := c.Cookie(TokenCookieName)
	present := !errors.Is(err, http.ErrNoCookie)
	return m.Resolve(c.Request.Context(), raw, present)
}

// RequireLogin はトークンクッキーを検証するミドルウェアを返します。
// 認証できない場合はエラーメッセージを積んで /index へリダイレクトします。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		res := m.resolveRequest(c)
		f := flash.From(c)

		switch res.State {
		case StateAuthenticated:
			c.Set(ContextUserKey, res.Identity)
			c.Next()
			return
		case StateNoCookie:
			f.Error("Authentication required")
		case StateInvalidToken:
			m.logger.Printf("auth: rejected token path=%s: %v", c.Request.URL.Path, res.Err)
			f.Error("Invalid token")
			m.clearTokenCookie(c)
		case StateUserMissing:
			if res.Upstream() {
				m.logger.Printf("auth: user lookup failed path=%s: %v", c.Request.URL.Path, res.Err)
			} else {
				m.logger.Printf("auth: token subject not found path=%s", c.Request.URL.Path)
				m.clearTokenCookie(c)
			}
			f.Error("User not found")
		}

		redirect(c, PathIndex)
		c.Abort()
	}
}
