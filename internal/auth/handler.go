package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/creator-dashboard/internal/flash"
	"github.com/yourusername/creator-dashboard/internal/users"
)

type signupForm struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword"`
}

type loginForm struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// SignupForm は GET /signup のハンドラーです。
func (m *Manager) SignupForm(c *gin.Context) {
	m.render(c, "signup", nil)
}

// LoginForm は GET /login のハンドラーです。
func (m *Manager) LoginForm(c *gin.Context) {
	m.render(c, "login", nil)
}

// Index は GET /index のハンドラーです。
// 有効なトークンを持つ場合は /dashboard へ、それ以外はクッキーを消してトップページを描画します。
func (m *Manager) Index(c *gin.Context) {
	res := m.resolveRequest(c)
	switch res.State {
	case StateNoCookie:
		m.render(c, "index", nil)
	case StateAuthenticated:
		redirect(c, PathDashboard)
	default:
		m.logger.Printf("auth: index fallback state=%s: %v", res.State, res.Err)
		m.clearTokenCookie(c)
		m.render(c, "index", nil)
	}
}

// Page は認証済みユーザー向けページのハンドラーを返します。RequireLogin の後ろで使います。
func (m *Manager) Page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentUser(c)
		if !ok {
			flash.From(c).Error("Authentication required")
			redirect(c, PathIndex)
			return
		}
		m.render(c, name, &identity)
	}
}

// Signup は POST /signup のハンドラーです。
// 作成後は自動ログインせず、ログイン画面へ誘導します。
func (m *Manager) Signup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		m.logger.Printf("auth: signup form bind failed: %v", err)
	}

	f := flash.From(c)
	if _, err := m.register(c.Request.Context(), form); err != nil {
		m.logFailure("signup", err)
		f.Error(messageOf(err, "An error occurred during signup"))
		redirect(c, PathSignup)
		return
	}

	f.Success("Account created successfully!")
	redirect(c, PathLogin)
}

// Login は POST /login のハンドラーです。
func (m *Manager) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		m.logger.Printf("auth: login form bind failed: %v", err)
	}

	f := flash.From(c)
	token, err := m.authenticate(c.Request.Context(), form)
	if err != nil {
		m.logFailure("login", err)
		f.Error(messageOf(err, "An error occurred during login"))
		redirect(c, PathLogin)
		return
	}

	f.Success("Login successful!")
	m.setTokenCookie(c, token)
	redirect(c, PathDashboard)
}

// Logout は GET /logout のハンドラーです。未ログインでも同じ結果になります。
func (m *Manager) Logout(c *gin.Context) {
	flash.From(c).Success("Logged out successfully!")
	m.clearTokenCookie(c)
	redirect(c, PathLogin)
}

func (m *Manager) register(ctx context.Context, form signupForm) (users.Identity, error) {
	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.Email) == "" ||
		form.Password == "" || form.ConfirmPassword == "" {
		return users.Identity{}, newError(KindValidation, "All fields are required", nil)
	}
	if form.Password != form.ConfirmPassword {
		return users.Identity{}, newError(KindValidation, "Passwords do not match", nil)
	}

	_, err := m.users.FindByEmail(ctx, form.Email)
	switch {
	case err == nil:
		return users.Identity{}, newError(KindConflict, "User with this email already exists", nil)
	case !errors.Is(err, users.ErrNotFound):
		return users.Identity{}, newError(KindUpstream, "An error occurred during signup", err)
	}

	identity, err := m.users.Create(ctx, form.Name, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return users.Identity{}, newError(KindConflict, "User with this email already exists", err)
		}
		return users.Identity{}, newError(KindUpstream, "An error occurred during signup", err)
	}

	// トークンは発行できることだけ確認し、クッキーには載せない
	if _, err := m.codec.Issue(identity.ID); err != nil {
		return users.Identity{}, newError(KindUpstream, "An error occurred during signup", err)
	}
	return identity, nil
}

func (m *Manager) authenticate(ctx context.Context, form loginForm) (string, error) {
	if strings.TrimSpace(form.Email) == "" || form.Password == "" {
		return "", newError(KindValidation, "Email and password are required", nil)
	}

	user, err := m.users.FindByEmail(ctx, form.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return "", newError(KindNotFound, "User doesn't exist", err)
		}
		return "", newError(KindUpstream, "An error occurred during login", err)
	}

	if err := m.users.VerifyPassword(user, form.Password); err != nil {
		if errors.Is(err, users.ErrPasswordMismatch) {
			return "", newError(KindAuthentication, "Invalid credentials", err)
		}
		return "", newError(KindUpstream, "An error occurred during login", err)
	}

	token, err := m.codec.Issue(user.ID)
	if err != nil {
		return "", newError(KindUpstream, "An error occurred during login", err)
	}
	return token, nil
}

// logFailure はストア障害を利用者起因のエラーと区別して記録します。
func (m *Manager) logFailure(op string, err error) {
	if KindOf(err) == KindUpstream {
		m.logger.Printf("auth: %s failed: %v", op, err)
	}
}

func messageOf(err error, fallback string) string {
	var authErr *Error
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	return fallback
}
