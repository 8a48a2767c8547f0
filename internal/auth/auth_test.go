package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/creator-dashboard/internal/flash"
	"github.com/yourusername/creator-dashboard/internal/token"
	"github.com/yourusername/creator-dashboard/internal/users"
	"github.com/yourusername/creator-dashboard/internal/view"
)

type renderedPage struct {
	Template string
	Messages []flash.Message
	User     *users.Identity
}

type harness struct {
	t       *testing.T
	router  *gin.Engine
	repo    *users.MemoryRepository
	users   *users.Service
	codec   *token.Codec
	cookies map[string]*http.Cookie
	renders []renderedPage
	logs    bytes.Buffer
}

func newHarness(t *testing.T, secure bool, store CredentialStore) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := token.New([]byte("test-secret"), 0)
	require.NoError(t, err)

	repo := users.NewMemoryRepository()
	svc := users.NewService(repo, bcrypt.MinCost)
	if store == nil {
		store = svc
	}

	h := &harness{
		t:       t,
		repo:    repo,
		users:   svc,
		codec:   codec,
		cookies: make(map[string]*http.Cookie),
	}

	render := func(c *gin.Context, name string, user *users.Identity) {
		data := view.Data(c, user)
		page := renderedPage{Template: name, Messages: data["messages"].([]flash.Message)}
		if user != nil {
			u := *user
			page.User = &u
		}
		h.renders = append(h.renders, page)
		c.JSON(http.StatusOK, page)
	}

	manager, err := NewManager(Options{
		Codec:  codec,
		Users:  store,
		Render: render,
		Secure: secure,
		Logger: log.New(&h.logs, "", 0),
	})
	require.NoError(t, err)

	router := gin.New()
	router.Use(sessions.Sessions("cd_session", cookie.NewStore([]byte("session-secret"))))
	router.Use(flash.Middleware(flash.NewMemoryStore(time.Minute), nil))
	manager.RegisterRoutes(router)
	h.router = router
	return h
}

func (h *harness) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	h.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, ck := range h.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	return h.serve(req)
}

func (h *harness) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(h.cookies, ck.Name)
			continue
		}
		h.cookies[ck.Name] = ck
	}
	return rec
}

func (h *harness) postJSON(path, body string) *httptest.ResponseRecorder {
	h.t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range h.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return h.serve(req)
}

func (h *harness) setToken(value string) {
	h.cookies[TokenCookieName] = &http.Cookie{Name: TokenCookieName, Value: value}
}

func (h *harness) lastRender() renderedPage {
	h.t.Helper()
	require.NotEmpty(h.t, h.renders, "nothing was rendered")
	return h.renders[len(h.renders)-1]
}

// landing は /index を描画させ、積まれていたメッセージを返します。
func (h *harness) landing() []flash.Message {
	h.t.Helper()
	rec := h.do(http.MethodGet, "/index", nil)
	require.Equal(h.t, http.StatusOK, rec.Code)
	return h.lastRender().Messages
}

func (h *harness) createUser(name, email, password string) users.Identity {
	h.t.Helper()
	identity, err := h.users.Create(context.Background(), name, email, password)
	require.NoError(h.t, err)
	return identity
}

func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == TokenCookieName {
			return ck
		}
	}
	return nil
}

func errorMessage(text string) []flash.Message {
	return []flash.Message{{Category: flash.CategoryError, Text: text}}
}

func successMessage(text string) []flash.Message {
	return []flash.Message{{Category: flash.CategorySuccess, Text: text}}
}

func TestGuardWithoutCookieRedirects(t *testing.T) {
	for _, page := range ProtectedPages {
		page := page
		t.Run(page.Path, func(t *testing.T) {
			h := newHarness(t, false, nil)

			rec := h.do(http.MethodGet, page.Path, nil)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, PathIndex, rec.Header().Get("Location"))
			assert.Empty(t, h.renders, "protected handler must not run")

			assert.Equal(t, errorMessage("Authentication required"), h.landing())
		})
	}
}

func TestGuardInvalidTokens(t *testing.T) {
	other, err := token.New([]byte("other-secret"), 0)
	require.NoError(t, err)
	resigned, err := other.Issue("u1")
	require.NoError(t, err)

	cases := map[string]func(valid string) string{
		"empty":       func(string) string { return "" },
		"garbage":     func(string) string { return "garbage" },
		"truncated":   func(valid string) string { return valid[:len(valid)/2] },
		"wrongSecret": func(string) string { return resigned },
	}

	for name, mk := range cases {
		mk := mk
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, false, nil)
			identity := h.createUser("A", "a@x.com", "p1")
			valid, err := h.codec.Issue(identity.ID)
			require.NoError(t, err)

			h.setToken(mk(valid))
			rec := h.do(http.MethodGet, "/dashboard", nil)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, PathIndex, rec.Header().Get("Location"))
			assert.Empty(t, h.renders)

			cleared := tokenCookie(rec)
			require.NotNil(t, cleared, "invalid token cookie must be cleared")
			assert.Less(t, cleared.MaxAge, 0)
			_, stillSet := h.cookies[TokenCookieName]
			assert.False(t, stillSet)

			assert.Equal(t, errorMessage("Invalid token"), h.landing())
		})
	}
}

func TestGuardUserMissing(t *testing.T) {
	h := newHarness(t, false, nil)
	tok, err := h.codec.Issue("deleted-user")
	require.NoError(t, err)

	h.setToken(tok)
	rec := h.do(http.MethodGet, "/settings", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, PathIndex, rec.Header().Get("Location"))
	assert.Empty(t, h.renders)
	assert.Equal(t, errorMessage("User not found"), h.landing())
}

type failingStore struct {
	CredentialStore
	err error
}

func (s failingStore) FindByID(ctx context.Context, id string) (users.Identity, error) {
	return users.Identity{}, s.err
}

func (s failingStore) FindByEmail(ctx context.Context, email string) (users.User, error) {
	return users.User{}, s.err
}

func TestGuardUpstreamFailureDenies(t *testing.T) {
	h := newHarness(t, false, failingStore{err: errors.New("connection refused")})
	tok, err := h.codec.Issue("u1")
	require.NoError(t, err)

	h.setToken(tok)
	rec := h.do(http.MethodGet, "/dashboard", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, PathIndex, rec.Header().Get("Location"))
	assert.Nil(t, tokenCookie(rec), "transient failures keep the cookie")
	assert.Empty(t, h.renders)
	assert.Contains(t, h.logs.String(), "user lookup failed")
	assert.Equal(t, errorMessage("User not found"), h.landing())
}

func TestSignupMismatchedPasswords(t *testing.T) {
	h := newHarness(t, false, nil)

	rec := h.do(http.MethodPost, "/signup", url.Values{
		"name":            {"A"},
		"email":           {"a@x.com"},
		"password":        {"p1"},
		"confirmPassword": {"p2"},
	})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, PathSignup, rec.Header().Get("Location"))
	assert.Equal(t, 0, h.repo.Len())

	h.do(http.MethodGet, "/signup", nil)
	assert.Equal(t, errorMessage("Passwords do not match"), h.lastRender().Messages)
}

func TestSignupMissingFields(t *testing.T) {
	h := newHarness(t, false, nil)

	rec := h.do(http.MethodPost, "/signup", url.Values{
		"name":     {"A"},
		"email":    {"a@x.com"},
		"password": {"p1"},
	})

	assert.Equal(t, PathSignup, rec.Header().Get("Location"))
	assert.Equal(t, 0, h.repo.Len())
	assert.Equal(t, errorMessage("All fields are required"), h.landing())
}

func TestSignupDuplicateEmail(t *testing.T) {
	h := newHarness(t, false, nil)
	h.createUser("A", "a@x.com", "p1")

	rec := h.do(http.MethodPost, "/signup", url.Values{
		"name":            {"B"},
		"email":           {"a@x.com"},
		"password":        {"p2"},
		"confirmPassword": {"p2"},
	})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, PathSignup, rec.Header().Get("Location"))
	assert.Equal(t, 1, h.repo.Len())
	assert.Equal(t, errorMessage("User with this email already exists"), h.landing())
}

func TestSignupSuccessRequiresLogin(t *testing.T) {
	h := newHarness(t, false, nil)

	rec := h.do(http.MethodPost, "/signup", url.Values{
		"name":            {"A"},
		"email":           {"a@x.com"},
		"password":        {"p1"},
		"confirmPassword": {"p1"},
	})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, PathLogin, rec.Header().Get("Location"))
	assert.Nil(t, tokenCookie(rec), "signup must not log the user in")
	assert.Equal(t, 1, h.repo.Len())

	h.do(http.MethodGet, "/login", nil)
	assert.Equal(t, "login", h.lastRender().Template)
	assert.Equal(t, successMessage("Account created successfully!"), h.lastRender().Messages)
}

func TestLoginThenDashboard(t *testing.T) {
	h := newHarness(t, false, nil)
	identity := h.createUser("A", "a@x.com", "p1")

	rec := h.do(http.MethodPost, "/login", url.Values{
		"email":    {"a@x.com"},
		"password": {"p1"},
	})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, PathDashboard, rec.Header().Get("Location"))

	ck := tokenCookie(rec)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)
	assert.False(t, ck.Secure)
	assert.Zero(t, ck.MaxAge)
	assert.True(t, ck.Expires.IsZero())

	subject, err := h.codec.Verify(ck.Value)
	require.NoError(t, err)
	assert.Equal(t, identity.ID, subject)

	rec = h.do(http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	page := h.lastRender()
	assert.Equal(t, "dashboard", page.Template)
	require.NotNil(t, page.User)
	assert.Equal(t, "a@x.com", page.User.Email)
	assert.Equal(t, successMessage("Login successful!"), page.Messages)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, rec.Body.String(), "PasswordHash")
}

func TestLoginSecureCookieInProduction(t *testing.T) {
	h := newHarness(t, true, nil)
	h.createUser("A", "a@x.com", "p1")

	rec := h.do(http.MethodPost, "/login", url.Values{"email": {"a@x.com"}, "password": {"p1"}})

	ck := tokenCookie(rec)
	require.NotNil(t, ck)
	assert.True(t, ck.Secure)
	assert.True(t, ck.HttpOnly)
}

func TestLoginFailures(t *testing.T) {
	cases := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing fields", url.Values{"email": {"a@x.com"}}, "Email and password are required"},
		{"unknown user", url.Values{"email": {"b@x.com"}, "password": {"p1"}}, "User doesn't exist"},
		{"wrong password", url.Values{"email": {"a@x.com"}, "password": {"nope"}}, "Invalid credentials"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, false, nil)
			h.createUser("A", "a@x.com", "p1")

			rec := h.do(http.MethodPost, "/login", tc.form)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, PathLogin, rec.Header().Get("Location"))
			assert.Nil(t, tokenCookie(rec))
			assert.Equal(t, errorMessage(tc.want), h.landing())
		})
	}
}

func TestMalformedBodyIsLoggedAndRedirected(t *testing.T) {
	cases := []struct {
		path string
		want string
		log  string
	}{
		{"/login", "Email and password are required", "login form bind failed"},
		{"/signup", "All fields are required", "signup form bind failed"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.path, func(t *testing.T) {
			h := newHarness(t, false, nil)

			rec := h.postJSON(tc.path, `{"email":`)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tc.path, rec.Header().Get("Location"))
			assert.Nil(t, tokenCookie(rec))
			assert.Contains(t, h.logs.String(), tc.log)
			assert.Equal(t, errorMessage(tc.want), h.landing())
		})
	}
}

func TestLoginUpstreamFailure(t *testing.T) {
	h := newHarness(t, false, failingStore{err: errors.New("timeout")})

	rec := h.do(http.MethodPost, "/login", url.Values{"email": {"a@x.com"}, "password": {"p1"}})

	assert.Equal(t, PathLogin, rec.Header().Get("Location"))
	assert.Nil(t, tokenCookie(rec))
	assert.Equal(t, errorMessage("An error occurred during login"), h.landing())
}

func TestLogoutIsIdempotent(t *testing.T) {
	h := newHarness(t, false, nil)
	h.createUser("A", "a@x.com", "p1")
	h.do(http.MethodPost, "/login", url.Values{"email": {"a@x.com"}, "password": {"p1"}})
	require.Contains(t, h.cookies, TokenCookieName)

	for i := 0; i < 2; i++ {
		rec := h.do(http.MethodGet, "/logout", nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, PathLogin, rec.Header().Get("Location"))
		assert.NotContains(t, h.cookies, TokenCookieName)

		rec = h.do(http.MethodGet, "/dashboard", nil)
		assert.Equal(t, PathIndex, rec.Header().Get("Location"))
	}
}

func TestIndexAuthenticatedRedirects(t *testing.T) {
	h := newHarness(t, false, nil)
	identity := h.createUser("A", "a@x.com", "p1")
	tok, err := h.codec.Issue(identity.ID)
	require.NoError(t, err)
	h.setToken(tok)

	rec := h.do(http.MethodGet, "/index", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, PathDashboard, rec.Header().Get("Location"))
	assert.Empty(t, h.renders, "landing page must not render")
}

func TestIndexInvalidCookieRendersLanding(t *testing.T) {
	h := newHarness(t, false, nil)
	h.setToken("broken")

	rec := h.do(http.MethodGet, "/index", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "index", h.lastRender().Template)
	assert.Nil(t, h.lastRender().User)
	ck := tokenCookie(rec)
	require.NotNil(t, ck)
	assert.Less(t, ck.MaxAge, 0)
}

func TestIndexMissingUserRendersLanding(t *testing.T) {
	h := newHarness(t, false, nil)
	tok, err := h.codec.Issue("ghost")
	require.NoError(t, err)
	h.setToken(tok)

	rec := h.do(http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "index", h.lastRender().Template)
	assert.NotContains(t, h.cookies, TokenCookieName)
}

func TestResolveStates(t *testing.T) {
	h := newHarness(t, false, nil)
	identity := h.createUser("A", "a@x.com", "p1")
	valid, err := h.codec.Issue(identity.ID)
	require.NoError(t, err)
	ghost, err := h.codec.Issue("ghost")
	require.NoError(t, err)

	manager, err := NewManager(Options{Codec: h.codec, Users: h.users, Render: func(*gin.Context, string, *users.Identity) {}})
	require.NoError(t, err)

	ctx := context.Background()
	assert.Equal(t, StateNoCookie, manager.Resolve(ctx, "", false).State)
	assert.Equal(t, StateInvalidToken, manager.Resolve(ctx, "", true).State)
	assert.Equal(t, KindInvalidToken, KindOf(manager.Resolve(ctx, "x", true).Err))

	missing := manager.Resolve(ctx, ghost, true)
	assert.Equal(t, StateUserMissing, missing.State)
	assert.False(t, missing.Upstream())

	ok := manager.Resolve(ctx, valid, true)
	assert.Equal(t, StateAuthenticated, ok.State)
	assert.Equal(t, identity, ok.Identity)
	assert.NoError(t, ok.Err)
}

func TestNewManagerRequiresDependencies(t *testing.T) {
	_, err := NewManager(Options{})
	assert.Error(t, err)
}
