package auth

import "github.com/gin-gonic/gin"

// ProtectedPage はログイン必須ページのパスとテンプレート名です。
type ProtectedPage struct {
	Path     string
	Template string
}

// ProtectedPages はダッシュボード配下のページ一覧です。
var ProtectedPages = []ProtectedPage{
	{Path: "/dashboard", Template: "dashboard"},
	{Path: "/content", Template: "content"},
	{Path: "/analytics", Template: "analytics"},
	{Path: "/gallery", Template: "gallery"},
	{Path: "/calendar", Template: "calendar"},
	{Path: "/social-accounts", Template: "social_accounts"},
	{Path: "/credits", Template: "credits"},
	{Path: "/pricing", Template: "pricing"},
	{Path: "/settings", Template: "settings"},
}

// RegisterRoutes は認証フローと保護ページのルートを登録します。
func (m *Manager) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", m.Index)
	r.GET("/index", m.Index)
	r.GET("/signup", m.SignupForm)
	r.GET("/login", m.LoginForm)
	r.POST("/signup", m.Signup)
	r.POST("/login", m.Login)
	r.GET("/logout", m.Logout)

	guard := m.RequireLogin()
	for _, page := range ProtectedPages {
		r.GET(page.Path, guard, m.Page(page.Template))
	}
}
