// Package view は画面描画に渡すデータの組み立てを担います。
package view

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/creator-dashboard/internal/flash"
	"github.com/yourusername/creator-dashboard/internal/users"
)

const templateExt = ".html"

// Data は描画データ {messages, user?} を作成します。
// フラッシュメッセージはここで取り出され、以降のリクエストには残りません。
func Data(c *gin.Context, user *users.Identity) gin.H {
	data := gin.H{
		"messages": flash.From(c).DrainForRender(),
	}
	if user != nil {
		data["user"] = *user
	}
	return data
}

// HTML はテンプレート name を描画します。
func HTML(c *gin.Context, name string, user *users.Identity) {
	c.HTML(http.StatusOK, name+templateExt, Data(c, user))
}

// TemplatePattern はルーターに読み込ませるテンプレートの glob を返します。
func TemplatePattern(dir string) string {
	return filepath.Join(dir, "*"+templateExt)
}
