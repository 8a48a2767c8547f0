// Package flash は次に描画される1ページだけに届く一時メッセージを扱います。
package flash

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Category はメッセージの種別です。
type Category string

const (
	CategorySuccess Category = "success"
	CategoryError   Category = "error"
)

// Message は1件のフラッシュメッセージです。
type Message struct {
	Category Category `json:"category"`
	Text     string   `json:"text"`
}

// Store はセッションIDごとの未配信メッセージを保持します。
// Drain は取得と削除を不可分に行う必要があります。
type Store interface {
	Push(ctx context.Context, sessionID string, msg Message) error
	Drain(ctx context.Context, sessionID string) ([]Message, error)
}

const (
	sessionKeyID = "flash_sid"
	contextKey   = "flash.context"
)

// Context はリクエストに紐づくフラッシュ操作の窓口です。
type Context struct {
	ctx       context.Context
	store     Store
	sessionID string
	logger    *log.Logger
}

// NewContext は指定セッション用の Context を作成します。
func NewContext(ctx context.Context, store Store, sessionID string, logger *log.Logger) *Context {
	return &Context{ctx: ctx, store: store, sessionID: sessionID, logger: logger}
}

// SessionID はこの Context が扱うセッションIDを返します。
func (f *Context) SessionID() string {
	return f.sessionID
}

// Push は次のページ描画向けにメッセージを積みます。
func (f *Context) Push(category Category, text string) {
	if f == nil || f.store == nil {
		return
	}
	if err := f.store.Push(f.ctx, f.sessionID, Message{Category: category, Text: text}); err != nil {
		f.logf("failed to push flash session=%s: %v", f.sessionID, err)
	}
}

// Success は success メッセージを積みます。
func (f *Context) Success(text string) { f.Push(CategorySuccess, text) }

// Error は error メッセージを積みます。
func (f *Context) Error(text string) { f.Push(CategoryError, text) }

// DrainForRender は未配信メッセージをすべて取り出して破棄します。
// 描画1回につき1度だけ呼び出します。
func (f *Context) DrainForRender() []Message {
	if f == nil || f.store == nil {
		return []Message{}
	}
	msgs, err := f.store.Drain(f.ctx, f.sessionID)
	if err != nil {
		f.logf("failed to drain flash session=%s: %v", f.sessionID, err)
		return []Message{}
	}
	if msgs == nil {
		return []Message{}
	}
	return msgs
}

func (f *Context) logf(format string, args ...any) {
	if f.logger != nil {
		f.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Middleware はセッションクッキーにセッションIDを確保し、Context をリクエストへ紐づけます。
// sessions.Sessions より後ろに登録してください。
func Middleware(store Store, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		sid, _ := session.Get(sessionKeyID).(string)
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.NewString()
			session.Set(sessionKeyID, sid)
			if err := session.Save(); err != nil && logger != nil {
				logger.Printf("failed to save flash session: %v", err)
			}
		}
		Bind(c, NewContext(c.Request.Context(), store, sid, logger))
		c.Next()
	}
}

// Bind は Context をリクエストへ紐づけます。
func Bind(c *gin.Context, f *Context) {
	c.Set(contextKey, f)
}

// From はリクエストに紐づく Context を返します。
// ミドルウェア未登録の場合は何もしない Context を返します。
func From(c *gin.Context) *Context {
	if v, ok := c.Get(contextKey); ok {
		if f, ok := v.(*Context); ok {
			return f
		}
	}
	return &Context{}
}

func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
