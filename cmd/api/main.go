// Package main はダッシュボードサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/creator-dashboard/internal/auth"
	"github.com/yourusername/creator-dashboard/internal/config"
	"github.com/yourusername/creator-dashboard/internal/flash"
	"github.com/yourusername/creator-dashboard/internal/token"
	"github.com/yourusername/creator-dashboard/internal/users"
	"github.com/yourusername/creator-dashboard/internal/view"
)

// SessionCookieName はフラッシュ用セッションクッキーの名前です。
const SessionCookieName = "cd_session"

func main() {
	// 設定の読み込み（DB接続文字列と署名鍵がなければ起動しない）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gin.SetMode(cfg.GinMode)
	logger := log.Default()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := users.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	defer db.Close()

	if err := users.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	repo, err := users.NewPostgresRepository(db)
	if err != nil {
		log.Fatalf("Failed to init user repository: %v", err)
	}

	codec, err := token.New([]byte(cfg.JWTSecret), cfg.TokenTTL())
	if err != nil {
		log.Fatalf("Failed to init token codec: %v", err)
	}

	deps, err := setupBackground(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to init background services: %v", err)
	}
	defer deps.Close()

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	router.LoadHTMLGlob(view.TemplatePattern(cfg.TemplatesDir))
	router.Static("/static", cfg.StaticDir)

	// セッションストアの設定（フラッシュメッセージのセッションIDのみを保持）
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(SessionCookieName, store))
	router.Use(flash.Middleware(deps.flashStore, logger))

	authManager, err := auth.NewManager(auth.Options{
		Codec:  codec,
		Users:  users.NewService(repo, 0),
		Render: view.HTML,
		Secure: cfg.Production(),
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("Failed to init auth manager: %v", err)
	}

	setupRoutes(router, cfg, authManager, deps)

	addr := ":" + cfg.Port
	log.Printf("Starting dashboard server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "creator-dashboard",
		"version": "0.1.0",
	})
}

// setupRoutes は画面・API と認証周りの配線を行います。
// CORS はエンジン全体に掛け、OPTIONS のルートがない /api でもプリフライトに応答します。
func setupRoutes(router *gin.Engine, cfg *config.Config, authManager *auth.Manager, deps *background) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", handleHealth)

	authManager.RegisterRoutes(router)

	api := router.Group("/api")
	api.Use(authManager.RequireLogin())
	registerSuggestionRoutes(api, deps)
}
