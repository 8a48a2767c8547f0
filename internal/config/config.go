// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// 必須設定
	DatabaseURL string // PostgreSQL の接続文字列
	JWTSecret   string // トークン署名用の秘密鍵

	// セッション設定
	SessionSecret   string // フラッシュ用セッションクッキーの署名鍵（未指定時は JWTSecret）
	FlashTTLSeconds int    // 未配信フラッシュメッセージの保持秒数
	TokenTTLMinutes int    // トークンの有効期限（分）。0 の場合は exp を付与しない

	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// 画面設定
	TemplatesDir string // HTMLテンプレートのディレクトリ
	StaticDir    string // 静的ファイルのディレクトリ

	// Redis / ジョブ設定
	RedisURL               string // 空の場合はメモリ実装で動作し、ジョブは無効
	AIServiceURL           string // トレンド提案サービスのベースURL
	SuggestionsCacheMinute int    // 提案キャッシュの有効期限（分）
	SuggestionsRefreshCron string // 提案キャッシュ更新の asynq スケジュール
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	jwtSecret := getEnv("JWT_SECRET", "")
	config := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   jwtSecret,

		SessionSecret:   getEnv("SESSION_SECRET", jwtSecret),
		FlashTTLSeconds: getEnvAsInt("FLASH_TTL_SECONDS", 60),
		TokenTTLMinutes: getEnvAsInt("TOKEN_TTL_MINUTES", 0),

		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8080"),

		TemplatesDir: getEnv("TEMPLATES_DIR", "web/templates"),
		StaticDir:    getEnv("STATIC_DIR", "web/static"),

		RedisURL:               getEnv("REDIS_URL", ""),
		AIServiceURL:           getEnv("AI_SERVICE_URL", "http://localhost:5001/api"),
		SuggestionsCacheMinute: getEnvAsInt("SUGGESTIONS_CACHE_MINUTES", 10),
		SuggestionsRefreshCron: getEnv("SUGGESTIONS_REFRESH_CRON", "@every 10m"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
// DB接続文字列と署名鍵はどのモードでも必須です。
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.TokenTTLMinutes < 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must not be negative")
	}
	return nil
}

// Production は本番モード（Secure クッキーを使う）かどうかを返します。
func (c *Config) Production() bool {
	return c.GinMode == "release"
}

// TokenTTL はトークンの有効期限を返します。0 は無期限です。
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// FlashTTL は未配信フラッシュメッセージの保持期間を返します。
func (c *Config) FlashTTL() time.Duration {
	if c.FlashTTLSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.FlashTTLSeconds) * time.Second
}

// SuggestionsCacheTTL は提案キャッシュの有効期限を返します。
func (c *Config) SuggestionsCacheTTL() time.Duration {
	if c.SuggestionsCacheMinute <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.SuggestionsCacheMinute) * time.Minute
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
