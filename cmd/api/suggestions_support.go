package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/creator-dashboard/internal/config"
	"github.com/yourusername/creator-dashboard/internal/flash"
	"github.com/yourusername/creator-dashboard/internal/jobs"
	"github.com/yourusername/creator-dashboard/internal/suggestions"
)

const jobRecordTTL = time.Hour

// background は Redis の有無で切り替わる依存関係をまとめます。
type background struct {
	flashStore  flash.Store
	suggestions *suggestions.Service
	jobs        *jobs.Manager
	redis       *redis.Client
	logger      *log.Logger
}

// setupBackground は REDIS_URL が空ならメモリ実装のみで構成します。
func setupBackground(cfg *config.Config, logger *log.Logger) (*background, error) {
	client := suggestions.NewClient(cfg.AIServiceURL, &http.Client{})
	bg := &background{logger: logger}

	if cfg.RedisURL == "" {
		logger.Printf("REDIS_URL is empty: using in-memory flash store, suggestion cache and jobs disabled")
		bg.flashStore = flash.NewMemoryStore(cfg.FlashTTL())
		bg.suggestions = suggestions.NewService(client, nil, logger)
		return bg, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	bg.redis = redis.NewClient(opt)
	bg.flashStore = flash.NewRedisStore(bg.redis, cfg.FlashTTL())
	bg.suggestions = suggestions.NewService(client, suggestions.NewRedisCache(bg.redis, cfg.SuggestionsCacheTTL()), logger)

	manager, err := jobs.NewManager(cfg.RedisURL, bg.suggestions, jobs.NewStore(bg.redis, jobRecordTTL), cfg.SuggestionsRefreshCron, logger)
	if err != nil {
		_ = bg.redis.Close()
		return nil, err
	}
	if err := manager.StartWorkers(); err != nil {
		_ = bg.redis.Close()
		return nil, err
	}
	bg.jobs = manager

	if err := client.Health(context.Background()); err != nil {
		logger.Printf("AI suggestions service: not available (%v)", err)
	}
	return bg, nil
}

// Close はジョブと Redis 接続を閉じます。
func (b *background) Close() {
	if b.jobs != nil {
		if err := b.jobs.Shutdown(context.Background()); err != nil {
			b.logger.Printf("failed to shutdown jobs: %v", err)
		}
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}

func registerSuggestionRoutes(api *gin.RouterGroup, deps *background) {
	var scheduler suggestions.RefreshScheduler
	if deps.jobs != nil {
		scheduler = deps.jobs
	}

	api.GET("/trending-suggestions", suggestions.TrendingHandler(deps.suggestions))
	api.POST("/predict-trend", suggestions.PredictHandler(deps.suggestions))
	api.POST("/trending-suggestions/refresh", suggestions.RefreshHandler(scheduler))
	api.GET("/jobs/:id", jobStatusHandler(deps.jobs))
}

func jobStatusHandler(manager *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"code":    "JOBS_DISABLED",
				"message": "background jobs are not configured",
			})
			return
		}

		jobID := c.Param("id")
		if strings.TrimSpace(jobID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "job id is required",
			})
			return
		}

		record, err := manager.GetRecord(c.Request.Context(), jobID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "failed to load job",
			})
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "JOB_NOT_FOUND",
				"message": "job not found",
			})
			return
		}

		c.JSON(http.StatusOK, record)
	}
}
