package suggestions

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RefreshScheduler はキャッシュ更新ジョブを非同期キューに投入します。
type RefreshScheduler interface {
	ScheduleRefresh(ctx context.Context) (string, error)
}

// TrendingHandler は GET /api/trending-suggestions のハンドラーを返します。
func TrendingHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		count := DefaultCount
		if raw := c.Query("count"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"code":    "INVALID_INPUT",
					"message": "count must be an integer",
				})
				return
			}
			count = n
		}
		c.JSON(http.StatusOK, svc.Trending(c.Request.Context(), count))
	}
}

// PredictHandler は POST /api/predict-trend のハンドラーを返します。
func PredictHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PredictRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "request body must be JSON",
			})
			return
		}
		c.JSON(http.StatusOK, svc.Predict(c.Request.Context(), req))
	}
}

// RefreshHandler は POST /api/trending-suggestions/refresh のハンドラーを返します。
// scheduler が nil の場合（Redis 未設定）は 503 を返します。
func RefreshHandler(scheduler RefreshScheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if scheduler == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"code":    "JOBS_DISABLED",
				"message": "background jobs are not configured",
			})
			return
		}
		jobID, err := scheduler.ScheduleRefresh(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "failed to enqueue refresh job",
			})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"jobId": jobID})
	}
}
