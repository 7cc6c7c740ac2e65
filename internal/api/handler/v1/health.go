package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stockbook/inventory-api/internal/api/handler/v1/response"
)

const (
	statusOK   = "ok"
	statusDown = "down"
)

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewHealthHandler builds the handler. rdb may be nil when Redis is disabled.
func NewHealthHandler(db *gorm.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: rdb,
	}
}

// HandleHealthcheck godoc
// @Summary      Report service health
// @Tags         health
// @Produce      json
// @Success      200      {object}   response.Health
// @Failure      503      {object}   response.Health
// @Router       /health [get]
func (h *HealthHandler) HandleHealthcheck(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	health := response.Health{Status: statusOK, Database: statusOK}
	if err := h.pingDB(c); err != nil {
		zap.L().Warn("database health check failed", zap.Error(err))
		health.Status = statusDown
		health.Database = statusDown
	}

	if h.redis != nil {
		health.Redis = statusOK
		if err := h.redis.Ping(c).Err(); err != nil {
			zap.L().Warn("redis health check failed", zap.Error(err))
			health.Status = statusDown
			health.Redis = statusDown
		}
	}

	status := http.StatusOK
	if health.Status != statusOK {
		status = http.StatusServiceUnavailable
	}

	ctx.JSON(status, health)
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}
