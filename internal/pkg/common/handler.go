package handler

import (
	"context"
	"net/http"
	"time"

	"mini_shop/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health 检查数据库连接
// @Summary 健康检查
// @Tags Common
// @Produce json
// @Success 200 {object} response.Response{data=HealthStatus}
// @Failure 503 {object} response.Response
// @Router /health [get]
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, response.ErrUnavailable, "Database unavailable")
			return
		}
		response.Success(c, HealthStatus{Status: "ok", Database: "up"})
	}
}
