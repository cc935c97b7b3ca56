package router

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"slurm-eta/internal/pkg/metrics"
)

// Registrar 由各模块实现, 负责挂载自己的路由.
type Registrar interface{ Register(r *gin.Engine) }

// New 创建 gin 引擎并挂载所有模块.
func New(logger *slog.Logger, rs ...Registrar) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), accessLog(logger))
	for _, rg := range rs {
		rg.Register(r)
	}
	return r
}

// accessLog 记录每个请求的状态码和耗时, 并计入 http_requests 指标.
func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		took := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(route, c.Writer.Status(), took)
		logger.Debug("request served",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("took", took),
		)
	}
}
