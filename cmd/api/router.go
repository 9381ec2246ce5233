package main

import (
	"context"
	"net/http"
	"time"

	"pricebook-backend/internal/shared/middleware"
	"pricebook-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		// Mọi route import đều cần tenant từ JWT
		protected := v1.Group("")
		protected.Use(middleware.TenantAuth(c.JWTManager))
		c.ImportHandler.RegisterRoutes(protected)
	}

	return router
}

// healthCheckHandler kiểm tra store + cache
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"store": "ok", "cache": "ok"}

		if err := c.CatalogStore.Ping(checkCtx); err != nil {
			status = http.StatusServiceUnavailable
			checks["store"] = err.Error()
		}
		if err := c.Cache.Ping(checkCtx); err != nil {
			// cache lỗi chỉ làm chậm, không làm hỏng import
			checks["cache"] = err.Error()
		}

		ctx.JSON(status, gin.H{
			"status":  http.StatusText(status),
			"service": c.Config.App.Name,
			"version": c.Config.App.Version,
			"checks":  checks,
			"time":    time.Now().UTC(),
		})
	}
}
