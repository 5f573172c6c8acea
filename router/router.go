package router

import (
	"time"

	"firehorse/controllers"
	"firehorse/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter 注册全部路由；gatherer 为 nil 时不暴露 /metrics。
// 投票人身份取 ClientIP，只有 trustedProxies 里的来源才能用 X-Forwarded-For 改写它。
func SetupRouter(ctrl *controllers.Controller, logger *zap.Logger, gatherer prometheus.Gatherer, trustedProxies []string) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		logger.Warn("invalid trusted proxies, ignoring forwarded headers", zap.Strings("trusted_proxies", trustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), middlewares.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middlewares.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middlewares.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	r.Static("/static", "./public")
	r.GET("/health", ctrl.Health)
	r.GET("/test-api", ctrl.TestAPI)
	r.POST("/generate", ctrl.Generate)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	{
		api.GET("/gallery", ctrl.GetGallery)
		api.GET("/artwork/:id", ctrl.GetArtwork)
		api.POST("/artwork/:id/like", ctrl.LikeArtwork)
		api.POST("/generate", ctrl.Generate)
		api.GET("/stats", ctrl.GetStats)
		api.GET("/search", ctrl.SearchArtworks)
		api.GET("/top", ctrl.GetTopArtworks)
		api.POST("/admin/login", ctrl.AdminLogin)
		api.DELETE("/artwork/:id", middlewares.AdminAuth(ctrl.Admin.JWTSecret), ctrl.DeleteArtwork)
	}

	return r
}
