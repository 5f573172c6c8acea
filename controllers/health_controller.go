package controllers

import (
	"context"
	"net/http"
	"time"

	"firehorse/providers"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const probeTimeout = 10 * time.Second

// Health GET /health
func (c *Controller) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":               "ok",
		"service":              c.AppName,
		"version":              c.Version,
		"features":             []string{"generate", "gallery", "like", "search", "stats"},
		"providers_configured": c.Providers.Len(),
		"timestamp":            time.Now().UTC().Format(time.RFC3339),
	})
}

// TestAPI GET /test-api：用第一个 provider 做一次短超时的连通性测试
func (c *Controller) TestAPI(ctx *gin.Context) {
	list := c.Providers.Providers()
	if len(list) == 0 {
		ctx.JSON(http.StatusOK, gin.H{"success": false, "error": "No provider configured"})
		return
	}
	p := list[0]

	probeCtx, cancel := context.WithTimeout(ctx.Request.Context(), probeTimeout)
	defer cancel()
	_, err := p.Generate(probeCtx, providers.Request{Prompt: "test connection", Size: "1K"})
	if err != nil {
		c.Logger.Warn("provider probe failed", zap.String("provider", p.Name()), zap.Error(err))
		ctx.JSON(http.StatusOK, gin.H{
			"success":  false,
			"provider": p.Name(),
			"error":    "API Connection Failed",
			"kind":     providers.KindOf(err).String(),
			"message":  err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "provider": p.Name(), "message": "API is working"})
}
