package controllers

import (
	"net/http"

	"firehorse/services"

	"github.com/gin-gonic/gin"
)

type GenerateRequest struct {
	Prompt    string `json:"prompt"`
	Style     string `json:"style"`
	ImageSize string `json:"image_size"`
	UserAgent string `json:"user_agent"`
}

// Generate POST /api/generate：校验通过后总是 200，provider 全部失败时返回占位图
func (c *Controller) Generate(ctx *gin.Context) {
	var req GenerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	if err := services.ValidatePrompt(req.Prompt); err != nil {
		c.respondError(ctx, err)
		return
	}
	if req.UserAgent == "" {
		req.UserAgent = ctx.Request.UserAgent()
	}

	res, err := c.Generator.Generate(ctx.Request.Context(), services.GenerateInput{
		Prompt:    req.Prompt,
		Style:     req.Style,
		Size:      req.ImageSize,
		UserIP:    ctx.ClientIP(),
		UserAgent: req.UserAgent,
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":         true,
		"artwork":         res.Artwork,
		"image_url":       res.Artwork.ImageURL,
		"enhanced_prompt": res.EnhancedPrompt,
		"source":          res.Source,
		"message":         res.Message,
	})
}
