package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// LikeArtwork: 投票人即请求方 IP；同一 IP 重复点赞返回 success=false 和当前点赞数
func (c *Controller) LikeArtwork(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	res, err := c.Gallery.Like(ctx.Request.Context(), id, ctx.ClientIP())
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	if res.AlreadyVoted {
		ctx.JSON(http.StatusOK, gin.H{"success": false, "message": "You have already liked this artwork", "likes": res.Likes})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Liked!", "likes": res.Likes})
}

// GetTopArtworks: 返回 Top N 排行（优先 Redis ZSET，未配置时查库）
func (c *Controller) GetTopArtworks(ctx *gin.Context) {
	top, err := strconv.Atoi(ctx.DefaultQuery("top", "10"))
	if err != nil || top <= 0 {
		top = 10
	}
	if top > 100 {
		top = 100
	}

	list, err := c.Gallery.Top(ctx.Request.Context(), top)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "list": list})
}
