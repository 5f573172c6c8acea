package controllers

import (
	"net/http"

	"firehorse/services"

	"github.com/gin-gonic/gin"
)

// GetGallery GET /api/gallery?page&limit&sort&style
func (c *Controller) GetGallery(ctx *gin.Context) {
	q := services.ListQuery{
		Page:     queryInt(ctx, "page", 1),
		PageSize: queryInt(ctx, "limit", services.DefaultPageSize),
		Sort:     ctx.DefaultQuery("sort", services.SortNewest),
		Style:    ctx.DefaultQuery("style", services.StyleAll),
	}.Normalize()

	artworks, total, err := c.Gallery.List(ctx.Request.Context(), q)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	totalPages := (total + int64(q.PageSize) - 1) / int64(q.PageSize)
	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"artworks": artworks,
		"pagination": gin.H{
			"page":       q.Page,
			"limit":      q.PageSize,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}

// GetArtwork GET /api/artwork/:id
func (c *Controller) GetArtwork(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	artwork, err := c.Gallery.Get(ctx.Request.Context(), id)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "artwork": artwork})
}

// DeleteArtwork DELETE /api/artwork/:id，连同投票一起删除
func (c *Controller) DeleteArtwork(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := c.Gallery.Delete(ctx.Request.Context(), id); err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Artwork deleted"})
}

// SearchArtworks GET /api/search?q&limit
func (c *Controller) SearchArtworks(ctx *gin.Context) {
	artworks, err := c.Gallery.Search(ctx.Request.Context(), ctx.Query("q"), queryInt(ctx, "limit", services.DefaultSearchLimit))
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "artworks": artworks, "count": len(artworks)})
}

// GetStats GET /api/stats
func (c *Controller) GetStats(ctx *gin.Context) {
	stats, err := c.Gallery.Stats(ctx.Request.Context())
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
