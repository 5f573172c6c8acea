package controllers

import (
	"net/http"

	"firehorse/utils"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminLogin POST /api/admin/login
func (c *Controller) AdminLogin(ctx *gin.Context) {
	if c.Admin.PasswordHash == "" || c.Admin.JWTSecret == "" {
		ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Admin login is not enabled"})
		return
	}
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if !utils.CheckPassword(req.Password, c.Admin.PasswordHash) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Wrong credentials"})
		return
	}
	token, err := utils.GenerateJWT(c.Admin.JWTSecret, c.Admin.TokenTTL)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}
