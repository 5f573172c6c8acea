package middlewares

import (
	"net/http"
	"strings"

	"firehorse/utils"

	"github.com/gin-gonic/gin"
)

// AdminAuth 未配置 secret 时放行（与旧部署行为一致），否则要求 Bearer 令牌
func AdminAuth(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if secret == "" {
			ctx.Next()
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer "))
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Missing Authorization Header"})
			return
		}
		if err := utils.ParseJWT(token, secret); err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token"})
			return
		}
		ctx.Next()
	}
}
