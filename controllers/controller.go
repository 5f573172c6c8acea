package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"firehorse/providers"
	"firehorse/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps 控制器依赖，由 router 组装
type Deps struct {
	AppName   string
	Version   string
	Gallery   *services.GalleryService
	Generator *services.GenerationService
	Providers *providers.Chain
	Admin     AdminConfig
	Logger    *zap.Logger
}

// AdminConfig 管理员登录配置，PasswordHash 为空时不开放登录
type AdminConfig struct {
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

type Controller struct {
	Deps
}

func New(deps Deps) *Controller {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Providers == nil {
		deps.Providers = providers.NewChain()
	}
	return &Controller{Deps: deps}
}

// respondError 校验错误 400，不存在 404，其它 500（细节只写日志）
func (c *Controller) respondError(ctx *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": verr.Message})
	case errors.Is(err, services.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrArtworkNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Artwork not found"})
	default:
		_ = ctx.Error(err)
		c.Logger.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	}
}

func parseID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid artwork id"})
		return 0, false
	}
	return uint(id), true
}

func queryInt(ctx *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(ctx.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}
