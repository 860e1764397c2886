package handler

import (
	"errors"
	"strconv"

	"campus-social/internal/service"
	"campus-social/pkg/jwt"
	"campus-social/pkg/logger"
	"campus-social/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// currentUserID 当前登录用户ID，未认证时写入401响应并返回 false
func currentUserID(c *gin.Context) (uint, bool) {
	userID := jwt.GetUserID(c)
	if userID == 0 {
		response.Unauthorized(c, "用户未认证")
		return 0, false
	}
	return userID, true
}

// userIDParam 解析路径参数 user_id
func userIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid user_id")
		return 0, false
	}
	return uint(id), true
}

// respondError 按业务错误分类写入响应
func respondError(c *gin.Context, err error, fallback string) {
	message := err.Error()
	var e *service.Error
	if errors.As(err, &e) {
		message = e.Err.Error()
	}

	switch service.KindOf(err) {
	case service.KindNotFound:
		response.NotFound(c, message)
	case service.KindInvalidState:
		response.BadRequest(c, message)
	case service.KindUnauthorized:
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, message)
			return
		}
		response.Forbidden(c, message)
	default:
		logger.Error(fallback,
			zap.String("request_id", logger.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.ErrorWithDetails(c, 500, fallback, err)
	}
}
