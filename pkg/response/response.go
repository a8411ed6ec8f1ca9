package response

import (
	"errors"
	"net/http"

	"mini_shop/pkg/apperr"
	"mini_shop/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: msg,
		Data:    data,
	})
}

// Message 仅返回提示信息
func Message(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: msg,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// HandleError 将 service 返回的错误映射为 HTTP 响应
func HandleError(c *gin.Context, err error) {
	httpCode, errCode := classify(err)
	if httpCode == http.StatusInternalServerError {
		logger.Log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		Error(c, httpCode, errCode, "Internal server error")
		return
	}
	Error(c, httpCode, errCode, apperr.Message(err))
}

func classify(err error) (int, int) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, ErrNotFound
	case errors.Is(err, apperr.ErrInsufficientStock):
		return http.StatusBadRequest, ErrInsufficientStock
	case errors.Is(err, apperr.ErrInvalidState):
		return http.StatusBadRequest, ErrInvalidState
	case errors.Is(err, apperr.ErrExpiredWindow):
		return http.StatusBadRequest, ErrReturnExpired
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, ErrNoPermission
	case errors.Is(err, apperr.ErrAuthFailed):
		return http.StatusUnauthorized, ErrAuthFailed
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, ErrConflict
	case errors.Is(err, apperr.ErrInvalidParam):
		return http.StatusBadRequest, ErrInvalidParam
	default:
		return http.StatusInternalServerError, ErrServerInternal
	}
}
