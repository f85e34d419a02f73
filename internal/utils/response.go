package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/where2watch/internal/apperror"
)

// HashIP 对 IP 地址进行哈希处理（用于匿名访问统计）
func HashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8]) // 只取前8字节，足够用于统计
}

// Response 统一API响应结构
type Response struct {
	Code    int    `json:"code"`    // 状态码
	Message string `json:"message"` // 消息
	Data    any    `json:"data"`    // 数据
	Success bool   `json:"success"` // 是否成功
}

// Success 返回成功响应
func Success(c *gin.Context, data any) {
	c.JSON(200, Response{
		Code:    200,
		Message: "success",
		Data:    data,
		Success: true,
	})
}

// SuccessWithMessage 返回成功响应并自定义消息
func SuccessWithMessage(c *gin.Context, message string, data any) {
	c.JSON(200, Response{
		Code:    200,
		Message: message,
		Data:    data,
		Success: true,
	})
}

// Created 返回201响应
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
		Success: true,
	})
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
		Success: false,
	})
}

// BadRequest 返回400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}

// Unauthorized 返回401错误
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "未登录"
	}
	Error(c, 401, message)
}

// InternalServerError 返回500错误
func InternalServerError(c *gin.Context, message string) {
	if message == "" {
		message = "服务器内部错误"
	}
	Error(c, 500, message)
}

// NotFound 返回404错误
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "资源不存在"
	}
	Error(c, 404, message)
}

// StatusOf 应用错误类型 -> HTTP 状态码
func StatusOf(err error) int {
	switch apperror.TypeOf(err) {
	case apperror.TypeValidation:
		return http.StatusBadRequest
	case apperror.TypeNotFound:
		return http.StatusNotFound
	case apperror.TypeUnauthorized:
		return http.StatusUnauthorized
	case apperror.TypeExternalAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondError 按错误类型返回响应，5xx 不暴露内部细节
func RespondError(c *gin.Context, err error) {
	code := StatusOf(err)
	message := err.Error()
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
		message = "服务器内部错误"
	}
	Error(c, code, message)
}
