// Package response 提供统一的 JSON 响应封装
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body 统一响应体
type Body struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Success 返回 200 成功响应
func Success(c *gin.Context, data any, message string) {
	SuccessWithStatus(c, http.StatusOK, data, message)
}

// SuccessWithStatus 返回指定状态码的成功响应
func SuccessWithStatus(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Body{Success: true, Data: data, Message: message})
}

// ErrorWithStatus 返回错误响应，details 为空时省略
func ErrorWithStatus(c *gin.Context, status int, msg string, details any) {
	if s, ok := details.(string); ok && s == "" {
		details = nil
	}
	c.AbortWithStatusJSON(status, Body{Success: false, Error: msg, Details: details})
}
