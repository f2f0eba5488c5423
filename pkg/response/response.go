// Package response 提供统一的 HTTP 响应包装
package response

import (
	"net/http"

	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
	"github.com/gin-gonic/gin"
)

// Body 统一响应结构
type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 返回 200 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// SuccessWithMessage 返回带消息的成功响应
func SuccessWithMessage(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Body{Success: true, Message: message, Data: data})
}

// Created 返回 201 创建成功响应
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Message: message, Data: data})
}

// ErrorWithStatus 返回指定状态码的错误响应
func ErrorWithStatus(c *gin.Context, status int, message string) {
	c.JSON(status, Body{Success: false, Message: message})
}

// Error 根据错误分类返回对应状态码的错误响应
func Error(c *gin.Context, err error) {
	ErrorWithStatus(c, errs.HTTPStatus(err), errs.PublicMessage(err))
}
