// Package http 账户相关的 HTTP 处理器
package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/StefanoVidesott/WannaWork-App/internal/account/application"
	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
	"github.com/StefanoVidesott/WannaWork-App/pkg/response"
)

// AuthHandler 注册与登录的 HTTP 处理器
type AuthHandler struct {
	app *application.AccountService
}

// NewAuthHandler 创建处理器实例
func NewAuthHandler(app *application.AccountService) *AuthHandler {
	return &AuthHandler{app: app}
}

// RegisterRoutes 注册路由，均为公开端点
func (h *AuthHandler) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

type registerRequest struct {
	Role         string `json:"role" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Surname      string `json:"surname"`
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	CompanyName  string `json:"companyName"`
	Headquarters string `json:"headquarters"`
}

// Register 注册新账户
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errs.Validation(err.Error()))
		return
	}

	account, err := h.app.Register(c.Request.Context(), application.RegisterCommand{
		Role:         req.Role,
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        req.Email,
		Password:     req.Password,
		CompanyName:  req.CompanyName,
		Headquarters: req.Headquarters,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "account registered", account)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录并签发令牌
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errs.Validation(err.Error()))
		return
	}

	result, err := h.app.Login(c.Request.Context(), application.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"success": true, "token": result.Token, "account": result.Account})
}
