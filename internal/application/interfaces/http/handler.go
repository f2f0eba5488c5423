// Package http 申请相关的 HTTP 处理器
package http

import (
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/StefanoVidesott/WannaWork-App/internal/application/application"
	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
	"github.com/StefanoVidesott/WannaWork-App/pkg/middleware"
	"github.com/StefanoVidesott/WannaWork-App/pkg/response"
)

// ApplicationHandler 申请生命周期的 HTTP 处理器
type ApplicationHandler struct {
	commands *application.ApplicationCommandService
	queries  *application.ApplicationQueryService
}

// NewApplicationHandler 创建处理器实例
func NewApplicationHandler(commands *application.ApplicationCommandService, queries *application.ApplicationQueryService) *ApplicationHandler {
	return &ApplicationHandler{commands: commands, queries: queries}
}

// RegisterRoutes 注册路由，全部要求学生身份。
// extra 中间件（限流）只挂在写入端点上。
func (h *ApplicationHandler) RegisterRoutes(api *gin.RouterGroup, extra ...gin.HandlerFunc) {
	apps := api.Group("/applications")
	apps.Use(middleware.RequireRole(middleware.RoleStudent))
	{
		apps.POST("/apply", append(extra, h.Apply)...)
		apps.GET("/check/:offerId", h.Check)
		apps.GET("/mine", h.ListMine)
		apps.PATCH("/offer/:offerId/withdraw", h.Withdraw)
	}
}

type applyRequest struct {
	OfferID uint   `json:"offerId" binding:"required"`
	Message string `json:"message"`
}

// Apply 投递申请：新建返回 201，对 withdrawn 记录的重新激活返回 200
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errs.Validation(err.Error()))
		return
	}
	actorID, _ := middleware.Actor(c)

	result, err := h.commands.Apply(c.Request.Context(), application.ApplyCommand{
		StudentID: actorID,
		OfferID:   req.OfferID,
		Message:   req.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Reactivated {
		response.SuccessWithMessage(c, nethttp.StatusOK, "application reactivated", result)
		return
	}
	response.Created(c, "application submitted", result)
}

// Check 查询自己对某职位的申请状态
func (h *ApplicationHandler) Check(c *gin.Context) {
	offerID, err := parseID(c.Param("offerId"))
	if err != nil {
		response.Error(c, errs.Validation("invalid offer id"))
		return
	}
	actorID, _ := middleware.Actor(c)

	result, err := h.queries.Check(c.Request.Context(), actorID, offerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, result)
}

// ListMine 列出自己的全部申请，支持 status 与 sort 过滤
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	actorID, _ := middleware.Actor(c)

	apps, err := h.queries.ListMine(c.Request.Context(), application.ListMineQuery{
		StudentID: actorID,
		Status:    c.Query("status"),
		Sort:      c.Query("sort"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"success": true, "count": len(apps), "data": apps})
}

type withdrawRequest struct {
	Reason string `json:"reason"`
}

// Withdraw 撤回自己的申请，重复撤回幂等返回 200
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	offerID, err := parseID(c.Param("offerId"))
	if err != nil {
		response.Error(c, errs.Validation("invalid offer id"))
		return
	}
	var req withdrawRequest
	// body 可为空
	_ = c.ShouldBindJSON(&req)
	actorID, _ := middleware.Actor(c)

	result, err := h.commands.Withdraw(c.Request.Context(), application.WithdrawCommand{
		StudentID: actorID,
		OfferID:   offerID,
		Reason:    req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.AlreadyWithdrawn {
		response.SuccessWithMessage(c, nethttp.StatusOK, "application already withdrawn", result)
		return
	}
	response.SuccessWithMessage(c, nethttp.StatusOK, "application withdrawn", result)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errs.Validation("invalid id")
	}
	return uint(id), nil
}
