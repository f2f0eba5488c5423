// Package http 职位相关的 HTTP 处理器
package http

import (
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/StefanoVidesott/WannaWork-App/internal/offer/application"
	"github.com/StefanoVidesott/WannaWork-App/internal/offer/domain"
	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
	"github.com/StefanoVidesott/WannaWork-App/pkg/middleware"
	"github.com/StefanoVidesott/WannaWork-App/pkg/response"
)

// OfferHandler 职位的 HTTP 处理器
type OfferHandler struct {
	commands *application.OfferCommandService
	queries  *application.OfferQueryService
}

// NewOfferHandler 创建处理器实例
func NewOfferHandler(commands *application.OfferCommandService, queries *application.OfferQueryService) *OfferHandler {
	return &OfferHandler{commands: commands, queries: queries}
}

// RegisterRoutes 注册路由。列表与详情对任何已认证用户开放，
// 写入端点要求雇主身份。
func (h *OfferHandler) RegisterRoutes(api *gin.RouterGroup) {
	offers := api.Group("/offers")
	{
		offers.GET("", h.ListPublished)
		offers.GET("/my-offers", middleware.RequireRole(middleware.RoleEmployer), h.MyOffers)
		offers.GET("/:id", h.GetByID)
		offers.POST("", middleware.RequireRole(middleware.RoleEmployer), h.Create)
		offers.PATCH("/:id", middleware.RequireRole(middleware.RoleEmployer), h.Update)
		offers.DELETE("/:id", middleware.RequireRole(middleware.RoleEmployer), h.Delete)
	}
}

type createOfferRequest struct {
	Position         string     `json:"position" binding:"required"`
	Description      string     `json:"description" binding:"required"`
	WorkLocation     string     `json:"workLocation"`
	WorkHours        int        `json:"workHours" binding:"required"`
	Salary           string     `json:"salary" binding:"required"`
	ContractType     string     `json:"contractType"`
	ContractDuration string     `json:"contractDuration"`
	ContactMethod    string     `json:"contactMethod"`
	ExpiresAt        *time.Time `json:"expiresAt"`
}

// Create 发布职位
func (h *OfferHandler) Create(c *gin.Context) {
	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errs.Validation(err.Error()))
		return
	}
	salary, err := decimal.NewFromString(req.Salary)
	if err != nil {
		response.Error(c, errs.Validation("invalid salary"))
		return
	}
	actorID, _ := middleware.Actor(c)

	offer, err := h.commands.Create(c.Request.Context(), application.CreateOfferCommand{
		EmployerID:       actorID,
		Position:         req.Position,
		Description:      req.Description,
		WorkLocation:     req.WorkLocation,
		WorkHours:        req.WorkHours,
		Salary:           salary,
		ContractType:     req.ContractType,
		ContractDuration: req.ContractDuration,
		ContactMethod:    req.ContactMethod,
		ExpiresAt:        req.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "offer created", offer)
}

// ListPublished 分页列出已发布职位
func (h *OfferHandler) ListPublished(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.queries.ListPublished(c.Request.Context(), application.ListPublishedQuery{
		Page:  page,
		Limit: limit,
		Sort:  c.Query("sort"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// MyOffers 雇主自己的职位列表，含申请数
func (h *OfferHandler) MyOffers(c *gin.Context) {
	actorID, _ := middleware.Actor(c)

	offers, err := h.queries.ListByEmployer(c.Request.Context(), actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"success": true, "count": len(offers), "data": offers})
}

// GetByID 职位详情
func (h *OfferHandler) GetByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, errs.Validation("invalid offer id"))
		return
	}

	offer, err := h.queries.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, offer)
}

type updateOfferRequest struct {
	Position         *string    `json:"position"`
	Description      *string    `json:"description"`
	WorkLocation     *string    `json:"workLocation"`
	WorkHours        *int       `json:"workHours"`
	Salary           *string    `json:"salary"`
	ContractType     *string    `json:"contractType"`
	ContractDuration *string    `json:"contractDuration"`
	ContactMethod    *string    `json:"contactMethod"`
	Status           *string    `json:"status"`
	ExpiresAt        *time.Time `json:"expiresAt"`
}

// Update 部分更新职位，缺省字段保持不变
func (h *OfferHandler) Update(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, errs.Validation("invalid offer id"))
		return
	}
	var req updateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errs.Validation(err.Error()))
		return
	}

	changes := domain.Update{
		Position:         req.Position,
		Description:      req.Description,
		WorkLocation:     req.WorkLocation,
		WorkHours:        req.WorkHours,
		ContractType:     req.ContractType,
		ContractDuration: req.ContractDuration,
		ContactMethod:    req.ContactMethod,
		ExpiresAt:        req.ExpiresAt,
	}
	if req.Salary != nil {
		salary, err := decimal.NewFromString(*req.Salary)
		if err != nil {
			response.Error(c, errs.Validation("invalid salary"))
			return
		}
		changes.Salary = &salary
	}
	if req.Status != nil {
		status := domain.OfferStatus(*req.Status)
		changes.Status = &status
	}
	actorID, _ := middleware.Actor(c)

	offer, err := h.commands.Update(c.Request.Context(), application.UpdateOfferCommand{
		OfferID:    id,
		EmployerID: actorID,
		Changes:    changes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, nethttp.StatusOK, "offer updated", offer)
}

type deleteOfferRequest struct {
	Reason string `json:"reason"`
}

// Delete 删除职位并级联拒绝活跃申请，reason 必填
func (h *OfferHandler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, errs.Validation("invalid offer id"))
		return
	}
	var req deleteOfferRequest
	_ = c.ShouldBindJSON(&req)
	actorID, _ := middleware.Actor(c)

	affected, err := h.commands.Delete(c.Request.Context(), application.DeleteOfferCommand{
		OfferID:    id,
		EmployerID: actorID,
		Reason:     req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{
		"success":              true,
		"message":              "offer deleted",
		"rejectedApplications": affected,
	})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errs.Validation("invalid id")
	}
	return uint(id), nil
}
