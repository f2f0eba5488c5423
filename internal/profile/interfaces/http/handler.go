// Package http 求职档案相关的 HTTP 处理器
package http

import (
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/StefanoVidesott/WannaWork-App/internal/profile/application"
	"github.com/StefanoVidesott/WannaWork-App/internal/profile/domain"
	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
	"github.com/StefanoVidesott/WannaWork-App/pkg/middleware"
	"github.com/StefanoVidesott/WannaWork-App/pkg/response"
)

// ProfileHandler 档案的 HTTP 处理器
type ProfileHandler struct {
	app *application.ProfileService
}

// NewProfileHandler 创建处理器实例
func NewProfileHandler(app *application.ProfileService) *ProfileHandler {
	return &ProfileHandler{app: app}
}

// RegisterRoutes 注册路由，全部要求学生身份
func (h *ProfileHandler) RegisterRoutes(api *gin.RouterGroup) {
	profiles := api.Group("/availabilityProfile")
	profiles.Use(middleware.RequireRole(middleware.RoleStudent))
	{
		profiles.POST("", h.Create)
		profiles.GET("/me", h.GetMine)
		profiles.PATCH("/:id", h.Update)
		profiles.DELETE("/:id", h.Delete)
	}
}

type createProfileRequest struct {
	Phone         string     `json:"phone"`
	Skills        string     `json:"skills"`
	Experience    string     `json:"experience"`
	WorkHours     int        `json:"workHours"`
	AvailableFrom *time.Time `json:"availableFrom"`
	Visible       *bool      `json:"visible"`
}

// Create 创建档案，缺省即对雇主可见
func (h *ProfileHandler) Create(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errs.Validation(err.Error()))
		return
	}
	actorID, _ := middleware.Actor(c)

	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}
	profile, err := h.app.Create(c.Request.Context(), application.CreateProfileCommand{
		StudentID:     actorID,
		Phone:         req.Phone,
		Skills:        req.Skills,
		Experience:    req.Experience,
		WorkHours:     req.WorkHours,
		AvailableFrom: req.AvailableFrom,
		Visible:       visible,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "availability profile created", profile)
}

// GetMine 返回自己的档案
func (h *ProfileHandler) GetMine(c *gin.Context) {
	actorID, _ := middleware.Actor(c)

	profile, err := h.app.GetMine(c.Request.Context(), actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

type updateProfileRequest struct {
	Phone         *string    `json:"phone"`
	Skills        *string    `json:"skills"`
	Experience    *string    `json:"experience"`
	WorkHours     *int       `json:"workHours"`
	AvailableFrom *time.Time `json:"availableFrom"`
	Status        *string    `json:"status"`
}

// Update 部分更新档案
func (h *ProfileHandler) Update(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, errs.Validation("invalid profile id"))
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errs.Validation(err.Error()))
		return
	}

	changes := domain.Update{
		Phone:         req.Phone,
		Skills:        req.Skills,
		Experience:    req.Experience,
		WorkHours:     req.WorkHours,
		AvailableFrom: req.AvailableFrom,
	}
	if req.Status != nil {
		status := domain.ProfileStatus(*req.Status)
		changes.Status = &status
	}
	actorID, _ := middleware.Actor(c)

	profile, err := h.app.Update(c.Request.Context(), id, actorID, changes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, nethttp.StatusOK, "availability profile updated", profile)
}

type deleteProfileRequest struct {
	Password string `json:"password"`
}

// Delete 删除档案，需密码确认，级联撤回活跃申请
func (h *ProfileHandler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, errs.Validation("invalid profile id"))
		return
	}
	var req deleteProfileRequest
	_ = c.ShouldBindJSON(&req)
	actorID, _ := middleware.Actor(c)

	result, err := h.app.Delete(c.Request.Context(), application.DeleteProfileCommand{
		ProfileID: id,
		StudentID: actorID,
		Password:  req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, nethttp.StatusOK, "availability profile deleted", result)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errs.Validation("invalid id")
	}
	return uint(id), nil
}
