package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vincentnocera/residencyhours/internal/dto"
	"github.com/vincentnocera/residencyhours/internal/model"
	"github.com/vincentnocera/residencyhours/internal/service"
	"github.com/vincentnocera/residencyhours/pkg/response"
)

// ActivityHandler 活动目录模块 HTTP 处理器
type ActivityHandler struct {
	activitySvc service.ActivityService
}

// NewActivityHandler 创建 ActivityHandler
func NewActivityHandler(activitySvc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activitySvc: activitySvc}
}

// ListActivities 获取活动列表
// GET /api/v1/activities?program_id=xxx&include_inactive=true
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.ActivityListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	// 非管理员默认查自己项目的活动
	programID := req.ProgramID
	if role != model.RoleAdmin || programID == "" {
		if pid := GetProgramID(c); pid != "" {
			programID = pid
		}
	}
	if programID == "" {
		response.BadRequest(c, 12001, "program_id 不能为空")
		return
	}

	activities, err := h.activitySvc.List(c.Request.Context(), programID, req.IncludeInactive)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": activities})
}

// CreateActivity 创建活动（管理员）
// POST /api/v1/activities
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	var req dto.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	activity, err := h.activitySvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.Created(c, activity)
}

// UpdateActivity 更新活动（管理员）
// PATCH /api/v1/activities/:id
func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "活动ID不能为空")
		return
	}

	var req dto.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	activity, err := h.activitySvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, activity)
}

func (h *ActivityHandler) handleActivityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		response.NotFound(c, 12101, "活动不存在")
	case errors.Is(err, service.ErrProgramNotFound):
		response.BadRequest(c, 12102, "培训项目不存在")
	default:
		response.InternalError(c)
	}
}
