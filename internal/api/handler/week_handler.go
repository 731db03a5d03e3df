package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vincentnocera/residencyhours/internal/dto"
	"github.com/vincentnocera/residencyhours/internal/model"
	"github.com/vincentnocera/residencyhours/internal/service"
	"github.com/vincentnocera/residencyhours/pkg/response"
	"github.com/vincentnocera/residencyhours/pkg/timeutil"
)

// WeekHandler 周计划模块 HTTP 处理器
type WeekHandler struct {
	weekSvc service.WeekService
}

// NewWeekHandler 创建 WeekHandler
func NewWeekHandler(weekSvc service.WeekService) *WeekHandler {
	return &WeekHandler{weekSvc: weekSvc}
}

// targetUserID 解析本次操作针对的用户
// 住院医师只能操作自己；主任/管理员可通过 user_id 参数代操作
func targetUserID(c *gin.Context) (string, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return "", false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return "", false
	}

	override := c.Query("user_id")
	if override == "" || override == userID {
		return userID, true
	}
	if role == model.RoleResident {
		response.Forbidden(c, 10003, "无权操作他人的周计划")
		return "", false
	}
	return override, true
}

// GetWeek 获取某周视图
// GET /api/v1/weeks?week_start=2026-08-31[&user_id=xxx]
func (h *WeekHandler) GetWeek(c *gin.Context) {
	userID, ok := targetUserID(c)
	if !ok {
		return
	}
	role, _ := MustGetRole(c)

	weekStart, err := timeutil.ParseDate(c.Query("week_start"))
	if err != nil {
		response.BadRequest(c, 13001, "week_start 格式无效，应为 YYYY-MM-DD")
		return
	}

	week, err := h.weekSvc.GetWeek(c.Request.Context(), userID, role, weekStart)
	if err != nil {
		h.handleWeekError(c, err)
		return
	}

	response.OK(c, week)
}

// SaveWeek 全量保存某周时间块（submit=true 一并提交）
// PUT /api/v1/weeks[?user_id=xxx]
func (h *WeekHandler) SaveWeek(c *gin.Context) {
	userID, ok := targetUserID(c)
	if !ok {
		return
	}
	role, _ := MustGetRole(c)

	var req dto.SaveWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	week, err := h.weekSvc.SaveWeek(c.Request.Context(), userID, role, GetProgramID(c), &req)
	if err != nil {
		h.handleWeekError(c, err)
		return
	}

	response.OK(c, week)
}

// CopyPreviousWeek 复制上一周到指定周
// POST /api/v1/weeks/copy[?user_id=xxx]
func (h *WeekHandler) CopyPreviousWeek(c *gin.Context) {
	userID, ok := targetUserID(c)
	if !ok {
		return
	}
	role, _ := MustGetRole(c)

	var req dto.CopyWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	week, err := h.weekSvc.CopyPreviousWeek(c.Request.Context(), userID, role, &req)
	if err != nil {
		h.handleWeekError(c, err)
		return
	}

	response.OK(c, week)
}

func (h *WeekHandler) handleWeekError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotWeekStart):
		response.BadRequest(c, 13002, "week_start 必须是周一")
	case errors.Is(err, service.ErrWeekEnded):
		response.Conflict(c, 13003, "该周已结束，不可再编辑")
	case errors.Is(err, service.ErrWeekApproved):
		response.Conflict(c, 13004, "该周已审批通过，不可再编辑")
	case errors.Is(err, service.ErrBlockInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 13005, "时间块不合法", err.Error())
	case errors.Is(err, service.ErrBlockOverlap):
		response.ErrorWithDetails(c, http.StatusConflict, 13006, "时间块存在重叠", err.Error())
	case errors.Is(err, service.ErrUnassignedBlocks):
		response.BadRequest(c, 13007, "存在未分配活动的时间块，不可提交")
	case errors.Is(err, service.ErrActivityInvalid):
		response.BadRequest(c, 13008, "时间块引用的活动不存在或不可用")
	case errors.Is(err, service.ErrCopySourceNone):
		response.NotFound(c, 13101, "上一周没有可复制的记录")
	case errors.Is(err, service.ErrCopySourceDraft):
		response.Conflict(c, 13102, "上一周仍是草稿，不可复制")
	case errors.Is(err, service.ErrCopySourceEmpty):
		response.Conflict(c, 13103, "上一周没有时间块")
	default:
		response.InternalError(c)
	}
}
