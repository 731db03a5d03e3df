package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vincentnocera/residencyhours/internal/dto"
	"github.com/vincentnocera/residencyhours/internal/model"
	"github.com/vincentnocera/residencyhours/internal/service"
	pkgerrors "github.com/vincentnocera/residencyhours/pkg/errors"
	"github.com/vincentnocera/residencyhours/pkg/response"
)

// ApprovalHandler 审批模块 HTTP 处理器
type ApprovalHandler struct {
	approvalSvc service.ApprovalService
}

// NewApprovalHandler 创建 ApprovalHandler
func NewApprovalHandler(approvalSvc service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalSvc: approvalSvc}
}

// GetMatrix 审批矩阵（住院医师 × 七个自然周）
// GET /api/v1/approvals/matrix[?program_id=xxx]
func (h *ApprovalHandler) GetMatrix(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var programID *string
	if role == model.RoleProgramDirector {
		pid := GetProgramID(c)
		programID = &pid
	} else if pid := c.Query("program_id"); pid != "" {
		programID = &pid
	}

	matrix, err := h.approvalSvc.Matrix(c.Request.Context(), role, programID)
	if err != nil {
		h.handleApprovalError(c, err)
		return
	}

	response.OK(c, matrix)
}

// Approve 通过单个已提交的周计划
// POST /api/v1/approvals/:id/approve
func (h *ApprovalHandler) Approve(c *gin.Context) {
	scheduleID := c.Param("id")
	if scheduleID == "" {
		response.BadRequest(c, 10001, "周计划ID不能为空")
		return
	}

	approverID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	schedule, err := h.approvalSvc.Approve(c.Request.Context(), scheduleID, approverID, role, GetProgramID(c))
	if err != nil {
		h.handleApprovalError(c, err)
		return
	}

	response.OK(c, schedule)
}

// BulkApprove 批量通过指定周内所有已提交的周计划
// POST /api/v1/approvals/bulk
func (h *ApprovalHandler) BulkApprove(c *gin.Context) {
	approverID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.approvalSvc.BulkApprove(c.Request.Context(), approverID, role, GetProgramID(c), &req)
	if err != nil {
		h.handleApprovalError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ApprovalHandler) handleApprovalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 14001, "周计划不存在")
	case errors.Is(err, service.ErrScheduleNotSubmitted):
		response.Conflict(c, 14002, "仅已提交的周计划可审批通过")
	case errors.Is(err, service.ErrApprovalScope):
		response.Forbidden(c, 14003, "无权审批其他项目的周计划")
	case errors.Is(err, service.ErrNotWeekStart):
		response.BadRequest(c, 13002, "week_start 必须是周一")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 14004, "周计划状态已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
