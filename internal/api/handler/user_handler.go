package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vincentnocera/residencyhours/internal/dto"
	"github.com/vincentnocera/residencyhours/internal/model"
	"github.com/vincentnocera/residencyhours/internal/service"
	"github.com/vincentnocera/residencyhours/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// GetMe 获取当前用户信息
// GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetMe(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			response.NotFound(c, 11101, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

// UpdateMe 更新当前用户资料
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.userSvc.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			response.NotFound(c, 11101, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

// ListResidents 获取住院医师列表（主任/管理员）
// GET /api/v1/users/residents
func (h *UserHandler) ListResidents(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.ResidentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	// 项目主任强制限定本项目；管理员可自由过滤
	var programID *string
	if role == model.RoleProgramDirector {
		pid := GetProgramID(c)
		if pid == "" {
			response.Forbidden(c, 10003, "无权限访问")
			return
		}
		programID = &pid
	} else if req.ProgramID != "" {
		programID = &req.ProgramID
	}

	residents, total, err := h.userSvc.ListResidents(c.Request.Context(), programID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, residents, total, req.GetPage(), req.GetPageSize())
}
