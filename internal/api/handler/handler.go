package handler

import "github.com/vincentnocera/residencyhours/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Activity *ActivityHandler
	Week     *WeekHandler
	Approval *ApprovalHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		User:     NewUserHandler(svc.User),
		Activity: NewActivityHandler(svc.Activity),
		Week:     NewWeekHandler(svc.Week),
		Approval: NewApprovalHandler(svc.Approval),
		Export:   NewExportHandler(svc.Export),
	}
}
