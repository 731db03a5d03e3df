package service

import (
	"go.uber.org/zap"

	"github.com/vincentnocera/residencyhours/config"
	"github.com/vincentnocera/residencyhours/internal/repository"
	"github.com/vincentnocera/residencyhours/pkg/jwt"
	"github.com/vincentnocera/residencyhours/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth     AuthService
	User     UserService
	Activity ActivityService
	Week     WeekService
	Approval ApprovalService
	Export   ExportService
}

// NewService 创建 Service 聚合
// rdb 允许为 nil（Redis 不可用时降级：跳过黑名单校验）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	week := NewWeekService(cfg, repo, logger)
	return &Service{
		Auth:     NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:     NewUserService(repo, logger),
		Activity: NewActivityService(repo, logger),
		Week:     week,
		Approval: NewApprovalService(cfg, repo, logger),
		Export:   NewExportService(cfg, repo, logger),
	}
}
