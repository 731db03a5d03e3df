package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vincentnocera/residencyhours/internal/dto"
	"github.com/vincentnocera/residencyhours/internal/model"
	"github.com/vincentnocera/residencyhours/internal/repository"
)

var (
	ErrProfileNotFound = errors.New("用户不存在")
	ErrProgramNotFound = errors.New("培训项目不存在")
)

// UserService 用户业务接口
type UserService interface {
	GetMe(ctx context.Context, userID string) (*dto.UserDetailResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserDetailResponse, error)
	ListResidents(ctx context.Context, programID *string, offset, limit int) ([]dto.UserResponse, int64, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetMe(ctx context.Context, userID string) (*dto.UserDetailResponse, error) {
	profile, err := s.repo.Profile.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	return toUserDetailResponse(profile), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserDetailResponse, error) {
	profile, err := s.repo.Profile.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if req.FirstName != nil {
		profile.FirstName = req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = req.LastName
	}

	if err := s.repo.Profile.Update(ctx, profile); err != nil {
		s.logger.Error("更新用户资料失败", zap.Error(err))
		return nil, err
	}
	return toUserDetailResponse(profile), nil
}

func (s *userService) ListResidents(ctx context.Context, programID *string, offset, limit int) ([]dto.UserResponse, int64, error) {
	profiles, total, err := s.repo.Profile.ListByRolePaged(ctx, model.RoleResident, programID, offset, limit)
	if err != nil {
		s.logger.Error("查询住院医师列表失败", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.UserResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, toUserResponse(&profiles[i]))
	}
	return out, total, nil
}

// ── DTO 转换 ──

func toUserResponse(p *model.Profile) dto.UserResponse {
	return dto.UserResponse{
		ID:        p.ProfileID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Role:      p.Role,
		Program:   toProgramResponse(p.Program),
	}
}

func toUserDetailResponse(p *model.Profile) *dto.UserDetailResponse {
	return &dto.UserDetailResponse{
		ID:        p.ProfileID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Role:      p.Role,
		Program:   toProgramResponse(p.Program),
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func toProgramResponse(p *model.Program) *dto.ProgramResponse {
	if p == nil {
		return nil
	}
	return &dto.ProgramResponse{
		ID:        p.ProgramID,
		Name:      p.Name,
		Specialty: p.Specialty,
	}
}
