package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vincentnocera/residencyhours/internal/dto"
	"github.com/vincentnocera/residencyhours/internal/model"
	"github.com/vincentnocera/residencyhours/internal/repository"
)

var ErrActivityNotFound = errors.New("活动不存在")

// ActivityService 活动目录业务接口
type ActivityService interface {
	List(ctx context.Context, programID string, includeInactive bool) ([]dto.ActivityResponse, error)
	Create(ctx context.Context, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateActivityRequest) (*dto.ActivityResponse, error)
}

type activityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewActivityService 创建 ActivityService 实例
func NewActivityService(repo *repository.Repository, logger *zap.Logger) ActivityService {
	return &activityService{repo: repo, logger: logger}
}

func (s *activityService) List(ctx context.Context, programID string, includeInactive bool) ([]dto.ActivityResponse, error) {
	activities, err := s.repo.Activity.List(ctx, programID, includeInactive)
	if err != nil {
		s.logger.Error("查询活动列表失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.ActivityResponse, 0, len(activities))
	for i := range activities {
		out = append(out, toActivityResponse(&activities[i]))
	}
	return out, nil
}

func (s *activityService) Create(ctx context.Context, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error) {
	if _, err := s.repo.Program.GetByID(ctx, req.ProgramID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	activity := &model.Activity{
		ProgramID:   req.ProgramID,
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Color:       req.Color,
		IsActive:    true,
	}
	if err := s.repo.Activity.Create(ctx, activity); err != nil {
		s.logger.Error("创建活动失败", zap.Error(err))
		return nil, err
	}

	resp := toActivityResponse(activity)
	return &resp, nil
}

func (s *activityService) Update(ctx context.Context, id string, req *dto.UpdateActivityRequest) (*dto.ActivityResponse, error) {
	activity, err := s.repo.Activity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		activity.Name = *req.Name
	}
	if req.DisplayName != nil {
		activity.DisplayName = *req.DisplayName
	}
	if req.Color != nil {
		activity.Color = *req.Color
	}
	if req.IsActive != nil {
		activity.IsActive = *req.IsActive
	}

	if err := s.repo.Activity.Update(ctx, activity); err != nil {
		s.logger.Error("更新活动失败", zap.Error(err))
		return nil, err
	}

	resp := toActivityResponse(activity)
	return &resp, nil
}

func toActivityResponse(a *model.Activity) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:          a.ActivityID,
		ProgramID:   a.ProgramID,
		Name:        a.Name,
		DisplayName: a.DisplayName,
		Color:       a.Color,
		IsActive:    a.IsActive,
	}
}
