package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vincentnocera/residencyhours/internal/model"
)

// TimeBlockRepository 时间块数据访问接口
type TimeBlockRepository interface {
	ListBySchedule(ctx context.Context, scheduleID string) ([]model.TimeBlock, error)
	ListBySchedules(ctx context.Context, scheduleIDs []string) ([]model.TimeBlock, error)
}

type timeBlockRepo struct {
	db *gorm.DB
}

// NewTimeBlockRepo 创建 TimeBlockRepository 实例
func NewTimeBlockRepo(db *gorm.DB) TimeBlockRepository {
	return &timeBlockRepo{db: db}
}

func (r *timeBlockRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]model.TimeBlock, error) {
	var blocks []model.TimeBlock
	err := r.db.WithContext(ctx).
		Preload("Activity").
		Where("schedule_id = ?", scheduleID).
		Order("date ASC, start_hour ASC").
		Find(&blocks).Error
	return blocks, err
}

func (r *timeBlockRepo) ListBySchedules(ctx context.Context, scheduleIDs []string) ([]model.TimeBlock, error) {
	if len(scheduleIDs) == 0 {
		return nil, nil
	}

	var blocks []model.TimeBlock
	err := r.db.WithContext(ctx).
		Where("schedule_id IN ?", scheduleIDs).
		Find(&blocks).Error
	return blocks, err
}
