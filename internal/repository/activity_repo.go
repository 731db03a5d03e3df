package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vincentnocera/residencyhours/internal/model"
)

// ActivityRepository 培训活动数据访问接口
type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	GetByID(ctx context.Context, id string) (*model.Activity, error)
	List(ctx context.Context, programID string, includeInactive bool) ([]model.Activity, error)
	Update(ctx context.Context, activity *model.Activity) error
}

type activityRepo struct {
	db *gorm.DB
}

// NewActivityRepo 创建 ActivityRepository 实例
func NewActivityRepo(db *gorm.DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, activity *model.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepo) GetByID(ctx context.Context, id string) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", id).
		First(&activity).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *activityRepo) List(ctx context.Context, programID string, includeInactive bool) ([]model.Activity, error) {
	var activities []model.Activity
	db := r.db.WithContext(ctx).Where("program_id = ?", programID)

	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}

	err := db.Order("name ASC").Find(&activities).Error
	return activities, err
}

func (r *activityRepo) Update(ctx context.Context, activity *model.Activity) error {
	return r.db.WithContext(ctx).Save(activity).Error
}
