package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vincentnocera/residencyhours/internal/model"
)

// ProfileRepository 用户档案数据访问接口
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	Update(ctx context.Context, profile *model.Profile) error
	ListByRole(ctx context.Context, role string, programID *string) ([]model.Profile, error)
	ListByRolePaged(ctx context.Context, role string, programID *string, offset, limit int) ([]model.Profile, int64, error)
}

// profileRepo ProfileRepository 的 GORM 实现
type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepo 创建 ProfileRepository 实例
func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).
		Preload("Program").
		Where("profile_id = ?", id).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) Update(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// ListByRole 按角色列出用户；programID 非空时限定项目范围
func (r *profileRepo) ListByRole(ctx context.Context, role string, programID *string) ([]model.Profile, error) {
	var profiles []model.Profile
	db := r.db.WithContext(ctx).Where("role = ?", role)

	if programID != nil {
		db = db.Where("program_id = ?", *programID)
	}

	err := db.Order("last_name ASC, first_name ASC, email ASC").Find(&profiles).Error
	return profiles, err
}

// ListByRolePaged 按角色分页列出用户
func (r *profileRepo) ListByRolePaged(ctx context.Context, role string, programID *string, offset, limit int) ([]model.Profile, int64, error) {
	var profiles []model.Profile
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Profile{}).Where("role = ?", role)
	if programID != nil {
		db = db.Where("program_id = ?", *programID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Program").
		Offset(offset).Limit(limit).
		Order("last_name ASC, first_name ASC, email ASC").
		Find(&profiles).Error; err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}
