package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vincentnocera/residencyhours/internal/model"
)

// ScheduleRepository 周计划数据访问接口
type ScheduleRepository interface {
	GetByID(ctx context.Context, id string) (*model.WeekSchedule, error)
	GetByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (*model.WeekSchedule, error)
	SaveWithBlocks(ctx context.Context, schedule *model.WeekSchedule, blocks []model.TimeBlock) error
	ListByUsersAndWeeks(ctx context.Context, userIDs []string, weekStarts []time.Time) ([]model.WeekSchedule, error)
	ApproveSubmitted(ctx context.Context, scheduleID, approvedBy string) (bool, error)
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.WeekSchedule, error) {
	var schedule model.WeekSchedule
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) GetByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (*model.WeekSchedule, error) {
	var schedule model.WeekSchedule
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND week_start_date = ?", userID, weekStart).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// SaveWithBlocks 单事务保存周计划与整周时间块
// 按 (user_id, week_start_date) 插入或更新周计划，冲突时只覆盖状态相关字段；
// 时间块先删后插，状态与块在同一事务内落库
func (r *scheduleRepo) SaveWithBlocks(ctx context.Context, schedule *model.WeekSchedule, blocks []model.TimeBlock) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "week_start_date"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"status", "submitted_at", "approved_at", "approved_by", "updated_at",
				}),
			}, clause.Returning{}).
			Create(schedule).Error; err != nil {
			return err
		}

		if err := tx.Where("schedule_id = ?", schedule.ScheduleID).
			Delete(&model.TimeBlock{}).Error; err != nil {
			return err
		}
		if len(blocks) == 0 {
			return nil
		}
		for i := range blocks {
			blocks[i].ScheduleID = schedule.ScheduleID
		}
		return tx.Create(&blocks).Error
	})
}

// ListByUsersAndWeeks 一次查询拉取审批矩阵需要的所有周计划
func (r *scheduleRepo) ListByUsersAndWeeks(ctx context.Context, userIDs []string, weekStarts []time.Time) ([]model.WeekSchedule, error) {
	if len(userIDs) == 0 || len(weekStarts) == 0 {
		return nil, nil
	}

	var schedules []model.WeekSchedule
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND week_start_date IN ?", userIDs, weekStarts).
		Find(&schedules).Error
	return schedules, err
}

// ApproveSubmitted 条件更新：仅当状态为 submitted 时通过
// 返回 false 表示状态已被并发修改或本就不是 submitted
func (r *scheduleRepo) ApproveSubmitted(ctx context.Context, scheduleID, approvedBy string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.WeekSchedule{}).
		Where("schedule_id = ? AND status = ?", scheduleID, model.StatusSubmitted).
		Updates(map[string]interface{}{
			"status":      model.StatusApproved,
			"approved_at": gorm.Expr("NOW()"),
			"approved_by": approvedBy,
			"version":     gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
