package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Profile   ProfileRepository
	Program   ProgramRepository
	Activity  ActivityRepository
	Schedule  ScheduleRepository
	TimeBlock TimeBlockRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Profile:   NewProfileRepo(db),
		Program:   NewProgramRepo(db),
		Activity:  NewActivityRepo(db),
		Schedule:  NewScheduleRepo(db),
		TimeBlock: NewTimeBlockRepo(db),
	}
}
