package model

import "time"

// WeekSchedule 周计划表 — 对应 schedules
// (user_id, week_start_date) 全局唯一，保存按该键 upsert
type WeekSchedule struct {
	ScheduleID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"    json:"schedule_id"`
	UserID        string     `gorm:"type:uuid;not null;uniqueIndex:uniq_schedules_user_week" json:"user_id"`
	WeekStartDate time.Time  `gorm:"type:date;not null;uniqueIndex:uniq_schedules_user_week" json:"week_start_date"`
	Status        string     `gorm:"type:varchar(20);not null;default:'draft'"         json:"status"` // draft | submitted | approved
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	ApprovedBy    *string    `gorm:"type:uuid"                                         json:"approved_by,omitempty"`
	Version       int        `gorm:"not null;default:1"                                json:"version"`
	BaseModel

	// 关联
	User   *Profile    `gorm:"foreignKey:UserID;references:ProfileID" json:"user,omitempty"`
	Blocks []TimeBlock `gorm:"foreignKey:ScheduleID"                  json:"blocks,omitempty"`
}

func (WeekSchedule) TableName() string { return "schedules" }

// TimeBlock 时间块表 — 对应 time_blocks
// start_hour 为小数小时（9.5 = 09:30），保存时整批替换而非增量更新
type TimeBlock struct {
	BlockID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"block_id"`
	ScheduleID string    `gorm:"type:uuid;not null"                             json:"schedule_id"`
	ActivityID *string   `gorm:"type:uuid"                                      json:"activity_id,omitempty"`
	Date       time.Time `gorm:"type:date;not null"                             json:"date"`
	StartHour  float64   `gorm:"type:numeric(4,2);not null"                     json:"start_hour"`
	Duration   float64   `gorm:"type:numeric(4,2);not null"                     json:"duration"`
	BaseModel

	// 关联
	Activity *Activity `gorm:"foreignKey:ActivityID;references:ActivityID" json:"activity,omitempty"`
}

func (TimeBlock) TableName() string { return "time_blocks" }
