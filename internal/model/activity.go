package model

// Activity 活动目录表 — 对应 activities
// 时间块引用的参照数据（如 门诊/病房/教学/科研）
type Activity struct {
	ActivityID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"activity_id"`
	ProgramID   string `gorm:"type:uuid;not null"                             json:"program_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	DisplayName string `gorm:"type:varchar(200);not null"                     json:"display_name"`
	Color       string `gorm:"type:varchar(7);not null;default:'#888888'"     json:"color"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Program *Program `gorm:"foreignKey:ProgramID;references:ProgramID" json:"program,omitempty"`
}

func (Activity) TableName() string { return "activities" }
