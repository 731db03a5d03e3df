package model

// Program 培训项目表 — 对应 programs
type Program struct {
	ProgramID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"program_id"`
	Name      string `gorm:"type:varchar(200);not null"                     json:"name"`
	Specialty string `gorm:"type:varchar(100);not null;default:''"          json:"specialty"`
	BaseModel
}

func (Program) TableName() string { return "programs" }
