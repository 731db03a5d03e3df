package model

// Profile 用户档案表 — 对应 profiles
type Profile struct {
	ProfileID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"profile_id"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	FirstName    *string `gorm:"type:varchar(100)"                              json:"first_name,omitempty"`
	LastName     *string `gorm:"type:varchar(100)"                              json:"last_name,omitempty"`
	Role         string  `gorm:"type:varchar(20);not null;default:'resident'"   json:"role"` // admin | program_director | resident
	ProgramID    *string `gorm:"type:uuid"                                      json:"program_id,omitempty"`
	BaseModel

	// 关联
	Program *Program `gorm:"foreignKey:ProgramID;references:ProgramID" json:"program,omitempty"`
}

func (Profile) TableName() string { return "profiles" }

// FullName 拼接显示用姓名，空字段跳过
func (p *Profile) FullName() string {
	name := ""
	if p.FirstName != nil {
		name = *p.FirstName
	}
	if p.LastName != nil {
		if name != "" {
			name += " "
		}
		name += *p.LastName
	}
	if name == "" {
		return p.Email
	}
	return name
}
