package dto

// ── 用户模块 DTO ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID        string           `json:"id"`
	Email     string           `json:"email"`
	FirstName *string          `json:"first_name,omitempty"`
	LastName  *string          `json:"last_name,omitempty"`
	Role      string           `json:"role"`
	Program   *ProgramResponse `json:"program,omitempty"`
}

// UserDetailResponse 用户详细信息（GET /users/me）
type UserDetailResponse struct {
	ID        string           `json:"id"`
	Email     string           `json:"email"`
	FirstName *string          `json:"first_name,omitempty"`
	LastName  *string          `json:"last_name,omitempty"`
	Role      string           `json:"role"`
	Program   *ProgramResponse `json:"program,omitempty"`
	CreatedAt string           `json:"created_at"`
}

// ProgramResponse 培训项目简要信息
type ProgramResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
}

// UpdateProfileRequest 更新个人资料请求
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name"  binding:"omitempty,max=100"`
}

// ResidentListRequest 住院医师列表查询参数
// program_id 为空时返回全部（仅 admin 可不限定项目）
type ResidentListRequest struct {
	PaginationRequest
	ProgramID string `form:"program_id" binding:"omitempty,uuid"`
}
