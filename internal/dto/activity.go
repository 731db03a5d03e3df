package dto

// ── 活动目录模块 DTO ──

// ActivityListRequest 活动列表查询参数
type ActivityListRequest struct {
	ProgramID       string `form:"program_id"       binding:"omitempty,uuid"`
	IncludeInactive bool   `form:"include_inactive"`
}

// CreateActivityRequest 创建活动请求
type CreateActivityRequest struct {
	ProgramID   string `json:"program_id"   binding:"required,uuid"`
	Name        string `json:"name"         binding:"required,min=1,max=100"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=200"`
	Color       string `json:"color"        binding:"required,hexcolor"`
}

// UpdateActivityRequest 更新活动请求
type UpdateActivityRequest struct {
	Name        *string `json:"name"         binding:"omitempty,min=1,max=100"`
	DisplayName *string `json:"display_name" binding:"omitempty,min=1,max=200"`
	Color       *string `json:"color"        binding:"omitempty,hexcolor"`
	IsActive    *bool   `json:"is_active"`
}

// ActivityResponse 活动响应
type ActivityResponse struct {
	ID          string `json:"id"`
	ProgramID   string `json:"program_id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Color       string `json:"color"`
	IsActive    bool   `json:"is_active"`
}
