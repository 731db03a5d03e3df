package dto

// ── 周计划模块 DTO ──

// BlockPayload 保存请求中的单个时间块
// start_time 为 "HH:MM"，需落在半小时网格；duration 单位小时
type BlockPayload struct {
	ActivityID *string `json:"activity_id" binding:"omitempty,uuid"`
	StartTime  string  `json:"start_time"  binding:"required"`
	Duration   float64 `json:"duration"    binding:"required,gt=0"`
}

// SaveWeekRequest 保存整周时间块（全量替换）
// blocks 以日期键（YYYY-MM-DD）分组；submit=true 表示提交送审
type SaveWeekRequest struct {
	WeekStart string                    `json:"week_start" binding:"required,datetime=2006-01-02"`
	Blocks    map[string][]BlockPayload `json:"blocks"`
	Submit    bool                      `json:"submit"`
}

// CopyWeekRequest 复制上一周到指定周
type CopyWeekRequest struct {
	WeekStart string `json:"week_start" binding:"required,datetime=2006-01-02"`
}

// BlockResponse 时间块响应
type BlockResponse struct {
	ID         string  `json:"id"`
	ActivityID *string `json:"activity_id,omitempty"`
	Date       string  `json:"date"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Duration   float64 `json:"duration"`
}

// ScheduleResponse 周计划元信息响应
type ScheduleResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	WeekStartDate string  `json:"week_start_date"`
	Status        string  `json:"status"`
	SubmittedAt   *string `json:"submitted_at,omitempty"`
	ApprovedAt    *string `json:"approved_at,omitempty"`
	ApprovedBy    *string `json:"approved_by,omitempty"`
}

// WeekTotals 周工时汇总
type WeekTotals struct {
	ByDay      map[string]float64 `json:"by_day"`      // 日期键 → 当日合计
	ByActivity map[string]float64 `json:"by_activity"` // 活动ID → 周合计（未分配块计入 "unassigned"）
	Week       float64            `json:"week"`
	OverWeekly bool               `json:"over_weekly"` // 超过周上限（默认80h）
}

// WeekResponse 整周视图响应
// schedule 为 null 表示该周尚无记录（合法空状态）
type WeekResponse struct {
	Schedule *ScheduleResponse          `json:"schedule"`
	Blocks   map[string][]BlockResponse `json:"blocks"`
	Totals   WeekTotals                 `json:"totals"`
	Editable bool                       `json:"editable"`
}
