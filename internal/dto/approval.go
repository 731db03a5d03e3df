package dto

// ── 审批模块 DTO ──

// MatrixWeek 审批矩阵中的一列（一个自然周）
type MatrixWeek struct {
	WeekStart string `json:"week_start"`
	Offset    int    `json:"offset"` // 相对当前周的偏移，-4..+2
	IsCurrent bool   `json:"is_current"`
}

// ResidentRow 审批矩阵中的一行（一名住院医师）
// cells 以周起始日期为键；无记录的周为 null
type ResidentRow struct {
	Resident UserResponse                 `json:"resident"`
	Cells    map[string]*ScheduleResponse `json:"cells"`
	Totals   map[string]float64           `json:"totals"` // 周起始日期 → 周合计工时
}

// MatrixResponse 审批矩阵响应
type MatrixResponse struct {
	Weeks     []MatrixWeek  `json:"weeks"`
	Residents []ResidentRow `json:"residents"`
}

// BulkApproveRequest 批量通过指定周内所有已提交的计划
type BulkApproveRequest struct {
	WeekStarts []string `json:"week_starts" binding:"required,min=1,dive,datetime=2006-01-02"`
}

// BulkApproveFailure 批量审批中的单条失败记录
type BulkApproveFailure struct {
	ScheduleID string `json:"schedule_id"`
	Reason     string `json:"reason"`
}

// BulkApproveResponse 批量审批结果
type BulkApproveResponse struct {
	Approved int                  `json:"approved"`
	Skipped  int                  `json:"skipped"`
	Failed   []BulkApproveFailure `json:"failed,omitempty"`
}
