package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vincentnocera/residencyhours/internal/dto"
	"github.com/vincentnocera/residencyhours/internal/model"
)

// ── 测试辅助 ──

func setupApprovalService(t *testing.T) (*approvalService, *testWeekRepos) {
	t.Helper()
	repos := newTestWeekRepos()
	seedWeekData(repos)

	// 第二名住院医师（同项目）与第三名（其他项目）
	prog1 := "prog-1"
	prog2 := "prog-2"
	repos.program.programs[prog2] = &model.Program{ProgramID: prog2, Name: "外科规培"}
	repos.profile.profiles["res-2"] = &model.Profile{
		ProfileID: "res-2", Email: "res2@hospital.test",
		Role: model.RoleResident, ProgramID: &prog1,
	}
	repos.profile.profiles["res-3"] = &model.Profile{
		ProfileID: "res-3", Email: "res3@hospital.test",
		Role: model.RoleResident, ProgramID: &prog2,
	}

	svc := NewApprovalService(testConfig(), repos.toRepository(), zap.NewNop()).(*approvalService)
	svc.now = func() time.Time { return testNow }
	return svc, repos
}

func seedSubmitted(repos *testWeekRepos, scheduleID, userID string, weekStart time.Time) {
	submittedAt := testNow.Add(-time.Hour)
	repos.schedule.schedules[scheduleID] = &model.WeekSchedule{
		ScheduleID: scheduleID, UserID: userID, WeekStartDate: weekStart,
		Status: model.StatusSubmitted, SubmittedAt: &submittedAt,
	}
}

// ── Matrix ──

func TestApprovalService_Matrix_WindowShape(t *testing.T) {
	svc, _ := setupApprovalService(t)

	resp, err := svc.Matrix(context.Background(), model.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("Matrix 失败: %v", err)
	}
	if len(resp.Weeks) != 7 {
		t.Fatalf("期望7列, got %d", len(resp.Weeks))
	}
	if resp.Weeks[0].Offset != -4 || resp.Weeks[6].Offset != 2 {
		t.Errorf("偏移范围应为 -4..+2, got %d..%d", resp.Weeks[0].Offset, resp.Weeks[6].Offset)
	}
	if resp.Weeks[0].WeekStart != "2026-08-03" || resp.Weeks[6].WeekStart != "2026-09-14" {
		t.Errorf("窗口边界不符: %s .. %s", resp.Weeks[0].WeekStart, resp.Weeks[6].WeekStart)
	}
	if !resp.Weeks[4].IsCurrent || resp.Weeks[4].WeekStart != "2026-08-31" {
		t.Errorf("第5列应为当前周 2026-08-31, got %+v", resp.Weeks[4])
	}
	if len(resp.Residents) != 3 {
		t.Errorf("管理员应看到全部3名住院医师, got %d", len(resp.Residents))
	}
}

func TestApprovalService_Matrix_DirectorScopedToProgram(t *testing.T) {
	svc, _ := setupApprovalService(t)

	prog1 := "prog-1"
	resp, err := svc.Matrix(context.Background(), model.RoleProgramDirector, &prog1)
	if err != nil {
		t.Fatalf("Matrix 失败: %v", err)
	}
	if len(resp.Residents) != 2 {
		t.Fatalf("主任应只看到本项目2人, got %d", len(resp.Residents))
	}
	for _, row := range resp.Residents {
		if row.Resident.ID == "res-3" {
			t.Error("不应包含其他项目的住院医师")
		}
	}
}

func TestApprovalService_Matrix_DirectorWithoutProgram(t *testing.T) {
	svc, _ := setupApprovalService(t)

	if _, err := svc.Matrix(context.Background(), model.RoleProgramDirector, nil); !errors.Is(err, ErrApprovalScope) {
		t.Fatalf("期望 ErrApprovalScope, got %v", err)
	}
}

func TestApprovalService_Matrix_CellsAndTotals(t *testing.T) {
	svc, repos := setupApprovalService(t)

	seedSubmitted(repos, "sched-a", "res-1", testWeekStart)
	aid := "act-clinic"
	repos.timeBlock.blocks["sched-a"] = []model.TimeBlock{
		{BlockID: "b1", ScheduleID: "sched-a", ActivityID: &aid, Date: testWeekStart, StartHour: 8, Duration: 4},
		{BlockID: "b2", ScheduleID: "sched-a", ActivityID: &aid, Date: testWeekStart.AddDate(0, 0, 1), StartHour: 9, Duration: 1.5},
	}

	resp, err := svc.Matrix(context.Background(), model.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("Matrix 失败: %v", err)
	}

	var row *dto.ResidentRow
	for i := range resp.Residents {
		if resp.Residents[i].Resident.ID == "res-1" {
			row = &resp.Residents[i]
		}
	}
	if row == nil {
		t.Fatal("矩阵中缺少 res-1")
	}

	cell := row.Cells["2026-08-31"]
	if cell == nil || cell.Status != model.StatusSubmitted {
		t.Fatalf("当前周格应为 submitted, got %+v", cell)
	}
	if row.Totals["2026-08-31"] != 5.5 {
		t.Errorf("当前周合计期望 5.5, got %v", row.Totals["2026-08-31"])
	}
	if row.Cells["2026-08-24"] != nil {
		t.Error("无记录的周格应为 nil")
	}
}

// ── Approve ──

func TestApprovalService_Approve_Success(t *testing.T) {
	svc, repos := setupApprovalService(t)
	seedSubmitted(repos, "sched-a", "res-1", testWeekStart)

	resp, err := svc.Approve(context.Background(), "sched-a", "dir-1", model.RoleProgramDirector, "prog-1")
	if err != nil {
		t.Fatalf("审批失败: %v", err)
	}
	if resp.Status != model.StatusApproved {
		t.Errorf("期望 approved, got %s", resp.Status)
	}
	if resp.ApprovedBy == nil || *resp.ApprovedBy != "dir-1" {
		t.Errorf("审批人不符: %v", resp.ApprovedBy)
	}
	if resp.ApprovedAt == nil {
		t.Error("应记录审批时间")
	}
}

func TestApprovalService_Approve_NotSubmitted(t *testing.T) {
	svc, repos := setupApprovalService(t)

	for _, status := range []string{model.StatusDraft, model.StatusApproved} {
		repos.schedule.schedules["sched-a"] = &model.WeekSchedule{
			ScheduleID: "sched-a", UserID: "res-1", WeekStartDate: testWeekStart,
			Status: status,
		}
		_, err := svc.Approve(context.Background(), "sched-a", "dir-1", model.RoleAdmin, "")
		if !errors.Is(err, ErrScheduleNotSubmitted) {
			t.Errorf("状态 %s 期望 ErrScheduleNotSubmitted, got %v", status, err)
		}
	}
}

func TestApprovalService_Approve_NotFound(t *testing.T) {
	svc, _ := setupApprovalService(t)

	if _, err := svc.Approve(context.Background(), "nope", "dir-1", model.RoleAdmin, ""); !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("期望 ErrScheduleNotFound, got %v", err)
	}
}

func TestApprovalService_Approve_ScopeDenied(t *testing.T) {
	svc, repos := setupApprovalService(t)
	seedSubmitted(repos, "sched-a", "res-1", testWeekStart) // res-1 属于 prog-1

	_, err := svc.Approve(context.Background(), "sched-a", "dir-2", model.RoleProgramDirector, "prog-2")
	if !errors.Is(err, ErrApprovalScope) {
		t.Fatalf("期望 ErrApprovalScope, got %v", err)
	}
	if repos.schedule.schedules["sched-a"].Status != model.StatusSubmitted {
		t.Error("越权审批不应改变状态")
	}
}

// ── BulkApprove ──

// 批量通过只触碰 submitted 格：草稿与已通过原样跳过
func TestApprovalService_BulkApprove_OnlySubmitted(t *testing.T) {
	svc, repos := setupApprovalService(t)

	prevWeek := testWeekStart.AddDate(0, 0, -7)
	seedSubmitted(repos, "sched-a", "res-1", testWeekStart)
	seedSubmitted(repos, "sched-b", "res-2", testWeekStart)
	repos.schedule.schedules["sched-c"] = &model.WeekSchedule{
		ScheduleID: "sched-c", UserID: "res-1", WeekStartDate: prevWeek,
		Status: model.StatusDraft,
	}
	repos.schedule.schedules["sched-d"] = &model.WeekSchedule{
		ScheduleID: "sched-d", UserID: "res-2", WeekStartDate: prevWeek,
		Status: model.StatusApproved,
	}

	resp, err := svc.BulkApprove(context.Background(), "admin-1", model.RoleAdmin, "", &dto.BulkApproveRequest{
		WeekStarts: []string{"2026-08-31", "2026-08-24"},
	})
	if err != nil {
		t.Fatalf("批量审批失败: %v", err)
	}
	if resp.Approved != 2 || resp.Skipped != 2 || len(resp.Failed) != 0 {
		t.Fatalf("期望 approved=2 skipped=2, got %+v", resp)
	}
	if repos.schedule.schedules["sched-c"].Status != model.StatusDraft {
		t.Error("草稿格不应被触碰")
	}
	if repos.schedule.schedules["sched-a"].Status != model.StatusApproved {
		t.Error("submitted 格应被通过")
	}
}

func TestApprovalService_BulkApprove_DirectorScope(t *testing.T) {
	svc, repos := setupApprovalService(t)

	seedSubmitted(repos, "sched-a", "res-1", testWeekStart) // prog-1
	seedSubmitted(repos, "sched-b", "res-3", testWeekStart) // prog-2

	resp, err := svc.BulkApprove(context.Background(), "dir-1", model.RoleProgramDirector, "prog-1", &dto.BulkApproveRequest{
		WeekStarts: []string{"2026-08-31"},
	})
	if err != nil {
		t.Fatalf("批量审批失败: %v", err)
	}
	if resp.Approved != 1 {
		t.Errorf("主任只应通过本项目1格, got %d", resp.Approved)
	}
	if repos.schedule.schedules["sched-b"].Status != model.StatusSubmitted {
		t.Error("其他项目的格不应被触碰")
	}
}

func TestApprovalService_BulkApprove_RejectsNonMonday(t *testing.T) {
	svc, _ := setupApprovalService(t)

	_, err := svc.BulkApprove(context.Background(), "admin-1", model.RoleAdmin, "", &dto.BulkApproveRequest{
		WeekStarts: []string{"2026-09-01"},
	})
	if !errors.Is(err, ErrNotWeekStart) {
		t.Fatalf("期望 ErrNotWeekStart, got %v", err)
	}
}
