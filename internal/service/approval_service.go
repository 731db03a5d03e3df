package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vincentnocera/residencyhours/config"
	"github.com/vincentnocera/residencyhours/internal/dto"
	"github.com/vincentnocera/residencyhours/internal/model"
	"github.com/vincentnocera/residencyhours/internal/repository"
	pkgerrors "github.com/vincentnocera/residencyhours/pkg/errors"
	"github.com/vincentnocera/residencyhours/pkg/timeutil"
)

var (
	ErrScheduleNotFound     = errors.New("周计划不存在")
	ErrScheduleNotSubmitted = errors.New("仅已提交的周计划可审批通过")
	ErrApprovalScope        = errors.New("无权审批其他项目的周计划")
)

// 审批矩阵窗口：当前周前四周到后两周
const (
	matrixWeeksBefore = 4
	matrixWeeksAfter  = 2
)

// ApprovalService 审批业务接口
type ApprovalService interface {
	Matrix(ctx context.Context, role string, programID *string) (*dto.MatrixResponse, error)
	Approve(ctx context.Context, scheduleID, approverID, approverRole string, approverProgramID string) (*dto.ScheduleResponse, error)
	BulkApprove(ctx context.Context, approverID, approverRole string, approverProgramID string, req *dto.BulkApproveRequest) (*dto.BulkApproveResponse, error)
}

type approvalService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewApprovalService 创建 ApprovalService 实例
func NewApprovalService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ApprovalService {
	return &approvalService{
		cfg:    cfg,
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Matrix 审批矩阵：行=住院医师，列=七个自然周，格=该周计划状态
// 项目主任只能看本项目；管理员可按 program_id 过滤或查看全部
func (s *approvalService) Matrix(ctx context.Context, role string, programID *string) (*dto.MatrixResponse, error) {
	if role == model.RoleProgramDirector && programID == nil {
		return nil, ErrApprovalScope
	}

	residents, err := s.repo.Profile.ListByRole(ctx, model.RoleResident, programID)
	if err != nil {
		s.logger.Error("查询住院医师列表失败", zap.Error(err))
		return nil, err
	}

	currentWeek := timeutil.WeekStart(s.now())
	weeks := make([]dto.MatrixWeek, 0, matrixWeeksBefore+matrixWeeksAfter+1)
	weekStarts := make([]time.Time, 0, cap(weeks))
	for offset := -matrixWeeksBefore; offset <= matrixWeeksAfter; offset++ {
		ws := currentWeek.AddDate(0, 0, offset*7)
		weekStarts = append(weekStarts, ws)
		weeks = append(weeks, dto.MatrixWeek{
			WeekStart: timeutil.DateKey(ws),
			Offset:    offset,
			IsCurrent: offset == 0,
		})
	}

	userIDs := make([]string, 0, len(residents))
	for i := range residents {
		userIDs = append(userIDs, residents[i].ProfileID)
	}

	// 单查询拉全矩阵，避免 行×列 次往返
	schedules, err := s.repo.Schedule.ListByUsersAndWeeks(ctx, userIDs, weekStarts)
	if err != nil {
		s.logger.Error("查询周计划矩阵失败", zap.Error(err))
		return nil, err
	}

	scheduleIDs := make([]string, 0, len(schedules))
	for i := range schedules {
		scheduleIDs = append(scheduleIDs, schedules[i].ScheduleID)
	}
	blocks, err := s.repo.TimeBlock.ListBySchedules(ctx, scheduleIDs)
	if err != nil {
		s.logger.Error("查询时间块失败", zap.Error(err))
		return nil, err
	}
	hoursBySchedule := make(map[string]float64, len(schedules))
	for _, b := range blocks {
		hoursBySchedule[b.ScheduleID] += b.Duration
	}

	type cellKey struct {
		userID string
		week   string
	}
	cells := make(map[cellKey]*model.WeekSchedule, len(schedules))
	for i := range schedules {
		sc := &schedules[i]
		cells[cellKey{sc.UserID, timeutil.DateKey(sc.WeekStartDate)}] = sc
	}

	rows := make([]dto.ResidentRow, 0, len(residents))
	for i := range residents {
		r := &residents[i]
		row := dto.ResidentRow{
			Resident: toUserResponse(r),
			Cells:    make(map[string]*dto.ScheduleResponse, len(weeks)),
			Totals:   make(map[string]float64, len(weeks)),
		}
		for _, w := range weeks {
			sc := cells[cellKey{r.ProfileID, w.WeekStart}]
			if sc == nil {
				row.Cells[w.WeekStart] = nil
				continue
			}
			row.Cells[w.WeekStart] = toScheduleResponse(sc)
			row.Totals[w.WeekStart] = hoursBySchedule[sc.ScheduleID]
		}
		rows = append(rows, row)
	}

	return &dto.MatrixResponse{Weeks: weeks, Residents: rows}, nil
}

// Approve 通过单个已提交的周计划
// 落库走条件更新：并发下状态已变化时不会二次通过
func (s *approvalService) Approve(ctx context.Context, scheduleID, approverID, approverRole string, approverProgramID string) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询周计划失败", zap.Error(err))
		return nil, err
	}

	if err := s.checkScope(schedule, approverRole, approverProgramID); err != nil {
		return nil, err
	}
	if schedule.Status != model.StatusSubmitted {
		return nil, ErrScheduleNotSubmitted
	}

	ok, err := s.repo.Schedule.ApproveSubmitted(ctx, scheduleID, approverID)
	if err != nil {
		s.logger.Error("审批更新失败", zap.Error(err))
		return nil, err
	}
	if !ok {
		// 读到 submitted 但条件更新未命中：状态已被并发修改
		return nil, pkgerrors.ErrOptimisticLock
	}

	approved, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("周计划已审批通过",
		zap.String("schedule_id", scheduleID),
		zap.String("approver_id", approverID),
	)
	return toScheduleResponse(approved), nil
}

// BulkApprove 批量通过指定周内所有已提交的周计划
// 每格独立落库：个别失败不回滚其余
func (s *approvalService) BulkApprove(ctx context.Context, approverID, approverRole string, approverProgramID string, req *dto.BulkApproveRequest) (*dto.BulkApproveResponse, error) {
	var programScope *string
	if approverRole == model.RoleProgramDirector {
		if approverProgramID == "" {
			return nil, ErrApprovalScope
		}
		programScope = &approverProgramID
	}

	residents, err := s.repo.Profile.ListByRole(ctx, model.RoleResident, programScope)
	if err != nil {
		return nil, err
	}
	userIDs := make([]string, 0, len(residents))
	for i := range residents {
		userIDs = append(userIDs, residents[i].ProfileID)
	}

	weekStarts := make([]time.Time, 0, len(req.WeekStarts))
	for _, ws := range req.WeekStarts {
		t, err := timeutil.ParseDate(ws)
		if err != nil {
			return nil, ErrNotWeekStart
		}
		if !t.Equal(timeutil.WeekStart(t)) {
			return nil, ErrNotWeekStart
		}
		weekStarts = append(weekStarts, t)
	}

	schedules, err := s.repo.Schedule.ListByUsersAndWeeks(ctx, userIDs, weekStarts)
	if err != nil {
		return nil, err
	}

	resp := &dto.BulkApproveResponse{}
	for i := range schedules {
		sc := &schedules[i]
		if sc.Status != model.StatusSubmitted {
			resp.Skipped++
			continue
		}
		ok, err := s.repo.Schedule.ApproveSubmitted(ctx, sc.ScheduleID, approverID)
		switch {
		case err != nil:
			s.logger.Error("批量审批单格失败",
				zap.String("schedule_id", sc.ScheduleID),
				zap.Error(err),
			)
			resp.Failed = append(resp.Failed, dto.BulkApproveFailure{
				ScheduleID: sc.ScheduleID,
				Reason:     err.Error(),
			})
		case !ok:
			resp.Skipped++
		default:
			resp.Approved++
		}
	}

	s.logger.Info("批量审批完成",
		zap.String("approver_id", approverID),
		zap.Int("approved", resp.Approved),
		zap.Int("skipped", resp.Skipped),
		zap.Int("failed", len(resp.Failed)),
	)
	return resp, nil
}

func (s *approvalService) checkScope(schedule *model.WeekSchedule, role, programID string) error {
	if role == model.RoleAdmin {
		return nil
	}
	if role != model.RoleProgramDirector {
		return ErrApprovalScope
	}
	if schedule.User == nil || schedule.User.ProgramID == nil || *schedule.User.ProgramID != programID {
		return ErrApprovalScope
	}
	return nil
}
