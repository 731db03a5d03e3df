package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vincentnocera/residencyhours/config"
	"github.com/vincentnocera/residencyhours/internal/dto"
	"github.com/vincentnocera/residencyhours/internal/model"
	"github.com/vincentnocera/residencyhours/internal/repository"
	"github.com/vincentnocera/residencyhours/internal/timegrid"
	"github.com/vincentnocera/residencyhours/pkg/timeutil"
)

var (
	ErrNotWeekStart     = errors.New("week_start 必须是周一")
	ErrWeekEnded        = errors.New("该周已结束，不可再编辑")
	ErrWeekApproved     = errors.New("该周已审批通过，不可再编辑")
	ErrBlockInvalid     = errors.New("时间块参数无效")
	ErrBlockOverlap     = errors.New("时间块存在重叠")
	ErrUnassignedBlocks = errors.New("存在未分配活动的时间块，不可提交")
	ErrActivityInvalid  = errors.New("时间块引用的活动不存在或不可用")
	ErrCopySourceNone   = errors.New("上一周没有可复制的记录")
	ErrCopySourceDraft  = errors.New("上一周仍是草稿，不可复制")
	ErrCopySourceEmpty  = errors.New("上一周没有时间块")
)

// UnassignedKey 工时汇总中未分配活动块的聚合键
const UnassignedKey = "unassigned"

// WeekService 周计划业务接口
type WeekService interface {
	GetWeek(ctx context.Context, userID, role string, weekStart time.Time) (*dto.WeekResponse, error)
	SaveWeek(ctx context.Context, userID, role, programID string, req *dto.SaveWeekRequest) (*dto.WeekResponse, error)
	CopyPreviousWeek(ctx context.Context, userID, role string, req *dto.CopyWeekRequest) (*dto.WeekResponse, error)
}

type weekService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewWeekService 创建 WeekService 实例
func NewWeekService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) WeekService {
	return &weekService{
		cfg:    cfg,
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetWeek 读取某用户某周的视图；周记录不存在是合法空状态，不隐式创建
func (s *weekService) GetWeek(ctx context.Context, userID, role string, weekStart time.Time) (*dto.WeekResponse, error) {
	if !weekStart.Equal(timeutil.WeekStart(weekStart)) {
		return nil, ErrNotWeekStart
	}

	schedule, err := s.repo.Schedule.GetByUserAndWeek(ctx, userID, weekStart)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.buildResponse(nil, nil, role, weekStart), nil
		}
		s.logger.Error("查询周计划失败", zap.Error(err))
		return nil, err
	}

	blocks, err := s.repo.TimeBlock.ListBySchedule(ctx, schedule.ScheduleID)
	if err != nil {
		s.logger.Error("查询时间块失败", zap.Error(err))
		return nil, err
	}

	return s.buildResponse(schedule, blocks, role, weekStart), nil
}

// SaveWeek 全量保存一周的时间块，submit=true 时一并提交送审
func (s *weekService) SaveWeek(ctx context.Context, userID, role, programID string, req *dto.SaveWeekRequest) (*dto.WeekResponse, error) {
	weekStart, err := timeutil.ParseDate(req.WeekStart)
	if err != nil {
		return nil, ErrBlockInvalid
	}
	if !weekStart.Equal(timeutil.WeekStart(weekStart)) {
		return nil, ErrNotWeekStart
	}

	now := s.now()
	if !now.Before(weekStart.AddDate(0, 0, 7)) {
		return nil, ErrWeekEnded
	}

	existing, err := s.repo.Schedule.GetByUserAndWeek(ctx, userID, weekStart)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询周计划失败", zap.Error(err))
		return nil, err
	}
	if existing != nil && existing.Status == model.StatusApproved && role == model.RoleResident {
		return nil, ErrWeekApproved
	}

	// 服务端重建网格校验：边界、半小时对齐、重叠
	grid, modelBlocks, err := s.validateBlocks(ctx, weekStart, programID, req.Blocks)
	if err != nil {
		return nil, err
	}

	if req.Submit && grid.UnassignedCount() > 0 {
		return nil, ErrUnassignedBlocks
	}

	schedule := s.nextScheduleState(existing, userID, weekStart, role, req.Submit, now)
	if err := s.repo.Schedule.SaveWithBlocks(ctx, schedule, modelBlocks); err != nil {
		s.logger.Error("保存周计划失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("周计划已保存",
		zap.String("user_id", userID),
		zap.String("week_start", req.WeekStart),
		zap.String("status", schedule.Status),
		zap.Int("blocks", len(modelBlocks)),
	)
	return s.buildResponse(schedule, modelBlocks, role, weekStart), nil
}

// CopyPreviousWeek 将上一周的时间块复制到目标周（按日平移七天，落为草稿）
// 仅已提交或已通过且非空的上一周可作为复制来源
func (s *weekService) CopyPreviousWeek(ctx context.Context, userID, role string, req *dto.CopyWeekRequest) (*dto.WeekResponse, error) {
	weekStart, err := timeutil.ParseDate(req.WeekStart)
	if err != nil {
		return nil, ErrBlockInvalid
	}
	if !weekStart.Equal(timeutil.WeekStart(weekStart)) {
		return nil, ErrNotWeekStart
	}

	now := s.now()
	if !now.Before(weekStart.AddDate(0, 0, 7)) {
		return nil, ErrWeekEnded
	}

	existing, err := s.repo.Schedule.GetByUserAndWeek(ctx, userID, weekStart)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == model.StatusApproved && role == model.RoleResident {
		return nil, ErrWeekApproved
	}

	source, err := s.repo.Schedule.GetByUserAndWeek(ctx, userID, weekStart.AddDate(0, 0, -7))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCopySourceNone
		}
		return nil, err
	}
	if source.Status != model.StatusSubmitted && source.Status != model.StatusApproved {
		return nil, ErrCopySourceDraft
	}

	sourceBlocks, err := s.repo.TimeBlock.ListBySchedule(ctx, source.ScheduleID)
	if err != nil {
		return nil, err
	}
	if len(sourceBlocks) == 0 {
		return nil, ErrCopySourceEmpty
	}

	copied := make([]model.TimeBlock, 0, len(sourceBlocks))
	for _, b := range sourceBlocks {
		copied = append(copied, model.TimeBlock{
			ActivityID: b.ActivityID,
			Date:       b.Date.AddDate(0, 0, 7),
			StartHour:  b.StartHour,
			Duration:   b.Duration,
		})
	}

	schedule := s.nextScheduleState(existing, userID, weekStart, role, false, now)
	schedule.Status = model.StatusDraft
	schedule.SubmittedAt = nil
	schedule.ApprovedAt = nil
	schedule.ApprovedBy = nil

	if err := s.repo.Schedule.SaveWithBlocks(ctx, schedule, copied); err != nil {
		s.logger.Error("保存周计划失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("已复制上一周",
		zap.String("user_id", userID),
		zap.String("week_start", req.WeekStart),
		zap.Int("blocks", len(copied)),
	)
	return s.buildResponse(schedule, copied, role, weekStart), nil
}

// validateBlocks 用内存网格重放整周时间块，返回网格与待落库模型
func (s *weekService) validateBlocks(
	ctx context.Context,
	weekStart time.Time,
	programID string,
	payload map[string][]dto.BlockPayload,
) (*timegrid.Week, []model.TimeBlock, error) {
	grid := timegrid.NewWeek(weekStart)
	modelBlocks := make([]model.TimeBlock, 0, 16)
	activityCache := map[string]bool{}

	for _, dateKey := range grid.DateKeys() {
		for _, p := range payload[dateKey] {
			start, err := timeutil.ParseClock(p.StartTime)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %s %s", ErrBlockInvalid, dateKey, p.StartTime)
			}
			if !timeutil.OnHalfHourGrid(start) || !timeutil.OnHalfHourGrid(p.Duration) {
				return nil, nil, fmt.Errorf("%w: 须对齐半小时网格", ErrBlockInvalid)
			}
			if p.Duration < timegrid.MinDuration || start+p.Duration > timegrid.HoursPerDay {
				return nil, nil, fmt.Errorf("%w: %s %s", ErrBlockInvalid, dateKey, p.StartTime)
			}
			if timegrid.HasOverlap(grid.Blocks(dateKey), start, p.Duration, "") {
				return nil, nil, fmt.Errorf("%w: %s %s", ErrBlockOverlap, dateKey, p.StartTime)
			}

			block, ok := grid.AddBlock(dateKey, start, p.Duration)
			if !ok {
				return nil, nil, fmt.Errorf("%w: %s %s", ErrBlockInvalid, dateKey, p.StartTime)
			}
			if p.ActivityID != nil {
				if err := s.checkActivity(ctx, *p.ActivityID, programID, activityCache); err != nil {
					return nil, nil, err
				}
				aid := *p.ActivityID
				pp := &aid
				grid.UpdateBlock(dateKey, block.ID, timegrid.BlockPatch{ActivityID: &pp})
			}

			date, err := timeutil.ParseDate(dateKey)
			if err != nil {
				return nil, nil, err
			}
			modelBlocks = append(modelBlocks, model.TimeBlock{
				ActivityID: p.ActivityID,
				Date:       date,
				StartHour:  start,
				Duration:   p.Duration,
			})
		}
	}

	// 不属于本周的日期键直接拒绝
	for dateKey := range payload {
		if !grid.ContainsDate(dateKey) {
			return nil, nil, fmt.Errorf("%w: 日期 %s 不在该周内", ErrBlockInvalid, dateKey)
		}
	}

	return grid, modelBlocks, nil
}

func (s *weekService) checkActivity(ctx context.Context, activityID, programID string, cache map[string]bool) error {
	if ok, seen := cache[activityID]; seen {
		if !ok {
			return ErrActivityInvalid
		}
		return nil
	}

	activity, err := s.repo.Activity.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cache[activityID] = false
			return ErrActivityInvalid
		}
		return err
	}
	if !activity.IsActive || (programID != "" && activity.ProgramID != programID) {
		cache[activityID] = false
		return ErrActivityInvalid
	}
	cache[activityID] = true
	return nil
}

// nextScheduleState 计算保存后的状态机落点
// 住院医师改写已提交周视为撤回（退回草稿）；主任/管理员代改不改变原状态
func (s *weekService) nextScheduleState(
	existing *model.WeekSchedule,
	userID string,
	weekStart time.Time,
	role string,
	submit bool,
	now time.Time,
) *model.WeekSchedule {
	schedule := &model.WeekSchedule{
		UserID:        userID,
		WeekStartDate: weekStart,
		Status:        model.StatusDraft,
	}
	if existing != nil {
		schedule.ScheduleID = existing.ScheduleID
		schedule.Version = existing.Version
	}

	switch {
	case submit:
		schedule.Status = model.StatusSubmitted
		schedule.SubmittedAt = &now
	case existing == nil:
		// 首次保存即草稿
	case existing.Status == model.StatusApproved && role != model.RoleResident:
		schedule.Status = model.StatusApproved
		schedule.SubmittedAt = existing.SubmittedAt
		schedule.ApprovedAt = existing.ApprovedAt
		schedule.ApprovedBy = existing.ApprovedBy
	case existing.Status == model.StatusSubmitted && role != model.RoleResident:
		schedule.Status = model.StatusSubmitted
		schedule.SubmittedAt = existing.SubmittedAt
	}
	return schedule
}

// buildResponse 组装整周视图：按日分组、工时汇总、可编辑标记
func (s *weekService) buildResponse(
	schedule *model.WeekSchedule,
	blocks []model.TimeBlock,
	role string,
	weekStart time.Time,
) *dto.WeekResponse {
	byDay := make(map[string]float64, 7)
	byActivity := map[string]float64{}
	grouped := make(map[string][]dto.BlockResponse, 7)
	for _, dateKey := range timeutil.WeekDates(weekStart) {
		byDay[dateKey] = 0
		grouped[dateKey] = []dto.BlockResponse{}
	}

	var week float64
	for _, b := range blocks {
		dateKey := timeutil.DateKey(b.Date)
		grouped[dateKey] = append(grouped[dateKey], dto.BlockResponse{
			ID:         b.BlockID,
			ActivityID: b.ActivityID,
			Date:       dateKey,
			StartTime:  timeutil.FormatClock(b.StartHour),
			EndTime:    timeutil.FormatClock(b.StartHour + b.Duration),
			Duration:   b.Duration,
		})

		byDay[dateKey] += b.Duration
		week += b.Duration
		key := UnassignedKey
		if b.ActivityID != nil {
			key = *b.ActivityID
		}
		byActivity[key] += b.Duration
	}

	status := model.StatusDraft
	var scheduleResp *dto.ScheduleResponse
	if schedule != nil {
		status = schedule.Status
		scheduleResp = toScheduleResponse(schedule)
	}

	weekEnded := !s.now().Before(weekStart.AddDate(0, 0, 7))
	editable := !weekEnded && (status != model.StatusApproved || role != model.RoleResident)

	return &dto.WeekResponse{
		Schedule: scheduleResp,
		Blocks:   grouped,
		Totals: dto.WeekTotals{
			ByDay:      byDay,
			ByActivity: byActivity,
			Week:       week,
			OverWeekly: week > s.cfg.Report.MaxWeeklyHours,
		},
		Editable: editable,
	}
}

func toScheduleResponse(sc *model.WeekSchedule) *dto.ScheduleResponse {
	resp := &dto.ScheduleResponse{
		ID:            sc.ScheduleID,
		UserID:        sc.UserID,
		WeekStartDate: timeutil.DateKey(sc.WeekStartDate),
		Status:        sc.Status,
		ApprovedBy:    sc.ApprovedBy,
	}
	if sc.SubmittedAt != nil {
		v := sc.SubmittedAt.Format(time.RFC3339)
		resp.SubmittedAt = &v
	}
	if sc.ApprovedAt != nil {
		v := sc.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}
