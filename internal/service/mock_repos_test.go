package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/vincentnocera/residencyhours/internal/model"
)

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	profiles map[string]*model.Profile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (m *mockProfileRepo) Create(_ context.Context, profile *model.Profile) error {
	if profile.ProfileID == "" {
		profile.ProfileID = "prof-" + profile.Email
	}
	m.profiles[profile.ProfileID] = profile
	return nil
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	for _, p := range m.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) Update(_ context.Context, profile *model.Profile) error {
	m.profiles[profile.ProfileID] = profile
	return nil
}

func (m *mockProfileRepo) ListByRole(_ context.Context, role string, programID *string) ([]model.Profile, error) {
	var result []model.Profile
	for _, p := range m.profiles {
		if p.Role != role {
			continue
		}
		if programID != nil && (p.ProgramID == nil || *p.ProgramID != *programID) {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProfileID < result[j].ProfileID })
	return result, nil
}

func (m *mockProfileRepo) ListByRolePaged(ctx context.Context, role string, programID *string, offset, limit int) ([]model.Profile, int64, error) {
	all, err := m.ListByRole(ctx, role, programID)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock ProgramRepository ──

type mockProgramRepo struct {
	programs map[string]*model.Program
}

func newMockProgramRepo() *mockProgramRepo {
	return &mockProgramRepo{programs: make(map[string]*model.Program)}
}

func (m *mockProgramRepo) Create(_ context.Context, program *model.Program) error {
	if program.ProgramID == "" {
		program.ProgramID = "prog-" + program.Name
	}
	m.programs[program.ProgramID] = program
	return nil
}

func (m *mockProgramRepo) GetByID(_ context.Context, id string) (*model.Program, error) {
	if p, ok := m.programs[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgramRepo) List(_ context.Context) ([]model.Program, error) {
	var result []model.Program
	for _, p := range m.programs {
		result = append(result, *p)
	}
	return result, nil
}

// ── Mock ActivityRepository ──

type mockActivityRepo struct {
	activities map[string]*model.Activity
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{activities: make(map[string]*model.Activity)}
}

func (m *mockActivityRepo) Create(_ context.Context, activity *model.Activity) error {
	if activity.ActivityID == "" {
		activity.ActivityID = "act-" + activity.Name
	}
	m.activities[activity.ActivityID] = activity
	return nil
}

func (m *mockActivityRepo) GetByID(_ context.Context, id string) (*model.Activity, error) {
	if a, ok := m.activities[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockActivityRepo) List(_ context.Context, programID string, includeInactive bool) ([]model.Activity, error) {
	var result []model.Activity
	for _, a := range m.activities {
		if a.ProgramID != programID {
			continue
		}
		if !includeInactive && !a.IsActive {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockActivityRepo) Update(_ context.Context, activity *model.Activity) error {
	m.activities[activity.ActivityID] = activity
	return nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules  map[string]*model.WeekSchedule
	seq        int
	profiles   *mockProfileRepo   // GetByID 预加载 User 用
	timeBlocks *mockTimeBlockRepo // SaveWithBlocks 同步写入
	saveErr    error              // 非 nil 时 SaveWithBlocks 直接失败
}

func newMockScheduleRepo(profiles *mockProfileRepo, timeBlocks *mockTimeBlockRepo) *mockScheduleRepo {
	return &mockScheduleRepo{
		schedules:  make(map[string]*model.WeekSchedule),
		profiles:   profiles,
		timeBlocks: timeBlocks,
	}
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.WeekSchedule, error) {
	sc, ok := m.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *sc
	if m.profiles != nil {
		if u, ok := m.profiles.profiles[sc.UserID]; ok {
			out.User = u
		}
	}
	return &out, nil
}

func (m *mockScheduleRepo) GetByUserAndWeek(_ context.Context, userID string, weekStart time.Time) (*model.WeekSchedule, error) {
	for _, sc := range m.schedules {
		if sc.UserID == userID && sc.WeekStartDate.Equal(weekStart) {
			out := *sc
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// SaveWithBlocks 与真实实现一致：事务失败时计划与时间块都不落库
func (m *mockScheduleRepo) SaveWithBlocks(_ context.Context, schedule *model.WeekSchedule, blocks []model.TimeBlock) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	for _, sc := range m.schedules {
		if sc.UserID == schedule.UserID && sc.WeekStartDate.Equal(schedule.WeekStartDate) {
			schedule.ScheduleID = sc.ScheduleID
		}
	}
	if schedule.ScheduleID == "" {
		m.seq++
		schedule.ScheduleID = fmt.Sprintf("sched-%d", m.seq)
	}
	m.schedules[schedule.ScheduleID] = schedule

	for i := range blocks {
		blocks[i].ScheduleID = schedule.ScheduleID
	}
	m.timeBlocks.replace(schedule.ScheduleID, blocks)
	return nil
}

func (m *mockScheduleRepo) ListByUsersAndWeeks(_ context.Context, userIDs []string, weekStarts []time.Time) ([]model.WeekSchedule, error) {
	users := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		users[id] = true
	}

	var result []model.WeekSchedule
	for _, sc := range m.schedules {
		if !users[sc.UserID] {
			continue
		}
		for _, ws := range weekStarts {
			if sc.WeekStartDate.Equal(ws) {
				result = append(result, *sc)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ScheduleID < result[j].ScheduleID })
	return result, nil
}

func (m *mockScheduleRepo) ApproveSubmitted(_ context.Context, scheduleID, approvedBy string) (bool, error) {
	sc, ok := m.schedules[scheduleID]
	if !ok || sc.Status != model.StatusSubmitted {
		return false, nil
	}
	now := time.Now().UTC()
	sc.Status = model.StatusApproved
	sc.ApprovedAt = &now
	sc.ApprovedBy = &approvedBy
	sc.Version++
	return true, nil
}

// ── Mock TimeBlockRepository ──

type mockTimeBlockRepo struct {
	blocks map[string][]model.TimeBlock // scheduleID → blocks
	seq    int
}

func newMockTimeBlockRepo() *mockTimeBlockRepo {
	return &mockTimeBlockRepo{blocks: make(map[string][]model.TimeBlock)}
}

func (m *mockTimeBlockRepo) ListBySchedule(_ context.Context, scheduleID string) ([]model.TimeBlock, error) {
	result := make([]model.TimeBlock, len(m.blocks[scheduleID]))
	copy(result, m.blocks[scheduleID])
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].StartHour < result[j].StartHour
	})
	return result, nil
}

func (m *mockTimeBlockRepo) ListBySchedules(_ context.Context, scheduleIDs []string) ([]model.TimeBlock, error) {
	var result []model.TimeBlock
	for _, id := range scheduleIDs {
		result = append(result, m.blocks[id]...)
	}
	return result, nil
}

func (m *mockTimeBlockRepo) replace(scheduleID string, blocks []model.TimeBlock) {
	stored := make([]model.TimeBlock, len(blocks))
	copy(stored, blocks)
	for i := range stored {
		if stored[i].BlockID == "" {
			m.seq++
			stored[i].BlockID = fmt.Sprintf("blk-%d", m.seq)
		}
	}
	m.blocks[scheduleID] = stored
}
