package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vincentnocera/residencyhours/config"
	"github.com/vincentnocera/residencyhours/internal/model"
	"github.com/vincentnocera/residencyhours/internal/repository"
	"github.com/vincentnocera/residencyhours/pkg/timeutil"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSchedule   = errors.New("该周暂无工时记录")
	ErrExportNoBlocks     = errors.New("该周没有时间块")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel：活动 × 星期 工时矩阵，附每日/每周合计与超限提示
//   - ICS：每个时间块一条 VEVENT，供外部日历订阅查看
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入
type ExportService interface {
	ExportWeekExcel(ctx context.Context, userID string, weekStart time.Time) (*bytes.Buffer, string, error)
	ExportWeekICS(ctx context.Context, userID string, weekStart time.Time) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger}
}

func (s *exportService) loadWeek(ctx context.Context, userID string, weekStart time.Time) (*model.WeekSchedule, []model.TimeBlock, *model.Profile, error) {
	schedule, err := s.repo.Schedule.GetByUserAndWeek(ctx, userID, weekStart)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrExportNoSchedule
		}
		s.logger.Error("查询周计划失败", zap.Error(err))
		return nil, nil, nil, err
	}

	blocks, err := s.repo.TimeBlock.ListBySchedule(ctx, schedule.ScheduleID)
	if err != nil {
		s.logger.Error("查询时间块失败", zap.Error(err))
		return nil, nil, nil, err
	}
	if len(blocks) == 0 {
		return nil, nil, nil, ErrExportNoBlocks
	}

	profile, err := s.repo.Profile.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, nil, nil, err
	}
	return schedule, blocks, profile, nil
}

// ExportWeekExcel 导出某用户某周的工时表为 Excel
//
// 输出格式：
//   - 行：活动（按名称排序，未分配块归入"未分配"行）
//   - 列：周一 ~ 周日 + 合计
//   - 末行：每日合计；超过日/周上限时标注
func (s *exportService) ExportWeekExcel(ctx context.Context, userID string, weekStart time.Time) (*bytes.Buffer, string, error) {
	_, blocks, profile, err := s.loadWeek(ctx, userID, weekStart)
	if err != nil {
		return nil, "", err
	}

	dateKeys := timeutil.WeekDates(weekStart)
	dayIndex := make(map[string]int, 7)
	for i, k := range dateKeys {
		dayIndex[k] = i
	}

	// 数据索引: 活动名 → [7]float64（每日工时）
	type activityRow struct {
		name  string
		hours [7]float64
		total float64
	}
	rowsByName := map[string]*activityRow{}
	var dayTotals [7]float64
	var weekTotal float64

	for _, b := range blocks {
		name := "未分配"
		if b.Activity != nil {
			name = b.Activity.DisplayName
		} else if b.ActivityID != nil {
			name = *b.ActivityID
		}
		r := rowsByName[name]
		if r == nil {
			r = &activityRow{name: name}
			rowsByName[name] = r
		}
		di := dayIndex[timeutil.DateKey(b.Date)]
		r.hours[di] += b.Duration
		r.total += b.Duration
		dayTotals[di] += b.Duration
		weekTotal += b.Duration
	}

	var rows []*activityRow
	for _, r := range rowsByName {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })

	// 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "周工时"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 24)
	f.SetColWidth(sheetName, "B", "I", 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	warnStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#C00000"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("周工时表 %s %s", profile.FullName(), timeutil.DateKey(weekStart)))
	f.MergeCell(sheetName, "A1", "I1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	dayNames := []string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "活动")
	for i, dn := range dayNames {
		f.SetCellValue(sheetName, cell(colName(1+i), row), dn)
	}
	f.SetCellValue(sheetName, cell("I", row), "合计")
	f.SetCellStyle(sheetName, cell("A", row), cell("I", row), headerStyle)

	// 数据行
	row = 3
	for _, r := range rows {
		f.SetCellValue(sheetName, cell("A", row), r.name)
		for i, h := range r.hours {
			if h > 0 {
				f.SetCellValue(sheetName, cell(colName(1+i), row), h)
			}
		}
		f.SetCellValue(sheetName, cell("I", row), r.total)
		row++
	}

	// 每日合计行
	f.SetCellValue(sheetName, cell("A", row), "每日合计")
	for i, h := range dayTotals {
		if h > 0 {
			c := cell(colName(1+i), row)
			f.SetCellValue(sheetName, c, h)
			if h > s.cfg.Report.MaxDailyHours {
				f.SetCellStyle(sheetName, c, c, warnStyle)
			}
		}
	}
	weekCell := cell("I", row)
	f.SetCellValue(sheetName, weekCell, weekTotal)
	if weekTotal > s.cfg.Report.MaxWeeklyHours {
		f.SetCellStyle(sheetName, weekCell, weekCell, warnStyle)
		row++
		f.SetCellValue(sheetName, cell("A", row),
			fmt.Sprintf("注：本周合计 %.1f 小时，超过 %.0f 小时上限", weekTotal, s.cfg.Report.MaxWeeklyHours))
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("周工时_%s_%s.xlsx", profile.FullName(), timeutil.DateKey(weekStart))
	return buf, filename, nil
}

// ExportWeekICS 导出某用户某周的时间块为 iCalendar (RFC 5545)
func (s *exportService) ExportWeekICS(ctx context.Context, userID string, weekStart time.Time) (*bytes.Buffer, string, error) {
	schedule, blocks, profile, err := s.loadWeek(ctx, userID, weekStart)
	if err != nil {
		return nil, "", err
	}

	weekKey := timeutil.DateKey(schedule.WeekStartDate)
	weekURL := fmt.Sprintf("%s/weeks?week_start=%s", s.cfg.Server.BaseURL, weekKey)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//residencyhours//weekly export//CN")
	cal.SetXWRCalName(fmt.Sprintf("%s 周工时 %s", profile.FullName(), weekKey))

	for _, b := range blocks {
		summary := "未分配"
		if b.Activity != nil {
			summary = b.Activity.DisplayName
		}

		start := blockStartTime(b)
		event := cal.AddEvent(fmt.Sprintf("%s@residencyhours", b.BlockID))
		event.SetDtStampTime(time.Now().UTC())
		event.SetStartAt(start)
		event.SetEndAt(start.Add(time.Duration(b.Duration * float64(time.Hour))))
		event.SetSummary(summary)
		event.SetDescription(fmt.Sprintf("%s %s-%s",
			timeutil.DateKey(b.Date),
			timeutil.FormatClock(b.StartHour),
			timeutil.FormatClock(b.StartHour+b.Duration),
		))
		event.SetURL(weekURL)
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("周工时_%s_%s.ics", profile.FullName(), weekKey)
	return buf, filename, nil
}

// blockStartTime 把 日期 + 小数小时 换算为时间点（UTC）
func blockStartTime(b model.TimeBlock) time.Time {
	day := time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(), 0, 0, 0, 0, time.UTC)
	return day.Add(time.Duration(b.StartHour * float64(time.Hour)))
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
