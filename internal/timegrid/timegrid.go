package timegrid

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/vincentnocera/residencyhours/pkg/timeutil"
)

// timegrid 实现周历编辑的纯内存核心：
// 同一天内时间块两两不重叠（半开区间语义），所有变更要么完整生效、
// 要么完全不生效，任何时刻都观察不到部分写入的重叠状态。
// 本包不做任何 IO，由 service 层负责持久化。

const (
	// MinDuration 时间块最小时长（小时）
	MinDuration = 1.0
	// HoursPerDay 单日上限
	HoursPerDay = 24.0
)

// Block 一天内的一个连续时间块
type Block struct {
	ID         string
	ActivityID *string // nil 表示尚未分配活动
	Start      float64 // 小数小时，半小时网格
	Duration   float64 // 小时数，≥ MinDuration
}

// End 返回块的结束时刻（半开区间右端点）
func (b Block) End() float64 { return b.Start + b.Duration }

// Assigned 是否已分配活动
func (b Block) Assigned() bool { return b.ActivityID != nil }

// HasOverlap 判断候选区间 [start, start+duration) 是否与 blocks 中
// 任一块冲突。excludeID 非空时忽略该块自身（移动/缩放场景）。
// 冲突判定为标准半开区间相交：s1 < e2 && s2 < e1
func HasOverlap(blocks []Block, start, duration float64, excludeID string) bool {
	end := start + duration
	for _, b := range blocks {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if start < b.End() && b.Start < end {
			return true
		}
	}
	return false
}

// BlockPatch 块的部分字段更新
// 指针字段非 nil 时生效；ActivityID 用双重指针以区分
// "不更新" 与 "更新为未分配"
type BlockPatch struct {
	ActivityID **string
	Start      *float64
	Duration   *float64
}

// Week 一个用户一周的时间块集合，按日期键（YYYY-MM-DD）索引
//
// 选中块语义：新建块自动成为选中块（供随后的活动分配），
// 删除选中块时清除选中状态。
type Week struct {
	weekStart time.Time
	days      map[string][]Block
	order     []string // 周一到周日的日期键
	selected  string
}

// NewWeek 创建一个空的周集合；weekStart 必须是周一日期
func NewWeek(weekStart time.Time) *Week {
	order := timeutil.WeekDates(weekStart)
	days := make(map[string][]Block, 7)
	for _, key := range order {
		days[key] = nil
	}
	return &Week{weekStart: weekStart, days: days, order: order}
}

// WeekStart 返回周起始日期
func (w *Week) WeekStart() time.Time { return w.weekStart }

// ContainsDate 日期键是否属于本周
func (w *Week) ContainsDate(dateKey string) bool {
	_, ok := w.days[dateKey]
	return ok
}

// DateKeys 按周一到周日顺序返回日期键
func (w *Week) DateKeys() []string {
	keys := make([]string, len(w.order))
	copy(keys, w.order)
	return keys
}

// Blocks 返回某天的块列表（副本）
func (w *Week) Blocks(dateKey string) []Block {
	src := w.days[dateKey]
	out := make([]Block, len(src))
	copy(out, src)
	return out
}

// AddBlock 在指定日期放置一个新块（未分配活动）
// 日期不属于本周、越过日界或与既有块重叠时拒绝并返回 false；
// 成功时新块成为选中块
func (w *Week) AddBlock(dateKey string, start, duration float64) (Block, bool) {
	if !w.ContainsDate(dateKey) {
		return Block{}, false
	}
	if duration < MinDuration || start < 0 || start+duration > HoursPerDay {
		return Block{}, false
	}
	if HasOverlap(w.days[dateKey], start, duration, "") {
		return Block{}, false
	}

	block := Block{
		ID:       uuid.New().String(),
		Start:    start,
		Duration: duration,
	}
	w.days[dateKey] = append(w.days[dateKey], block)
	w.selected = block.ID
	return block, true
}

// RemoveBlock 无条件删除指定块；若该块为选中块则清除选中状态
func (w *Week) RemoveBlock(dateKey, blockID string) {
	blocks := w.days[dateKey]
	for i, b := range blocks {
		if b.ID == blockID {
			w.days[dateKey] = append(blocks[:i:i], blocks[i+1:]...)
			if w.selected == blockID {
				w.selected = ""
			}
			return
		}
	}
}

// UpdateBlock 合并更新块的字段（用于活动分配等）
// 不做重叠校验，移动/缩放请走 MoveBlock / ResizeBlock
func (w *Week) UpdateBlock(dateKey, blockID string, patch BlockPatch) bool {
	blocks := w.days[dateKey]
	for i := range blocks {
		if blocks[i].ID != blockID {
			continue
		}
		if patch.ActivityID != nil {
			blocks[i].ActivityID = *patch.ActivityID
		}
		if patch.Start != nil {
			blocks[i].Start = *patch.Start
		}
		if patch.Duration != nil {
			blocks[i].Duration = *patch.Duration
		}
		return true
	}
	return false
}

// MoveBlock 将块移动到新日期/新起点（可跨天）
// 起点先夹取到 [0, 24-duration]；目标位置重叠时整体拒绝。
// 跨天移动为原子操作：不存在块同时出现在两天或两天都不在的中间状态
func (w *Week) MoveBlock(blockID, newDateKey string, newStart float64) bool {
	if !w.ContainsDate(newDateKey) {
		return false
	}

	curKey, idx := w.locate(blockID)
	if curKey == "" {
		return false
	}
	block := w.days[curKey][idx]

	start := math.Max(0, math.Min(HoursPerDay-block.Duration, newStart))
	if HasOverlap(w.days[newDateKey], start, block.Duration, blockID) {
		return false
	}

	if newDateKey == curKey {
		w.days[curKey][idx].Start = start
		return true
	}

	// 跨天：校验通过后一次性完成摘除与放置
	moved := block
	moved.Start = start
	w.days[curKey] = append(w.days[curKey][:idx:idx], w.days[curKey][idx+1:]...)
	w.days[newDateKey] = append(w.days[newDateKey], moved)
	return true
}

// ResizeBlock 调整块时长
// 时长夹取到 [MinDuration, 24-start]；夹取后仍重叠则拒绝，状态不变
func (w *Week) ResizeBlock(dateKey, blockID string, newDuration float64) bool {
	blocks := w.days[dateKey]
	for i := range blocks {
		if blocks[i].ID != blockID {
			continue
		}
		maxDuration := HoursPerDay - blocks[i].Start
		duration := math.Max(MinDuration, math.Min(newDuration, maxDuration))
		if HasOverlap(blocks, blocks[i].Start, duration, blockID) {
			return false
		}
		blocks[i].Duration = duration
		return true
	}
	return false
}

// SelectedID 返回当前选中块 ID，空串表示无选中
func (w *Week) SelectedID() string { return w.selected }

// Select 设置选中块；块不存在时返回 false
func (w *Week) Select(blockID string) bool {
	if key, _ := w.locate(blockID); key == "" {
		return false
	}
	w.selected = blockID
	return true
}

// UnassignedCount 未分配活动的块数量（提交前校验用）
func (w *Week) UnassignedCount() int {
	n := 0
	for _, blocks := range w.days {
		for _, b := range blocks {
			if !b.Assigned() {
				n++
			}
		}
	}
	return n
}

// DayTotal 某天的总时长
func (w *Week) DayTotal(dateKey string) float64 {
	total := 0.0
	for _, b := range w.days[dateKey] {
		total += b.Duration
	}
	return total
}

// WeekTotal 整周总时长
func (w *Week) WeekTotal() float64 {
	total := 0.0
	for _, key := range w.order {
		total += w.DayTotal(key)
	}
	return total
}

func (w *Week) locate(blockID string) (string, int) {
	for key, blocks := range w.days {
		for i, b := range blocks {
			if b.ID == blockID {
				return key, i
			}
		}
	}
	return "", -1
}

// SlotForOffset 将纵向像素偏移换算为半小时槽位（小数小时）
// hourHeight 为一小时的像素高度；结果四舍五入到 0.5 并夹取到 [0,24]。
// 拖拽/缩放的坐标换算与渲染层解耦，便于独立测试
func SlotForOffset(offsetPx, hourHeight float64) float64 {
	if hourHeight <= 0 {
		return 0
	}
	slot := math.Round(offsetPx/hourHeight*2) / 2
	return math.Max(0, math.Min(HoursPerDay, slot))
}
