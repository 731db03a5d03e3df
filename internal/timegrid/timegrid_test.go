package timegrid

import (
	"testing"
	"time"
)

var monday = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

const (
	mondayKey  = "2026-08-31"
	tuesdayKey = "2026-09-01"
)

func strPtr(s string) *string { return &s }

// ── HasOverlap ──

func TestHasOverlap(t *testing.T) {
	blocks := []Block{
		{ID: "a", Start: 9, Duration: 2},  // [9,11)
		{ID: "b", Start: 14, Duration: 1}, // [14,15)
	}

	cases := []struct {
		name      string
		start     float64
		duration  float64
		excludeID string
		want      bool
	}{
		{"完全包含", 9.5, 1, "", true},
		{"左侧相接不冲突", 7, 2, "", false},
		{"右侧相接不冲突", 11, 2, "", false},
		{"跨越既有块", 8, 4, "", true},
		{"尾部压线冲突", 13, 1.5, "", true},
		{"空档", 12, 1.5, "", false},
		{"排除自身", 9, 2, "a", false},
		{"排除自身仍与他块冲突", 13.5, 1, "a", true},
	}

	for _, c := range cases {
		if got := HasOverlap(blocks, c.start, c.duration, c.excludeID); got != c.want {
			t.Errorf("%s: HasOverlap(%v, %v, %q) 期望 %v，实际 %v",
				c.name, c.start, c.duration, c.excludeID, c.want, got)
		}
	}
}

// ── AddBlock ──

func TestAddBlock(t *testing.T) {
	w := NewWeek(monday)

	block, ok := w.AddBlock(mondayKey, 9, 2)
	if !ok {
		t.Fatal("AddBlock 应成功")
	}
	if block.Assigned() {
		t.Error("新建块应为未分配活动")
	}
	if w.SelectedID() != block.ID {
		t.Error("新建块应自动成为选中块")
	}

	// 重叠的块被拒绝，状态不变
	if _, ok := w.AddBlock(mondayKey, 10, 1); ok {
		t.Error("重叠的 AddBlock 应被拒绝")
	}
	if len(w.Blocks(mondayKey)) != 1 {
		t.Errorf("拒绝后块数应为1，实际%d", len(w.Blocks(mondayKey)))
	}

	// 相邻不重叠（半开区间）
	if _, ok := w.AddBlock(mondayKey, 11, 1); !ok {
		t.Error("首尾相接的块不构成重叠，应成功")
	}

	// 越过日界被拒绝
	if _, ok := w.AddBlock(mondayKey, 23, 2); ok {
		t.Error("越过24点的块应被拒绝")
	}

	// 非本周日期被拒绝
	if _, ok := w.AddBlock("2026-09-07", 9, 1); ok {
		t.Error("非本周日期应被拒绝")
	}
}

func TestAddBlock_NeverOverlaps(t *testing.T) {
	w := NewWeek(monday)
	w.AddBlock(mondayKey, 8, 2)
	w.AddBlock(mondayKey, 12, 3)

	// 穷举一批候选位置后，当天所有块仍两两不重叠
	for start := 0.0; start <= 23; start += 0.5 {
		w.AddBlock(mondayKey, start, 1.5)
	}

	blocks := w.Blocks(mondayKey)
	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			a, b := blocks[i], blocks[j]
			if a.Start < b.End() && b.Start < a.End() {
				t.Fatalf("发现重叠块: [%v,%v) 与 [%v,%v)", a.Start, a.End(), b.Start, b.End())
			}
		}
	}
}

// ── RemoveBlock ──

func TestRemoveBlock(t *testing.T) {
	w := NewWeek(monday)
	block, _ := w.AddBlock(mondayKey, 9, 1)

	w.RemoveBlock(mondayKey, block.ID)
	if len(w.Blocks(mondayKey)) != 0 {
		t.Error("删除后应无块")
	}
	if w.SelectedID() != "" {
		t.Error("删除选中块后应清除选中状态")
	}

	// 删除不存在的块为 no-op
	w.RemoveBlock(mondayKey, "nonexistent")
}

// ── UpdateBlock ──

func TestUpdateBlock_AssignActivity(t *testing.T) {
	w := NewWeek(monday)
	block, _ := w.AddBlock(mondayKey, 9, 1)

	activityID := strPtr("act-001")
	if !w.UpdateBlock(mondayKey, block.ID, BlockPatch{ActivityID: &activityID}) {
		t.Fatal("UpdateBlock 应成功")
	}

	got := w.Blocks(mondayKey)[0]
	if !got.Assigned() || *got.ActivityID != "act-001" {
		t.Error("活动分配未生效")
	}

	// 清除活动分配
	var unassigned *string
	w.UpdateBlock(mondayKey, block.ID, BlockPatch{ActivityID: &unassigned})
	if w.Blocks(mondayKey)[0].Assigned() {
		t.Error("期望活动被清除")
	}
}

// ── MoveBlock ──

func TestMoveBlock_SameDay(t *testing.T) {
	w := NewWeek(monday)
	block, _ := w.AddBlock(mondayKey, 9, 2)

	if !w.MoveBlock(block.ID, mondayKey, 14) {
		t.Fatal("同日移动应成功")
	}
	got := w.Blocks(mondayKey)[0]
	if got.Start != 14 || got.Duration != 2 {
		t.Errorf("期望 [14,16)，实际 [%v,%v)", got.Start, got.End())
	}
}

func TestMoveBlock_CrossDayAtomic(t *testing.T) {
	w := NewWeek(monday)
	block, _ := w.AddBlock(mondayKey, 9, 1)

	// 周一 9:00–10:00 → 周二 14:00–15:00
	if !w.MoveBlock(block.ID, tuesdayKey, 14) {
		t.Fatal("跨天移动应成功")
	}

	if n := len(w.Blocks(mondayKey)); n != 0 {
		t.Errorf("源日期应无块，实际%d", n)
	}
	dst := w.Blocks(tuesdayKey)
	if len(dst) != 1 {
		t.Fatalf("目标日期应恰有1块，实际%d", len(dst))
	}
	if dst[0].ID != block.ID || dst[0].Start != 14 {
		t.Errorf("块身份或位置不正确: %+v", dst[0])
	}
}

func TestMoveBlock_RejectedOnOverlap(t *testing.T) {
	w := NewWeek(monday)
	w.AddBlock(tuesdayKey, 14, 2)
	block, _ := w.AddBlock(mondayKey, 9, 1)

	if w.MoveBlock(block.ID, tuesdayKey, 14.5) {
		t.Fatal("目标位置重叠的移动应被拒绝")
	}

	// 拒绝后状态不变：块仍在周一原位
	src := w.Blocks(mondayKey)
	if len(src) != 1 || src[0].Start != 9 {
		t.Error("拒绝的移动不应改变源状态")
	}
	if len(w.Blocks(tuesdayKey)) != 1 {
		t.Error("拒绝的移动不应改变目标状态")
	}
}

func TestMoveBlock_ClampsStart(t *testing.T) {
	w := NewWeek(monday)
	block, _ := w.AddBlock(mondayKey, 9, 3)

	// 请求起点 23，块长 3h → 夹取到 21
	if !w.MoveBlock(block.ID, mondayKey, 23) {
		t.Fatal("移动应成功")
	}
	if got := w.Blocks(mondayKey)[0].Start; got != 21 {
		t.Errorf("期望起点夹取到21，实际%v", got)
	}
}

// ── ResizeBlock ──

func TestResizeBlock_ClampsToDayEnd(t *testing.T) {
	w := NewWeek(monday)
	block, _ := w.AddBlock(mondayKey, 22, 1)

	// start=22 请求时长5 → 夹取到 24-22=2
	if !w.ResizeBlock(mondayKey, block.ID, 5) {
		t.Fatal("ResizeBlock 应成功")
	}
	if got := w.Blocks(mondayKey)[0].Duration; got != 2 {
		t.Errorf("期望时长夹取到2，实际%v", got)
	}
}

func TestResizeBlock_MinDuration(t *testing.T) {
	w := NewWeek(monday)
	block, _ := w.AddBlock(mondayKey, 9, 2)

	w.ResizeBlock(mondayKey, block.ID, 0.25)
	if got := w.Blocks(mondayKey)[0].Duration; got != MinDuration {
		t.Errorf("期望时长夹取到%v，实际%v", MinDuration, got)
	}
}

func TestResizeBlock_RejectedOnOverlap(t *testing.T) {
	w := NewWeek(monday)
	block, _ := w.AddBlock(mondayKey, 9, 1)
	w.AddBlock(mondayKey, 11, 1)

	if w.ResizeBlock(mondayKey, block.ID, 3) {
		t.Fatal("拉伸后与邻块重叠应被拒绝")
	}
	if got := w.Blocks(mondayKey)[0].Duration; got != 1 {
		t.Errorf("拒绝后时长应不变，实际%v", got)
	}
}

// ── 汇总 ──

func TestTotals(t *testing.T) {
	w := NewWeek(monday)
	w.AddBlock(mondayKey, 8, 4)
	w.AddBlock(mondayKey, 13, 3.5)
	w.AddBlock(tuesdayKey, 9, 2)

	if got := w.DayTotal(mondayKey); got != 7.5 {
		t.Errorf("周一合计期望7.5，实际%v", got)
	}
	if got := w.WeekTotal(); got != 9.5 {
		t.Errorf("周合计期望9.5，实际%v", got)
	}
}

func TestUnassignedCount(t *testing.T) {
	w := NewWeek(monday)
	a, _ := w.AddBlock(mondayKey, 8, 1)
	w.AddBlock(tuesdayKey, 9, 1)

	if got := w.UnassignedCount(); got != 2 {
		t.Errorf("期望2个未分配块，实际%d", got)
	}

	activityID := strPtr("act-001")
	w.UpdateBlock(mondayKey, a.ID, BlockPatch{ActivityID: &activityID})
	if got := w.UnassignedCount(); got != 1 {
		t.Errorf("期望1个未分配块，实际%d", got)
	}
}

// ── SlotForOffset ──

func TestSlotForOffset(t *testing.T) {
	const hourHeight = 40.0

	cases := []struct {
		offset float64
		want   float64
	}{
		{0, 0},
		{40, 1},
		{60, 1.5},
		{365, 9},     // 9.125h → 9.0
		{370, 9.5},   // 9.25h → 9.5（四舍五入到半点）
		{-10, 0},     // 上越界夹取
		{99999, 24},  // 下越界夹取
	}
	for _, c := range cases {
		if got := SlotForOffset(c.offset, hourHeight); got != c.want {
			t.Errorf("SlotForOffset(%v) 期望 %v，实际 %v", c.offset, c.want, got)
		}
	}

	if got := SlotForOffset(100, 0); got != 0 {
		t.Errorf("hourHeight=0 时应返回0，实际%v", got)
	}
}
