package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// 时间块的时刻统一用小数小时表达（9.5 = 09:30），
// 文本形式为 "HH:MM"，二者在半小时网格上精确互转。

const dateLayout = "2006-01-02"

// ParseClock 将 "HH:MM" 解析为小数小时（如 "09:30" → 9.5）
// 小时范围 [0,24)，分钟范围 [0,60)；越界与格式错误均返回 error
func ParseClock(s string) (float64, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("无效的时刻格式 %q，期望 HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("无效的小时 %q", parts[0])
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("无效的分钟 %q", parts[1])
	}
	return float64(h) + float64(m)/60, nil
}

// FormatClock 将小数小时格式化为 "HH:MM"
// 在半小时网格上与 ParseClock 精确互逆
func FormatClock(v float64) string {
	h := int(v)
	m := int(math.Round((v - float64(h)) * 60))
	if m == 60 {
		h++
		m = 0
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// OnHalfHourGrid 判断小数小时是否落在半小时网格上
func OnHalfHourGrid(v float64) bool {
	doubled := v * 2
	return doubled == math.Trunc(doubled)
}

// WeekStart 返回 t 所在周的周一（零点，UTC，date-only）
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}

// DateKey 将日期格式化为 "YYYY-MM-DD"
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate 解析 "YYYY-MM-DD" 为 UTC 零点日期
func ParseDate(key string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的日期 %q: %w", key, err)
	}
	return t, nil
}

// WeekDates 返回从 weekStart 起连续 7 天的日期键
func WeekDates(weekStart time.Time) []string {
	keys := make([]string, 7)
	for i := 0; i < 7; i++ {
		keys[i] = DateKey(weekStart.AddDate(0, 0, i))
	}
	return keys
}
