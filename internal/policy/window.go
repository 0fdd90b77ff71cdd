package policy

import "time"

const lastNano = int(999 * time.Millisecond)

// Window 是一个闭区间 [Start, End]。
type Window struct {
	Start time.Time
	End   time.Time
}

// Empty 在 Start 晚于 End 时为 true。
func (w Window) Empty() bool {
	return w.Start.After(w.End)
}

// Contains 判断 t 是否落在闭区间内。
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// DayWindow 返回 t 所在日历日（按 loc）的 00:00:00.000 到 23:59:59.999。
func DayWindow(t time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	y, m, d := t.Date()
	return Window{
		Start: time.Date(y, m, d, 0, 0, 0, 0, loc),
		End:   time.Date(y, m, d, 23, 59, 59, lastNano, loc),
	}
}

// MonthWindow 返回 t 所在月份第一天 00:00:00.000 到最后一天 23:59:59.999。
func MonthWindow(t time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	y, m, _ := t.Date()
	// 下个月的第 0 天即本月最后一天
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()
	return Window{
		Start: time.Date(y, m, 1, 0, 0, 0, 0, loc),
		End:   time.Date(y, m, last, 23, 59, 59, lastNano, loc),
	}
}
