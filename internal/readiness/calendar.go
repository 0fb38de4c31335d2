package readiness

import (
	"fmt"
	"time"
)

const (
	DateKeyFormat  = "2006-01-02"
	MonthKeyFormat = "2006-01"

	// DefaultTimezoneOffsetHours 组织时区 UTC+8
	DefaultTimezoneOffsetHours = 8
)

// DateRange 以日期键表示的闭区间
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Contains 判断日期键是否落在区间内
func (r DateRange) Contains(key string) bool {
	return key >= r.From && key <= r.To
}

// Calendar 以固定时区偏移计算"今天"和自然日差
type Calendar struct {
	loc *time.Location
	Now func() time.Time
}

func NewCalendar(offsetHours int) *Calendar {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return &Calendar{
		loc: time.FixedZone(name, offsetHours*3600),
		Now: time.Now,
	}
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Today 返回组织时区下今天的零点
func (c *Calendar) Today() time.Time {
	return c.DayOf(c.Now())
}

// DayOf 返回 t 在组织时区下所在自然日的零点
func (c *Calendar) DayOf(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// DateKey 返回 YYYY-MM-DD 格式的日期键
func (c *Calendar) DateKey(t time.Time) string {
	return t.In(c.loc).Format(DateKeyFormat)
}

func (c *Calendar) TodayKey() string {
	return c.DateKey(c.Now())
}

// ParseDateKey 解析日期键为组织时区零点
func (c *Calendar) ParseDateKey(key string) (time.Time, error) {
	return time.ParseInLocation(DateKeyFormat, key, c.loc)
}

// DaysBetween 返回 from 到 to 之间相差的自然日数，可以为负
func (c *Calendar) DaysBetween(from, to time.Time) int {
	a := c.DayOf(from)
	b := c.DayOf(to)
	// 固定偏移时区没有夏令时，按 UTC 日期比较即可
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// WeekdaysBetween 统计 (from, to] 之间的工作日数量，周六周日不计
func (c *Calendar) WeekdaysBetween(from, to time.Time) int {
	a := c.DayOf(from)
	b := c.DayOf(to)
	if !b.After(a) {
		return c.DaysBetween(from, to)
	}
	count := 0
	for d := a.AddDate(0, 0, 1); !d.After(b); d = d.AddDate(0, 0, 1) {
		if !IsWeekend(d) {
			count++
		}
	}
	return count
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeekRange 返回 t 所在周（周一至周日）
func (c *Calendar) WeekRange(t time.Time) DateRange {
	day := c.DayOf(t)
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return DateRange{
		From: start.Format(DateKeyFormat),
		To:   start.AddDate(0, 0, 6).Format(DateKeyFormat),
	}
}

// MonthRange 解析 YYYY-MM，空字符串表示当前月份
func (c *Calendar) MonthRange(month string) (DateRange, error) {
	var start time.Time
	if month == "" {
		today := c.Today()
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, c.loc)
	} else {
		t, err := time.ParseInLocation(MonthKeyFormat, month, c.loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid month %q: %w", month, err)
		}
		start = t
	}
	end := start.AddDate(0, 1, -1)
	return DateRange{
		From: start.Format(DateKeyFormat),
		To:   end.Format(DateKeyFormat),
	}, nil
}

// TrailingRange 返回截至今天（含）的最近 days 天
func (c *Calendar) TrailingRange(days int) DateRange {
	today := c.Today()
	if days < 1 {
		days = 1
	}
	return DateRange{
		From: today.AddDate(0, 0, -(days - 1)).Format(DateKeyFormat),
		To:   today.Format(DateKeyFormat),
	}
}
