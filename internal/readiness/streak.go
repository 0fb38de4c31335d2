package readiness

import (
	"sort"
	"time"
)

// StreakOptions 控制连续天数的计算口径
type StreakOptions struct {
	// CountWeekends 为 false 时周末不算缺勤，也不计入连续天数
	CountWeekends bool
}

type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// CalculateStreak 根据提交时间计算当前连续天数和历史最长连续天数。
// 同一天的多条记录按一天计算。
func (c *Calendar) CalculateStreak(submittedAt []time.Time, opts StreakOptions) Streak {
	days := c.distinctDays(submittedAt, opts)
	if len(days) == 0 {
		return Streak{}
	}

	gap := c.DaysBetween
	if !opts.CountWeekends {
		gap = c.WeekdaysBetween
	}

	longest, running := 0, 1
	for i := 1; i < len(days); i++ {
		if gap(days[i-1], days[i]) == 1 {
			running++
			continue
		}
		if running > longest {
			longest = running
		}
		running = 1
	}
	if running > longest {
		longest = running
	}

	last := days[len(days)-1]
	if gap(last, c.Today()) > 1 {
		return Streak{Current: 0, Longest: longest}
	}

	current := 1
	for i := len(days) - 1; i > 0; i-- {
		if gap(days[i-1], days[i]) != 1 {
			break
		}
		current++
	}
	return Streak{Current: current, Longest: longest}
}

func (c *Calendar) distinctDays(submittedAt []time.Time, opts StreakOptions) []time.Time {
	seen := make(map[string]struct{}, len(submittedAt))
	days := make([]time.Time, 0, len(submittedAt))
	for _, t := range submittedAt {
		if t.IsZero() {
			continue
		}
		day := c.DayOf(t)
		if !opts.CountWeekends && IsWeekend(day) {
			continue
		}
		key := day.Format(DateKeyFormat)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
