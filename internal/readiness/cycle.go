package readiness

import "time"

// CycleLength 一个合规周期需要连续提交的天数
const CycleLength = 7

// CycleState 由最近一次评估记录推导出的周期状态，不单独持久化
type CycleState struct {
	CycleStart string `json:"cycleStart"`
	CurrentDay int    `json:"currentDay"`
	StreakDays int    `json:"streakDays"`
	Completed  bool   `json:"completed"`
}

// CycleRecord 评估记录中与周期相关的字段
type CycleRecord struct {
	CycleStart  string
	CycleDay    int
	StreakDays  int
	Completed   bool
	SubmittedAt time.Time
}

// DeriveState 从最近一次记录推导周期状态，record 为 nil 时返回零值
func DeriveState(record *CycleRecord) CycleState {
	if record == nil {
		return CycleState{}
	}
	return CycleState{
		CycleStart: record.CycleStart,
		CurrentDay: record.CycleDay,
		StreakDays: record.StreakDays,
		Completed:  record.Completed,
	}
}

func (s CycleState) InProgress() bool {
	return s.CycleStart != "" && !s.Completed
}

type LoginTransition string

const (
	LoginNotApplicable LoginTransition = "not_applicable"
	LoginFirstTime     LoginTransition = "first_time"
	LoginCompleted     LoginTransition = "completed"
	LoginReset         LoginTransition = "reset"
	LoginContinue      LoginTransition = "continue"
)

// LoginFacts 登录时状态机需要的外部事实
type LoginFacts struct {
	IsWorker  bool
	Latest    *CycleRecord
	LastLogin *time.Time
}

type LoginOutcome struct {
	Transition       LoginTransition `json:"transition"`
	State            CycleState      `json:"cycle"`
	IsFirstTimeLogin bool            `json:"isFirstTimeLogin"`
}

// OnLogin 处理登录事件。登录本身不会推进周期，只有提交才会。
func (c *Calendar) OnLogin(f LoginFacts) LoginOutcome {
	if !f.IsWorker {
		return LoginOutcome{Transition: LoginNotApplicable}
	}

	today := c.TodayKey()
	fresh := CycleState{CycleStart: today, CurrentDay: 1, StreakDays: 0}

	if f.Latest == nil || f.LastLogin == nil {
		return LoginOutcome{Transition: LoginFirstTime, State: fresh, IsFirstTimeLogin: true}
	}

	state := DeriveState(f.Latest)
	if state.Completed {
		completed := state
		completed.CurrentDay = 0
		return LoginOutcome{Transition: LoginCompleted, State: completed}
	}

	if state.InProgress() && c.DaysBetween(*f.LastLogin, c.Now()) > 1 {
		return LoginOutcome{
			Transition: LoginReset,
			State:      CycleState{CycleStart: today, CurrentDay: 1, StreakDays: 1},
		}
	}

	return LoginOutcome{Transition: LoginContinue, State: state}
}

type SubmissionTransition string

const (
	SubmissionStarted   SubmissionTransition = "started"
	SubmissionContinued SubmissionTransition = "continued"
	SubmissionReset     SubmissionTransition = "reset"
	SubmissionCompleted SubmissionTransition = "completed"
	SubmissionUnchanged SubmissionTransition = "unchanged"
)

type SubmissionOutcome struct {
	Transition SubmissionTransition `json:"transition"`
	State      CycleState           `json:"cycle"`
}

// OnSubmission 根据上一次提交计算本次提交后的周期状态
func (c *Calendar) OnSubmission(previous *CycleRecord) SubmissionOutcome {
	today := c.TodayKey()
	start := CycleState{CycleStart: today, CurrentDay: 1, StreakDays: 1}

	if previous == nil || previous.Completed || previous.CycleStart == "" {
		return SubmissionOutcome{Transition: SubmissionStarted, State: start}
	}

	daysDiff := c.DaysBetween(previous.SubmittedAt, c.Now())
	switch {
	case daysDiff > 1:
		return SubmissionOutcome{Transition: SubmissionReset, State: start}
	case daysDiff < 1:
		// 今天已经推进过周期
		return SubmissionOutcome{Transition: SubmissionUnchanged, State: DeriveState(previous)}
	}

	next := CycleState{
		CycleStart: previous.CycleStart,
		CurrentDay: previous.CycleDay + 1,
		StreakDays: previous.StreakDays + 1,
	}
	next.Completed = next.StreakDays >= CycleLength
	if next.Completed {
		return SubmissionOutcome{Transition: SubmissionCompleted, State: next}
	}
	return SubmissionOutcome{Transition: SubmissionContinued, State: next}
}
