package readiness

import "fmt"

func LoginMessage(o LoginOutcome) string {
	switch o.Transition {
	case LoginNotApplicable:
		return "Readiness cycles apply to workers only."
	case LoginFirstTime:
		return fmt.Sprintf("Welcome! Your %d-day readiness cycle starts today. Submit your assessment to complete Day 1.", CycleLength)
	case LoginCompleted:
		return "Cycle completed! Log in on a new day to begin your next cycle."
	case LoginReset:
		return "You missed a day, so your cycle has been reset. Today is Day 1."
	default:
		return fmt.Sprintf("Welcome back! You are on Day %d of your %d-day cycle.", o.State.CurrentDay, CycleLength)
	}
}

func SubmissionMessage(o SubmissionOutcome) string {
	s := o.State
	if s.Completed {
		return fmt.Sprintf("Cycle complete! You submitted %d days in a row. Your next submission starts a new cycle.", s.StreakDays)
	}
	remaining := CycleLength - s.StreakDays
	switch o.Transition {
	case SubmissionReset:
		return fmt.Sprintf("Day 1 complete! Your cycle restarted after a missed day. %d more days to go.", remaining)
	case SubmissionUnchanged:
		return fmt.Sprintf("Assessment updated. You are on Day %d of your cycle.", s.CurrentDay)
	}
	if remaining == 1 {
		return fmt.Sprintf("Day %d complete! One more day to finish your cycle.", s.CurrentDay)
	}
	return fmt.Sprintf("Day %d complete! %d more days to finish your cycle.", s.CurrentDay, remaining)
}
