package readiness

import (
	"math"
	"time"
)

// ConsecutiveFormula 连续天数 KPI 的计算版本
type ConsecutiveFormula string

const (
	// FormulaGranular 八档细分，默认口径
	FormulaGranular ConsecutiveFormula = "granular"
	// FormulaLegacy 旧版四档口径，不足 3 天不计分
	FormulaLegacy ConsecutiveFormula = "legacy"
)

type ConsecutiveKPI struct {
	ConsecutiveDays int                `json:"consecutiveDays"`
	Score           int                `json:"score"`
	Rating          string             `json:"rating"`
	Description     string             `json:"description"`
	Formula         ConsecutiveFormula `json:"formula"`
}

type consecutiveBand struct {
	score       int
	rating      string
	description string
}

var granularBands = []consecutiveBand{
	{0, "Not Started", "No consecutive submissions yet."},
	{20, "Getting Started", "One day down. Keep the momentum going."},
	{40, "Building Momentum", "Two days in a row. A habit is forming."},
	{60, "Good Progress", "Three consecutive days of readiness checks."},
	{75, "Strong Performance", "Four days in a row. Strong consistency."},
	{85, "Excellent", "Five consecutive days. Excellent commitment."},
	{95, "Outstanding", "Six days in a row. One more to complete the cycle."},
	{100, "Perfect", "A full cycle of consecutive submissions."},
}

// ConsecutiveDaysKPI 按连续提交天数给出评分（细分口径）
func ConsecutiveDaysKPI(days int) ConsecutiveKPI {
	if days < 0 {
		days = 0
	}
	idx := days
	if idx >= len(granularBands) {
		idx = len(granularBands) - 1
	}
	b := granularBands[idx]
	return ConsecutiveKPI{
		ConsecutiveDays: days,
		Score:           b.score,
		Rating:          b.rating,
		Description:     b.description,
		Formula:         FormulaGranular,
	}
}

// LegacyConsecutiveDaysKPI 旧版四档口径
func LegacyConsecutiveDaysKPI(days int) ConsecutiveKPI {
	if days < 0 {
		days = 0
	}
	kpi := ConsecutiveKPI{ConsecutiveDays: days, Formula: FormulaLegacy}
	proportional := int(math.Round(float64(days) / CycleLength * 100))
	switch {
	case days >= CycleLength:
		kpi.Score, kpi.Rating, kpi.Description = 100, "Excellent", "Completed a full cycle."
	case days >= 5:
		kpi.Score, kpi.Rating, kpi.Description = proportional, "Good", "Close to a full cycle."
	case days >= 3:
		kpi.Score, kpi.Rating, kpi.Description = proportional, "Average", "Some consistency, room to improve."
	default:
		kpi.Score, kpi.Rating, kpi.Description = 0, "No KPI Points", "At least 3 consecutive days are needed to earn points."
	}
	return kpi
}

// ScoreConsecutiveDays 按指定版本计算，未知版本按细分口径
func ScoreConsecutiveDays(formula ConsecutiveFormula, days int) ConsecutiveKPI {
	if formula == FormulaLegacy {
		return LegacyConsecutiveDaysKPI(days)
	}
	return ConsecutiveDaysKPI(days)
}

const (
	AssignmentStatusPending   = "pending"
	AssignmentStatusCompleted = "completed"
	AssignmentStatusOverdue   = "overdue"
)

// AssignmentRecord 计算逾期衰减和恢复奖励所需的单条任务信息
type AssignmentRecord struct {
	Status      string     `json:"status"`
	DueTime     time.Time  `json:"dueTime"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// AssignmentFacts 一个统计周期内的任务完成事实
type AssignmentFacts struct {
	Total     int `json:"totalAssignments"`
	Completed int `json:"completedAssignments"`
	OnTime    int `json:"onTimeSubmissions"`
	Late      int `json:"lateSubmissions"`
	Pending   int `json:"pendingAssignments"`
	Overdue   int `json:"overdueAssignments"`
	// QualityScore 0-100，由 QualityScore 按准备度等级换算
	QualityScore float64            `json:"qualityScore"`
	Records      []AssignmentRecord `json:"-"`
}

// KPIBreakdown 各项得分，供组长审阅
type KPIBreakdown struct {
	CompletionRate float64 `json:"completionRate"`
	OnTimeRate     float64 `json:"onTimeRate"`
	QualityScore   float64 `json:"qualityScore"`
	LateRate       float64 `json:"lateRate"`

	CompletionPoints float64 `json:"completionPoints"`
	OnTimePoints     float64 `json:"onTimePoints"`
	QualityPoints    float64 `json:"qualityPoints"`
	LatePenalty      float64 `json:"latePenalty"`
	PendingBonus     float64 `json:"pendingBonus"`
	OverduePenalty   float64 `json:"overduePenalty"`
	RecoveryBonus    float64 `json:"recoveryBonus"`
}

type KPIResult struct {
	Score       float64      `json:"score"`
	LetterGrade string       `json:"letterGrade"`
	Rating      string       `json:"rating"`
	Description string       `json:"description"`
	Breakdown   KPIBreakdown `json:"breakdown"`
}

const (
	weightCompletion = 0.50
	weightOnTime     = 0.25
	weightQuality    = 0.10
	weightLate       = 0.15

	lateOnTimeErosion  = 50.0
	lateQualityErosion = 20.0

	maxPendingBonus   = 5.0
	maxOverduePenalty = 10.0

	shiftHours     = 8.0
	recoveryWindow = 7 * 24 * time.Hour
)

// NoAssignmentsRating 无任务时的固定结果
const NoAssignmentsRating = "No Assignments"

// AssignmentKPI 计算基于任务的加权 KPI。输入异常时截断而不是报错。
func AssignmentKPI(f AssignmentFacts, now time.Time) KPIResult {
	f = f.normalized()
	if f.Total == 0 {
		return KPIResult{
			Score:       0,
			LetterGrade: "N/A",
			Rating:      NoAssignmentsRating,
			Description: "No assignments in this period.",
		}
	}

	total := float64(f.Total)
	lateShare := float64(f.Late) / total

	var b KPIBreakdown
	b.CompletionRate = clamp(float64(f.Completed)/total*100, 0, 100)
	b.OnTimeRate = math.Max(0, clamp(float64(f.OnTime)/total*100, 0, 100)-lateShare*lateOnTimeErosion)
	b.QualityScore = math.Max(0, f.QualityScore-lateShare*lateQualityErosion)
	b.LateRate = clamp(lateShare*100, 0, 100)

	b.CompletionPoints = b.CompletionRate * weightCompletion
	b.OnTimePoints = b.OnTimeRate * weightOnTime
	b.QualityPoints = b.QualityScore * weightQuality
	// 迟交只会扣分
	b.LatePenalty = b.LateRate * weightLate
	b.PendingBonus = math.Min(maxPendingBonus, float64(f.Pending)/total*maxPendingBonus)
	b.OverduePenalty = overduePenalty(f, now)
	b.RecoveryBonus = recoveryBonus(f, now)

	score := b.CompletionPoints + b.OnTimePoints + b.QualityPoints - b.LatePenalty +
		b.PendingBonus - b.OverduePenalty + b.RecoveryBonus
	score = round2(clamp(score, 0, 100))

	grade, rating := GradeFor(score)
	return KPIResult{
		Score:       score,
		LetterGrade: grade,
		Rating:      rating,
		Description: ratingDescriptions[rating],
		Breakdown:   b.rounded(),
	}
}

// OverdueDecay 逾期按班次（8 小时）衰减的权重
func OverdueDecay(shifts int) float64 {
	switch {
	case shifts > 30:
		return 0.1
	case shifts > 10:
		return 0.3
	case shifts > 3:
		return 0.6
	default:
		return 1.0
	}
}

func overduePenalty(f AssignmentFacts, now time.Time) float64 {
	total := float64(f.Total)
	sum, found := 0.0, false
	for _, r := range f.Records {
		if r.Status != AssignmentStatusOverdue || r.DueTime.IsZero() {
			continue
		}
		found = true
		hours := now.Sub(r.DueTime).Hours()
		if hours < 0 {
			hours = 0
		}
		sum += OverdueDecay(int(math.Floor(hours / shiftHours)))
	}
	if !found {
		return math.Min(maxOverduePenalty, float64(f.Overdue)/total*maxOverduePenalty)
	}
	return math.Min(maxOverduePenalty, sum/total*maxOverduePenalty)
}

func recoveryBonus(f AssignmentFacts, now time.Time) float64 {
	recent := 0
	for _, r := range f.Records {
		if r.CompletedAt == nil {
			continue
		}
		age := now.Sub(*r.CompletedAt)
		if age >= 0 && age <= recoveryWindow {
			recent++
		}
	}
	rate := float64(recent) / float64(f.Total) * 100
	switch {
	case rate > 80:
		return 3
	case rate > 60:
		return 2
	case rate > 40:
		return 1
	default:
		return 0
	}
}

type gradeBand struct {
	min    float64
	grade  string
	rating string
}

var gradeBands = []gradeBand{
	{95, "A+", "Excellent"},
	{90, "A", "Excellent"},
	{85, "A-", "Very Good"},
	{80, "B+", "Good"},
	{75, "B", "Good"},
	{70, "B-", "Above Average"},
	{65, "C+", "Average"},
	{60, "C", "Average"},
	{55, "C-", "Below Average"},
	{50, "D", "Below Average"},
}

var ratingDescriptions = map[string]string{
	"Excellent":         "Consistently completes readiness assessments on time.",
	"Very Good":         "Reliable completion with only minor timeliness gaps.",
	"Good":              "Solid compliance with some room for improvement.",
	"Above Average":     "Generally compliant, but lateness or gaps are visible.",
	"Average":           "Meets some expectations; timeliness needs attention.",
	"Below Average":     "Frequent gaps or late submissions.",
	"Needs Improvement": "Most assessments are missing or late.",
}

// GradeFor 返回分数对应的字母等级和评价
func GradeFor(score float64) (string, string) {
	for _, b := range gradeBands {
		if score >= b.min {
			return b.grade, b.rating
		}
	}
	return "F", "Needs Improvement"
}

// QualityScore 按准备度等级换算质量分并取平均，没有提交时为 0
func QualityScore(levels []string) float64 {
	if len(levels) == 0 {
		return 0
	}
	sum := 0.0
	for _, l := range levels {
		switch l {
		case "fit":
			sum += 100
		case "minor":
			sum += 70
		case "not_fit":
			sum += 30
		default:
			sum += 50
		}
	}
	return round2(sum / float64(len(levels)))
}

func (f AssignmentFacts) normalized() AssignmentFacts {
	f.Total = max(f.Total, 0)
	f.Completed = max(f.Completed, 0)
	f.OnTime = max(f.OnTime, 0)
	f.Late = max(f.Late, 0)
	f.Pending = max(f.Pending, 0)
	f.Overdue = max(f.Overdue, 0)
	if math.IsNaN(f.QualityScore) {
		f.QualityScore = 0
	}
	f.QualityScore = clamp(f.QualityScore, 0, 100)
	return f
}

func (b KPIBreakdown) rounded() KPIBreakdown {
	return KPIBreakdown{
		CompletionRate:   round2(b.CompletionRate),
		OnTimeRate:       round2(b.OnTimeRate),
		QualityScore:     round2(b.QualityScore),
		LateRate:         round2(b.LateRate),
		CompletionPoints: round2(b.CompletionPoints),
		OnTimePoints:     round2(b.OnTimePoints),
		QualityPoints:    round2(b.QualityPoints),
		LatePenalty:      round2(b.LatePenalty),
		PendingBonus:     round2(b.PendingBonus),
		OverduePenalty:   round2(b.OverduePenalty),
		RecoveryBonus:    round2(b.RecoveryBonus),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
