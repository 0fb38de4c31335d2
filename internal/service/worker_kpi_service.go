package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
	"work_readiness_backend/internal/model"
	"work_readiness_backend/internal/readiness"
	"work_readiness_backend/internal/util"
	"work_readiness_backend/pkg/logger"
	"work_readiness_backend/pkg/monitoring"
	"work_readiness_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultRecentAssignments = 10

// KPIMetrics 计算 KPI 时使用的原始统计
type KPIMetrics struct {
	readiness.AssignmentFacts
	Month          string                   `json:"month"`
	Period         readiness.DateRange      `json:"period"`
	Submissions    int                      `json:"submissions"`
	Streak         readiness.Streak         `json:"streak"`
	ConsecutiveKPI readiness.ConsecutiveKPI `json:"consecutiveKpi"`
}

// MonthlyKPI 单个工作人员的月度 KPI
type MonthlyKPI struct {
	WorkerID          string              `json:"workerId"`
	WorkerName        string              `json:"workerName"`
	KPI               readiness.KPIResult `json:"kpi"`
	Metrics           KPIMetrics          `json:"metrics"`
	RecentAssignments []model.Assignment  `json:"recentAssignments"`
}

type WorkerKPIService struct {
	Workers     WorkerStore
	Assessments AssessmentStore
	Assignments AssignmentStore
	Calendar    *readiness.Calendar
	Cache       KPICache

	mu                sync.RWMutex
	formula           readiness.ConsecutiveFormula
	countWeekends     bool
	recentAssignments int
}

func NewWorkerKPIService(
	workers WorkerStore,
	assessments AssessmentStore,
	assignments AssignmentStore,
	calendar *readiness.Calendar,
	cache KPICache,
	opts GoalTrackingOptions,
) *WorkerKPIService {
	s := &WorkerKPIService{
		Workers:     workers,
		Assessments: assessments,
		Assignments: assignments,
		Calendar:    calendar,
		Cache:       cache,
	}
	s.SetOptions(opts, defaultRecentAssignments)
	return s
}

func (s *WorkerKPIService) SetOptions(opts GoalTrackingOptions, recent int) {
	if recent <= 0 {
		recent = defaultRecentAssignments
	}
	s.mu.Lock()
	s.formula = opts.ConsecutiveFormula
	s.countWeekends = opts.CountWeekends
	s.recentAssignments = recent
	s.mu.Unlock()
}

// GetWorkerMonthlyKPI month 为 YYYY-MM，空字符串表示当月
func (s *WorkerKPIService) GetWorkerMonthlyKPI(ctx context.Context, workerID, month string) (*MonthlyKPI, error) {
	ctx, span := tracing.Tracer.Start(ctx, "WorkerKPIService.GetWorkerMonthlyKPI")
	defer span.End()
	span.SetAttributes(attribute.String("worker.id", workerID), attribute.String("kpi.month", month))

	period, err := s.Calendar.MonthRange(month)
	if err != nil {
		return nil, fmt.Errorf("%w: month %q", util.ErrInvalidInput, month)
	}
	monthKey := period.From[:len(readiness.MonthKeyFormat)]

	worker, err := s.Workers.GetWorkerByID(ctx, workerID)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		var cached MonthlyKPI
		hit, err := s.Cache.Get(ctx, workerID, monthKey, &cached)
		if err != nil {
			logger.Log.Warn("KPI cache read failed", zap.String("workerId", workerID), zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	assignments, err := s.Assignments.GetAssignmentsForWorker(ctx, workerID, period)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	assessments, err := s.Assessments.GetAssessmentsForWorker(ctx, workerID, period)
	if err != nil {
		return nil, fmt.Errorf("load assessments: %w", err)
	}

	s.mu.RLock()
	formula, countWeekends, recent := s.formula, s.countWeekends, s.recentAssignments
	s.mu.RUnlock()

	now := s.Calendar.Now()
	facts := BuildFacts(assignments, assessments, now)
	result := readiness.AssignmentKPI(facts, now)
	if facts.Total > 0 {
		monitoring.KPIScore.Observe(result.Score)
	}

	stamps := make([]time.Time, 0, len(assessments))
	for _, a := range assessments {
		stamps = append(stamps, a.SubmittedAt)
	}
	streak := s.Calendar.CalculateStreak(stamps, readiness.StreakOptions{CountWeekends: countWeekends})

	out := &MonthlyKPI{
		WorkerID:   worker.ID,
		WorkerName: worker.Name,
		KPI:        result,
		Metrics: KPIMetrics{
			AssignmentFacts: facts,
			Month:           monthKey,
			Period:          period,
			Submissions:     len(assessments),
			Streak:          streak,
			// 历史月份没有"当前"连续，统一按月内最长连续计分
			ConsecutiveKPI: readiness.ScoreConsecutiveDays(formula, streak.Longest),
		},
		RecentAssignments: recentAssignments(assignments, recent),
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, workerID, monthKey, out); err != nil {
			logger.Log.Warn("KPI cache write failed", zap.String("workerId", workerID), zap.Error(err))
		}
	}
	return out, nil
}

// BuildFacts 把任务和评估记录汇总成 KPI 输入。
// 截止时间已过但仍为 pending 的任务按逾期处理。
func BuildFacts(assignments []model.Assignment, assessments []model.Assessment, now time.Time) readiness.AssignmentFacts {
	f := readiness.AssignmentFacts{Total: len(assignments)}
	f.Records = make([]readiness.AssignmentRecord, 0, len(assignments))

	for _, a := range assignments {
		status := string(a.Status)
		switch a.Status {
		case model.AssignmentCompleted:
			f.Completed++
			if a.IsLate() {
				f.Late++
			} else {
				f.OnTime++
			}
		case model.AssignmentPending:
			if a.DueTime.After(now) {
				f.Pending++
			} else {
				f.Overdue++
				status = readiness.AssignmentStatusOverdue
			}
		case model.AssignmentOverdue:
			f.Overdue++
		}
		f.Records = append(f.Records, readiness.AssignmentRecord{
			Status:      status,
			DueTime:     a.DueTime,
			CompletedAt: a.CompletedAt,
		})
	}

	levels := make([]string, 0, len(assessments))
	for _, a := range assessments {
		levels = append(levels, string(a.ReadinessLevel))
	}
	f.QualityScore = readiness.QualityScore(levels)
	return f
}

func recentAssignments(list []model.Assignment, limit int) []model.Assignment {
	out := make([]model.Assignment, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AssignedDate > out[j].AssignedDate
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
