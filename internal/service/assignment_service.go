package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"work_readiness_backend/internal/model"
	"work_readiness_backend/internal/readiness"
	"work_readiness_backend/internal/util"
	"work_readiness_backend/pkg/logger"

	"go.uber.org/zap"
)

type AssignmentService struct {
	Assignments AssignmentStore
	Team        TeamStore
	Calendar    *readiness.Calendar
	Now         func() time.Time

	// 可选，新任务会改变当月 KPI
	Cache KPICache
}

func NewAssignmentService(assignments AssignmentStore, team TeamStore, calendar *readiness.Calendar) *AssignmentService {
	return &AssignmentService{Assignments: assignments, Team: team, Calendar: calendar, Now: time.Now}
}

// ScheduleInput 组长为整个团队安排某一天的评估任务
type ScheduleInput struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	DueTime string `json:"dueTime" validate:"required,datetime=15:04"`
}

type ScheduleResult struct {
	Date        string             `json:"date"`
	DueTime     time.Time          `json:"dueTime"`
	Created     int                `json:"created"`
	Skipped     int                `json:"skipped"`
	Assignments []model.Assignment `json:"assignments"`
}

// ScheduleTeamAssignments 给组长名下每个工作人员创建一条 pending 任务，已安排过的跳过
func (s *AssignmentService) ScheduleTeamAssignments(ctx context.Context, teamLeaderID string, input ScheduleInput) (*ScheduleResult, error) {
	if err := util.ValidateStruct(input); err != nil {
		return nil, err
	}

	day, err := s.Calendar.ParseDateKey(input.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q", util.ErrInvalidInput, input.Date)
	}
	if day.Before(s.Calendar.Today()) {
		return nil, fmt.Errorf("%w: date %s is in the past", util.ErrInvalidInput, input.Date)
	}
	clock, err := time.Parse("15:04", input.DueTime)
	if err != nil {
		return nil, fmt.Errorf("%w: dueTime %q", util.ErrInvalidInput, input.DueTime)
	}
	due := day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)

	workers, err := s.Team.FindTeamWorkers(ctx, teamLeaderID)
	if err != nil {
		return nil, err
	}

	res := &ScheduleResult{Date: input.Date, DueTime: due, Assignments: []model.Assignment{}}
	for _, w := range workers {
		a := model.Assignment{
			WorkerID:     w.ID,
			TeamLeaderID: teamLeaderID,
			AssignedDate: input.Date,
			DueTime:      due,
			Status:       model.AssignmentPending,
		}
		err := s.Assignments.CreateAssignment(ctx, &a)
		if errors.Is(err, util.ErrAlreadyAssigned) {
			res.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("assign %s: %w", w.ID, err)
		}
		res.Created++
		res.Assignments = append(res.Assignments, a)
		if s.Cache != nil {
			if err := s.Cache.Invalidate(ctx, w.ID, input.Date[:len(readiness.MonthKeyFormat)]); err != nil {
				logger.Log.Warn("Failed to invalidate KPI cache", zap.String("workerId", w.ID), zap.Error(err))
			}
		}
	}

	logger.Log.Info("Team assignments scheduled",
		zap.String("teamLeaderId", teamLeaderID),
		zap.String("date", input.Date),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

// MarkOverdueAssignments 把截止时间已过的 pending 任务标记为 overdue
func (s *AssignmentService) MarkOverdueAssignments(ctx context.Context) (int64, error) {
	n, err := s.Assignments.MarkOverdue(ctx, s.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Log.Info("Assignments marked overdue", zap.Int64("count", n))
	}
	return n, nil
}
