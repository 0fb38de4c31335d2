package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
	"work_readiness_backend/internal/model"
	"work_readiness_backend/internal/readiness"
	"work_readiness_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKPIService(f *fixture) *WorkerKPIService {
	return NewWorkerKPIService(f.store, f.store, f.store, f.calendar, f.cache, defaultOpts)
}

func completed(due time.Time, doneAt time.Time) model.Assignment {
	return model.Assignment{Status: model.AssignmentCompleted, DueTime: due, CompletedAt: &doneAt}
}

func TestBuildFacts(t *testing.T) {
	now := at(20, 12)
	assignments := []model.Assignment{
		completed(at(1, 17), at(1, 9)),
		completed(at(2, 17), at(2, 20)),
		{Status: model.AssignmentPending, DueTime: at(21, 17)},
		{Status: model.AssignmentPending, DueTime: at(19, 17)},
		{Status: model.AssignmentOverdue, DueTime: at(18, 17)},
	}
	assessments := []model.Assessment{
		{ReadinessLevel: model.ReadinessFit},
		{ReadinessLevel: model.ReadinessMinor},
	}

	f := BuildFacts(assignments, assessments, now)
	assert.Equal(t, 5, f.Total)
	assert.Equal(t, 2, f.Completed)
	assert.Equal(t, 1, f.OnTime)
	assert.Equal(t, 1, f.Late)
	assert.Equal(t, 1, f.Pending)
	assert.Equal(t, 2, f.Overdue)
	assert.Equal(t, 85.0, f.QualityScore)

	require.Len(t, f.Records, 5)
	// 截止已过的 pending 按逾期处理
	assert.Equal(t, readiness.AssignmentStatusOverdue, f.Records[3].Status)
}

func TestGetWorkerMonthlyKPIPerfectMonth(t *testing.T) {
	f := newFixture(defaultOpts)
	for day := 1; day <= 5; day++ {
		a := f.store.addAssignment(f.worker.ID, fmt.Sprintf("2026-10-%02d", day), at(day, 17))
		done := at(day, 9)
		a.Status = model.AssignmentCompleted
		a.CompletedAt = &done
		f.store.assessments = append(f.store.assessments, &model.Assessment{
			WorkerID:       f.worker.ID,
			ReadinessLevel: model.ReadinessFit,
			SubmittedAt:    done,
			SubmissionDate: fmt.Sprintf("2026-10-%02d", day),
		})
	}
	f.clock.now = at(20, 12)

	svc := newKPIService(f)
	res, err := svc.GetWorkerMonthlyKPI(context.Background(), f.worker.ID, "2026-10")
	require.NoError(t, err)

	assert.Equal(t, 85.0, res.KPI.Score)
	assert.Equal(t, "A-", res.KPI.LetterGrade)
	assert.Equal(t, 5, res.Metrics.Total)
	assert.Equal(t, 5, res.Metrics.Submissions)
	assert.Equal(t, "2026-10", res.Metrics.Month)
	assert.Equal(t, 5, res.Metrics.Streak.Longest)
	assert.Equal(t, 85, res.Metrics.ConsecutiveKPI.Score)
	require.Len(t, res.RecentAssignments, 5)
	assert.Equal(t, "2026-10-05", res.RecentAssignments[0].AssignedDate)
}

func TestGetWorkerMonthlyKPINoAssignments(t *testing.T) {
	f := newFixture(defaultOpts)
	res, err := newKPIService(f).GetWorkerMonthlyKPI(context.Background(), f.worker.ID, "")
	require.NoError(t, err)
	assert.Equal(t, readiness.NoAssignmentsRating, res.KPI.Rating)
	assert.Equal(t, 0.0, res.KPI.Score)
	assert.Empty(t, res.RecentAssignments)
}

func TestGetWorkerMonthlyKPIInvalidMonth(t *testing.T) {
	f := newFixture(defaultOpts)
	_, err := newKPIService(f).GetWorkerMonthlyKPI(context.Background(), f.worker.ID, "Oct-2026")
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = newKPIService(f).GetWorkerMonthlyKPI(context.Background(), "missing", "2026-10")
	assert.ErrorIs(t, err, util.ErrWorkerNotFound)
}

func TestGetWorkerMonthlyKPIUsesCacheUntilInvalidated(t *testing.T) {
	f := newFixture(defaultOpts)
	svc := newKPIService(f)

	first, err := svc.GetWorkerMonthlyKPI(context.Background(), f.worker.ID, "2026-10")
	require.NoError(t, err)
	assert.Equal(t, 0, first.Metrics.Total)

	f.store.addAssignment(f.worker.ID, "2026-10-12", at(12, 17))
	cached, err := svc.GetWorkerMonthlyKPI(context.Background(), f.worker.ID, "2026-10")
	require.NoError(t, err)
	assert.Equal(t, 0, cached.Metrics.Total)

	// 提交会让缓存失效
	_, err = f.svc.HandleSubmission(context.Background(), f.worker.ID, validInput())
	require.NoError(t, err)

	fresh, err := svc.GetWorkerMonthlyKPI(context.Background(), f.worker.ID, "2026-10")
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Metrics.Total)
	assert.Equal(t, 1, fresh.Metrics.Completed)
}

func TestExportTeamMonthlyReport(t *testing.T) {
	f := newFixture(defaultOpts)
	leaderID := f.leader.ID
	f.store.addUser(&model.User{Name: "Bai", Email: "bai@example.com", Role: model.Worker, TeamLeaderID: &leaderID})

	f.submit(t, 12)
	f.clock.now = at(12, 18)

	storage := &memStorage{}
	svc := NewKPIReportService(f.store, newKPIService(f), storage, f.calendar)
	report, err := svc.ExportTeamMonthlyReport(context.Background(), f.leader.ID, "2026-10")
	require.NoError(t, err)

	assert.Equal(t, 2, report.WorkerCount)
	assert.Equal(t, "Bai", report.Workers[0].WorkerName)
	assert.Equal(t, readiness.NoAssignmentsRating, report.Workers[0].KPI.Rating)
	assert.Equal(t, report.Workers[1].KPI.Score, report.AverageScore)
	assert.True(t, strings.HasPrefix(report.URL, "/reports/kpi/"+f.leader.ID+"/2026-10-"))

	require.Len(t, storage.files, 1)
	for _, data := range storage.files {
		var decoded TeamKPIReport
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "2026-10", decoded.Month)
		assert.Len(t, decoded.Workers, 2)
	}

	_, err = svc.ExportTeamMonthlyReport(context.Background(), f.leader.ID, "2026-13")
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestMarkOverdueAssignments(t *testing.T) {
	f := newFixture(defaultOpts)
	past := f.store.addAssignment(f.worker.ID, "2026-10-11", at(11, 17))
	future := f.store.addAssignment(f.worker.ID, "2026-10-12", at(12, 17))

	svc := NewAssignmentService(f.store, f.store, f.calendar)
	svc.Now = func() time.Time { return at(12, 9) }

	n, err := svc.MarkOverdueAssignments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, model.AssignmentOverdue, past.Status)
	assert.Equal(t, model.AssignmentPending, future.Status)
}
