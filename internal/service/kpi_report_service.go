package service

import (
	"context"
	"fmt"
	"time"
	"work_readiness_backend/internal/readiness"
	"work_readiness_backend/internal/util"
	"work_readiness_backend/pkg/logger"

	"go.uber.org/zap"
)

// TeamKPIReport 组长团队的月度 KPI 快照
type TeamKPIReport struct {
	TeamLeaderID string       `json:"teamLeaderId"`
	Month        string       `json:"month"`
	GeneratedAt  time.Time    `json:"generatedAt"`
	WorkerCount  int          `json:"workerCount"`
	AverageScore float64      `json:"averageScore"`
	Workers      []MonthlyKPI `json:"workers"`
	URL          string       `json:"url,omitempty"`
}

type KPIReportService struct {
	Team     TeamStore
	KPI      *WorkerKPIService
	Storage  ReportStorage
	Calendar *readiness.Calendar
}

func NewKPIReportService(team TeamStore, kpi *WorkerKPIService, storage ReportStorage, calendar *readiness.Calendar) *KPIReportService {
	return &KPIReportService{Team: team, KPI: kpi, Storage: storage, Calendar: calendar}
}

// ExportTeamMonthlyReport 计算团队所有工作人员的月度 KPI 并归档为 JSON
func (s *KPIReportService) ExportTeamMonthlyReport(ctx context.Context, teamLeaderID, month string) (*TeamKPIReport, error) {
	period, err := s.Calendar.MonthRange(month)
	if err != nil {
		return nil, fmt.Errorf("%w: month %q", util.ErrInvalidInput, month)
	}
	monthKey := period.From[:len(readiness.MonthKeyFormat)]

	workers, err := s.Team.FindTeamWorkers(ctx, teamLeaderID)
	if err != nil {
		return nil, err
	}

	report := &TeamKPIReport{
		TeamLeaderID: teamLeaderID,
		Month:        monthKey,
		GeneratedAt:  s.Calendar.Now(),
		Workers:      make([]MonthlyKPI, 0, len(workers)),
	}

	scored, sum := 0, 0.0
	for _, w := range workers {
		kpi, err := s.KPI.GetWorkerMonthlyKPI(ctx, w.ID, monthKey)
		if err != nil {
			return nil, fmt.Errorf("kpi for worker %s: %w", w.ID, err)
		}
		report.Workers = append(report.Workers, *kpi)
		if kpi.Metrics.Total > 0 {
			scored++
			sum += kpi.KPI.Score
		}
	}
	report.WorkerCount = len(report.Workers)
	if scored > 0 {
		report.AverageScore = float64(int(sum/float64(scored)*100+0.5)) / 100
	}

	if s.Storage != nil {
		filename := fmt.Sprintf("kpi/%s/%s-%d.json", teamLeaderID, monthKey, report.GeneratedAt.Unix())
		url, err := ArchiveJSON(ctx, s.Storage, filename, report)
		if err != nil {
			return nil, fmt.Errorf("archive report: %w", err)
		}
		report.URL = url
	}

	logger.Log.Info("Team KPI report exported",
		zap.String("teamLeaderId", teamLeaderID),
		zap.String("month", monthKey),
		zap.Int("workers", report.WorkerCount),
		zap.String("url", report.URL))
	return report, nil
}
