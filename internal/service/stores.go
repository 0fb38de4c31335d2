package service

import (
	"context"
	"io"
	"time"
	"work_readiness_backend/internal/model"
	"work_readiness_backend/internal/readiness"
)

// 服务层只依赖这些接口，repository 包提供 gorm/redis 实现，测试使用内存实现

type WorkerStore interface {
	GetWorkerByID(ctx context.Context, id string) (*model.User, error)
}

type TeamStore interface {
	FindTeamWorkers(ctx context.Context, teamLeaderID string) ([]model.User, error)
}

type UserStore interface {
	WorkerStore
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

type AssessmentStore interface {
	GetLatestAssessment(ctx context.Context, workerID string) (*model.Assessment, error)
	GetAssessmentForDate(ctx context.Context, workerID, date string) (*model.Assessment, error)
	GetAssessmentsForWorker(ctx context.Context, workerID string, dr readiness.DateRange) ([]model.Assessment, error)
	CreateAssessment(ctx context.Context, a *model.Assessment) error
	UpdateAssessment(ctx context.Context, id string, a *model.Assessment) error
}

type AssignmentStore interface {
	CreateAssignment(ctx context.Context, a *model.Assignment) error
	GetAssignmentsForWorker(ctx context.Context, workerID string, dr readiness.DateRange) ([]model.Assignment, error)
	GetActiveAssignmentForDate(ctx context.Context, workerID, date string) (*model.Assignment, error)
	MarkAssignmentCompleted(ctx context.Context, id, assessmentID string, completedAt time.Time) error
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type LoginStore interface {
	GetLastSuccessfulLogin(ctx context.Context, workerID string) (*time.Time, error)
	RecordLogin(ctx context.Context, e *model.LoginEvent) error
}

// Transactor 保证评估写入和任务完成在同一事务内
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// KPICache 月度 KPI 的旁路缓存
type KPICache interface {
	Get(ctx context.Context, workerID, month string, dest interface{}) (bool, error)
	Set(ctx context.Context, workerID, month string, value interface{}) error
	Invalidate(ctx context.Context, workerID, month string) error
}

// CycleNotifier 周期变化的实时推送
type CycleNotifier interface {
	NotifyCycleUpdate(ctx context.Context, teamLeaderID string, update CycleUpdate)
}

// ReportStorage 报表归档
type ReportStorage interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
}

type noopTx struct{}

func (noopTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
