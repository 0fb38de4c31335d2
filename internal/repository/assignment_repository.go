package repository

import (
	"context"
	"errors"
	"time"
	"work_readiness_backend/internal/model"
	"work_readiness_backend/internal/readiness"
	"work_readiness_backend/internal/util"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

// CreateAssignment 同一工作人员同一天只能有一条任务
func (r *AssignmentRepository) CreateAssignment(ctx context.Context, a *model.Assignment) error {
	err := conn(ctx, r.DB).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrAlreadyAssigned
	}
	return err
}

// GetAssignmentsForWorker 按安排日期范围查询
func (r *AssignmentRepository) GetAssignmentsForWorker(ctx context.Context, workerID string, dr readiness.DateRange) ([]model.Assignment, error) {
	var list []model.Assignment
	err := conn(ctx, r.DB).
		Where("worker_id = ? AND assigned_date BETWEEN ? AND ?", workerID, dr.From, dr.To).
		Order("assigned_date DESC").
		Find(&list).Error
	return list, err
}

// GetActiveAssignmentForDate 当天待完成或已逾期的任务，没有时返回 nil, nil
func (r *AssignmentRepository) GetActiveAssignmentForDate(ctx context.Context, workerID, date string) (*model.Assignment, error) {
	var a model.Assignment
	err := conn(ctx, r.DB).
		Where("worker_id = ? AND assigned_date = ? AND status IN ?", workerID, date,
			[]model.AssignmentStatus{model.AssignmentPending, model.AssignmentOverdue}).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// MarkAssignmentCompleted 只允许从 pending/overdue 变为 completed
func (r *AssignmentRepository) MarkAssignmentCompleted(ctx context.Context, id, assessmentID string, completedAt time.Time) error {
	res := conn(ctx, r.DB).Model(&model.Assignment{}).
		Where("id = ? AND status IN ?", id, []model.AssignmentStatus{model.AssignmentPending, model.AssignmentOverdue}).
		Updates(map[string]interface{}{
			"status":        model.AssignmentCompleted,
			"completed_at":  completedAt,
			"assessment_id": assessmentID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrNoActiveAssignment
	}
	return nil
}

// MarkOverdue 将截止时间已过的 pending 任务标记为 overdue
func (r *AssignmentRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := conn(ctx, r.DB).Model(&model.Assignment{}).
		Where("status = ? AND due_time < ?", model.AssignmentPending, now).
		Update("status", model.AssignmentOverdue)
	return res.RowsAffected, res.Error
}
