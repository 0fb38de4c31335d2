package repository

import (
	"context"
	"errors"
	"work_readiness_backend/internal/model"
	"work_readiness_backend/internal/readiness"
	"work_readiness_backend/internal/util"

	"gorm.io/gorm"
)

// AssessmentRepository 准备度评估的数据访问
type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

// CreateAssessment 依赖 (worker_id, submission_date) 唯一索引防止同日重复
func (r *AssessmentRepository) CreateAssessment(ctx context.Context, a *model.Assessment) error {
	err := conn(ctx, r.DB).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrAlreadySubmittedToday
	}
	return err
}

// UpdateAssessment 原地更新当日评估，周期字段保持不变
func (r *AssessmentRepository) UpdateAssessment(ctx context.Context, id string, a *model.Assessment) error {
	res := conn(ctx, r.DB).Model(&model.Assessment{}).
		Where("id = ?", id).
		Select("readiness_level", "fatigue_level", "pain_discomfort", "pain_areas", "mood", "notes", "submitted_at").
		Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// GetLatestAssessment 最近一次提交，没有记录时返回 nil, nil
func (r *AssessmentRepository) GetLatestAssessment(ctx context.Context, workerID string) (*model.Assessment, error) {
	var a model.Assessment
	err := conn(ctx, r.DB).Where("worker_id = ?", workerID).
		Order("submitted_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAssessmentForDate 指定日期的评估，没有记录时返回 nil, nil
func (r *AssessmentRepository) GetAssessmentForDate(ctx context.Context, workerID, date string) (*model.Assessment, error) {
	var a model.Assessment
	err := conn(ctx, r.DB).Where("worker_id = ? AND submission_date = ?", workerID, date).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssessmentRepository) GetAssessmentsForWorker(ctx context.Context, workerID string, dr readiness.DateRange) ([]model.Assessment, error) {
	var list []model.Assessment
	err := conn(ctx, r.DB).
		Where("worker_id = ? AND submission_date BETWEEN ? AND ?", workerID, dr.From, dr.To).
		Order("submission_date").
		Find(&list).Error
	return list, err
}
