package repository

import (
	"context"
	"errors"
	"time"
	"work_readiness_backend/internal/model"

	"gorm.io/gorm"
)

// LoginEventRepository 登录流水，核心逻辑只读最近一次成功登录
type LoginEventRepository struct {
	DB *gorm.DB
}

func NewLoginEventRepository(db *gorm.DB) *LoginEventRepository {
	return &LoginEventRepository{DB: db}
}

func (r *LoginEventRepository) RecordLogin(ctx context.Context, e *model.LoginEvent) error {
	if e.Action == "" {
		e.Action = "login"
	}
	return conn(ctx, r.DB).Create(e).Error
}

func (r *LoginEventRepository) GetLastSuccessfulLogin(ctx context.Context, workerID string) (*time.Time, error) {
	var e model.LoginEvent
	err := conn(ctx, r.DB).
		Where("worker_id = ? AND action = ? AND success = ?", workerID, "login", true).
		Order("timestamp DESC").
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e.Timestamp, nil
}
