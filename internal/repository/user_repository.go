package repository

import (
	"context"
	"errors"
	"time"
	"work_readiness_backend/internal/model"
	"work_readiness_backend/internal/util"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := conn(ctx, r.DB).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := conn(ctx, r.DB).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetWorkerByID 查询工作人员档案，不存在时返回 ErrWorkerNotFound
func (r *UserRepository) GetWorkerByID(ctx context.Context, id string) (*model.User, error) {
	user, err := r.FindByID(ctx, id)
	if errors.Is(err, util.ErrNotFound) {
		return nil, util.ErrWorkerNotFound
	}
	return user, err
}

// FindTeamWorkers 获取组长直属的工作人员
func (r *UserRepository) FindTeamWorkers(ctx context.Context, teamLeaderID string) ([]model.User, error) {
	var users []model.User
	err := conn(ctx, r.DB).
		Where("team_leader_id = ? AND role = ? AND disabled = ?", teamLeaderID, model.Worker, false).
		Order("name").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return conn(ctx, r.DB).Model(&model.User{}).Where("id = ?", id).Update("last_login", at).Error
}
