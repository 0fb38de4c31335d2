package service

import (
	"context"
	"errors"
	"time"
	"work_readiness_backend/internal/config"
	"work_readiness_backend/internal/model"
	"work_readiness_backend/internal/util"
	"work_readiness_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	Users  UserStore
	Logins LoginStore
	Goals  *GoalTrackingService
	Cfg    *config.Config
	Now    func() time.Time
}

func NewAuthService(users UserStore, logins LoginStore, goals *GoalTrackingService, cfg *config.Config) *AuthService {
	return &AuthService{
		Users:  users,
		Logins: logins,
		Goals:  goals,
		Cfg:    cfg,
		Now:    time.Now,
	}
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *model.User  `json:"user"`
	Cycle *LoginResult `json:"cycle"`
}

// Login 校验密码并签发 token。
// 周期计算读取的是上一次成功登录，所以先处理周期再记录本次登录。
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*LoginResponse, error) {
	user, err := s.Users.FindByEmail(ctx, email)
	if errors.Is(err, util.ErrNotFound) {
		return nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if user.Disabled || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		s.record(ctx, user.ID, false, ip)
		return nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	cycle, err := s.Goals.HandleLogin(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	s.record(ctx, user.ID, true, ip)
	if err := s.Users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.Log.Warn("Failed to update last login", zap.String("userId", user.ID), zap.Error(err))
	}
	user.LastLogin = now

	return &LoginResponse{Token: token, User: user, Cycle: cycle}, nil
}

func (s *AuthService) record(ctx context.Context, userID string, success bool, ip string) {
	err := s.Logins.RecordLogin(ctx, &model.LoginEvent{
		WorkerID:  userID,
		Timestamp: s.Now(),
		Action:    "login",
		Success:   success,
		IP:        ip,
	})
	if err != nil {
		logger.Log.Error("Failed to record login event", zap.String("userId", userID), zap.Error(err))
	}
}

// HashPassword 供初始化账号使用
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
