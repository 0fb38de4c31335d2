package model

import "time"

// LoginEvent 登录流水，只追加
type LoginEvent struct {
	BaseModel
	WorkerID  string    `gorm:"type:varchar(36);not null;index:idx_login_worker_time" json:"workerId"`
	Timestamp time.Time `gorm:"not null;index:idx_login_worker_time" json:"timestamp"`
	Action    string    `gorm:"size:20;default:'login'" json:"action"`
	Success   bool      `gorm:"default:true" json:"success"`
	IP        string    `gorm:"size:45" json:"ip"`
}

func (LoginEvent) TableName() string {
	return "login_events"
}
