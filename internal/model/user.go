package model

import (
	"time"
)

type UserRole string

const (
	Worker     UserRole = "worker"
	TeamLeader UserRole = "team_leader"
	Supervisor UserRole = "supervisor"
	Admin      UserRole = "admin"
)

// User 工作人员档案，周期逻辑只对 worker 角色生效
// swagger:model User
type User struct {
	UUIDBase
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:100;unique;not null" json:"email"`
	Password     string    `gorm:"size:100;not null" json:"-"`
	Role         UserRole  `gorm:"type:enum('worker','team_leader','supervisor','admin');default:'worker'" json:"role"`
	Team         string    `gorm:"size:100;index" json:"team"`
	TeamLeaderID *string   `gorm:"type:varchar(36);index" json:"teamLeaderId,omitempty"`
	Disabled     bool      `gorm:"default:false" json:"disabled"`
	LastLogin    time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsWorker() bool {
	return u != nil && u.Role == Worker
}
