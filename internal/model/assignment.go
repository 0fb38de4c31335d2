package model

import "time"

type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentOverdue   AssignmentStatus = "overdue"
)

// Assignment 组长给工作人员安排的每日准备度评估任务
// 状态只会从 pending 变为 completed 或 overdue
// swagger:model Assignment
type Assignment struct {
	UUIDBase
	WorkerID     string           `gorm:"type:varchar(36);not null;index:idx_assignment_worker_date,unique" json:"workerId"`
	TeamLeaderID string           `gorm:"type:varchar(36);index" json:"teamLeaderId"`
	AssignedDate string           `gorm:"type:varchar(10);not null;index:idx_assignment_worker_date,unique" json:"assignedDate"` // YYYY-MM-DD
	DueTime      time.Time        `gorm:"not null;index" json:"dueTime"`
	Status       AssignmentStatus `gorm:"type:enum('pending','completed','overdue');default:'pending';index" json:"status"`
	CompletedAt  *time.Time       `json:"completedAt,omitempty"`
	AssessmentID *string          `gorm:"type:varchar(36)" json:"assessmentId,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// IsOpen 待完成或已逾期的任务仍然可以提交
func (a *Assignment) IsOpen() bool {
	return a.Status == AssignmentPending || a.Status == AssignmentOverdue
}

// IsLate 完成时间晚于截止时间
func (a *Assignment) IsLate() bool {
	return a.Status == AssignmentCompleted && a.CompletedAt != nil && a.CompletedAt.After(a.DueTime)
}
