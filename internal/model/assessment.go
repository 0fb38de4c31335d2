package model

import "time"

type ReadinessLevel string

const (
	ReadinessFit    ReadinessLevel = "fit"
	ReadinessMinor  ReadinessLevel = "minor"
	ReadinessNotFit ReadinessLevel = "not_fit"
)

// Assessment 工作人员每日的准备度自评
// 同一工作人员同一天只有一条记录，重复提交原地更新
// swagger:model Assessment
type Assessment struct {
	UUIDBase
	WorkerID       string         `gorm:"type:varchar(36);not null;index:idx_assessment_worker_date,unique" json:"workerId"`
	TeamLeaderID   string         `gorm:"type:varchar(36);index" json:"teamLeaderId"`
	Team           string         `gorm:"size:100" json:"team"`
	ReadinessLevel ReadinessLevel `gorm:"type:enum('fit','minor','not_fit');not null" json:"readinessLevel"`
	FatigueLevel   int            `gorm:"not null" json:"fatigueLevel"`
	PainDiscomfort bool           `gorm:"default:false" json:"painDiscomfort"`
	PainAreas      []string       `gorm:"serializer:json;type:json" json:"painAreas,omitempty"`
	Mood           string         `gorm:"size:20" json:"mood"`
	Notes          string         `gorm:"type:text" json:"notes"`
	SubmittedAt    time.Time      `gorm:"not null;index" json:"submittedAt"`
	SubmissionDate string         `gorm:"type:varchar(10);not null;index:idx_assessment_worker_date,unique" json:"submissionDate"` // YYYY-MM-DD

	// 兼容旧报表的周期字段，提交时写入
	CycleStart     string `gorm:"type:varchar(10)" json:"cycleStart"`
	CycleDay       int    `gorm:"default:0" json:"cycleDay"`
	StreakDays     int    `gorm:"default:0" json:"streakDays"`
	CycleCompleted bool   `gorm:"default:false" json:"cycleCompleted"`
}

func (Assessment) TableName() string {
	return "assessments"
}
