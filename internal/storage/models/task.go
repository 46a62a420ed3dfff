package models

import "time"

// TaskHistory aggregates the runs of one named task.
type TaskHistory struct {
	BaseModel
	TaskName     string `gorm:"index;not null;type:varchar(100)"`
	Status       string `gorm:"not null;type:varchar(20)"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
	SuccessCount int `gorm:"default:0"`
	ErrorCount   int `gorm:"default:0"`
}
