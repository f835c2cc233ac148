package models

import (
	"time"
)

// GORM-compatible models with proper tags

// ImportJobGorm represents the import_jobs table with GORM tags. Rows track
// background product catalog imports.
type ImportJobGorm struct {
	ID             uint       `gorm:"primaryKey;column:id" json:"id"`
	JobType        string     `gorm:"column:job_type;not null" json:"job_type"`
	Status         string     `gorm:"column:status;not null;default:'pending'" json:"status"`
	Progress       int        `gorm:"column:progress;default:0" json:"progress"`
	TotalItems     int        `gorm:"column:total_items;default:0" json:"total_items"`
	ProcessedItems int        `gorm:"column:processed_items;default:0" json:"processed_items"`
	FailedItems    int        `gorm:"column:failed_items;default:0" json:"failed_items"`
	CreatedBy      string     `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	Error          *string    `gorm:"column:error" json:"error,omitempty"`
}

// TableName specifies the table name for ImportJobGorm
func (ImportJobGorm) TableName() string {
	return "import_jobs"
}
