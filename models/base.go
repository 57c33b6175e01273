package models

import (
	"time"

	"gorm.io/gorm"
)

// SoftDeleteModel contains ID, audit timestamps and soft delete support.
// Rows are only flagged as deleted; hard deletes go through Unscoped and
// are reserved for the admin role.
type SoftDeleteModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
