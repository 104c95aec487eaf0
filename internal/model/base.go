package model

import (
	"time"
)

// BaseModel handles the numeric ID and standard audit timestamps.
// DeletedAt is a plain nullable column: reads filter on it explicitly.
type BaseModel struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at"`
}

// IsDeleted reports whether the row has been soft-deleted.
func (base *BaseModel) IsDeleted() bool {
	return base.DeletedAt != nil
}
