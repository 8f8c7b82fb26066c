package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vhovsepyan/storefront-backend/pkg/enums"
)

// Profile carries the role and approval state attached one-to-one to a user.
type Profile struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID     uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Role       enums.Role `gorm:"column:role;type:text;not null;default:'Client'"`
	IsApproved bool       `gorm:"column:is_approved;not null;default:false"`
	Age        *int       `gorm:"column:age"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
