package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vhovsepyan/storefront-backend/pkg/enums"
)

// Order is a client purchase attributed to at most one supplier. The client
// reference goes null when the account is deleted; the order survives.
type Order struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ClientID   *uuid.UUID        `gorm:"column:client_id;type:uuid;index"`
	Client     *User             `gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL"`
	SupplierID *uuid.UUID        `gorm:"column:supplier_id;type:uuid;index"`
	Supplier   *User             `gorm:"foreignKey:SupplierID;constraint:OnDelete:SET NULL"`
	Status     enums.OrderStatus `gorm:"column:status;type:text;not null;default:'Pending'"`
	Items      []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
