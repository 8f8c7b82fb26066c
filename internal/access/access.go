package access

import (
	"github.com/google/uuid"

	"github.com/vhovsepyan/storefront-backend/pkg/db/models"
	"github.com/vhovsepyan/storefront-backend/pkg/enums"
)

// Actor is the authenticated principal evaluated by the predicates.
type Actor struct {
	UserID     uuid.UUID
	Role       enums.Role
	IsApproved bool
	IsStaff    bool
}

// IsAdmin reports whether the actor holds admin privileges, either through
// the staff flag or the Admin role.
func (a Actor) IsAdmin() bool {
	return a.IsStaff || a.Role == enums.RoleAdmin
}

// IsApprovedSupplierOrAdmin gates catalog mutations. Admins always pass,
// suppliers pass only once approved.
func IsApprovedSupplierOrAdmin(actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == enums.RoleSupplier && actor.IsApproved
}

// CanManageProduct applies the object-level check: the owning supplier or
// an admin may mutate a listing. A product without a supplier is admin-only.
func CanManageProduct(actor Actor, product *models.Product) bool {
	if actor.IsAdmin() {
		return true
	}
	if product == nil || product.SupplierID == nil {
		return false
	}
	if actor.Role != enums.RoleSupplier || !actor.IsApproved {
		return false
	}
	return IsOwnerOrAdmin(actor, *product.SupplierID)
}

// IsOwnerOrAdmin reports whether the actor owns the resource or is an admin.
func IsOwnerOrAdmin(actor Actor, ownerID uuid.UUID) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.UserID == ownerID
}

// CanViewOrder lets the purchasing client, the attributed supplier, and
// admins read an order.
func CanViewOrder(actor Actor, order *models.Order) bool {
	if order == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if order.ClientID != nil && *order.ClientID == actor.UserID {
		return true
	}
	return order.SupplierID != nil && *order.SupplierID == actor.UserID
}

// CanUpdateOrderStatus restricts status transitions to the attributed
// supplier and admins.
func CanUpdateOrderStatus(actor Actor, order *models.Order) bool {
	if actor.IsAdmin() {
		return true
	}
	if order == nil || order.SupplierID == nil {
		return false
	}
	return actor.Role == enums.RoleSupplier && actor.IsApproved && *order.SupplierID == actor.UserID
}
