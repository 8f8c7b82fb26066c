package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/vhovsepyan/storefront-backend/pkg/db/models"
	"github.com/vhovsepyan/storefront-backend/pkg/enums"
)

func TestIsApprovedSupplierOrAdmin(t *testing.T) {
	cases := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"admin always passes", Actor{Role: enums.RoleAdmin}, true},
		{"unapproved admin still passes", Actor{Role: enums.RoleAdmin, IsApproved: false}, true},
		{"approved supplier passes", Actor{Role: enums.RoleSupplier, IsApproved: true}, true},
		{"pending supplier blocked", Actor{Role: enums.RoleSupplier, IsApproved: false}, false},
		{"client blocked", Actor{Role: enums.RoleClient, IsApproved: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsApprovedSupplierOrAdmin(tc.actor))
		})
	}
}

func TestCanManageProduct(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	product := &models.Product{SupplierID: &owner}

	assert.True(t, CanManageProduct(Actor{UserID: other, Role: enums.RoleAdmin}, product))
	assert.True(t, CanManageProduct(Actor{UserID: owner, Role: enums.RoleSupplier, IsApproved: true}, product))
	assert.False(t, CanManageProduct(Actor{UserID: owner, Role: enums.RoleSupplier, IsApproved: false}, product))
	assert.False(t, CanManageProduct(Actor{UserID: other, Role: enums.RoleSupplier, IsApproved: true}, product))

	orphan := &models.Product{}
	assert.True(t, CanManageProduct(Actor{Role: enums.RoleAdmin}, orphan))
	assert.False(t, CanManageProduct(Actor{UserID: owner, Role: enums.RoleSupplier, IsApproved: true}, orphan))
	assert.False(t, CanManageProduct(Actor{UserID: owner, Role: enums.RoleSupplier, IsApproved: true}, nil))
}

func TestCanViewOrder(t *testing.T) {
	client := uuid.New()
	supplier := uuid.New()
	stranger := uuid.New()
	order := &models.Order{ClientID: &client, SupplierID: &supplier}

	assert.True(t, CanViewOrder(Actor{UserID: client, Role: enums.RoleClient}, order))
	assert.True(t, CanViewOrder(Actor{UserID: supplier, Role: enums.RoleSupplier}, order))
	assert.True(t, CanViewOrder(Actor{UserID: stranger, Role: enums.RoleAdmin}, order))
	assert.False(t, CanViewOrder(Actor{UserID: stranger, Role: enums.RoleClient}, order))
	assert.False(t, CanViewOrder(Actor{UserID: client}, nil))

	orphaned := &models.Order{SupplierID: &supplier}
	assert.True(t, CanViewOrder(Actor{UserID: supplier, Role: enums.RoleSupplier}, orphaned))
	assert.True(t, CanViewOrder(Actor{UserID: stranger, IsStaff: true}, orphaned))
	assert.False(t, CanViewOrder(Actor{UserID: stranger, Role: enums.RoleClient}, orphaned))
}

func TestCanUpdateOrderStatus(t *testing.T) {
	client := uuid.New()
	supplier := uuid.New()
	order := &models.Order{ClientID: &client, SupplierID: &supplier}

	assert.True(t, CanUpdateOrderStatus(Actor{Role: enums.RoleAdmin}, order))
	assert.True(t, CanUpdateOrderStatus(Actor{UserID: supplier, Role: enums.RoleSupplier, IsApproved: true}, order))
	assert.False(t, CanUpdateOrderStatus(Actor{UserID: client, Role: enums.RoleClient}, order))
	assert.False(t, CanUpdateOrderStatus(Actor{UserID: supplier, Role: enums.RoleSupplier, IsApproved: false}, order))
	assert.True(t, CanUpdateOrderStatus(Actor{UserID: client, IsStaff: true}, order))

	unattributed := &models.Order{ClientID: &client}
	assert.True(t, CanUpdateOrderStatus(Actor{Role: enums.RoleAdmin}, unattributed))
	assert.False(t, CanUpdateOrderStatus(Actor{UserID: supplier, Role: enums.RoleSupplier, IsApproved: true}, unattributed))
}
