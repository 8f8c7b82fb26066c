package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vhovsepyan/storefront-backend/internal/access"
	"github.com/vhovsepyan/storefront-backend/pkg/db"
	"github.com/vhovsepyan/storefront-backend/pkg/db/models"
	"github.com/vhovsepyan/storefront-backend/pkg/enums"
	pkgerrors "github.com/vhovsepyan/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	svc, err := NewService(NewRepository(conn), db.NewFromConn(conn))
	require.NoError(t, err)
	return svc, conn
}

func assertErrorCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func productStock(t *testing.T, conn *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, conn.First(&product, "id = ?", id).Error)
	return product.Stock
}

func TestPlaceOrderSnapshotsPriceAndDecrementsStock(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	supplierID := uuid.New()
	product := mustCreateProduct(t, conn, "19.99", 5, &supplierID)
	clientID := uuid.New()

	dto, err := svc.PlaceOrder(ctx, clientID, []OrderItemInput{{ProductID: product.ID, Quantity: 2}})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, dto.Status)
	require.NotNil(t, dto.SupplierID)
	assert.Equal(t, supplierID, *dto.SupplierID)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, "19.99", dto.Items[0].Price)
	assert.Equal(t, 2, dto.Items[0].Quantity)
	assert.Equal(t, "39.98", dto.Total)
	assert.Equal(t, 3, productStock(t, conn, product.ID))

	// A later price change must not affect the recorded snapshot.
	require.NoError(t, conn.Model(&models.Product{}).Where("id = ?", product.ID).Update("price", decimal.RequireFromString("99.99")).Error)
	admin := access.Actor{UserID: uuid.New(), IsStaff: true}
	reloaded, err := svc.GetOrder(ctx, admin, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "19.99", reloaded.Items[0].Price)
	assert.Equal(t, "39.98", reloaded.Total)
}

func TestPlaceOrderDefaultsQuantityToOne(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	supplierID := uuid.New()
	product := mustCreateProduct(t, conn, "10.00", 5, &supplierID)

	dto, err := svc.PlaceOrder(ctx, uuid.New(), []OrderItemInput{{ProductID: product.ID}})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 1, dto.Items[0].Quantity)
	assert.Equal(t, 4, productStock(t, conn, product.ID))
}

func TestPlaceOrderClampsStockAtZero(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	supplierID := uuid.New()
	product := mustCreateProduct(t, conn, "10.00", 3, &supplierID)

	dto, err := svc.PlaceOrder(ctx, uuid.New(), []OrderItemInput{{ProductID: product.ID, Quantity: 10}})
	require.NoError(t, err)
	assert.Equal(t, 10, dto.Items[0].Quantity, "requested quantity is preserved")
	assert.Equal(t, "100.00", dto.Total)
	assert.Equal(t, 0, productStock(t, conn, product.ID), "stock floors at zero, never negative")
}

func TestPlaceOrderEmptyItems(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto, err := svc.PlaceOrder(ctx, uuid.New(), nil)
	require.NoError(t, err)
	assert.Nil(t, dto.SupplierID)
	assert.Empty(t, dto.Items)
	assert.Equal(t, "0.00", dto.Total)
	assert.Equal(t, enums.OrderStatusPending, dto.Status)
}

func TestPlaceOrderMissingFirstProductLeavesSupplierUnset(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	supplierID := uuid.New()
	product := mustCreateProduct(t, conn, "5.00", 5, &supplierID)

	// The first item's product is missing: attribution is skipped silently,
	// but the per-item resolution still fails the order.
	_, err := svc.PlaceOrder(ctx, uuid.New(), []OrderItemInput{
		{ProductID: uuid.New(), Quantity: 1},
		{ProductID: product.ID, Quantity: 1},
	})
	assertErrorCode(t, err, pkgerrors.CodeNotFound)
}

func TestPlaceOrderRollsBackOnMissingProduct(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	supplierID := uuid.New()
	product := mustCreateProduct(t, conn, "10.00", 5, &supplierID)

	_, err := svc.PlaceOrder(ctx, uuid.New(), []OrderItemInput{
		{ProductID: product.ID, Quantity: 2},
		{ProductID: uuid.New(), Quantity: 1},
	})
	assertErrorCode(t, err, pkgerrors.CodeNotFound)

	assert.Equal(t, 5, productStock(t, conn, product.ID), "failed placement must not leak stock decrements")
	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count, "failed placement must not leave an order behind")
}

func TestUpdateStatus(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	supplierID := uuid.New()
	product := mustCreateProduct(t, conn, "10.00", 5, &supplierID)
	dto, err := svc.PlaceOrder(ctx, uuid.New(), []OrderItemInput{{ProductID: product.ID}})
	require.NoError(t, err)

	supplier := access.Actor{UserID: supplierID, Role: enums.RoleSupplier, IsApproved: true}

	t.Run("invalid status", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, supplier, dto.ID, "Archived")
		assertErrorCode(t, err, pkgerrors.CodeValidation)
	})

	t.Run("attributed supplier may update", func(t *testing.T) {
		updated, err := svc.UpdateStatus(ctx, supplier, dto.ID, "Shipped")
		require.NoError(t, err)
		assert.Equal(t, enums.OrderStatusShipped, updated.Status)
	})

	t.Run("no transition graph", func(t *testing.T) {
		updated, err := svc.UpdateStatus(ctx, supplier, dto.ID, "Pending")
		require.NoError(t, err)
		assert.Equal(t, enums.OrderStatusPending, updated.Status)
	})

	t.Run("other supplier forbidden", func(t *testing.T) {
		other := access.Actor{UserID: uuid.New(), Role: enums.RoleSupplier, IsApproved: true}
		_, err := svc.UpdateStatus(ctx, other, dto.ID, "Delivered")
		assertErrorCode(t, err, pkgerrors.CodeForbidden)
	})

	t.Run("admin may update any order", func(t *testing.T) {
		admin := access.Actor{UserID: uuid.New(), IsStaff: true}
		updated, err := svc.UpdateStatus(ctx, admin, dto.ID, "Cancelled")
		require.NoError(t, err)
		assert.Equal(t, enums.OrderStatusCancelled, updated.Status)
	})
}

func TestUpdateOrderAdminOnly(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	supplierID := uuid.New()
	product := mustCreateProduct(t, conn, "10.00", 5, &supplierID)
	dto, err := svc.PlaceOrder(ctx, uuid.New(), []OrderItemInput{{ProductID: product.ID}})
	require.NoError(t, err)

	admin := access.Actor{UserID: uuid.New(), IsStaff: true}
	shipped := "Shipped"

	t.Run("supplier forbidden", func(t *testing.T) {
		supplier := access.Actor{UserID: supplierID, Role: enums.RoleSupplier, IsApproved: true}
		_, err := svc.UpdateOrder(ctx, supplier, dto.ID, UpdateOrderInput{Status: &shipped})
		assertErrorCode(t, err, pkgerrors.CodeForbidden)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		bad := "Archived"
		_, err := svc.UpdateOrder(ctx, admin, dto.ID, UpdateOrderInput{Status: &bad})
		assertErrorCode(t, err, pkgerrors.CodeValidation)
	})

	t.Run("admin reassigns supplier and status", func(t *testing.T) {
		newSupplier := uuid.New()
		updated, err := svc.UpdateOrder(ctx, admin, dto.ID, UpdateOrderInput{Status: &shipped, SupplierID: &newSupplier})
		require.NoError(t, err)
		assert.Equal(t, enums.OrderStatusShipped, updated.Status)
		require.NotNil(t, updated.SupplierID)
		assert.Equal(t, newSupplier, *updated.SupplierID)

		reloaded, err := svc.GetOrder(ctx, admin, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, enums.OrderStatusShipped, reloaded.Status)
	})
}

func TestListOrdersScoping(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	supplierA := uuid.New()
	supplierB := uuid.New()
	productA := mustCreateProduct(t, conn, "10.00", 50, &supplierA)
	productB := mustCreateProduct(t, conn, "20.00", 50, &supplierB)

	clientA := uuid.New()
	clientB := uuid.New()
	_, err := svc.PlaceOrder(ctx, clientA, []OrderItemInput{{ProductID: productA.ID}})
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, clientA, []OrderItemInput{{ProductID: productB.ID}})
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, clientB, []OrderItemInput{{ProductID: productA.ID}})
	require.NoError(t, err)

	adminList, err := svc.ListOrders(ctx, access.Actor{UserID: uuid.New(), IsStaff: true}, "", 10)
	require.NoError(t, err)
	assert.Len(t, adminList.Orders, 3)

	clientList, err := svc.ListOrders(ctx, access.Actor{UserID: clientA, Role: enums.RoleClient}, "", 10)
	require.NoError(t, err)
	assert.Len(t, clientList.Orders, 2)

	supplierList, err := svc.ListOrders(ctx, access.Actor{UserID: supplierA, Role: enums.RoleSupplier, IsApproved: true}, "", 10)
	require.NoError(t, err)
	assert.Len(t, supplierList.Orders, 2)
	for _, order := range supplierList.Orders {
		require.NotNil(t, order.SupplierID)
		assert.Equal(t, supplierA, *order.SupplierID)
	}
}

func TestGetOrderScoping(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	supplierID := uuid.New()
	product := mustCreateProduct(t, conn, "10.00", 5, &supplierID)
	clientID := uuid.New()
	dto, err := svc.PlaceOrder(ctx, clientID, []OrderItemInput{{ProductID: product.ID}})
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, access.Actor{UserID: clientID, Role: enums.RoleClient}, dto.ID)
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, access.Actor{UserID: supplierID, Role: enums.RoleSupplier}, dto.ID)
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, access.Actor{UserID: uuid.New(), Role: enums.RoleClient}, dto.ID)
	assertErrorCode(t, err, pkgerrors.CodeForbidden)

	_, err = svc.GetOrder(ctx, access.Actor{UserID: uuid.New(), IsStaff: true}, uuid.New())
	assertErrorCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteOrderAdminOnly(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	supplierID := uuid.New()
	product := mustCreateProduct(t, conn, "10.00", 5, &supplierID)
	dto, err := svc.PlaceOrder(ctx, uuid.New(), []OrderItemInput{{ProductID: product.ID}})
	require.NoError(t, err)

	err = svc.DeleteOrder(ctx, access.Actor{UserID: supplierID, Role: enums.RoleSupplier, IsApproved: true}, dto.ID)
	assertErrorCode(t, err, pkgerrors.CodeForbidden)

	require.NoError(t, svc.DeleteOrder(ctx, access.Actor{UserID: uuid.New(), IsStaff: true}, dto.ID))

	var items int64
	require.NoError(t, conn.Model(&models.OrderItem{}).Where("order_id = ?", dto.ID).Count(&items).Error)
	assert.Zero(t, items)
}
