package orders

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vhovsepyan/storefront-backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Profile{}, &models.Category{}, &models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func mustCreateProduct(t *testing.T, tx *gorm.DB, price string, stock int, supplierID *uuid.UUID) *models.Product {
	t.Helper()
	category := &models.Category{
		ID:   uuid.New(),
		Name: fmt.Sprintf("Category %s", uuid.NewString()[:8]),
		Slug: fmt.Sprintf("category-%s", uuid.NewString()),
	}
	if err := tx.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	product := &models.Product{
		ID:         uuid.New(),
		Name:       fmt.Sprintf("Product %s", uuid.NewString()[:8]),
		Slug:       fmt.Sprintf("product-%s", uuid.NewString()),
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: category.ID,
		SupplierID: supplierID,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
