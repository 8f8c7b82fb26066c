package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vhovsepyan/storefront-backend/pkg/db/models"
	"github.com/vhovsepyan/storefront-backend/pkg/pagination"
)

// Repository encapsulates catalog persistence for categories and products.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// FindCategoryByID loads a single category.
func (r *Repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories returns every category ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// SaveCategory persists name and slug mutations.
func (r *Repository) SaveCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]any{"name": category.Name, "slug": category.Slug}).
		Error
}

// DeleteCategory removes a category along with its products. Order lines
// keep their price snapshots with the product reference nulled.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	productIDs := tx.Model(&models.Product{}).Select("id").Where("category_id = ?", id)
	if err := tx.Model(&models.OrderItem{}).Where("product_id IN (?)", productIDs).Update("product_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Where("category_id = ?", id).Delete(&models.Product{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Category{}, "id = ?", id).Error
}

// CategorySlugExists reports whether a slug is taken, optionally excluding one row.
func (r *Repository) CategorySlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateProduct inserts a product.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindProductByID loads the product with its category and supplier.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SaveProduct persists listing mutations.
func (r *Repository) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":        product.Name,
			"slug":        product.Slug,
			"description": product.Description,
			"price":       product.Price,
			"stock":       product.Stock,
			"category_id": product.CategoryID,
			"image_url":   product.ImageURL,
		}).Error
}

// DeleteProduct removes a product. Order lines keep their price snapshots
// with the product reference nulled.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Update("product_id", nil).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Product{}, "id = ?", id).Error
}

// ProductSlugExists reports whether a slug is taken, optionally excluding one row.
func (r *Repository) ProductSlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListProducts returns a newest-first cursor page of products.
func (r *Repository) ListProducts(ctx context.Context, cursor string, limit int) ([]models.Product, string, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Category")
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var records []models.Product
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&records).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(records) > normalizedLimit {
		records = records[:normalizedLimit]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return records, nextCursor, nil
}

// SearchProducts matches every query word as a case-insensitive substring
// across product name, description, and category name, OR'd together.
func (r *Repository) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	words := strings.Fields(query)
	if len(words) == 0 {
		return []models.Product{}, nil
	}

	clauses := make([]string, 0, len(words)*3)
	args := make([]any, 0, len(words)*3)
	for _, word := range words {
		pattern := "%" + strings.ToLower(word) + "%"
		clauses = append(clauses,
			"LOWER(products.name) LIKE ?",
			"LOWER(products.description) LIKE ?",
			"LOWER(categories.name) LIKE ?",
		)
		args = append(args, pattern, pattern, pattern)
	}

	var records []models.Product
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Distinct("products.*").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where(strings.Join(clauses, " OR "), args...).
		Order("products.created_at DESC").
		Find(&records).
		Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// IsNotFound reports whether the error is the gorm missing-record sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
