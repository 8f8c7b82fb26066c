package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/vhovsepyan/storefront-backend/pkg/db/models"
)

// CategoryDTO is the serialized category returned by the API.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductDTO is the serialized product returned by the API. Price carries
// exactly two fractional digits.
type ProductDTO struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description string       `json:"description"`
	Price       string       `json:"price"`
	Stock       int          `json:"stock"`
	ImageURL    *string      `json:"image_url,omitempty"`
	Category    *CategoryDTO `json:"category,omitempty"`
	SupplierID  *uuid.UUID   `json:"supplier_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ProductListResult is a cursor page of products.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func toCategoryDTO(category *models.Category) *CategoryDTO {
	if category == nil {
		return nil
	}
	return &CategoryDTO{
		ID:        category.ID,
		Name:      category.Name,
		Slug:      category.Slug,
		CreatedAt: category.CreatedAt,
	}
}

func toProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Slug:        product.Slug,
		Description: product.Description,
		Price:       product.Price.StringFixed(2),
		Stock:       product.Stock,
		ImageURL:    product.ImageURL,
		Category:    toCategoryDTO(product.Category),
		SupplierID:  product.SupplierID,
		CreatedAt:   product.CreatedAt,
	}
}
