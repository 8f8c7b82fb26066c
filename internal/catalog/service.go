package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vhovsepyan/storefront-backend/internal/access"
	"github.com/vhovsepyan/storefront-backend/pkg/db/models"
	pkgerrors "github.com/vhovsepyan/storefront-backend/pkg/errors"
)

// Service exposes category and product catalog operations.
type Service interface {
	CreateCategory(ctx context.Context, actor access.Actor, name string) (*CategoryDTO, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	UpdateCategory(ctx context.Context, actor access.Actor, id uuid.UUID, name string) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, actor access.Actor, id uuid.UUID) error

	CreateProduct(ctx context.Context, actor access.Actor, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, cursor string, limit int) (*ProductListResult, error)
	SearchProducts(ctx context.Context, query string) ([]ProductDTO, error)
	UpdateProduct(ctx context.Context, actor access.Actor, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, actor access.Actor, id uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a listing.
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  uuid.UUID
	ImageURL    *string
}

// UpdateProductInput holds optional mutation values for a listing.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *uuid.UUID
	ImageURL    *string
}

type service struct {
	repo *Repository
}

// NewService constructs the catalog service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// CreateCategory creates a category with a unique slug. Staff only.
func (s *service) CreateCategory(ctx context.Context, actor access.Actor, name string) (*CategoryDTO, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	candidate, err := uniqueSlug(ctx, name, nil, s.repo.CategorySlugExists)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "derive slug")
	}

	category := &models.Category{ID: uuid.New(), Name: name, Slug: candidate}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return toCategoryDTO(category), nil
}

// GetCategory loads a single category.
func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return toCategoryDTO(category), nil
}

// ListCategories returns all categories.
func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	records, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	dtos := make([]CategoryDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, *toCategoryDTO(&records[i]))
	}
	return dtos, nil
}

// UpdateCategory renames a category, regenerating its slug. Staff only.
func (s *service) UpdateCategory(ctx context.Context, actor access.Actor, id uuid.UUID, name string) (*CategoryDTO, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	if name != category.Name {
		candidate, err := uniqueSlug(ctx, name, &category.ID, s.repo.CategorySlugExists)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "derive slug")
		}
		category.Name = name
		category.Slug = candidate
		if err := s.repo.SaveCategory(ctx, category); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save category")
		}
	}
	return toCategoryDTO(category), nil
}

// DeleteCategory removes a category. Staff only.
func (s *service) DeleteCategory(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		if IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

// CreateProduct creates a listing attributed to the acting supplier.
func (s *service) CreateProduct(ctx context.Context, actor access.Actor, input CreateProductInput) (*ProductDTO, error) {
	if !access.IsApprovedSupplierOrAdmin(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "approved supplier or admin required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if _, err := s.repo.FindCategoryByID(ctx, input.CategoryID); err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	candidate, err := uniqueSlug(ctx, name, nil, s.repo.ProductSlugExists)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "derive slug")
	}

	supplierID := actor.UserID
	product := &models.Product{
		ID:          uuid.New(),
		Name:        name,
		Slug:        candidate,
		Description: input.Description,
		Price:       input.Price.Round(2),
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
		ImageURL:    input.ImageURL,
		SupplierID:  &supplierID,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return s.GetProduct(ctx, product.ID)
}

// GetProduct loads a single listing.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return toProductDTO(product), nil
}

// ListProducts returns a public cursor page of listings.
func (s *service) ListProducts(ctx context.Context, cursor string, limit int) (*ProductListResult, error) {
	records, next, err := s.repo.ListProducts(ctx, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	result := &ProductListResult{Products: make([]ProductDTO, 0, len(records)), NextCursor: next}
	for i := range records {
		result.Products = append(result.Products, *toProductDTO(&records[i]))
	}
	return result, nil
}

// SearchProducts runs the word-substring search. Empty query → empty result.
func (s *service) SearchProducts(ctx context.Context, query string) ([]ProductDTO, error) {
	records, err := s.repo.SearchProducts(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	dtos := make([]ProductDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, *toProductDTO(&records[i]))
	}
	return dtos, nil
}

// UpdateProduct applies mutations to a listing the actor may manage.
func (s *service) UpdateProduct(ctx context.Context, actor access.Actor, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !access.CanManageProduct(actor, product) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "owner or admin required")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		if name != product.Name {
			candidate, err := uniqueSlug(ctx, name, &product.ID, s.repo.ProductSlugExists)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "derive slug")
			}
			product.Name = name
			product.Slug = candidate
		}
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = input.Price.Round(2)
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.CategoryID != nil {
		if _, err := s.repo.FindCategoryByID(ctx, *input.CategoryID); err != nil {
			if IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
		product.CategoryID = *input.CategoryID
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}

	if err := s.repo.SaveProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save product")
	}
	return s.GetProduct(ctx, product.ID)
}

// DeleteProduct removes a listing the actor may manage.
func (s *service) DeleteProduct(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !access.CanManageProduct(actor, product) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "owner or admin required")
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}
