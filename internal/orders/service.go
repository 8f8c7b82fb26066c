package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vhovsepyan/storefront-backend/internal/access"
	"github.com/vhovsepyan/storefront-backend/pkg/db"
	"github.com/vhovsepyan/storefront-backend/pkg/db/models"
	"github.com/vhovsepyan/storefront-backend/pkg/enums"
	pkgerrors "github.com/vhovsepyan/storefront-backend/pkg/errors"
)

// Service exposes order placement and lifecycle operations.
type Service interface {
	PlaceOrder(ctx context.Context, clientID uuid.UUID, items []OrderItemInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, actor access.Actor, orderID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, actor access.Actor, cursor string, limit int) (*OrderListResult, error)
	UpdateStatus(ctx context.Context, actor access.Actor, orderID uuid.UUID, status string) (*OrderDTO, error)
	UpdateOrder(ctx context.Context, actor access.Actor, orderID uuid.UUID, input UpdateOrderInput) (*OrderDTO, error)
	DeleteOrder(ctx context.Context, actor access.Actor, orderID uuid.UUID) error
}

// OrderItemInput is one requested line of a new order. A zero quantity
// defaults to one.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// UpdateOrderInput holds optional admin mutations on an order.
type UpdateOrderInput struct {
	Status     *string
	SupplierID *uuid.UUID
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs the order service.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// PlaceOrder creates an order for the client inside one transaction.
//
// The supplier is attributed from the first item's product; if that product
// does not exist the order simply carries no supplier. Each line then resolves
// its product (missing product fails the whole order, including the first),
// snapshots the current price, and decrements stock with a floor of zero.
func (s *service) PlaceOrder(ctx context.Context, clientID uuid.UUID, items []OrderItemInput) (*OrderDTO, error) {
	order := &models.Order{
		ID:       uuid.New(),
		ClientID: &clientID,
		Status:   enums.OrderStatusPending,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if len(items) > 0 {
			first, err := repo.FindProduct(ctx, items[0].ProductID)
			if err == nil {
				order.SupplierID = first.SupplierID
			} else if !IsNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
		}

		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		for _, input := range items {
			product, err := repo.FindProduct(ctx, input.ProductID)
			if err != nil {
				if IsNotFound(err) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}

			qty := input.Quantity
			if qty <= 0 {
				qty = 1
			}

			productID := product.ID
			item := &models.OrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: &productID,
				Quantity:  qty,
				Price:     product.Price,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order item")
			}
			order.Items = append(order.Items, *item)

			if err := repo.DecrementStock(ctx, product.ID, qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderDTO(order), nil
}

// GetOrder loads an order the actor is allowed to see.
func (s *service) GetOrder(ctx context.Context, actor access.Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewOrder(actor, order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return toOrderDTO(order), nil
}

// ListOrders returns the actor's visible orders: admins see everything,
// suppliers see orders attributed to them, clients see their own.
func (s *service) ListOrders(ctx context.Context, actor access.Actor, cursor string, limit int) (*OrderListResult, error) {
	scope := ListScope{}
	switch {
	case actor.IsAdmin():
	case actor.Role == enums.RoleSupplier:
		supplierID := actor.UserID
		scope.SupplierID = &supplierID
	default:
		clientID := actor.UserID
		scope.ClientID = &clientID
	}

	records, next, err := s.repo.List(ctx, scope, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	result := &OrderListResult{Orders: make([]OrderDTO, 0, len(records)), NextCursor: next}
	for i := range records {
		result.Orders = append(result.Orders, *toOrderDTO(&records[i]))
	}
	return result, nil
}

// UpdateStatus sets the order status. Any of the four statuses may follow any
// other; there is no transition graph.
func (s *service) UpdateStatus(ctx context.Context, actor access.Actor, orderID uuid.UUID, status string) (*OrderDTO, error) {
	parsed, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !access.CanUpdateOrderStatus(actor, order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "approved supplier or admin required")
	}

	if err := s.repo.UpdateStatus(ctx, orderID, parsed.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update status")
	}
	order.Status = parsed
	return toOrderDTO(order), nil
}

// UpdateOrder applies admin mutations to an order. Unlike UpdateStatus it can
// also reattribute the supplier, so it stays admin only.
func (s *service) UpdateOrder(ctx context.Context, actor access.Actor, orderID uuid.UUID, input UpdateOrderInput) (*OrderDTO, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		parsed, err := enums.ParseOrderStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		order.Status = parsed
	}
	if input.SupplierID != nil {
		order.SupplierID = input.SupplierID
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
	}
	return toOrderDTO(order), nil
}

// DeleteOrder removes an order. Admin only.
func (s *service) DeleteOrder(ctx context.Context, actor access.Actor, orderID uuid.UUID) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, orderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
