package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vhovsepyan/storefront-backend/pkg/db/models"
	"github.com/vhovsepyan/storefront-backend/pkg/enums"
)

// OrderItemDTO is a serialized order line with its price snapshot. The
// product reference goes null when the product is later deleted; the
// snapshot survives.
type OrderItemDTO struct {
	ID        uuid.UUID  `json:"id"`
	ProductID *uuid.UUID `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Price     string     `json:"price"`
}

// OrderDTO is the serialized order returned by the API. Total is recomputed
// from the items on every read, never stored.
type OrderDTO struct {
	ID         uuid.UUID         `json:"id"`
	ClientID   *uuid.UUID        `json:"client_id"`
	SupplierID *uuid.UUID        `json:"supplier_id,omitempty"`
	Status     enums.OrderStatus `json:"status"`
	Items      []OrderItemDTO    `json:"items"`
	Total      string            `json:"total"`
	CreatedAt  time.Time         `json:"created_at"`
}

// OrderListResult is a cursor page of orders.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func toOrderDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:         order.ID,
		ClientID:   order.ClientID,
		SupplierID: order.SupplierID,
		Status:     order.Status,
		Items:      make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:  order.CreatedAt,
	}
	total := decimal.Zero
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
		})
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	dto.Total = total.StringFixed(2)
	return dto
}
