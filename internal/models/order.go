package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Description *string
	TotalPrice  decimal.Decimal
	Status      OrderStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Items       []OrderItem
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal // unit price snapshotted at order time
	Product   ProductRef
}

// ProductRef carries the display fields of the product an item points at.
type ProductRef struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	ImageURL *string   `json:"imageUrl"`
}

// OrderLine is one consolidated line of a new order: a product and the
// quantity and unit price fixed during validation.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

type NewOrder struct {
	UserID      uuid.UUID
	Description *string
	TotalPrice  decimal.Decimal
	Lines       []OrderLine
}

type OrderItemView struct {
	ID        uuid.UUID  `json:"id"`
	OrderID   uuid.UUID  `json:"orderId"`
	ProductID uuid.UUID  `json:"productId"`
	Quantity  int        `json:"quantity"`
	Price     float64    `json:"price"`
	Product   ProductRef `json:"product"`
}

type OrderView struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Description *string         `json:"description"`
	TotalPrice  float64         `json:"totalPrice"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Items       []OrderItemView `json:"items"`
}

func (o *Order) View() OrderView {
	items := make([]OrderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemView{
			ID:        it.ID,
			OrderID:   it.OrderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price.InexactFloat64(),
			Product:   it.Product,
		})
	}
	return OrderView{
		ID:          o.ID,
		UserID:      o.UserID,
		Description: o.Description,
		TotalPrice:  o.TotalPrice.InexactFloat64(),
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Items:       items,
	}
}

type OrderSummary struct {
	ID         uuid.UUID
	Status     OrderStatus
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
	ItemsCount int // sum of quantities, not distinct lines
}

type OrderSummaryView struct {
	ID         uuid.UUID   `json:"id"`
	Status     OrderStatus `json:"status"`
	TotalPrice float64     `json:"totalPrice"`
	CreatedAt  time.Time   `json:"createdAt"`
	ItemsCount int         `json:"itemsCount"`
}

func (s *OrderSummary) View() OrderSummaryView {
	return OrderSummaryView{
		ID:         s.ID,
		Status:     s.Status,
		TotalPrice: s.TotalPrice.InexactFloat64(),
		CreatedAt:  s.CreatedAt,
		ItemsCount: s.ItemsCount,
	}
}
