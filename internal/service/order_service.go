package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStore interface {
	CreateOrder(ctx context.Context, newOrder *models.NewOrder) (*models.Order, error)
	UserOrders(ctx context.Context, userID uuid.UUID) ([]models.OrderSummary, error)
}

type ProductLookup interface {
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type OrderNotifier interface {
	OrderPlaced(ctx context.Context, order *models.Order) error
}

// ListInvalidator is told when product data shown in listings has changed.
type ListInvalidator interface {
	InvalidateLists()
}

type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type PlaceOrderInput struct {
	Items       []OrderItemInput
	Description *string
}

type OrderService struct {
	orders   OrderStore
	products ProductLookup
	lists    ListInvalidator
	notifier OrderNotifier
}

func NewOrderService(orders OrderStore, products ProductLookup, lists ListInvalidator, notifier OrderNotifier) *OrderService {
	return &OrderService{orders: orders, products: products, lists: lists, notifier: notifier}
}

// consolidate sums quantities per product, keeping first-seen order. Sums
// saturate just above MaxCount so they never wrap and always exceed any stock.
func consolidate(items []OrderItemInput) ([]uuid.UUID, map[uuid.UUID]int) {
	qtyByID := make(map[uuid.UUID]int, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if _, seen := qtyByID[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		qtyByID[it.ProductID] = min(qtyByID[it.ProductID]+min(it.Quantity, models.MaxCount+1), models.MaxCount+1)
	}
	return ids, qtyByID
}

// PlaceOrder validates the requested items against current products and
// stores the order, its items and the stock decrements atomically. Prices
// are fixed from the products read during validation.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, in PlaceOrderInput) (*models.OrderView, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Validation("At least one item is required")
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, apperr.Validation("quantity must be a positive integer")
		}
		if it.Quantity > models.MaxCount {
			return nil, apperr.Validation(fmt.Sprintf("quantity must be at most %d", models.MaxCount))
		}
	}

	ids, qtyByID := consolidate(in.Items)

	products, err := s.products.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, apperr.NotFound("Product(s) not found: " + strings.Join(missing, ", "))
	}

	total := decimal.Zero
	lines := make([]models.OrderLine, 0, len(ids))
	for _, id := range ids {
		p := byID[id]
		qty := qtyByID[id]
		if p.Stock < qty {
			return nil, apperr.BadRequest("Insufficient stock for " + p.Name)
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
		lines = append(lines, models.OrderLine{ProductID: id, Quantity: qty, Price: p.Price})
	}
	if total.GreaterThan(models.MaxMoney) {
		return nil, apperr.BadRequest("Order total exceeds " + models.MaxMoney.StringFixed(2))
	}

	order, err := s.orders.CreateOrder(ctx, &models.NewOrder{
		UserID:      userID,
		Description: in.Description,
		TotalPrice:  total,
		Lines:       lines,
	})
	if err != nil {
		var stockErr *repo.StockError
		if errors.As(err, &stockErr) {
			// stock was taken by a concurrent order after validation
			return nil, apperr.BadRequest("Insufficient stock for " + byID[stockErr.ProductID].Name)
		}
		return nil, apperr.Internal(fmt.Errorf("place order: %w", err))
	}

	if s.lists != nil {
		s.lists.InvalidateLists()
	}
	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, order); err != nil {
			log.Printf("Order %s placed, notification failed: %v", order.ID, err)
		}
	}

	view := order.View()
	return &view, nil
}

// ListMyOrders returns the user's order summaries, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.OrderSummaryView, error) {
	orders, err := s.orders.UserOrders(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	views := make([]models.OrderSummaryView, 0, len(orders))
	for i := range orders {
		views = append(views, orders[i].View())
	}
	return views, nil
}
