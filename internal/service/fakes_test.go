package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/repo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore mimics the postgres repositories closely enough to exercise the
// services: order creation is all-or-nothing and decrements are conditional.
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]models.Product
	orders   []models.Order
	users    map[uuid.UUID]models.User
	clock    time.Time

	failCreateOrder error
	raceStock       uuid.UUID // product whose stock vanishes right before the decrement
	lookups         int
	counts          int
}

func newMemStore() *memStore {
	return &memStore{
		products: map[uuid.UUID]models.Product{},
		users:    map[uuid.UUID]models.User{},
		clock:    time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memStore) addProduct(name string, price int64, stock int) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	now := m.tick()
	m.products[id] = models.Product{
		ID: id, Name: name, Description: name + " description",
		Price: decimal.NewFromInt(price), Stock: stock, CreatedAt: now, UpdatedAt: now,
	}
	return id
}

func (m *memStore) stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *memStore) ProductsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	var out []models.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) CreateOrder(_ context.Context, newOrder *models.NewOrder) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateOrder != nil {
		return nil, m.failCreateOrder
	}

	// work on a copy so a failed decrement leaves nothing behind
	staged := make(map[uuid.UUID]models.Product, len(m.products))
	for id, p := range m.products {
		staged[id] = p
	}
	if m.raceStock != uuid.Nil {
		p := staged[m.raceStock]
		p.Stock = 0
		staged[m.raceStock] = p
	}

	now := m.tick()
	order := models.Order{
		ID:          uuid.New(),
		UserID:      newOrder.UserID,
		Description: newOrder.Description,
		TotalPrice:  newOrder.TotalPrice,
		Status:      models.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, line := range newOrder.Lines {
		p := staged[line.ProductID]
		if p.Stock < line.Quantity {
			return nil, &repo.StockError{ProductID: line.ProductID}
		}
		p.Stock -= line.Quantity
		staged[line.ProductID] = p
		order.Items = append(order.Items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Product:   models.ProductRef{ID: p.ID, Name: p.Name, ImageURL: p.ImageURL},
		})
	}

	m.products = staged
	m.orders = append(m.orders, order)
	return &order, nil
}

func (m *memStore) UserOrders(_ context.Context, userID uuid.UUID) ([]models.OrderSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.OrderSummary
	for _, o := range m.orders {
		if o.UserID != userID {
			continue
		}
		count := 0
		for _, it := range o.Items {
			count += it.Quantity
		}
		out = append(out, models.OrderSummary{
			ID: o.ID, Status: o.Status, TotalPrice: o.TotalPrice, CreatedAt: o.CreatedAt, ItemsCount: count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateLists() { c.calls++ }

type recordingNotifier struct {
	orders []*models.Order
	err    error
}

func (r *recordingNotifier) OrderPlaced(_ context.Context, order *models.Order) error {
	r.orders = append(r.orders, order)
	return r.err
}

func (m *memStore) CreateProduct(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product.ID = uuid.New()
	product.CreatedAt = m.tick()
	product.UpdatedAt = product.CreatedAt
	m.products[product.ID] = *product
	return nil
}

func (m *memStore) ProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) UpdateProduct(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return repo.ErrNotFound
	}
	product.UpdatedAt = m.tick()
	m.products[product.ID] = *product
	return nil
}

func (m *memStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repo.ErrNotFound
	}
	for _, o := range m.orders {
		for _, it := range o.Items {
			if it.ProductID == id {
				return repo.ErrInUse
			}
		}
	}
	delete(m.products, id)
	return nil
}

func (m *memStore) matching(search string) []models.Product {
	var out []models.Product
	for _, p := range m.products {
		if search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memStore) PaginateProduct(_ context.Context, search string, limit, offset int) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.matching(search)
	if offset >= len(all) {
		return []models.Product{}, nil
	}
	return all[offset:min(len(all), offset+limit)], nil
}

func (m *memStore) CountProducts(_ context.Context, search string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts++
	return len(m.matching(search)), nil
}

func (m *memStore) Categories(_ context.Context) ([]models.CategoryCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, p := range m.products {
		if p.Category != nil && *p.Category != "" {
			counts[*p.Category]++
		}
	}
	out := []models.CategoryCount{}
	for name, n := range counts {
		out = append(out, models.CategoryCount{Name: name, Products: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repo.ErrDuplicate
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = m.tick()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = *user
	return nil
}

func (m *memStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memStore) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}
