package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/repo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	listCachePrefix = "products:list:"
	DefaultPageSize = 10
)

type ProductStore interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	ProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	PaginateProduct(ctx context.Context, search string, limit, offset int) ([]models.Product, error)
	CountProducts(ctx context.Context, search string) (int, error)
	Categories(ctx context.Context) ([]models.CategoryCount, error)
}

type ImageUploader interface {
	UploadImage(ctx context.Context, file io.Reader) (string, error)
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    *string
}

// UpdateProductInput holds a partial update; nil fields are left unchanged.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
}

type ListProductsInput struct {
	Page     int
	PageSize int
	Search   string
}

type ProductService struct {
	store    ProductStore
	lists    *cache.Cache[models.ProductPage]
	uploader ImageUploader
}

// NewProductService wires the store with the listing cache. A nil uploader
// disables image uploads.
func NewProductService(store ProductStore, lists *cache.Cache[models.ProductPage], uploader ImageUploader) *ProductService {
	return &ProductService{store: store, lists: lists, uploader: uploader}
}

// validatePriceStock keeps values within what the products table stores
// exactly: NUMERIC(12,2) prices and INTEGER stock.
func validatePriceStock(price *decimal.Decimal, stock *int) error {
	if price != nil {
		switch {
		case !price.IsPositive():
			return apperr.BadRequest("Price must be positive")
		case !price.Equal(price.Round(2)):
			return apperr.BadRequest("Price must have at most 2 decimal places")
		case price.GreaterThan(models.MaxMoney):
			return apperr.BadRequest("Price must be at most " + models.MaxMoney.StringFixed(2))
		}
	}
	if stock != nil {
		switch {
		case *stock < 0:
			return apperr.BadRequest("Stock must be a non-negative integer")
		case *stock > models.MaxCount:
			return apperr.BadRequest(fmt.Sprintf("Stock must be at most %d", models.MaxCount))
		}
	}
	return nil
}

// Create stores a new product. When image is non-nil it is uploaded first and
// its URL saved on the product.
func (s *ProductService) Create(ctx context.Context, in CreateProductInput, image io.Reader) (*models.ProductView, error) {
	if err := validatePriceStock(&in.Price, &in.Stock); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
	}
	if image != nil {
		if s.uploader == nil {
			return nil, apperr.BadRequest("Image uploads are not configured")
		}
		url, err := s.uploader.UploadImage(ctx, image)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		product.ImageURL = &url
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, apperr.Internal(err)
	}
	s.InvalidateLists()

	view := product.View()
	return &view, nil
}

func (s *ProductService) get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.store.ProductByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.ProductView, error) {
	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := product.View()
	return &view, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*models.ProductView, error) {
	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validatePriceStock(in.Price, in.Stock); err != nil {
		return nil, err
	}

	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.Category != nil {
		product.Category = in.Category
	}

	err = s.store.UpdateProduct(ctx, product)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.InvalidateLists()

	view := product.View()
	return &view, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.DeleteProduct(ctx, id)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return apperr.NotFound("Product not found")
	case errors.Is(err, repo.ErrInUse):
		return apperr.Conflict("Product is referenced by existing orders")
	case err != nil:
		return apperr.Internal(err)
	}
	s.InvalidateLists()
	return nil
}

func listKey(in ListProductsInput) string {
	return fmt.Sprintf("%s%d:%d:%s", listCachePrefix, in.Page, in.PageSize, strings.ToLower(in.Search))
}

// List returns one page of products, newest first, served from the cache
// when an identical listing was computed recently.
func (s *ProductService) List(ctx context.Context, in ListProductsInput) (*models.ProductPage, error) {
	in.Page = max(1, in.Page)
	if in.PageSize == 0 {
		in.PageSize = DefaultPageSize
	}
	in.PageSize = max(1, in.PageSize)
	in.Search = strings.TrimSpace(in.Search)

	key := listKey(in)
	if s.lists != nil {
		if page, ok := s.lists.Get(key); ok {
			return &page, nil
		}
	}

	total, err := s.store.CountProducts(ctx, in.Search)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	products, err := s.store.PaginateProduct(ctx, in.Search, in.PageSize, (in.Page-1)*in.PageSize)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	views := make([]models.ProductView, 0, len(products))
	for i := range products {
		views = append(views, products[i].View())
	}
	page := models.ProductPage{
		Page:       in.Page,
		PageSize:   in.PageSize,
		TotalPages: totalPages(total, in.PageSize),
		Total:      total,
		Products:   views,
	}
	if s.lists != nil {
		s.lists.Set(key, page)
	}
	return &page, nil
}

func totalPages(total, pageSize int) int {
	return max(1, int(math.Ceil(float64(total)/float64(pageSize))))
}

func (s *ProductService) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return categories, nil
}

// InvalidateLists drops every cached listing.
func (s *ProductService) InvalidateLists() {
	if s.lists != nil {
		s.lists.DeletePrefix(listCachePrefix)
	}
}
