package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxImageSize = 5 << 20

type ProductAPI interface {
	Create(ctx context.Context, in service.CreateProductInput, image io.Reader) (*models.ProductView, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ProductView, error)
	Update(ctx context.Context, id uuid.UUID, in service.UpdateProductInput) (*models.ProductView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, in service.ListProductsInput) (*models.ProductPage, error)
	Categories(ctx context.Context) ([]models.CategoryCount, error)
}

type ProductHandler struct {
	svc ProductAPI
}

func NewProductHandler(svc ProductAPI) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// Product bodies arrive as JSON or as multipart fields, so price is taken as
// a json.Number which accepts both a number and its string form.
type createProductRequest struct {
	Name        string       `json:"name" form:"name" binding:"required,min=3,max=100"`
	Description string       `json:"description" form:"description" binding:"required,min=10"`
	Price       *json.Number `json:"price" form:"price" binding:"required"`
	Stock       *int         `json:"stock" form:"stock" binding:"required"`
	Category    *string      `json:"category" form:"category" binding:"omitempty,min=1,max=50"`
}

type updateProductRequest struct {
	Name        *string      `json:"name" form:"name" binding:"omitempty,min=3,max=100"`
	Description *string      `json:"description" form:"description" binding:"omitempty,min=10"`
	Price       *json.Number `json:"price" form:"price"`
	Stock       *int         `json:"stock" form:"stock"`
	Category    *string      `json:"category" form:"category" binding:"omitempty,min=1,max=50"`
}

type listProductsQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1"`
	Search   string `form:"search"`
}

func parsePrice(n *json.Number) (*decimal.Decimal, error) {
	if n == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return nil, apperr.Validation("price must be a number")
	}
	return &d, nil
}

func productID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.Validation("id must be a valid UUID")
	}
	return id, nil
}

// imageFile returns the optional multipart "image" file, or nil when the
// request carries none.
func imageFile(c *gin.Context) (io.ReadCloser, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.BadRequest("Invalid image upload")
	}
	if header.Size > maxImageSize {
		return nil, apperr.BadRequest("Image must be 5MB or smaller")
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return nil, apperr.BadRequest("Only image files are allowed")
	}
	return header.Open()
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		respondError(c, err)
		return
	}

	image, err := imageFile(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var reader io.Reader
	if image != nil {
		defer image.Close()
		reader = image
	}

	product, err := h.svc.Create(c.Request.Context(), service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *price,
		Stock:       *req.Stock,
		Category:    req.Category,
	}, reader)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Product created", product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := productID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req updateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := h.svc.Update(c.Request.Context(), id, service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		Category:    req.Category,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product updated", product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := productID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := productID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	product, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", product)
}

// List accepts limit as an alias of pageSize; limit wins when both are set.
func (h *ProductHandler) List(c *gin.Context) {
	var q listProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}
	pageSize := q.PageSize
	if q.Limit > 0 {
		pageSize = q.Limit
	}

	page, err := h.svc.List(c.Request.Context(), service.ListProductsInput{
		Page:     q.Page,
		PageSize: pageSize,
		Search:   q.Search,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", page)
}

func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", categories)
}
