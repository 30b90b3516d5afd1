package handlers

import (
	"context"
	"net/http"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderAPI interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, in service.PlaceOrderInput) (*models.OrderView, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.OrderSummaryView, error)
}

type OrderHandler struct {
	svc OrderAPI
}

func NewOrderHandler(svc OrderAPI) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type orderItemRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0,max=2147483647"`
}

type placeOrderRequest struct {
	Items       []orderItemRequest `json:"items" binding:"required,min=1,dive"`
	Description *string            `json:"description" binding:"omitempty,min=3"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, apperr.Unauthorized("Unauthorized"))
		return
	}

	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	in := service.PlaceOrderInput{
		Items:       make([]service.OrderItemInput, 0, len(req.Items)),
		Description: req.Description,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.OrderItemInput{
			ProductID: uuid.MustParse(it.ProductID), // checked by the uuid rule
			Quantity:  it.Quantity,
		})
	}

	order, err := h.svc.PlaceOrder(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Order created", order)
}

func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, apperr.Unauthorized("Unauthorized"))
		return
	}

	orders, err := h.svc.ListMyOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", orders)
}
