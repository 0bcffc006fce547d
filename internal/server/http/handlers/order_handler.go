package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/smslease/smslease/internal/domain/errors"
	"github.com/smslease/smslease/internal/domain/model"
	"github.com/smslease/smslease/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	userID := CurrentUserID(c)

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), userID, req.CountryID, req.ServiceID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrUnavailable):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrInsufficientBalance):
			c.Status(http.StatusPaymentRequired)
		case errors.Is(err, domainErrors.ErrNoNumbersAvailable):
			c.Status(http.StatusConflict)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	userID := CurrentUserID(c)
	orders, err := h.facade.Orders(c.Request.Context(), userID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	userID := CurrentUserID(c)
	order, err := h.facade.Order(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrForeignOrder):
			c.Status(http.StatusForbidden)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(*order))
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:          order.ID,
		PhoneNumber: order.PhoneNumber,
		CountryID:   order.CountryID,
		ServiceID:   order.ServiceID,
		Price:       order.Price,
		Status:      string(order.Status),
		Refunded:    order.Refunded,
		CreatedAt:   order.CreatedAt,
		Deadline:    order.Deadline,
		CompletedAt: order.CompletedAt,
	}
}
