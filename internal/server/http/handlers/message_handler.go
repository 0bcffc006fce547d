package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/smslease/smslease/internal/domain/errors"
	"github.com/smslease/smslease/internal/domain/model"
	"github.com/smslease/smslease/internal/server/http/dto"
)

// MessageHandler serves stored messages for a user's orders.
type MessageHandler struct {
	facade OrderFacade
}

// NewMessageHandler constructs MessageHandler.
func NewMessageHandler(facade OrderFacade) *MessageHandler {
	return &MessageHandler{facade: facade}
}

// List handles GET /api/messages?order_id=.
func (h *MessageHandler) List(c *gin.Context) {
	userID := CurrentUserID(c)
	orderID := c.Query("order_id")
	if orderID == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	messages, err := h.facade.OrderMessages(c.Request.Context(), userID, orderID)
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
	if len(messages) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, toMessageResponse(m))
	}
	c.JSON(http.StatusOK, response)
}

func toMessageResponse(message model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         message.ID,
		OrderID:    message.OrderID,
		Text:       message.Text,
		Code:       message.Code,
		ReceivedAt: message.ReceivedAt,
	}
}
