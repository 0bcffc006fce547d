package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smslease/smslease/internal/server/http/dto"
)

// BalanceHandler manages balance-related endpoints.
type BalanceHandler struct {
	facade BalanceFacade
}

// NewBalanceHandler constructs BalanceHandler.
func NewBalanceHandler(facade BalanceFacade) *BalanceHandler {
	return &BalanceHandler{facade: facade}
}

// Summary handles GET /api/balance.
func (h *BalanceHandler) Summary(c *gin.Context) {
	userID := CurrentUserID(c)
	amount, err := h.facade.Balance(c.Request.Context(), userID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{Amount: amount})
}

// History handles GET /api/balance/history.
func (h *BalanceHandler) History(c *gin.Context) {
	userID := CurrentUserID(c)
	entries, err := h.facade.BalanceHistory(c.Request.Context(), userID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(entries) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, dto.LedgerEntryResponse{
			OrderID:   e.OrderID,
			Amount:    e.Amount,
			CreatedAt: e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}
