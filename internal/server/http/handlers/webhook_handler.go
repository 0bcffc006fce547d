package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/smslease/smslease/internal/domain/errors"
	"github.com/smslease/smslease/internal/provider"
)

// WebhookHandler is the ingestion endpoint for provider SMS notifications.
type WebhookHandler struct {
	facade    WebhookFacade
	providers *provider.Registry
	logger    *slog.Logger
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade, providers *provider.Registry, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{facade: facade, providers: providers, logger: logger}
}

// Receive handles POST /api/webhook/sms/:provider. Once the sender is
// authenticated the response is 200 regardless of matching outcome, so
// provider retry storms are never provoked.
func (h *WebhookHandler) Receive(c *gin.Context) {
	name := c.Param("provider")
	prov, ok := h.providers.Lookup(name)
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if err := prov.Verify(c.Request.Header, body); err != nil {
		h.logger.Warn("webhook rejected",
			slog.String("provider", name),
			slog.String("error", err.Error()),
		)
		c.Status(http.StatusUnauthorized)
		return
	}

	sms, err := prov.Parse(body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.ProcessInbound(c.Request.Context(), name, sms); err != nil {
		if errors.Is(err, domainErrors.ErrNoMatchingOrder) {
			// Authenticated but unmatchable: acknowledged, logged upstream.
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusOK)
}
