package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/smslease/smslease/internal/domain/model"
	"github.com/smslease/smslease/internal/server/http/dto"
)

// EventsHandler streams live order events over SSE.
type EventsHandler struct {
	facade EventsFacade
	logger *slog.Logger
}

// NewEventsHandler constructs EventsHandler.
func NewEventsHandler(facade EventsFacade, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{facade: facade, logger: logger}
}

// Stream handles GET /api/events. Each connection gets events published after
// it subscribed; there is no replay on reconnect.
func (h *EventsHandler) Stream(c *gin.Context) {
	userID := CurrentUserID(c)
	sub := h.facade.Subscribe(userID)
	defer h.facade.Unsubscribe(sub)

	c.Writer.Header().Set("Content-Type", sse.ContentType)
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-sub.Events():
			if !ok {
				return false
			}
			if err := sse.Encode(w, sse.Event{
				Event: string(event.Type),
				Data:  toEventData(event),
			}); err != nil {
				h.logger.Warn("event stream write failed",
					slog.Int64("user", userID),
					slog.String("error", err.Error()),
				)
				return false
			}
			return true
		}
	})
}

func toEventData(event model.Event) dto.EventData {
	data := dto.EventData{OrderID: event.OrderID}
	switch payload := event.Payload.(type) {
	case *model.Order:
		data.Payload = toOrderResponse(*payload)
	case *model.Message:
		data.Payload = toMessageResponse(*payload)
	default:
		data.Payload = payload
	}
	return data
}
