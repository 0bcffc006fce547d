package repository

import (
	"context"

	"github.com/smslease/smslease/internal/domain/model"
)

// MessageRepository provides read access to stored messages. Messages are
// written only as part of the order completion transaction.
type MessageRepository interface {
	ListByOrder(ctx context.Context, orderID string) ([]model.Message, error)
}
