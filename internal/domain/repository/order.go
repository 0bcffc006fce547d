package repository

import (
	"context"

	"github.com/smslease/smslease/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
//
// Complete and Expire perform the terminal transition as an atomic
// compare-and-swap on the current status, so concurrent calls for the same
// order can never both apply.
//
// The FindActive lookups are scoped to the named webhook provider; orders
// recorded without a provider match deliveries from any of them.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, orderID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListActive(ctx context.Context) ([]model.Order, error)
	FindActiveByExternalID(ctx context.Context, providerName, externalID string) ([]model.Order, error)
	FindActiveByPhone(ctx context.Context, providerName, phoneNumber string) ([]model.Order, error)
	Complete(ctx context.Context, orderID string, message *model.Message) (*model.Order, error)
	Expire(ctx context.Context, orderID string) (*model.Order, error)
}
