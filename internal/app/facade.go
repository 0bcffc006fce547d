package app

import (
	"context"

	"github.com/smslease/smslease/internal/broadcast"
	domainErrors "github.com/smslease/smslease/internal/domain/errors"
	"github.com/smslease/smslease/internal/domain/model"
	"github.com/smslease/smslease/internal/domain/repository"
	"github.com/smslease/smslease/internal/usecase"
)

// LeaseFacade aggregates the use cases behind a single surface consumed by the
// HTTP handlers and the expiration scheduler.
type LeaseFacade struct {
	orders   *usecase.OrderUseCase
	balance  *usecase.BalanceUseCase
	webhooks *usecase.WebhookUseCase
	catalog  repository.CatalogRepository
	events   *broadcast.Broadcaster
}

// NewLeaseFacade constructs LeaseFacade.
func NewLeaseFacade(
	orders *usecase.OrderUseCase,
	balance *usecase.BalanceUseCase,
	webhooks *usecase.WebhookUseCase,
	catalog repository.CatalogRepository,
	events *broadcast.Broadcaster,
) *LeaseFacade {
	return &LeaseFacade{
		orders:   orders,
		balance:  balance,
		webhooks: webhooks,
		catalog:  catalog,
		events:   events,
	}
}

// CreateOrder leases a number for the user.
func (f *LeaseFacade) CreateOrder(ctx context.Context, userID int64, countryID, serviceID string) (*model.Order, error) {
	return f.orders.Create(ctx, userID, countryID, serviceID)
}

// Order returns a single order owned by the user.
func (f *LeaseFacade) Order(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	order, err := f.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domainErrors.ErrForeignOrder
	}
	return order, nil
}

// Orders returns the user's orders newest first.
func (f *LeaseFacade) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

// OrderMessages returns stored messages for an order the user owns.
func (f *LeaseFacade) OrderMessages(ctx context.Context, userID int64, orderID string) ([]model.Message, error) {
	if _, err := f.Order(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return f.orders.MessagesByOrder(ctx, orderID)
}

// Balance returns the current balance amount.
func (f *LeaseFacade) Balance(ctx context.Context, userID int64) (int64, error) {
	return f.balance.Amount(ctx, userID)
}

// BalanceHistory returns ledger entries newest first.
func (f *LeaseFacade) BalanceHistory(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	return f.balance.History(ctx, userID)
}

// Countries returns the catalog of leasable regions.
func (f *LeaseFacade) Countries(ctx context.Context) ([]model.Country, error) {
	return f.catalog.Countries(ctx)
}

// Services returns the catalog of target services.
func (f *LeaseFacade) Services(ctx context.Context) ([]model.Service, error) {
	return f.catalog.Services(ctx)
}

// ProcessInbound routes an authenticated provider notification.
func (f *LeaseFacade) ProcessInbound(ctx context.Context, providerName string, sms *model.InboundSMS) error {
	return f.webhooks.Process(ctx, providerName, sms)
}

// Subscribe registers a live event connection for the user.
func (f *LeaseFacade) Subscribe(userID int64) *broadcast.Subscription {
	return f.events.Subscribe(userID)
}

// Unsubscribe removes a live event connection.
func (f *LeaseFacade) Unsubscribe(sub *broadcast.Subscription) {
	f.events.Unsubscribe(sub)
}

// ExpireOrder drives the scheduler's terminal transition.
func (f *LeaseFacade) ExpireOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return f.orders.Expire(ctx, orderID)
}

// ActiveOrders feeds the scheduler rebuild on startup.
func (f *LeaseFacade) ActiveOrders(ctx context.Context) ([]model.Order, error) {
	return f.orders.ActiveOrders(ctx)
}
