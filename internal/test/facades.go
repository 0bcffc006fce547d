package test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/smslease/smslease/internal/broadcast"
	"github.com/smslease/smslease/internal/domain/model"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn   func(context.Context, int64, string, string) (*model.Order, error)
	OrderFn    func(context.Context, int64, string) (*model.Order, error)
	OrdersFn   func(context.Context, int64) ([]model.Order, error)
	MessagesFn func(context.Context, int64, string) ([]model.Message, error)
}

// CreateOrder delegates to the override or returns a default active order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, userID int64, countryID, serviceID string) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, userID, countryID, serviceID)
	}
	now := time.Unix(0, 0).UTC()
	return &model.Order{
		ID:          "order-1",
		UserID:      userID,
		PhoneNumber: "+15550001111",
		CountryID:   countryID,
		ServiceID:   serviceID,
		Price:       100,
		Status:      model.OrderStatusActive,
		CreatedAt:   now,
		Deadline:    now.Add(15 * time.Minute),
	}, nil
}

// Order returns the configured single order.
func (s OrderFacadeStub) Order(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, userID, orderID)
	}
	return &model.Order{ID: orderID, UserID: userID, Status: model.OrderStatusActive}, nil
}

// Orders returns predefined orders for the given user.
func (s OrderFacadeStub) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return []model.Order{{ID: "order-1", UserID: userID}}, nil
}

// OrderMessages returns predefined messages.
func (s OrderFacadeStub) OrderMessages(ctx context.Context, userID int64, orderID string) ([]model.Message, error) {
	if s.MessagesFn != nil {
		return s.MessagesFn(ctx, userID, orderID)
	}
	return []model.Message{{ID: "msg-1", OrderID: orderID, Text: "code 1234"}}, nil
}

// BalanceFacadeStub simulates balance operations.
type BalanceFacadeStub struct {
	BalanceFn func(context.Context, int64) (int64, error)
	HistoryFn func(context.Context, int64) ([]model.LedgerEntry, error)
}

// Balance returns the configured amount or a default.
func (s BalanceFacadeStub) Balance(ctx context.Context, userID int64) (int64, error) {
	if s.BalanceFn != nil {
		return s.BalanceFn(ctx, userID)
	}
	return 500, nil
}

// BalanceHistory returns preconfigured ledger entries.
func (s BalanceFacadeStub) BalanceHistory(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, userID)
	}
	return []model.LedgerEntry{{UserID: userID, OrderID: "order-1", Amount: -100, CreatedAt: time.Unix(0, 0)}}, nil
}

// CatalogFacadeStub serves a fixed catalog snapshot.
type CatalogFacadeStub struct {
	CountriesFn func(context.Context) ([]model.Country, error)
	ServicesFn  func(context.Context) ([]model.Service, error)
}

// Countries returns the configured regions.
func (s CatalogFacadeStub) Countries(ctx context.Context) ([]model.Country, error) {
	if s.CountriesFn != nil {
		return s.CountriesFn(ctx)
	}
	return []model.Country{{ID: "us", Name: "United States", Code: "1", Price: 100, Available: true}}, nil
}

// Services returns the configured services.
func (s CatalogFacadeStub) Services(ctx context.Context) ([]model.Service, error) {
	if s.ServicesFn != nil {
		return s.ServicesFn(ctx)
	}
	return []model.Service{{ID: "tg", Name: "Telegram", Price: 150, Available: true}}, nil
}

// InboundCall records one webhook delivery handed to the facade.
type InboundCall struct {
	Provider string
	SMS      model.InboundSMS
}

// WebhookFacadeStub records inbound processing calls.
type WebhookFacadeStub struct {
	ProcessFn func(context.Context, string, *model.InboundSMS) error

	mu    sync.Mutex
	Calls []InboundCall
}

// ProcessInbound records the call and delegates to the override when set.
func (s *WebhookFacadeStub) ProcessInbound(ctx context.Context, providerName string, sms *model.InboundSMS) error {
	s.mu.Lock()
	s.Calls = append(s.Calls, InboundCall{Provider: providerName, SMS: *sms})
	s.mu.Unlock()
	if s.ProcessFn != nil {
		return s.ProcessFn(ctx, providerName, sms)
	}
	return nil
}

// CallCount reports recorded webhook deliveries.
func (s *WebhookFacadeStub) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

// LeaseFacadeStub aggregates the facade stubs behind the full handler surface.
// Events are served by a real broadcaster so stream tests exercise actual
// channel semantics.
type LeaseFacadeStub struct {
	OrderFacadeStub
	BalanceFacadeStub
	CatalogFacadeStub
	*WebhookFacadeStub

	Broadcaster *broadcast.Broadcaster
}

// NewLeaseFacadeStub constructs a stub with default behaviour everywhere.
func NewLeaseFacadeStub() *LeaseFacadeStub {
	return &LeaseFacadeStub{
		WebhookFacadeStub: &WebhookFacadeStub{},
		Broadcaster:       broadcast.New(16, NewLogger()),
	}
}

// NewLogger returns a logger that discards everything, for constructors that
// require one.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Subscribe registers a live connection on the embedded broadcaster.
func (s *LeaseFacadeStub) Subscribe(userID int64) *broadcast.Subscription {
	return s.Broadcaster.Subscribe(userID)
}

// Unsubscribe removes the connection.
func (s *LeaseFacadeStub) Unsubscribe(sub *broadcast.Subscription) {
	s.Broadcaster.Unsubscribe(sub)
}
