package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/smslease/smslease/internal/domain/errors"
	"github.com/smslease/smslease/internal/domain/model"
	"github.com/smslease/smslease/internal/domain/repository"
	"github.com/smslease/smslease/internal/pkg/phone"
)

// NumberAssigner is the numbering collaborator holding the pool of leasable
// phone numbers.
type NumberAssigner interface {
	Assign(ctx context.Context, countryID string) (*model.NumberAssignment, error)
	Release(ctx context.Context, externalID string) error
}

// DeadlineScheduler tracks order deadlines for automatic expiry.
type DeadlineScheduler interface {
	Schedule(orderID string, deadline time.Time)
	Cancel(orderID string)
}

// Publisher pushes events to the owning user's live connections.
type Publisher interface {
	Publish(event model.Event)
}

// OrderUseCase is the single writer of order state transitions. Creation,
// completion and expiry all go through it; the scheduler and the webhook
// gateway never touch order records directly.
type OrderUseCase struct {
	orders   repository.OrderRepository
	messages repository.MessageRepository
	catalog  repository.CatalogRepository
	balance  *BalanceUseCase
	numbers  NumberAssigner
	sched    DeadlineScheduler
	events   Publisher
	ttl      time.Duration
	logger   *slog.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	orders repository.OrderRepository,
	messages repository.MessageRepository,
	catalog repository.CatalogRepository,
	balance *BalanceUseCase,
	numbers NumberAssigner,
	sched DeadlineScheduler,
	events Publisher,
	ttl time.Duration,
	logger *slog.Logger,
) *OrderUseCase {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &OrderUseCase{
		orders:   orders,
		messages: messages,
		catalog:  catalog,
		balance:  balance,
		numbers:  numbers,
		sched:    sched,
		events:   events,
		ttl:      ttl,
		logger:   logger,
	}
}

// Create validates the catalog selection, debits the price, acquires a number
// and persists the order in active state. The debit is compensated if any
// later step fails, so no user is ever charged without an active order.
func (u *OrderUseCase) Create(ctx context.Context, userID int64, countryID, serviceID string) (*model.Order, error) {
	country, err := u.catalog.Country(ctx, countryID)
	if err != nil {
		return nil, err
	}
	service, err := u.catalog.Service(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !country.Available || !service.Available {
		return nil, domainErrors.ErrUnavailable
	}

	price := country.Price
	if service.Price > price {
		price = service.Price
	}

	orderID := uuid.NewString()
	if err := u.balance.TryDebit(ctx, userID, price, orderID); err != nil {
		return nil, err
	}

	assignment, err := u.numbers.Assign(ctx, countryID)
	if err != nil {
		u.compensate(ctx, userID, price, orderID)
		return nil, err
	}
	phoneNumber := assignment.PhoneNumber
	if normalized, err := phone.Normalize(phoneNumber); err == nil {
		phoneNumber = normalized
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:          orderID,
		UserID:      userID,
		PhoneNumber: phoneNumber,
		CountryID:   countryID,
		ServiceID:   serviceID,
		Price:       price,
		Status:      model.OrderStatusActive,
		ExternalID:  assignment.ExternalID,
		Provider:    assignment.Provider,
		CreatedAt:   now,
		Deadline:    now.Add(u.ttl),
	}
	if err := u.orders.Create(ctx, order); err != nil {
		u.releaseNumber(ctx, assignment.ExternalID)
		u.compensate(ctx, userID, price, orderID)
		return nil, err
	}

	u.sched.Schedule(order.ID, order.Deadline)
	u.logger.Info("order created",
		slog.String("order", order.ID),
		slog.Int64("user", userID),
		slog.String("phone", order.PhoneNumber),
		slog.Int64("price", price),
	)
	return order, nil
}

// Complete performs the active->completed terminal transition and stores the
// delivered message. Safe to call redundantly: a second call reports
// ErrOrderNotActive and has no side effects.
func (u *OrderUseCase) Complete(ctx context.Context, orderID, text string, code *string) (*model.Order, error) {
	message := &model.Message{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		Text:       text,
		Code:       code,
		ReceivedAt: time.Now().UTC(),
	}
	order, err := u.orders.Complete(ctx, orderID, message)
	if err != nil {
		return nil, err
	}

	u.releaseNumber(ctx, order.ExternalID)
	u.sched.Cancel(order.ID)
	u.events.Publish(model.Event{Type: model.EventOrderCompleted, UserID: order.UserID, OrderID: order.ID, Payload: order})
	u.events.Publish(model.Event{Type: model.EventMessageReceived, UserID: order.UserID, OrderID: order.ID, Payload: message})
	u.logger.Info("order completed", slog.String("order", order.ID))
	return order, nil
}

// Expire performs the active->expired terminal transition; the refund happens
// in the same storage transaction. Redundant scheduler fires are harmless.
func (u *OrderUseCase) Expire(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := u.orders.Expire(ctx, orderID)
	if err != nil {
		return nil, err
	}

	u.releaseNumber(ctx, order.ExternalID)
	u.events.Publish(model.Event{Type: model.EventOrderExpired, UserID: order.UserID, OrderID: order.ID, Payload: order})
	u.logger.Info("order expired", slog.String("order", order.ID), slog.Int64("refund", order.Price))
	return order, nil
}

// Get returns a single order.
func (u *OrderUseCase) Get(ctx context.Context, orderID string) (*model.Order, error) {
	return u.orders.GetByID(ctx, orderID)
}

// ListByUser returns orders newest first.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// ActiveOrders returns every order still awaiting a terminal transition; the
// scheduler rebuilds its wait structure from this on startup.
func (u *OrderUseCase) ActiveOrders(ctx context.Context) ([]model.Order, error) {
	return u.orders.ListActive(ctx)
}

// MessagesByOrder returns stored messages newest first.
func (u *OrderUseCase) MessagesByOrder(ctx context.Context, orderID string) ([]model.Message, error) {
	return u.messages.ListByOrder(ctx, orderID)
}

func (u *OrderUseCase) compensate(ctx context.Context, userID int64, amount int64, orderID string) {
	if err := u.balance.Credit(ctx, userID, amount, orderID); err != nil {
		u.logger.Error("compensating credit failed",
			slog.Int64("user", userID),
			slog.String("order", orderID),
			slog.String("error", err.Error()),
		)
	}
}

// releaseNumber is best-effort: the numbering provider reclaims assignments on
// its own timeout, so failures are logged and swallowed.
func (u *OrderUseCase) releaseNumber(ctx context.Context, externalID string) {
	if externalID == "" {
		return
	}
	if err := u.numbers.Release(ctx, externalID); err != nil {
		u.logger.Warn("number release failed",
			slog.String("external_id", externalID),
			slog.String("error", err.Error()),
		)
	}
}
