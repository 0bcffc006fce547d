package handlers

import (
	"context"

	"github.com/smslease/smslease/internal/broadcast"
	"github.com/smslease/smslease/internal/domain/model"
)

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, userID int64, countryID, serviceID string) (*model.Order, error)
	Order(ctx context.Context, userID int64, orderID string) (*model.Order, error)
	Orders(ctx context.Context, userID int64) ([]model.Order, error)
	OrderMessages(ctx context.Context, userID int64, orderID string) ([]model.Message, error)
}

// BalanceFacade provides balance related operations.
type BalanceFacade interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	BalanceHistory(ctx context.Context, userID int64) ([]model.LedgerEntry, error)
}

// CatalogFacade exposes the leasable countries and services.
type CatalogFacade interface {
	Countries(ctx context.Context) ([]model.Country, error)
	Services(ctx context.Context) ([]model.Service, error)
}

// WebhookFacade accepts authenticated inbound SMS notifications.
type WebhookFacade interface {
	ProcessInbound(ctx context.Context, providerName string, sms *model.InboundSMS) error
}

// EventsFacade manages live event subscriptions.
type EventsFacade interface {
	Subscribe(userID int64) *broadcast.Subscription
	Unsubscribe(sub *broadcast.Subscription)
}

// LeaseFacade aggregates the full set of operations used across handlers.
type LeaseFacade interface {
	OrderFacade
	BalanceFacade
	CatalogFacade
	WebhookFacade
	EventsFacade
}
