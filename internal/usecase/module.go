package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/smslease/smslease/internal/config"
	"github.com/smslease/smslease/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewBalanceUseCase,
	newOrderUseCase,
	NewWebhookUseCase,
)

type orderParams struct {
	fx.In

	Orders   repository.OrderRepository
	Messages repository.MessageRepository
	Catalog  repository.CatalogRepository
	Balance  *BalanceUseCase
	Numbers  NumberAssigner
	Sched    DeadlineScheduler
	Events   Publisher
	Config   *config.Config
	Logger   *slog.Logger
}

func newOrderUseCase(p orderParams) *OrderUseCase {
	return NewOrderUseCase(p.Orders, p.Messages, p.Catalog, p.Balance, p.Numbers, p.Sched, p.Events, p.Config.OrderTTL, p.Logger)
}
