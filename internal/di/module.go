package di

import (
	"go.uber.org/fx"

	"github.com/smslease/smslease/internal/adapter/numbering"
	"github.com/smslease/smslease/internal/app"
	"github.com/smslease/smslease/internal/broadcast"
	"github.com/smslease/smslease/internal/config"
	"github.com/smslease/smslease/internal/logger"
	"github.com/smslease/smslease/internal/provider"
	"github.com/smslease/smslease/internal/scheduler"
	"github.com/smslease/smslease/internal/server/http/handlers"
	"github.com/smslease/smslease/internal/server/http/router"
	"github.com/smslease/smslease/internal/storage/postgres"
	"github.com/smslease/smslease/internal/usecase"
)

// Module assembles the full application graph. Extra options let tests
// replace individual components.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		postgres.Module,
		numbering.Module,
		provider.Module,
		broadcast.Module,
		scheduler.Module,
		usecase.Module,
		fx.Provide(
			func(client numbering.Client) usecase.NumberAssigner { return client },
			func(s *scheduler.ExpirationScheduler) usecase.DeadlineScheduler { return s },
			func(b *broadcast.Broadcaster) usecase.Publisher { return b },
			func(f *app.LeaseFacade) handlers.LeaseFacade { return f },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
