package scheduler

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/smslease/smslease/internal/config"
)

// Module provides the expiration scheduler to the fx container.
var Module = fx.Provide(newScheduler)

type schedulerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newScheduler(p schedulerParams) *ExpirationScheduler {
	return New(p.Config.SchedulerTick, p.Logger)
}
