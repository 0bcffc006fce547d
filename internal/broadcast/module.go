package broadcast

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/smslease/smslease/internal/config"
)

// Module provides the event broadcaster to the fx container.
var Module = fx.Provide(newBroadcaster)

type broadcasterParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newBroadcaster(p broadcasterParams) *Broadcaster {
	return New(p.Config.EventBuffer, p.Logger)
}
