package numbering

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/smslease/smslease/internal/config"
)

// Module provides the numbering provider client.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.NumberingAddress, p.Logger)
}
