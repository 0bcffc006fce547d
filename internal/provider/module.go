package provider

import (
	"go.uber.org/fx"

	"github.com/smslease/smslease/internal/config"
)

// Module builds the provider registry from configuration.
var Module = fx.Provide(newRegistry)

type registryParams struct {
	fx.In

	Config *config.Config
}

func newRegistry(p registryParams) (*Registry, error) {
	specs, err := ParseSpecs(p.Config.WebhookSecrets)
	if err != nil {
		return nil, err
	}
	return NewRegistry(specs)
}
