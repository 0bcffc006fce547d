package repository

import (
	"context"

	"github.com/smslease/smslease/internal/domain/model"
)

// CatalogRepository exposes the read-only country/service catalog used to
// validate and price new orders.
type CatalogRepository interface {
	Country(ctx context.Context, countryID string) (*model.Country, error)
	Service(ctx context.Context, serviceID string) (*model.Service, error)
	Countries(ctx context.Context) ([]model.Country, error)
	Services(ctx context.Context) ([]model.Service, error)
}
