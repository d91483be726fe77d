package repo

import (
	"context"

	"github.com/vermimetrics/vermi-platform/platform/go/persistence"
)

// Repository defines the catalog reads required by the tanks service.
type Repository interface {
	ListLocations(ctx context.Context) ([]persistence.Location, error)
	ListSites(ctx context.Context, locationID int64) ([]persistence.Site, error)
	ListTanksBySite(ctx context.Context, siteID int64) ([]persistence.Tank, error)
	ListTanksByLocation(ctx context.Context, locationID int64) ([]persistence.Tank, error)
	GetTanksByIDs(ctx context.Context, ids []int64) ([]persistence.Tank, error)
}

type postgresRepository struct {
	store *persistence.CatalogStore
}

// NewPostgresRepository constructs a repository backed by the shared catalog store.
func NewPostgresRepository(store *persistence.CatalogStore) Repository {
	if store == nil {
		panic("catalog store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) ListLocations(ctx context.Context) ([]persistence.Location, error) {
	return r.store.ListLocations(ctx)
}

func (r *postgresRepository) ListSites(ctx context.Context, locationID int64) ([]persistence.Site, error) {
	return r.store.ListSites(ctx, locationID)
}

func (r *postgresRepository) ListTanksBySite(ctx context.Context, siteID int64) ([]persistence.Tank, error) {
	return r.store.ListTanksBySite(ctx, siteID)
}

func (r *postgresRepository) ListTanksByLocation(ctx context.Context, locationID int64) ([]persistence.Tank, error) {
	return r.store.ListTanksByLocation(ctx, locationID)
}

func (r *postgresRepository) GetTanksByIDs(ctx context.Context, ids []int64) ([]persistence.Tank, error) {
	return r.store.GetTanksByIDs(ctx, ids)
}
