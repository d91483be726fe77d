package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	LocationsTable = "locations"
	SitesTable     = "sites"
	DevicesTable   = "devices"
)

// Location is a top-level grouping of composting sites.
type Location struct {
	ID   int64  `db:"location_id" json:"id"`
	Name string `db:"location_name" json:"name"`
}

// Site groups tanks within a location.
type Site struct {
	ID         int64  `db:"site_id" json:"siteId"`
	Name       string `db:"site_name" json:"siteName"`
	LocationID int64  `db:"location_id" json:"locationId"`
}

// Tank is a monitored composting unit (a device row).
type Tank struct {
	ID          int64   `db:"device_id" json:"id"`
	Name        string  `db:"device_name" json:"name"`
	Description *string `db:"device_description" json:"description,omitempty"`
	SiteID      int64   `db:"site_id" json:"siteId"`
	LocationID  int64   `db:"location_id" json:"locationId"`
}

// CatalogStore exposes read-only helpers for the tank catalog tables. The catalog
// is reference data; nothing here mutates it.
type CatalogStore struct {
	pool *pgxpool.Pool
}

// NewCatalogStore returns a store over the catalog tables.
func NewCatalogStore(pool *pgxpool.Pool) (*CatalogStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &CatalogStore{pool: pool}, nil
}

// ListLocations returns every distinct location ordered by name.
func (s *CatalogStore) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
        SELECT DISTINCT location_id, location_name
        FROM %s
        ORDER BY location_name ASC
    `, LocationsTable))
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	locations := make([]Location, 0)
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.ID, &loc.Name); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, loc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}

	return locations, nil
}

// ListSites returns the sites under a location ordered by name.
func (s *CatalogStore) ListSites(ctx context.Context, locationID int64) ([]Site, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
        SELECT site_id, site_name, location_id
        FROM %s
        WHERE location_id = $1
        ORDER BY site_name ASC
    `, SitesTable), locationID)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	return collectSites(rows)
}

// ListTanksBySite returns the tanks that belong to a single site.
func (s *CatalogStore) ListTanksBySite(ctx context.Context, siteID int64) ([]Tank, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
        SELECT d.device_id, d.device_name, d.device_description, d.site_id, st.location_id
        FROM %s d
        JOIN %s st ON st.site_id = d.site_id
        WHERE d.site_id = $1
        ORDER BY d.device_name ASC
    `, DevicesTable, SitesTable), siteID)
	if err != nil {
		return nil, fmt.Errorf("list tanks by site: %w", err)
	}
	defer rows.Close()

	return collectTanks(rows)
}

// ListTanksByLocation returns the tanks under every site of a location.
func (s *CatalogStore) ListTanksByLocation(ctx context.Context, locationID int64) ([]Tank, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
        SELECT d.device_id, d.device_name, d.device_description, d.site_id, st.location_id
        FROM %s d
        JOIN %s st ON st.site_id = d.site_id
        WHERE st.location_id = $1
        ORDER BY d.device_name ASC
    `, DevicesTable, SitesTable), locationID)
	if err != nil {
		return nil, fmt.Errorf("list tanks by location: %w", err)
	}
	defer rows.Close()

	return collectTanks(rows)
}

// GetTanksByIDs returns the tanks matching the provided ids; missing ids are
// silently absent from the result.
func (s *CatalogStore) GetTanksByIDs(ctx context.Context, ids []int64) ([]Tank, error) {
	if len(ids) == 0 {
		return []Tank{}, nil
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
        SELECT d.device_id, d.device_name, d.device_description, d.site_id, st.location_id
        FROM %s d
        JOIN %s st ON st.site_id = d.site_id
        WHERE d.device_id = ANY($1::bigint[])
        ORDER BY d.device_name ASC
    `, DevicesTable, SitesTable), ids)
	if err != nil {
		return nil, fmt.Errorf("get tanks by ids: %w", err)
	}
	defer rows.Close()

	return collectTanks(rows)
}

func collectSites(rows pgx.Rows) ([]Site, error) {
	sites := make([]Site, 0)
	for rows.Next() {
		var site Site
		if err := rows.Scan(&site.ID, &site.Name, &site.LocationID); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}

	return sites, nil
}

func collectTanks(rows pgx.Rows) ([]Tank, error) {
	tanks := make([]Tank, 0)
	for rows.Next() {
		var tank Tank
		if err := rows.Scan(&tank.ID, &tank.Name, &tank.Description, &tank.SiteID, &tank.LocationID); err != nil {
			return nil, fmt.Errorf("scan tank: %w", err)
		}
		tanks = append(tanks, tank)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tanks: %w", err)
	}

	return tanks, nil
}
