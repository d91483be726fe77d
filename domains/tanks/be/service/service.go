package service

import (
	"context"
	"errors"

	"github.com/vermimetrics/vermi-platform/domains/tanks/be/repo"
	"github.com/vermimetrics/vermi-platform/platform/go/persistence"
)

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

// ValidationError is returned when the input parameters are invalid.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// ErrNotFound is returned when a catalog record does not exist.
var ErrNotFound = errors.New("tank not found")

// Location is a named deployment region that groups monitoring sites.
type Location struct {
	ID   int64
	Name string
}

// Site is a physical installation within a location.
type Site struct {
	ID         int64
	Name       string
	LocationID int64
}

// Tank is a monitored composting tank within a site.
type Tank struct {
	ID          int64
	Name        string
	Description *string
	SiteID      int64
	LocationID  int64
}

// Service defines the read operations over the tank catalog.
type Service interface {
	ListLocations(ctx context.Context) ([]Location, error)
	ListSites(ctx context.Context, locationID int64) ([]Site, error)
	ListTanksByLocation(ctx context.Context, locationID int64) ([]Tank, error)
	ListTanksBySite(ctx context.Context, siteID int64) ([]Tank, error)
	GetTanksByIDs(ctx context.Context, ids []int64) ([]Tank, error)
}

type service struct {
	repo repo.Repository
}

// New constructs a tanks Service instance backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("tanks repository is required")
	}
	return &service{repo: r}
}

func (s *service) ListLocations(ctx context.Context) ([]Location, error) {
	records, err := s.repo.ListLocations(ctx)
	if err != nil {
		return nil, err
	}

	locations := make([]Location, 0, len(records))
	for _, record := range records {
		locations = append(locations, Location{ID: record.ID, Name: record.Name})
	}
	return locations, nil
}

func (s *service) ListSites(ctx context.Context, locationID int64) ([]Site, error) {
	if locationID <= 0 {
		return nil, newValidationError("locationId", "locationId must be a positive integer")
	}

	records, err := s.repo.ListSites(ctx, locationID)
	if err != nil {
		return nil, err
	}

	sites := make([]Site, 0, len(records))
	for _, record := range records {
		sites = append(sites, mapSite(record))
	}
	return sites, nil
}

func (s *service) ListTanksByLocation(ctx context.Context, locationID int64) ([]Tank, error) {
	if locationID <= 0 {
		return nil, newValidationError("locationId", "locationId must be a positive integer")
	}

	records, err := s.repo.ListTanksByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return mapTanks(records), nil
}

func (s *service) ListTanksBySite(ctx context.Context, siteID int64) ([]Tank, error) {
	if siteID <= 0 {
		return nil, newValidationError("siteId", "siteId must be a positive integer")
	}

	records, err := s.repo.ListTanksBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return mapTanks(records), nil
}

func (s *service) GetTanksByIDs(ctx context.Context, ids []int64) ([]Tank, error) {
	if len(ids) == 0 {
		return nil, newValidationError("ids", "at least one tank id is required")
	}
	for _, id := range ids {
		if id <= 0 {
			return nil, newValidationError("ids", "tank ids must be positive integers")
		}
	}

	records, err := s.repo.GetTanksByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return mapTanks(records), nil
}

func mapSite(record persistence.Site) Site {
	return Site{
		ID:         record.ID,
		Name:       record.Name,
		LocationID: record.LocationID,
	}
}

func mapTanks(records []persistence.Tank) []Tank {
	tanks := make([]Tank, 0, len(records))
	for _, record := range records {
		tanks = append(tanks, Tank{
			ID:          record.ID,
			Name:        record.Name,
			Description: record.Description,
			SiteID:      record.SiteID,
			LocationID:  record.LocationID,
		})
	}
	return tanks
}

func newValidationError(field, message string) error {
	return &ValidationError{Fields: FieldErrors{field: {message}}}
}
